package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode is the flat discriminant carried by every traigo error.
type ErrorCode string

const (
	CodeBadInput           ErrorCode = "BAD_INPUT"
	CodeStationNotFound    ErrorCode = "STATION_NOT_FOUND"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeAuthError          ErrorCode = "AUTH_ERROR"
	CodeRateLimited        ErrorCode = "RATE_LIMITED"
	CodeNoAvailableSlots   ErrorCode = "NO_AVAILABLE_SLOTS"
	CodeCircuitBreakerOpen ErrorCode = "CIRCUIT_BREAKER_OPEN"
	CodeAPIError           ErrorCode = "API_ERROR"
	CodeCancelled          ErrorCode = "CANCELLED"
)

// Error is the sum-type error surfaced by the access layer. StatusCode is
// populated when an HTTP status is known, RetryAfter when the breaker
// short-circuits, Context with endpoint-level details.
type Error struct {
	Err        error
	Context    map[string]string
	Code       ErrorCode
	Message    string
	StatusCode int
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is matching against a bare &Error{Code: …} sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithContext attaches endpoint-level context, overwriting duplicate keys.
func (e *Error) WithContext(kv ...string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Context[kv[i]] = kv[i+1]
	}
	return e
}

// CodeOf extracts the taxonomy code from any error, defaulting to API_ERROR
// for errors that did not originate in the access layer.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var notFound *StationNotFoundError
	if errors.As(err, &notFound) {
		return CodeStationNotFound
	}
	return CodeAPIError
}

// StatusOf extracts the HTTP status from an error chain, 0 when unknown.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// StationNotFoundError carries resolver suggestions alongside the taxonomy code.
type StationNotFoundError struct {
	Query      string
	Suggestion string
	Candidates []string
}

func (e *StationNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: no station matching %q (did you mean %q?)", CodeStationNotFound, e.Query, e.Suggestion)
	}
	return fmt.Sprintf("%s: no station matching %q", CodeStationNotFound, e.Query)
}

func (e *StationNotFoundError) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == CodeStationNotFound
	}
	return false
}
