package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/thushan/traigo/internal/core/domain"
)

// transientStatuses are the HTTP statuses worth retrying. Everything else
// from the upstream is treated as permanent.
var transientStatuses = map[int]struct{}{
	408: {},
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// IsTransient reports whether an error is likely to clear on retry: retryable
// HTTP statuses, connection-level failures and timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if status := domain.StatusOf(err); status > 0 {
		_, ok := transientStatuses[status]
		return ok
	}

	switch domain.CodeOf(err) {
	case domain.CodeBadInput, domain.CodeStationNotFound, domain.CodeNotFound,
		domain.CodeAuthError, domain.CodeCancelled, domain.CodeCircuitBreakerOpen:
		return false
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused")
}
