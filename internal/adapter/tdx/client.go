// Package tdx binds the TDX rail endpoints to the resilience pipeline: cache
// lookup, slot selection, rate limiting, bearer token, circuit breaker and
// retry around each HTTP fetch.
package tdx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/thushan/traigo/internal/adapter/breaker"
	"github.com/thushan/traigo/internal/adapter/keypool"
	"github.com/thushan/traigo/internal/adapter/retry"
	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/core/ports"
)

// Client is the API access layer handed to every service. One breaker and one
// retry runner are shared across all slots; an upstream outage is global.
type Client struct {
	httpClient *http.Client
	pool       *keypool.Pool
	cache      ports.CacheStore
	alertCache ports.CacheStore
	breaker    *breaker.CircuitBreaker
	retrier    *retry.Runner
	global     *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time

	baseURL   string
	userAgent string
	skipCache bool
}

type Option func(*Client)

// WithSkipCache bypasses cache reads; responses are still written back.
func WithSkipCache(skip bool) Option {
	return func(c *Client) { c.skipCache = skip }
}

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithGlobalLimit caps the aggregate request rate across every slot. The
// per-slot buckets model upstream quota; this models politeness.
func WithGlobalLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.global = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func NewClient(pool *keypool.Pool, cache, alertCache ports.CacheStore, cb *breaker.CircuitBreaker, retrier *retry.Runner, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		pool:       pool,
		cache:      cache,
		alertCache: alertCache,
		breaker:    cb,
		retrier:    retrier,
		logger:     log,
		baseURL:    constants.DefaultBaseURL,
		userAgent:  constants.DefaultUserAgent,
		httpClient: &http.Client{Timeout: constants.DefaultRequestTimeout},
		global:     rate.NewLimiter(rate.Limit(constants.DefaultGlobalRequestsPerSecond), constants.DefaultGlobalBurst),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetch runs the full pipeline for one endpoint. A non-empty cacheKey enables
// read-through caching into store; live endpoints pass an empty key.
func (c *Client) fetch(ctx context.Context, store ports.CacheStore, cacheKey string, ttl time.Duration, path string, query url.Values, out any) error {
	if store != nil && cacheKey != "" && !c.skipCache {
		if body, ok := store.Get(ctx, cacheKey); ok {
			return json.Unmarshal(body, out)
		}
	}

	slot, err := c.pool.GetSlot()
	if err != nil {
		return err
	}

	if err := slot.Limiter().Acquire(ctx); err != nil {
		return err
	}
	if err := c.global.Wait(ctx); err != nil {
		return domain.WrapError(domain.CodeCancelled, "request cancelled", err)
	}

	token, err := slot.Auth().GetToken(ctx)
	if err != nil {
		c.reportOutcome(slot, err)
		return err
	}

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body []byte
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Run(ctx, func(ctx context.Context) error {
			var fetchErr error
			body, fetchErr = c.httpGet(ctx, requestURL, token)
			return fetchErr
		})
	})
	c.reportOutcome(slot, err)
	if err != nil {
		return c.withEndpointContext(err, path, cacheKey)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return domain.WrapError(domain.CodeAPIError, "decoding response", err).
			WithContext("path", path)
	}

	if store != nil && cacheKey != "" && ttl > 0 {
		if err := store.Set(ctx, cacheKey, body, ttl); err != nil && c.logger != nil {
			c.logger.Warn("Failed to cache response", "key", cacheKey, "error", err)
		}
	}
	return nil
}

// reportOutcome feeds the result back into slot health. A breaker rejection
// or a cancelled wait never reached upstream, so it says nothing about the
// credential and is not recorded.
func (c *Client) reportOutcome(slot *keypool.Slot, err error) {
	if err != nil {
		switch domain.CodeOf(err) {
		case domain.CodeCircuitBreakerOpen, domain.CodeCancelled:
			return
		}
	}
	c.pool.ReportOutcome(slot, err)
}

func (c *Client) httpGet(ctx context.Context, requestURL, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, domain.WrapError(domain.CodeBadInput, "building request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.WrapError(domain.CodeCancelled, "request cancelled", ctx.Err())
		}
		return nil, domain.WrapError(domain.CodeAPIError, "request failed", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func statusError(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		e := domain.NewError(domain.CodeAuthError, "upstream rejected credentials")
		e.StatusCode = status
		return e
	default:
		e := domain.NewError(domain.CodeAPIError, fmt.Sprintf("upstream returned %d", status))
		e.StatusCode = status
		return e
	}
}

func (c *Client) withEndpointContext(err error, path, cacheKey string) error {
	var e *domain.Error
	if !errors.As(err, &e) {
		e = domain.WrapError(domain.CodeAPIError, "request failed", err)
	}
	e.WithContext("path", path)
	if cacheKey != "" {
		e.WithContext("cache_key", cacheKey)
	}
	return e
}
