// Package auth fetches OAuth2 client-credentials tokens from the TDX realm
// and caches them per credential. Concurrent callers share one outbound
// request through singleflight.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
)

// HTTPClient interface for better testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type Service struct {
	client     HTTPClient
	now        func() time.Time
	credential domain.Credential
	tokenURL   string

	group singleflight.Group

	mu    sync.Mutex
	token domain.Token
}

func NewService(credential domain.Credential, tokenURL string, client HTTPClient) *Service {
	if tokenURL == "" {
		tokenURL = constants.DefaultTokenURL
	}
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultRequestTimeout}
	}

	return &Service{
		credential: credential,
		tokenURL:   tokenURL,
		client:     client,
		now:        time.Now,
	}
}

// GetToken returns a valid bearer token, fetching one when the cache is
// stale. Callers arriving while a fetch is in flight wait for that result
// instead of issuing their own request.
func (s *Service) GetToken(ctx context.Context) (string, error) {
	if token, ok := s.cachedToken(); ok {
		return token, nil
	}

	result, err, _ := s.group.Do("token", func() (interface{}, error) {
		// a racing caller may have refreshed while we queued
		if token, ok := s.cachedToken(); ok {
			return token, nil
		}
		return s.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

func (s *Service) IsTokenValid() bool {
	_, ok := s.cachedToken()
	return ok
}

func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = domain.Token{}
}

func (s *Service) cachedToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.ValidAt(s.now(), constants.TokenSafetyBuffer) {
		return s.token.AccessToken, true
	}
	return "", false
}

func (s *Service) fetchToken(ctx context.Context) (interface{}, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.credential.ClientID},
		"client_secret": {s.credential.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.WrapError(domain.CodeAuthError, "building token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.dropStaleToken()
		if ctx.Err() != nil {
			return nil, domain.WrapError(domain.CodeCancelled, "token request cancelled", ctx.Err())
		}
		return nil, domain.WrapError(domain.CodeAuthError, "token request failed", err)
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		s.dropStaleToken()
		e := domain.NewError(domain.CodeAuthError,
			fmt.Sprintf("token endpoint rejected credential %s", s.credential.DisplayName()))
		e.StatusCode = resp.StatusCode
		return nil, e
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.dropStaleToken()
		return nil, domain.WrapError(domain.CodeAuthError, "decoding token response", err)
	}
	if payload.AccessToken == "" {
		s.dropStaleToken()
		return nil, domain.NewError(domain.CodeAuthError, "token response missing access_token")
	}

	token := domain.Token{
		AccessToken: payload.AccessToken,
		ExpiresAt:   s.now().Add(time.Duration(payload.ExpiresIn) * time.Second),
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return token.AccessToken, nil
}

// dropStaleToken removes any expired cache entry so a failed refresh never
// leaves a token that looks fresher than it is.
func (s *Service) dropStaleToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.token.ValidAt(s.now(), constants.TokenSafetyBuffer) {
		s.token = domain.Token{}
	}
}
