// Package app wires the resilience pipeline into the traigo commands: config
// and credentials in, one tdx.Client shared by every command, exit code out.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/thushan/traigo/internal/adapter/auth"
	"github.com/thushan/traigo/internal/adapter/breaker"
	"github.com/thushan/traigo/internal/adapter/cache"
	"github.com/thushan/traigo/internal/adapter/keypool"
	"github.com/thushan/traigo/internal/adapter/ratelimit"
	"github.com/thushan/traigo/internal/adapter/retry"
	"github.com/thushan/traigo/internal/adapter/tdx"
	"github.com/thushan/traigo/internal/app/services"
	"github.com/thushan/traigo/internal/config"
	"github.com/thushan/traigo/internal/core/constants"
	"github.com/thushan/traigo/internal/core/domain"
	"github.com/thushan/traigo/internal/logger"
)

var errNoCredentials = errors.New("no TDX credentials configured; set TDX_CLIENT_ID and TDX_CLIENT_SECRET (suffix _2.._10 for more slots)")

// App holds the wired pipeline. Services that need upstream data are built
// lazily per command so `version`, `help` and `cache` work without
// credentials.
type App struct {
	cfg    *config.Config
	logger *logger.StyledLogger

	client  *tdx.Client
	pool    *keypool.Pool
	breaker *breaker.CircuitBreaker
	cache   *cache.TieredStore

	startTime time.Time
	jsonOut   bool
}

func New(startTime time.Time, cfg *config.Config, styled *logger.StyledLogger) (*App, error) {
	memory := cache.NewMemoryStore()
	disk, err := cache.NewDiskStore(cfg.Cache.Dir)
	if err != nil {
		return nil, err
	}
	tiered := cache.NewTieredStore(memory, disk)

	a := &App{
		cfg:       cfg,
		logger:    styled,
		cache:     tiered,
		startTime: startTime,
	}

	if len(cfg.Credentials) == 0 {
		// commands that reach upstream will refuse; cache and version still work
		return a, nil
	}

	httpClient := &http.Client{Timeout: cfg.Client.RequestTimeout}

	slots := make([]*keypool.Slot, 0, len(cfg.Credentials))
	for _, credential := range cfg.Credentials {
		authService := auth.NewService(credential, cfg.Client.TokenURL, httpClient)
		bucket := ratelimit.NewBucket(ratelimit.Config{
			MaxTokens:       cfg.RateLimit.BucketCapacity,
			RefillPerSecond: cfg.RateLimit.RefillPerSecond,
			AcquireInterval: cfg.RateLimit.AcquireInterval,
			MaxRetries:      cfg.RateLimit.AcquireRetries,
		})
		slots = append(slots, keypool.NewSlot(credential, authService, bucket, keypool.SlotConfig{
			FailureThreshold: cfg.Slots.FailureThreshold,
			FailureCooldown:  cfg.Slots.FailureCooldown,
			RecoveryTime:     cfg.Slots.RecoveryTime,
		}))
	}

	pool, err := keypool.NewPool(slots, cfg.RateLimit.RefillPerSecond, styled)
	if err != nil {
		return nil, err
	}

	cb := breaker.New(breaker.Config{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
		ShouldTrip:       retry.IsTransient,
	})

	retryCfg := retry.Config{
		MaxRetries:        cfg.Retry.MaxRetries,
		BaseDelay:         cfg.Retry.BaseDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
		OnRetry: func(err error, attempt int, delay time.Duration) {
			styled.Warn("Retrying request", "attempt", attempt, "delay", delay.String(), "error", err)
		},
	}
	if cfg.Retry.EnableJitter {
		retryCfg.JitterPercentage = cfg.Retry.JitterPercentage
	}

	a.pool = pool
	a.breaker = cb
	a.client = tdx.NewClient(pool, tiered, cache.NewMemoryStore(), cb, retry.NewRunner(retryCfg),
		styled.GetUnderlying(),
		tdx.WithBaseURL(cfg.Client.BaseURL),
		tdx.WithHTTPClient(httpClient),
		tdx.WithGlobalLimit(float64(cfg.RateLimit.GlobalPerSecond), cfg.RateLimit.GlobalBurst),
		tdx.WithSkipCache(cfg.Cache.Disabled),
	)
	return a, nil
}

func (a *App) requireClient() (*tdx.Client, error) {
	if a.client == nil {
		return nil, errNoCredentials
	}
	return a.client, nil
}

func (a *App) stationResolver(ctx context.Context) (*services.StationResolver, error) {
	client, err := a.requireClient()
	if err != nil {
		return nil, err
	}
	return services.NewStationResolver(ctx, client)
}

func (a *App) branchLineResolver(ctx context.Context) (*services.BranchLineResolver, error) {
	client, err := a.requireClient()
	if err != nil {
		return nil, err
	}
	return services.NewBranchLineResolver(ctx, client)
}

// ExitCodeFor maps an error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return constants.ExitOK
	}
	if errors.Is(err, errNoCredentials) {
		return constants.ExitMissingCredentials
	}

	switch domain.CodeOf(err) {
	case domain.CodeBadInput, domain.CodeStationNotFound:
		return constants.ExitBadInput
	default:
		return constants.ExitUpstreamError
	}
}

// ErrorCodeFor maps an error to the taxonomy code used in JSON error output.
func ErrorCodeFor(err error) domain.ErrorCode {
	if errors.Is(err, errNoCredentials) {
		return domain.CodeAuthError
	}
	return domain.CodeOf(err)
}
