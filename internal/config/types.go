package config

import (
	"time"

	"github.com/thushan/traigo/internal/core/domain"
)

// Config holds all configuration for the application
type Config struct {
	Client      ClientConfig    `mapstructure:"client"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Slots       SlotConfig      `mapstructure:"slots"`
	Breaker     BreakerConfig   `mapstructure:"breaker"`
	Retry       RetryConfig     `mapstructure:"retry"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Journey     JourneyConfig   `mapstructure:"journey"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Credentials []domain.Credential
}

// ClientConfig holds upstream TDX connection settings
type ClientConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	TokenURL       string        `mapstructure:"token_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RateLimitConfig holds the per-credential bucket and the global cap.
// The defaults encode the upstream contract of 5 req/s per credential with a
// small burst allowance; operators may override both.
type RateLimitConfig struct {
	BucketCapacity  int           `mapstructure:"bucket_capacity"`
	RefillPerSecond int           `mapstructure:"refill_per_second"`
	AcquireInterval time.Duration `mapstructure:"acquire_interval"`
	AcquireRetries  int           `mapstructure:"acquire_retries"`
	GlobalPerSecond int           `mapstructure:"global_per_second"`
	GlobalBurst     int           `mapstructure:"global_burst"`
}

// SlotConfig holds key slot health thresholds
type SlotConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	FailureCooldown  time.Duration `mapstructure:"failure_cooldown"`
	RecoveryTime     time.Duration `mapstructure:"recovery_time"`
}

// BreakerConfig holds circuit breaker thresholds
type BreakerConfig struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	SuccessThreshold int           `mapstructure:"success_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

// RetryConfig holds backoff settings for transient failures
type RetryConfig struct {
	MaxRetries        int           `mapstructure:"max_retries"`
	BaseDelay         time.Duration `mapstructure:"base_delay"`
	MaxDelay          time.Duration `mapstructure:"max_delay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
	EnableJitter      bool          `mapstructure:"enable_jitter"`
	JitterPercentage  float64       `mapstructure:"jitter_percentage"`
}

// CacheConfig holds the two-tier cache settings
type CacheConfig struct {
	Dir      string `mapstructure:"dir"`
	Disabled bool   `mapstructure:"disabled"`
}

// JourneyConfig holds planner defaults
type JourneyConfig struct {
	MinTransferMinutes int `mapstructure:"min_transfer_minutes"`
	MaxTransferMinutes int `mapstructure:"max_transfer_minutes"`
}

// LoggingConfig mirrors logger.Config for the config file surface
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Theme      string `mapstructure:"theme"`
	Dir        string `mapstructure:"dir"`
	FileOutput bool   `mapstructure:"file_output"`
}
