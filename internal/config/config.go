package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thushan/traigo/internal/core/constants"
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Client: ClientConfig{
			BaseURL:        constants.DefaultBaseURL,
			TokenURL:       constants.DefaultTokenURL,
			RequestTimeout: constants.DefaultRequestTimeout,
		},
		RateLimit: RateLimitConfig{
			BucketCapacity:  constants.DefaultBucketCapacity,
			RefillPerSecond: constants.DefaultRefillPerSecond,
			AcquireInterval: constants.DefaultAcquireInterval,
			AcquireRetries:  constants.DefaultAcquireRetries,
			GlobalPerSecond: constants.DefaultGlobalRequestsPerSecond,
			GlobalBurst:     constants.DefaultGlobalBurst,
		},
		Slots: SlotConfig{
			FailureThreshold: constants.DefaultSlotFailureThreshold,
			FailureCooldown:  constants.DefaultSlotFailureCooldown,
			RecoveryTime:     constants.DefaultSlotRecoveryTime,
		},
		Breaker: BreakerConfig{
			FailureThreshold: constants.DefaultBreakerFailureThreshold,
			SuccessThreshold: constants.DefaultBreakerSuccessThreshold,
			OpenTimeout:      constants.DefaultBreakerOpenTimeout,
		},
		Retry: RetryConfig{
			MaxRetries:        constants.DefaultMaxRetries,
			BaseDelay:         constants.DefaultRetryBaseDelay,
			MaxDelay:          constants.DefaultRetryMaxDelay,
			BackoffMultiplier: constants.DefaultBackoffMultiplier,
			EnableJitter:      true,
			JitterPercentage:  constants.DefaultJitterPercentage,
		},
		Cache: CacheConfig{
			Dir: defaultCacheDir(),
		},
		Journey: JourneyConfig{
			MinTransferMinutes: constants.DefaultMinTransferMinutes,
			MaxTransferMinutes: constants.DefaultMaxTransferMinutes,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Theme:      "default",
			Dir:        defaultLogDir(),
			FileOutput: false,
		},
	}
}

// Load layers the optional config file under env overrides. Env always wins
// so a shell export beats a stale config file.
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir())
	// the tool previously shipped as tra; keep reading its config dir
	if base, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(base, "tra"))
	}

	viper.SetEnvPrefix("TRAIGO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// config file is optional
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.Credentials = LoadCredentials()

	return config, nil
}

func configDir() string {
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "traigo")
	}
	return "."
}

func defaultCacheDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "traigo")
	}
	return filepath.Join(os.TempDir(), "traigo-cache")
}

func defaultLogDir() string {
	return filepath.Join(configDir(), "logs")
}
