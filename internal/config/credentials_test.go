package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCredentialsPrimaryOnly(t *testing.T) {
	t.Setenv("TDX_CLIENT_ID", "id-1")
	t.Setenv("TDX_CLIENT_SECRET", "secret-1")
	t.Setenv("TDX_KEY_LABEL", "primary")

	creds := LoadCredentials()
	require.Len(t, creds, 1)
	assert.Equal(t, "slot-1", creds[0].ID)
	assert.Equal(t, "id-1", creds[0].ClientID)
	assert.Equal(t, "primary", creds[0].Label)
	assert.Equal(t, "primary", creds[0].DisplayName())
}

func TestLoadCredentialsSkipsIncompletePairs(t *testing.T) {
	t.Setenv("TDX_CLIENT_ID", "id-1")
	t.Setenv("TDX_CLIENT_SECRET", "secret-1")
	// slot 2 has an id but no secret, must be skipped without error
	t.Setenv("TDX_CLIENT_ID_2", "id-2")
	t.Setenv("TDX_CLIENT_ID_3", "id-3")
	t.Setenv("TDX_CLIENT_SECRET_3", "secret-3")

	creds := LoadCredentials()
	require.Len(t, creds, 2)
	assert.Equal(t, "slot-1", creds[0].ID)
	assert.Equal(t, "slot-3", creds[1].ID)
	assert.Equal(t, "slot-3", creds[1].DisplayName())
}

func TestLoadCredentialsEmpty(t *testing.T) {
	t.Setenv("TDX_CLIENT_ID", "")
	t.Setenv("TDX_CLIENT_SECRET", "")

	assert.Empty(t, LoadCredentials())
}

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644))
}

func TestLoadReadsLegacyConfigDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	t.Cleanup(viper.Reset)

	writeConfigFile(t, filepath.Join(base, "tra"), `{"rate_limit":{"refill_per_second":7}}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateLimit.RefillPerSecond)
}

func TestLoadPrefersCurrentConfigDir(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	t.Cleanup(viper.Reset)

	writeConfigFile(t, filepath.Join(base, "traigo"), `{"rate_limit":{"refill_per_second":9}}`)
	writeConfigFile(t, filepath.Join(base, "tra"), `{"rate_limit":{"refill_per_second":7}}`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.RateLimit.RefillPerSecond)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 50, cfg.RateLimit.BucketCapacity)
	assert.Equal(t, 5, cfg.RateLimit.RefillPerSecond)
	assert.Equal(t, 3, cfg.Slots.FailureThreshold)
	assert.Equal(t, 3, cfg.Breaker.FailureThreshold)
	assert.Equal(t, 2, cfg.Breaker.SuccessThreshold)
	assert.True(t, cfg.Retry.EnableJitter)
	assert.NotEmpty(t, cfg.Cache.Dir)
}
