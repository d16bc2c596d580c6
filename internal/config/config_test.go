package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"APP_ENV", "API_ADDR", "LEDGER_DELAY", "TRANSFER_DELAY", "API_MAX_BODY_BYTES",
	"API_IP_ALLOWLIST", "REDIS_ADDR", "API_RATE_LIMIT_CAPACITY", "API_RATE_LIMIT_REFILL_PER_SEC",
	"AUDIT_SINK", "ASSISTANT_API_KEY", "ASSISTANT_MODEL",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_ENV")

	t.Setenv("APP_ENV", "development")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 1500*time.Millisecond, cfg.LedgerDelay)
	assert.Equal(t, 2*time.Second, cfg.TransferDelay)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Empty(t, cfg.IPAllowlist)
	assert.Equal(t, "gemini-2.5-flash", cfg.AssistantModel)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_ADDR", "127.0.0.1:9000")
	t.Setenv("LEDGER_DELAY", "0s")
	t.Setenv("TRANSFER_DELAY", "250ms")
	t.Setenv("API_IP_ALLOWLIST", "10.0.0.0/8, 127.0.0.1 ,")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("API_RATE_LIMIT_CAPACITY", "50")
	t.Setenv("API_RATE_LIMIT_REFILL_PER_SEC", "2.5")
	t.Setenv("AUDIT_SINK", "sqlite:///tmp/audit.db")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, time.Duration(0), cfg.LedgerDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.TransferDelay)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.IPAllowlist)
	assert.Equal(t, 50, cfg.RateLimitCapacity)
	assert.Equal(t, 2.5, cfg.RateLimitRefill)
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("LEDGER_DELAY", "soon")
	t.Setenv("API_MAX_BODY_BYTES", "big")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LEDGER_DELAY")
	assert.Contains(t, err.Error(), "API_MAX_BODY_BYTES")

	clearEnv(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUDIT_SINK", "kafka://audit")
	_, err = LoadFromEnv()
	assert.Error(t, err)
}

func TestLoadFromEnv_Production(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_SINK")

	t.Setenv("AUDIT_SINK", "log")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_ENV=staging\nAUDIT_SINK=log\nAPI_ADDR=:7000\n"), 0o600))
	t.Setenv("API_ADDR", ":9999")

	t.Chdir(dir)
	t.Cleanup(func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("AUDIT_SINK")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, ":9999", cfg.Addr)
}
