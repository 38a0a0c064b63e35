package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"APP_ENV", "LOG_LEVEL", "PORT", "STORE_DRIVER", "DATABASE_URL",
	"SOLANA_RPC_URL", "SOLANA_PAY_RECIPIENT",
	"DROP_CLAIM_CONFIRM_BATCH", "DROP_CLAIM_CONFIRM_CONCURRENCY", "DROP_CLAIM_CONFIRM_INTERVAL",
	"CACHE_SIZE", "CLERK_SECRET_KEY", "ADMIN_CLERK_IDS",
	"METRICS_USER", "METRICS_PASS", "PPROF_SECRET",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// setEnv clears every config variable for the test and then applies env.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestParseDefaults(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/dealmint"})

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "3333", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "https://api.devnet.solana.com", cfg.SolanaRPCURL)
	assert.Equal(t, 25, cfg.ConfirmBatch)
	assert.Equal(t, 4, cfg.ConfirmConcurrency)
	assert.Equal(t, 30*time.Second, cfg.ConfirmInterval)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 30, cfg.RateLimitBurst)
	assert.Empty(t, cfg.AdminClerkIDs)
	assert.False(t, cfg.IsProduction())
}

func TestParseEnvOverrides(t *testing.T) {
	setEnv(t, map[string]string{
		"STORE_DRIVER":                "Memory",
		"DROP_CLAIM_CONFIRM_BATCH":    "50",
		"DROP_CLAIM_CONFIRM_INTERVAL": "2m",
		"ADMIN_CLERK_IDS":             "user_a, user_b,,",
		"APP_ENV":                     "production",
	})

	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 50, cfg.ConfirmBatch)
	assert.Equal(t, 2*time.Minute, cfg.ConfirmInterval)
	assert.Equal(t, []string{"user_a", "user_b"}, cfg.AdminClerkIDs)
	assert.True(t, cfg.IsAdmin("user_b"))
	assert.False(t, cfg.IsAdmin("user_c"))
	assert.True(t, cfg.IsProduction())
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	setEnv(t, map[string]string{"STORE_DRIVER": "memory", "PORT": "8080"})

	cfg, err := Parse([]string{"--port=9090", "--admin-clerk-id=user_a", "--admin-clerk-id=user_b"})
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"user_a", "user_b"}, cfg.AdminClerkIDs)
}

func TestParseZeroIntervalDisablesSweeper(t *testing.T) {
	setEnv(t, map[string]string{"STORE_DRIVER": "memory", "DROP_CLAIM_CONFIRM_INTERVAL": "0"})

	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Zero(t, cfg.ConfirmInterval)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"bad batch", map[string]string{"STORE_DRIVER": "memory", "DROP_CLAIM_CONFIRM_BATCH": "lots"}},
		{"zero batch", map[string]string{"STORE_DRIVER": "memory", "DROP_CLAIM_CONFIRM_BATCH": "0"}},
		{"negative interval", map[string]string{"STORE_DRIVER": "memory", "DROP_CLAIM_CONFIRM_INTERVAL": "-1s"}},
		{"bad interval", map[string]string{"STORE_DRIVER": "memory", "DROP_CLAIM_CONFIRM_INTERVAL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Parse(nil)
			assert.Error(t, err)
		})
	}
}
