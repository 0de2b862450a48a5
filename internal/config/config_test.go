package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameforge/gameforge/internal/config"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "gameforge.db", cfg.DatabasePath)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RememberTTL)
	assert.Equal(t, 24*time.Hour, cfg.ReapInterval)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(envMap(map[string]string{
		"PORT":          ":9000",
		"DATABASE_PATH": "/tmp/gf.db",
		"COOKIE_SECURE": "false",
		"BCRYPT_COST":   "12",
		"SESSION_TTL":   "1h",
		"REMEMBER_TTL":  "72h",
		"REAP_INTERVAL": "30m",
		"LOG_LEVEL":     "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 72*time.Hour, cfg.RememberTTL)
	assert.Equal(t, 30*time.Minute, cfg.ReapInterval)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"cost not a number", map[string]string{"BCRYPT_COST": "ten"}},
		{"cost too low", map[string]string{"BCRYPT_COST": "3"}},
		{"cost too high", map[string]string{"BCRYPT_COST": "15"}},
		{"bad ttl", map[string]string{"SESSION_TTL": "forever"}},
		{"remember not longer", map[string]string{"SESSION_TTL": "48h", "REMEMBER_TTL": "24h"}},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}},
		{"zero burst", map[string]string{"LOGIN_BURST": "0"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.LoadFrom(envMap(tc.env))
			assert.Error(t, err)
		})
	}
}
