package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost dbname=crm")
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 15*time.Minute, cfg.SLASweepInterval)
	assert.Equal(t, "admin@rayenna.local", cfg.AdminUsername)
	assert.True(t, cfg.SeedDemoUsers)
	assert.False(t, cfg.LogVerbose)
	assert.Equal(t, "Asia/Kolkata", cfg.BusinessLocation().String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "host=db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SLA_SWEEP_INTERVAL", "0s")
	t.Setenv("LOG_VERBOSE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Zero(t, cfg.SLASweepInterval)
	assert.True(t, cfg.LogVerbose)
}

func TestLoad_RequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("SESSION_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoad_RequiresSessionSecret(t *testing.T) {
	t.Setenv("DB_DSN", "host=db")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("DB_DSN", "host=db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("SLA_SWEEP_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("DB_DSN", "host=db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("BUSINESS_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BUSINESS_TIMEZONE")
}

func TestBusinessLocation_EmptyIsUTC(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.UTC, cfg.BusinessLocation())
}
