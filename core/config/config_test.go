package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("TIMER_HOLD_DEBOUNCE_MS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 100, cfg.Timer.HoldDebounceMs)
	assert.Equal(t, 15, cfg.Timer.InspectionSeconds)
	assert.Equal(t, 100, cfg.Timer.RecentLimit)
	assert.Same(t, cfg, Global)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("APP_DEBUG", "on")
	t.Setenv("APP_BASIC_AUTH", "a:b,c:d")
	t.Setenv("VALKEY_ENABLED", "yes")
	t.Setenv("TIMER_INSPECTION_OVERRUN_SECONDS", "2")
	t.Setenv("SCRAMBLE_ENDPOINT", "http://scrambles.local/api/scramble")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, []string{"a:b", "c:d"}, cfg.App.BasicAuth)
	assert.True(t, cfg.Database.ValkeyEnabled)
	assert.Equal(t, 2, cfg.Timer.InspectionOverrunSeconds)
	assert.Equal(t, true, cfg.Summary()["remote_scramble_configured"])
}

func TestGetEnvInt_IgnoresGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
}
