package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "dispense.db", cfg.Store.Path)
	assert.Equal(t, "https://api.fda.gov/drug/ndc.json", cfg.NdcDir.BaseURL)
	assert.Equal(t, 15, cfg.NdcDir.TimeoutSecs)
	assert.Equal(t, 4.0, cfg.NdcDir.RequestsPerSec)
	assert.Equal(t, 3, cfg.NdcDir.MaxRetries)
	assert.Equal(t, 5, cfg.Selector.TopN)
	assert.Equal(t, 5, cfg.Batch.MaxConcurrent)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("DISPENSE_STORE_DRIVER", "postgres")
	t.Setenv("DISPENSE_SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	require.Error(t, err)
}
