package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfigDefaults(t *testing.T) {
	// Run from a temp dir so no real config file is picked up.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "data/findash.db", cfg.Database.Path)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
	assert.Equal(t, "boursorama", cfg.Import.Profile)
	assert.Equal(t, "categories.yaml", cfg.Seed.CategoriesFile)
}

func TestInitializeConfigEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FINDASH_LOG_LEVEL", "debug")
	t.Setenv("FINDASH_HTTP_ADDR", ":9000")

	cfg, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestInitializeConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FINDASH_LOG_LEVEL", "noisy")

	_, err := InitializeConfig()
	assert.Error(t, err)
}

func TestConfigureLogging(t *testing.T) {
	var cfg Config
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"

	logger := ConfigureLogging(&cfg)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.Log.Level = "bogus"
	cfg.Log.Format = "text"
	logger = ConfigureLogging(&cfg)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
