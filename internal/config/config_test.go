package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Browser.PoolSize)
	assert.Equal(t, 60, cfg.Browser.QueueTimeoutSec)
	assert.Equal(t, "0 */6 * * *", cfg.Health.CronSpec)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  port: 9090\nbrowser:\n  pool_size: 5\nlogging:\n  development: true\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Browser.PoolSize)
	assert.True(t, cfg.Logging.Development)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := cfg
	bad.Server.Port = 0
	assert.ErrorContains(t, bad.Validate(), "server.port")

	bad = cfg
	bad.Browser.PoolSize = -1
	assert.ErrorContains(t, bad.Validate(), "pool_size")

	bad = cfg
	bad.Health.CronSpec = ""
	assert.ErrorContains(t, bad.Validate(), "cron_spec")
}
