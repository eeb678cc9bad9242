package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "0123456789abcdef0123")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 10*time.Second, cfg.Checker.Timeout)
	assert.Equal(t, int64(1<<20), cfg.Checker.MaxBodyBytes)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval())
	assert.Equal(t, []string{"endpoint_status_queue_1", "endpoint_status_queue_2"}, cfg.Queues.Names)
	assert.Equal(t, "endpoint_status_queue_1", cfg.Queues.PrimaryQueue())
	assert.Equal(t, "en", cfg.Mail.DefaultLocale)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: production
auth:
  secret: "a-very-long-signing-secret"
scheduler:
  interval_sec: 300
queues:
  names: ["primary", "secondary", "tertiary"]
checker:
  timeout: 2s
mail:
  transport: amqp
  default_locale: de
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.Interval())
	assert.Equal(t, []string{"primary", "secondary", "tertiary"}, cfg.Queues.Names)
	assert.Equal(t, 2*time.Second, cfg.Checker.Timeout)
	assert.Equal(t, "amqp", cfg.Mail.Transport)
	assert.Equal(t, "de", cfg.Mail.DefaultLocale)
}

func TestLoadConfig_RejectsUnsupportedInterval(t *testing.T) {
	path := writeConfig(t, `
auth:
  secret: "a-very-long-signing-secret"
scheduler:
  interval_sec: 120
`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IntervalSec")
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Secret")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
