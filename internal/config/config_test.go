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

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, NotifyDriverLog, cfg.Notify.Driver)
	assert.Equal(t, 100*time.Millisecond, cfg.Notify.Interval)
	assert.True(t, cfg.Ledger.SeedDemo)
	assert.Equal(t, int64(1), cfg.Ledger.WorkerID)
	assert.Equal(t, 3, cfg.Business.MaxRetryCount)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
log:
  level: debug
  format: text
ledger:
  seed_demo: false
notify:
  driver: kafka
  interval: 250ms
  kafka:
    brokers: ["k1:9092", "k2:9092"]
    topic: ledger.events
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Ledger.SeedDemo)
	assert.Equal(t, NotifyDriverKafka, cfg.Notify.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Notify.Interval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.Kafka.Brokers)
	assert.Equal(t, "ledger.events", cfg.Notify.Kafka.Topic)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BANK_SERVER_PORT", "7070")
	t.Setenv("BANK_NOTIFY_DRIVER", "none")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, NotifyDriverNone, cfg.Notify.Driver)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "notify:\n  driver: carrier-pigeon\n"))
	assert.EqualError(t, err, `unknown notify.driver "carrier-pigeon"`)

	_, err = LoadConfig(writeConfig(t, "server:\n  port: 0\n"))
	assert.Error(t, err)
}

func TestRepositoryConfigFileLoads(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "bank.notifications", cfg.Notify.Redis.Channel)
}

func TestLoadConfigRejectsNegativeKeepSent(t *testing.T) {
	t.Setenv("BANK_NOTIFY_KEEP_SENT", "-1")

	_, err := LoadConfig("")
	assert.EqualError(t, err, "notify.keep_sent must not be negative: -1")
}

func TestLoadConfigDatabaseDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
	assert.Equal(t, "warn", cfg.Database.LogLevel)
}
