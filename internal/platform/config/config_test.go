package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Retention.AlertLeadDays)
	assert.Equal(t, 2, cfg.Retention.RunHourUTC)
	assert.Equal(t, 10, cfg.Containers.BoxCapacityDefault)
	assert.Equal(t, 200, cfg.Containers.FolderCapacityDefault)
	assert.Equal(t, 100, cfg.Containers.PackageCapacityDefault)
	assert.Equal(t, LockPostgres, cfg.Lock.Backend)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archivist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9090"
retention:
  alert_lead_days: 45
  run_hour_utc: 4
kafka:
  brokers: ["kafka-1:9092"]
  relay_interval: 5s
`), 0o600))

	t.Setenv("ARCHIVIST_RUN_HOUR_UTC", "6")
	t.Setenv("ARCHIVIST_KAFKA_BROKERS", "a:9092, b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 45, cfg.Retention.AlertLeadDays, "file overrides default")
	assert.Equal(t, 6, cfg.Retention.RunHourUTC, "env overrides file")
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Kafka.RelayInterval)
	assert.Equal(t, 500, cfg.Retention.BatchSize, "untouched default survives")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad integer", func(t *testing.T) {
		t.Setenv("ARCHIVIST_ALERT_LEAD_DAYS", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "ARCHIVIST_ALERT_LEAD_DAYS")
	})

	t.Run("run hour out of range", func(t *testing.T) {
		t.Setenv("ARCHIVIST_RUN_HOUR_UTC", "24")
		_, err := Load("")
		assert.ErrorContains(t, err, "run_hour_utc")
	})

	t.Run("redis lock without redis", func(t *testing.T) {
		t.Setenv("ARCHIVIST_LOCK_BACKEND", "redis")
		_, err := Load("")
		assert.ErrorContains(t, err, "redis.url")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
