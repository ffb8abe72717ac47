package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "localhost:9092", cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Kafka.TriggerTopic)
	assert.Equal(t, "notimaster-triggers", cfg.Kafka.TriggerGroup)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 3, cfg.Redis.MaxAttempts)
	assert.False(t, cfg.VAPID.Enabled())
	assert.False(t, cfg.Tracing.Enabled())
}

func TestParse_FromEnvironment(t *testing.T) {
	t.Setenv("SMTP_HOST", " smtp.example.com ")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_FROM", "noreply@example.com")
	t.Setenv("VAPID_PUBLIC_KEY", "pub")
	t.Setenv("VAPID_PRIVATE_KEY", "priv")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("REDIS_MAX_ATTEMPTS", "5")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")
	t.Setenv("WORKER_ID", "worker-7")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.True(t, cfg.VAPID.Enabled())
	assert.Equal(t, "k1:9092, ,k2:9092", cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.Redis.MaxAttempts)
	assert.True(t, cfg.Tracing.Enabled())
	assert.Equal(t, "worker-7", cfg.WorkerID)
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("SMTP_PORT", "70000")

	_, err := Parse()
	require.ErrorContains(t, err, "invalid config")

	t.Setenv("SMTP_PORT", "abc")

	_, err = Parse()
	require.ErrorContains(t, err, "parse config")
}
