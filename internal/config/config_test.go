package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDR", "STORE_DRIVER", "STORE_DSN", "REDIS_URL", "KAFKA_BROKER",
		"RECONCILE_MODE", "OTEL_ENDPOINT", "OTEL_AUTH_HEADER", "MARKET_NAME", "IDEMPOTENCY_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_DSN", "file:pasar.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, ReconcileInline, cfg.ReconcileMode)
	assert.Equal(t, DefaultMarketName, cfg.MarketName)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.False(t, cfg.TelemetryEnabled())
	assert.False(t, cfg.EventsEnabled())
}

func TestLoadConfigRejectsInvalidCombinations(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing driver", map[string]string{}, "STORE_DRIVER"},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}, "unsupported STORE_DRIVER"},
		{"sqlite without dsn", map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DSN"},
		{"kafka mode without broker", map[string]string{"STORE_DRIVER": "memory", "RECONCILE_MODE": "kafka"}, "KAFKA_BROKER"},
		{"unknown mode", map[string]string{"STORE_DRIVER": "memory", "RECONCILE_MODE": "cron"}, "RECONCILE_MODE"},
		{"endpoint without auth", map[string]string{"STORE_DRIVER": "memory", "OTEL_ENDPOINT": "otlp.example.com"}, "OTEL_AUTH_HEADER"},
		{"bad ttl", map[string]string{"STORE_DRIVER": "memory", "IDEMPOTENCY_TTL": "tomorrow"}, "IDEMPOTENCY_TTL"},
		{"negative ttl", map[string]string{"STORE_DRIVER": "memory", "IDEMPOTENCY_TTL": "-1h"}, "IDEMPOTENCY_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigKafkaMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("RECONCILE_MODE", "kafka")
	t.Setenv("KAFKA_BROKER", "localhost:9092")
	t.Setenv("IDEMPOTENCY_TTL", "2h")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, 2*time.Hour, cfg.IdempotencyTTL)
}
