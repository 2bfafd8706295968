package config

import (
	"fmt"
	"os"
	"time"
)

const (
	ServiceName    = "pasar-kalikatir"
	ServiceVersion = "0.1.0"
)

const (
	OrderEventsTopic = "OrderEvents"
	GroupID          = "stock-reconciler-group"
	BatchTimeout     = 10 * time.Millisecond
	BatchSize        = 100
)

const (
	LogsPath       = "/otlp/v1/logs"    // Grafana Cloud OTLP path
	TracesPath     = "/otlp/v1/traces"  // Grafana Cloud OTLP path
	MetricsPath    = "/otlp/v1/metrics" // Grafana Cloud OTLP path
	ExportTimeout  = 30 * time.Second
	MaxQueueSize   = 2048
	MetricInterval = 15 * time.Second
)

const (
	DefaultHTTPAddr       = ":8080"
	DefaultMarketName     = "Pasar Desa Kalikatir"
	DefaultIdempotencyTTL = 24 * time.Hour
	ReadHeaderTimeout     = 10 * time.Second
	ShutdownTimeout       = 10 * time.Second
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Stock reconciliation modes. Inline runs seller confirmation in the request
// that confirmed the order; kafka defers it to the order event consumer.
const (
	ReconcileInline = "inline"
	ReconcileKafka  = "kafka"
)

type Config struct {
	HTTPAddr       string
	StoreDriver    string
	StoreDSN       string
	RedisURL       string
	KafkaBroker    string
	ReconcileMode  string
	OtelEndpoint   string
	OtelAuthHeader string
	MarketName     string
	IdempotencyTTL time.Duration
}

func LoadConfig() (*Config, error) {
	config := &Config{
		HTTPAddr:       getEnvOrDefault("HTTP_ADDR", DefaultHTTPAddr),
		StoreDriver:    os.Getenv("STORE_DRIVER"),
		StoreDSN:       os.Getenv("STORE_DSN"),
		RedisURL:       os.Getenv("REDIS_URL"),
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		ReconcileMode:  getEnvOrDefault("RECONCILE_MODE", ReconcileInline),
		OtelEndpoint:   os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader: os.Getenv("OTEL_AUTH_HEADER"),
		MarketName:     getEnvOrDefault("MARKET_NAME", DefaultMarketName),
		IdempotencyTTL: DefaultIdempotencyTTL,
	}

	if raw := os.Getenv("IDEMPOTENCY_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("IDEMPOTENCY_TTL is not a valid duration: %w", err)
		}
		config.IdempotencyTTL = ttl
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the cross-field rules of a loaded configuration.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "":
		return fmt.Errorf("STORE_DRIVER environment variable is required")
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("STORE_DSN environment variable is required for driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.ReconcileMode {
	case ReconcileInline:
	case ReconcileKafka:
		if c.KafkaBroker == "" {
			return fmt.Errorf("KAFKA_BROKER environment variable is required when RECONCILE_MODE=kafka")
		}
	default:
		return fmt.Errorf("unsupported RECONCILE_MODE %q", c.ReconcileMode)
	}

	if c.OtelEndpoint != "" && c.OtelAuthHeader == "" {
		return fmt.Errorf("OTEL_AUTH_HEADER environment variable is required when OTEL_ENDPOINT is set")
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be positive")
	}
	return nil
}

// TelemetryEnabled reports whether OTLP exporters should be installed.
func (c *Config) TelemetryEnabled() bool {
	return c.OtelEndpoint != ""
}

// EventsEnabled reports whether domain events are published to Kafka.
func (c *Config) EventsEnabled() bool {
	return c.KafkaBroker != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
