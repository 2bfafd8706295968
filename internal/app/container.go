package app

import (
	"context"
	"fmt"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/config"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/idempotency"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/kafka"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Container holds expensive-to-create singleton resources and dependencies
type Container struct {
	config          *config.Config
	logger          observability.Logger
	tracer          observability.Tracer
	meter           metric.Meter
	store           docstore.Store
	idempotency     idempotency.Store
	messageConsumer kafka.Consumer
	messageProducer kafka.Producer
	otelShutdown    observability.ShutdownFunc
}

// NewContainer creates and initializes all infrastructure components
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	container := &Container{
		config: cfg,
	}

	if err := container.setupLogger(); err != nil {
		return nil, err
	}

	container.setupObservability(ctx)

	if err := container.setupStorage(ctx); err != nil {
		container.Shutdown(ctx)
		return nil, err
	}

	if err := container.setupKafka(); err != nil {
		container.Shutdown(ctx)
		return nil, err
	}

	return container, nil
}

// setupLogger starts with a plain production logger until the OTel bridge exists
func (c *Container) setupLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}

	c.logger = logger
	return nil
}

// setupObservability configures OpenTelemetry logging, tracing and metrics.
// Without an endpoint the global no-op providers stay in place.
func (c *Container) setupObservability(ctx context.Context) {
	observability.SetupPropagation()

	if c.config.TelemetryEnabled() {
		otelLogShutdown, err := observability.SetupLoggingSDK(ctx, c.config)
		if err != nil {
			c.logger.Error("Failed to setup OpenTelemetry logging", zap.Error(err))
		}

		_, otelTraceShutdown, err := observability.SetupTracingSDK(ctx, c.config)
		if err != nil {
			c.logger.Error("Failed to setup OpenTelemetry tracing", zap.Error(err))
		}

		otelMetricShutdown, err := observability.SetupMetricsSDK(ctx, c.config)
		if err != nil {
			c.logger.Error("Failed to setup OpenTelemetry metrics", zap.Error(err))
		}

		c.otelShutdown = observability.JoinShutdown(otelLogShutdown, otelTraceShutdown, otelMetricShutdown)
	} else {
		c.logger.Info("OTEL_ENDPOINT not set, telemetry export disabled")
	}

	c.logger = observability.NewLogger()
	c.logger.Info("Logger re-initialized with OpenTelemetry bridge")

	c.tracer = otel.Tracer(config.ServiceName)
	c.meter = otel.Meter(config.ServiceName)
}

func (c *Container) setupStorage(ctx context.Context) error {
	store, err := docstore.Open(ctx, c.config.StoreDriver, c.config.StoreDSN)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	c.store = store
	c.logger.Info("📦 Document store ready", zap.String("driver", c.config.StoreDriver))

	if c.config.RedisURL == "" {
		c.idempotency = idempotency.NewMemoryStore()
		return nil
	}
	redisStore, err := idempotency.NewRedisStore(ctx, c.config.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.idempotency = redisStore
	c.logger.Info("🔑 Redis idempotency store ready")
	return nil
}

// setupKafka creates the event producer when a broker is configured, and the
// consumer only when stock reconciliation is deferred to it.
func (c *Container) setupKafka() error {
	if !c.config.EventsEnabled() {
		return nil
	}

	producer, err := kafka.NewProducer(c.config.KafkaBroker, otel.GetTracerProvider())
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	c.messageProducer = producer

	if c.config.ReconcileMode != config.ReconcileKafka {
		return nil
	}
	consumer, err := kafka.NewConsumer(c.config.KafkaBroker)
	if err != nil {
		return fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	c.messageConsumer = consumer
	return nil
}

// Shutdown gracefully shuts down all infrastructure components
func (c *Container) Shutdown(ctx context.Context) {
	c.logger.Info("Shutting down infrastructure...")

	if c.messageConsumer != nil {
		if err := c.messageConsumer.Close(); err != nil {
			c.logger.Error("Failed to close message consumer", zap.Error(err))
		}
	}

	if c.messageProducer != nil {
		if err := c.messageProducer.Close(); err != nil {
			c.logger.Error("Failed to close message producer", zap.Error(err))
		}
	}

	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Error("Failed to close document store", zap.Error(err))
		}
	}

	if c.idempotency != nil {
		if err := c.idempotency.Close(); err != nil {
			c.logger.Error("Failed to close idempotency store", zap.Error(err))
		}
	}

	if c.otelShutdown != nil {
		if err := c.otelShutdown(ctx); err != nil {
			c.logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
		}
	}

	c.logger.Info("Infrastructure shutdown complete")

	if err := c.logger.Sync(); err != nil {
		// Can't log this error since logger might be closed
		fmt.Printf("Failed to sync logger: %v\n", err)
	}
}

// Getters for accessing infrastructure components
func (c *Container) Config() *config.Config          { return c.config }
func (c *Container) Logger() observability.Logger    { return c.logger }
func (c *Container) Tracer() observability.Tracer    { return c.tracer }
func (c *Container) Meter() metric.Meter             { return c.meter }
func (c *Container) Store() docstore.Store           { return c.store }
func (c *Container) Idempotency() idempotency.Store  { return c.idempotency }
func (c *Container) MessageConsumer() kafka.Consumer { return c.messageConsumer }
func (c *Container) MessageProducer() kafka.Producer { return c.messageProducer }
