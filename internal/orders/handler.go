package orders

import (
	"context"
	"encoding/json"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// MessageHandler processes one message from the order events topic.
type MessageHandler interface {
	HandleOrderEvent(ctx context.Context, msg kafkago.Message) error
}

// Reconciler is the stock step run when a seller confirms an order.
type Reconciler interface {
	ConfirmForSeller(ctx context.Context, orderID, sellerID string) (*ConfirmationResult, error)
}

// KafkaMessageHandler reconciles stock when an order is confirmed by a seller.
// Other events are acknowledged and ignored.
type KafkaMessageHandler struct {
	reconciler Reconciler
	logger     observability.Logger
}

func NewMessageHandler(reconciler Reconciler, logger observability.Logger) MessageHandler {
	return &KafkaMessageHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

func (h *KafkaMessageHandler) HandleOrderEvent(ctx context.Context, msg kafkago.Message) error {
	// Extract trace context to connect spans across services
	msgCtx := h.extractTraceContext(ctx, msg.Headers)

	h.logger.Info("📨 Raw Kafka message received",
		zap.ByteString("key", msg.Key),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("❌ Invalid JSON in order event",
			zap.Error(err),
			zap.ByteString("raw_value", msg.Value),
		)
		return err
	}

	if event.Type != EventOrderStatusChanged || event.StatusChanged == nil {
		return nil
	}
	change := event.StatusChanged
	if change.To != domain.StatusConfirmed || change.ActorRole != domain.RoleSeller {
		return nil
	}

	result, err := h.reconciler.ConfirmForSeller(msgCtx, event.OrderID, change.ActorID)
	if err != nil {
		h.logger.Error("❌ Failed to reconcile stock",
			zap.Error(err),
			zap.String("order_id", event.OrderID),
			zap.String("seller_id", change.ActorID),
		)
		return err
	}

	h.logger.Info("✅ Stock reconciled",
		zap.String("order_id", event.OrderID),
		zap.String("seller_id", change.ActorID),
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return nil
}

// extractTraceContext extracts OpenTelemetry trace context from Kafka message headers
func (h *KafkaMessageHandler) extractTraceContext(ctx context.Context, headers []kafkago.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, header := range headers {
		carrier[header.Key] = string(header.Value)
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}
