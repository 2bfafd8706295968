package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/kafka"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventTypeHeader carries Event.Type so consumers can filter without decoding.
const EventTypeHeader = "event-type"

// KafkaPublisher writes events to the order events topic keyed by order id.
type KafkaPublisher struct {
	producer kafka.Producer
	logger   observability.Logger
}

func NewKafkaPublisher(producer kafka.Producer, logger observability.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize %s event: %w", event.Type, err)
	}

	key := event.OrderID
	if key == "" {
		key = event.ID
	}
	msg := kafkago.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: []kafkago.Header{{Key: EventTypeHeader, Value: []byte(event.Type)}},
	}
	if err := p.producer.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	p.logger.Info("📤 Sent order event",
		zap.String("event_type", event.Type),
		zap.String("order_id", event.OrderID),
	)
	return nil
}
