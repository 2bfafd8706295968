package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Producer publishes a single message; the otelkafka writer injects the
// current span context into the message headers.
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// Consumer reads one message at a time from a consumer group.
type Consumer interface {
	ReadMessage(ctx context.Context) (*kafka.Message, error)
	Close() error
}
