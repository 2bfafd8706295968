package orders

import (
	"context"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrdersPurged       = "orders.purged"
)

// Event is the envelope published on the order events topic. Exactly one
// payload field is set, matching Type.
type Event struct {
	ID            string              `json:"id"`
	Type          string              `json:"type"`
	OrderID       string              `json:"order_id,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
	Placed        *OrderPlacedEvent   `json:"placed,omitempty"`
	StatusChanged *StatusChangedEvent `json:"status_changed,omitempty"`
	Purged        *OrdersPurgedEvent  `json:"purged,omitempty"`
}

type OrderPlacedEvent struct {
	Total        int64    `json:"total"`
	ItemCount    int      `json:"item_count"`
	SellerPhones []string `json:"seller_phones"`
}

type StatusChangedEvent struct {
	From      domain.Status `json:"from"`
	To        domain.Status `json:"to"`
	ActorID   string        `json:"actor_id"`
	ActorRole domain.Role   `json:"actor_role"`
}

type OrdersPurgedEvent struct {
	OrderIDs []string `json:"order_ids"`
}

func newEvent(eventType, orderID string, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: now,
	}
}

// EventPublisher delivers domain events. Publishing is best effort: callers log
// a failure and keep the already committed store write.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
