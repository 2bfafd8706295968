package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type TransitionResult struct {
	OrderID string        `json:"orderId"`
	From    domain.Status `json:"from"`
	To      domain.Status `json:"to"`
}

// StatusService moves orders through the status machine on behalf of sellers
// and admins.
type StatusService struct {
	store     docstore.Store
	publisher EventPublisher
	logger    observability.Logger
	tracer    observability.Tracer
	now       func() time.Time
}

func NewStatusService(store docstore.Store, publisher EventPublisher, logger observability.Logger, tracer observability.Tracer) *StatusService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &StatusService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Transition moves orderID to status to. Admins may make any legal move; a
// verified seller may only move orders holding at least one of their items.
func (s *StatusService) Transition(ctx context.Context, orderID string, to domain.Status, actor domain.Identity) (*TransitionResult, error) {
	ctx, span := s.tracer.Start(ctx, "order_status_transition")
	defer span.End()

	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status_to", string(to)),
		attribute.String("actor.id", actor.UserID),
		attribute.String("actor.role", string(actor.Role)),
	)

	fail := func(err error) (*TransitionResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("🚫 Status transition refused",
			zap.Error(err),
			zap.String("order_id", orderID),
			zap.String("to", string(to)),
		)
		return nil, err
	}

	if s.store == nil {
		return fail(domain.ErrStoreNotConfigured)
	}
	if !to.Valid() {
		return fail(domain.Validationf("unknown status %q", to))
	}

	order, err := loadOrder(ctx, s.store, orderID)
	if err != nil {
		return fail(err)
	}
	if err := authorize(order, actor); err != nil {
		return fail(err)
	}
	if !order.Status.CanTransition(to) {
		return fail(&domain.ConflictError{Msg: fmt.Sprintf("order %s cannot move from %s to %s", orderID, order.Status, to)})
	}

	now := s.now()
	if err := s.store.Update(ctx, docstore.Orders, orderID, map[string]any{
		"status":    to,
		"updatedAt": now,
	}); err != nil {
		return fail(fmt.Errorf("update order %s: %w", orderID, err))
	}

	event := newEvent(EventOrderStatusChanged, orderID, now)
	event.StatusChanged = &StatusChangedEvent{From: order.Status, To: to, ActorID: actor.UserID, ActorRole: actor.Role}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("❌ Failed to publish status change", zap.Error(err), zap.String("order_id", orderID))
	}

	span.SetAttributes(attribute.String("order.status_from", string(order.Status)))
	span.SetStatus(codes.Ok, "Status updated")
	s.logger.Info("🔄 Order status changed",
		zap.String("order_id", orderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.UserID),
	)
	return &TransitionResult{OrderID: orderID, From: order.Status, To: to}, nil
}

// Delete removes a single order. Admin only.
func (s *StatusService) Delete(ctx context.Context, orderID string, actor domain.Identity) error {
	if s.store == nil {
		return domain.ErrStoreNotConfigured
	}
	if !actor.IsAdmin() {
		return &domain.ForbiddenError{Msg: "only admins can delete orders"}
	}
	if _, err := loadOrder(ctx, s.store, orderID); err != nil {
		return err
	}
	if err := s.store.DeleteMany(ctx, docstore.Orders, []string{orderID}); err != nil {
		return fmt.Errorf("delete order %s: %w", orderID, err)
	}
	s.logger.Info("🗑️ Order deleted", zap.String("order_id", orderID), zap.String("actor_id", actor.UserID))
	return nil
}

func authorize(order domain.Order, actor domain.Identity) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.IsVerifiedSeller():
		if !order.HasSeller(actor.UserID) {
			return &domain.ForbiddenError{Msg: "order " + order.ID + " has no items from this seller"}
		}
		return nil
	default:
		return &domain.ForbiddenError{Msg: "only verified sellers and admins can change order status"}
	}
}
