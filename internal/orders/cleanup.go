package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// InvalidOrder is an order with at least one item whose product no longer exists.
type InvalidOrder struct {
	OrderID      string             `json:"orderId"`
	Customer     domain.Customer    `json:"customer"`
	Status       domain.Status      `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
	InvalidItems []domain.OrderItem `json:"invalidItems"`
	Reason       string             `json:"reason"`
}

type CleanupStats struct {
	TotalOrders   int `json:"totalOrders"`
	InvalidOrders int `json:"invalidOrders"`
	ValidOrders   int `json:"validOrders"`
	TotalItems    int `json:"totalItems"`
	InvalidItems  int `json:"invalidItems"`
}

type InvalidOrderReport struct {
	Orders []InvalidOrder `json:"orders"`
	Stats  CleanupStats   `json:"stats"`
}

type PurgeResult struct {
	Deleted []string     `json:"deleted"`
	Stats   CleanupStats `json:"stats"`
}

// CleanupService finds orders that reference deleted products and removes them.
type CleanupService struct {
	store     docstore.Store
	publisher EventPublisher
	logger    observability.Logger
	tracer    observability.Tracer
	metrics   instruments
	now       func() time.Time
}

func NewCleanupService(store docstore.Store, publisher EventPublisher, logger observability.Logger, tracer observability.Tracer, meter metric.Meter) *CleanupService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &CleanupService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		metrics:   newInstruments(meter),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Scan reports every order holding an item whose product id is not in the
// product collection. It writes nothing.
func (s *CleanupService) Scan(ctx context.Context) (*InvalidOrderReport, error) {
	ctx, span := s.tracer.Start(ctx, "invalid_order_scan")
	defer span.End()

	report, err := s.scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("❌ Invalid order scan failed", zap.Error(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("cleanup.total_orders", report.Stats.TotalOrders),
		attribute.Int("cleanup.invalid_orders", report.Stats.InvalidOrders),
	)
	span.SetStatus(codes.Ok, "Scan complete")
	s.logger.Info("🔍 Invalid order scan complete",
		zap.Int("total_orders", report.Stats.TotalOrders),
		zap.Int("invalid_orders", report.Stats.InvalidOrders),
	)
	return report, nil
}

func (s *CleanupService) scan(ctx context.Context) (*InvalidOrderReport, error) {
	if s.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}

	products, err := s.store.Query(ctx, docstore.Products)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	existing := make(map[string]struct{}, len(products))
	for _, p := range products {
		existing[p.ID] = struct{}{}
	}

	records, err := s.store.Query(ctx, docstore.Orders)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	report := &InvalidOrderReport{Orders: []InvalidOrder{}}
	for _, rec := range records {
		order, err := domain.DecodeOrder(rec.ID, rec.Data)
		if err != nil {
			return nil, err
		}

		report.Stats.TotalOrders++
		report.Stats.TotalItems += len(order.Items)

		var invalid []domain.OrderItem
		for _, item := range order.Items {
			if _, ok := existing[item.ProductID]; !ok {
				invalid = append(invalid, item)
			}
		}
		if len(invalid) == 0 {
			continue
		}

		names := make([]string, 0, len(invalid))
		for _, item := range invalid {
			names = append(names, item.Name)
		}
		report.Orders = append(report.Orders, InvalidOrder{
			OrderID:      order.ID,
			Customer:     order.Customer,
			Status:       order.Status,
			CreatedAt:    order.CreatedAt,
			InvalidItems: invalid,
			Reason:       "products not found: " + strings.Join(names, ", "),
		})
		report.Stats.InvalidItems += len(invalid)
	}

	report.Stats.InvalidOrders = len(report.Orders)
	report.Stats.ValidOrders = report.Stats.TotalOrders - report.Stats.InvalidOrders
	return report, nil
}

// Purge deletes every invalid order in one batch. confirmed must be true; the
// scan is re-run so only orders invalid at purge time are removed.
func (s *CleanupService) Purge(ctx context.Context, confirmed bool) (*PurgeResult, error) {
	ctx, span := s.tracer.Start(ctx, "invalid_order_purge")
	defer span.End()

	fail := func(err error) (*PurgeResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("❌ Invalid order purge failed", zap.Error(err))
		return nil, err
	}

	if !confirmed {
		return fail(domain.Validationf("purge must be explicitly confirmed"))
	}

	report, err := s.scan(ctx)
	if err != nil {
		return fail(err)
	}

	ids := make([]string, 0, len(report.Orders))
	for _, o := range report.Orders {
		ids = append(ids, o.OrderID)
	}
	result := &PurgeResult{Deleted: ids, Stats: report.Stats}
	if len(ids) == 0 {
		span.SetStatus(codes.Ok, "Nothing to purge")
		s.logger.Info("✅ No invalid orders to purge")
		return result, nil
	}

	if err := s.store.DeleteMany(ctx, docstore.Orders, ids); err != nil {
		return fail(fmt.Errorf("delete invalid orders: %w", err))
	}

	event := newEvent(EventOrdersPurged, "", s.now())
	event.Purged = &OrdersPurgedEvent{OrderIDs: ids}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("❌ Failed to publish purge event", zap.Error(err))
	}

	s.metrics.ordersPurged.Add(ctx, int64(len(ids)))
	span.SetAttributes(attribute.Int("cleanup.deleted_orders", len(ids)))
	span.SetStatus(codes.Ok, "Invalid orders purged")
	s.logger.Info("🧹 Invalid orders purged", zap.Int("deleted", len(ids)))
	return result, nil
}
