package orders

import (
	"context"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

type SkipReason string

const (
	SkipProductMissing SkipReason = "product_missing"
	SkipOtherSeller    SkipReason = "other_seller"
)

// StockChange is one decrement that was written.
type StockChange struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	StockBefore int    `json:"stockBefore"`
	StockAfter  int    `json:"stockAfter"`
}

type SkippedItem struct {
	ProductID string     `json:"productId"`
	Name      string     `json:"name"`
	Reason    SkipReason `json:"reason"`
}

// ConfirmationResult reports what a seller confirmation did. On failure it
// still lists the decrements applied before the failing item, since those
// writes are not rolled back.
type ConfirmationResult struct {
	OrderID  string        `json:"orderId"`
	SellerID string        `json:"sellerId"`
	Applied  []StockChange `json:"applied"`
	Skipped  []SkippedItem `json:"skipped"`
}

// ConfirmationService applies the stock decrement for the items of a confirmed
// order that belong to one seller.
type ConfirmationService struct {
	store   docstore.Store
	logger  observability.Logger
	tracer  observability.Tracer
	metrics instruments
	now     func() time.Time
}

func NewConfirmationService(store docstore.Store, logger observability.Logger, tracer observability.Tracer, meter metric.Meter) *ConfirmationService {
	return &ConfirmationService{
		store:   store,
		logger:  logger,
		tracer:  tracer,
		metrics: newInstruments(meter),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ConfirmForSeller decrements stock for every item of orderID whose product
// belongs to sellerID. The order must already be confirmed. Items whose product
// is gone or belongs to another seller are skipped. The first item with too
// little stock stops the run; earlier decrements stay written.
//
// Each decrement is a read followed by a write with no compare-and-set, so two
// concurrent runs can both pass the stock check. Calling twice decrements twice.
func (s *ConfirmationService) ConfirmForSeller(ctx context.Context, orderID, sellerID string) (*ConfirmationResult, error) {
	ctx, span := s.tracer.Start(ctx, "seller_confirmation")
	defer span.End()

	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("seller.id", sellerID),
	)

	result := &ConfirmationResult{OrderID: orderID, SellerID: sellerID}
	fail := func(err error) (*ConfirmationResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("❌ Seller confirmation failed",
			zap.Error(err),
			zap.String("order_id", orderID),
			zap.String("seller_id", sellerID),
			zap.Int("applied", len(result.Applied)),
		)
		return result, err
	}

	if s.store == nil {
		return fail(domain.ErrStoreNotConfigured)
	}

	order, err := loadOrder(ctx, s.store, orderID)
	if err != nil {
		return fail(err)
	}
	if order.Status != domain.StatusConfirmed {
		return fail(&domain.ConflictError{Msg: "order " + orderID + " is " + string(order.Status) + ", stock is only reconciled for confirmed orders"})
	}

	for _, item := range order.Items {
		product, err := loadProduct(ctx, s.store, item.ProductID)
		if isNotFound(err) {
			s.logger.Warn("⚠️ Product missing during confirmation, skipping item",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
			)
			result.Skipped = append(result.Skipped, SkippedItem{ProductID: item.ProductID, Name: item.Name, Reason: SkipProductMissing})
			continue
		}
		if err != nil {
			return fail(err)
		}
		if product.SellerID != sellerID {
			result.Skipped = append(result.Skipped, SkippedItem{ProductID: item.ProductID, Name: item.Name, Reason: SkipOtherSeller})
			continue
		}
		if product.Stock < item.Quantity {
			return fail(domain.Validationf("insufficient stock for %s: available %d, requested %d",
				product.Name, product.Stock, item.Quantity))
		}

		after := product.Stock - item.Quantity
		if err := s.store.Update(ctx, docstore.Products, product.ID, map[string]any{
			"stock":     after,
			"updatedAt": s.now(),
		}); err != nil {
			return fail(err)
		}

		result.Applied = append(result.Applied, StockChange{
			ProductID:   product.ID,
			Name:        product.Name,
			Quantity:    item.Quantity,
			StockBefore: product.Stock,
			StockAfter:  after,
		})
		s.metrics.unitsDecremented.Add(ctx, int64(item.Quantity))
		s.logger.Info("📦 Stock decremented",
			zap.String("order_id", orderID),
			zap.String("product_id", product.ID),
			zap.Int("quantity", item.Quantity),
			zap.Int("stock", after),
		)
	}

	span.SetAttributes(
		attribute.Int("stock.applied_items", len(result.Applied)),
		attribute.Int("stock.skipped_items", len(result.Skipped)),
	)
	span.SetStatus(codes.Ok, "Stock reconciled for seller")
	return result, nil
}
