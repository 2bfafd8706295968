package orders

import (
	"context"
	"errors"
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

// MinContactDigits is the shortest accepted customer contact handle.
const MinContactDigits = 10

type PlaceOrderRequest struct {
	Customer domain.Customer    `json:"customer"`
	Items    []domain.OrderItem `json:"items"`
	Total    int64              `json:"total"`
}

// SellerMessage is the prefilled chat link for one seller of an order.
type SellerMessage struct {
	SellerName     string `json:"sellerName"`
	SellerWhatsapp string `json:"sellerWhatsapp"`
	WhatsappURL    string `json:"whatsappUrl"`
	Message        string `json:"-"`
}

type PlaceOrderResult struct {
	OrderID        string          `json:"orderId"`
	SellerMessages []SellerMessage `json:"sellerMessages"`
}

// IntakeService records buyer checkouts as pending orders and prepares one
// chat message per seller. It never changes stock.
type IntakeService struct {
	store      docstore.Store
	publisher  EventPublisher
	logger     observability.Logger
	tracer     observability.Tracer
	metrics    instruments
	marketName string
	now        func() time.Time
}

func NewIntakeService(store docstore.Store, publisher EventPublisher, logger observability.Logger, tracer observability.Tracer, meter metric.Meter, marketName string) *IntakeService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &IntakeService{
		store:      store,
		publisher:  publisher,
		logger:     logger,
		tracer:     tracer,
		metrics:    newInstruments(meter),
		marketName: marketName,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder validates the checkout, pre-checks stock without reserving it,
// stores the order as pending and returns the per-seller chat links.
func (s *IntakeService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResult, error) {
	ctx, span := s.tracer.Start(ctx, "order_intake")
	defer span.End()

	span.SetAttributes(
		attribute.Int("order.item_count", len(req.Items)),
		attribute.Int64("order.total", req.Total),
	)

	fail := func(err error) (*PlaceOrderResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var validation *domain.ValidationError
		if errors.As(err, &validation) {
			s.metrics.intakeRejected.Add(ctx, 1)
			s.logger.Warn("🚫 Checkout rejected", zap.String("reason", err.Error()))
		} else {
			s.logger.Error("❌ Checkout failed", zap.Error(err))
		}
		return nil, err
	}

	if s.store == nil {
		return fail(domain.ErrStoreNotConfigured)
	}
	if err := validateRequest(req); err != nil {
		return fail(err)
	}

	items := make([]domain.OrderItem, len(req.Items))
	copy(items, req.Items)
	for i, item := range items {
		product, err := loadProduct(ctx, s.store, item.ProductID)
		if isNotFound(err) {
			return fail(domain.Validationf("product %s not found", item.Name))
		}
		if err != nil {
			return fail(err)
		}
		if product.Stock < item.Quantity {
			return fail(domain.Validationf("insufficient stock for %s: available %d, requested %d",
				item.Name, product.Stock, item.Quantity))
		}
		// the seller id always comes from the product, never the client
		items[i].SellerID = product.SellerID
	}

	now := s.now()
	order := domain.Order{
		Customer:  req.Customer,
		Items:     items,
		Total:     req.Total,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	orderID, err := s.store.Insert(ctx, docstore.Orders, order)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.String("order.id", orderID))

	groups := GroupBySeller(items)
	result := &PlaceOrderResult{OrderID: orderID, SellerMessages: make([]SellerMessage, 0, len(groups))}
	phones := make([]string, 0, len(groups))
	for _, group := range groups {
		text := ComposeSellerMessage(s.marketName, group, req.Customer)
		result.SellerMessages = append(result.SellerMessages, SellerMessage{
			SellerName:     group.SellerName,
			SellerWhatsapp: group.SellerWhatsapp,
			WhatsappURL:    ContactLink(group.SellerWhatsapp, text),
			Message:        text,
		})
		phones = append(phones, group.SellerWhatsapp)
	}

	event := newEvent(EventOrderPlaced, orderID, now)
	event.Placed = &OrderPlacedEvent{Total: req.Total, ItemCount: len(items), SellerPhones: phones}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("❌ Failed to publish order placed event", zap.Error(err), zap.String("order_id", orderID))
	}

	s.metrics.ordersPlaced.Add(ctx, 1)
	span.SetAttributes(attribute.Int("order.seller_count", len(groups)))
	span.SetStatus(codes.Ok, "Order recorded")
	s.logger.Info("🛒 Order placed",
		zap.String("order_id", orderID),
		zap.Int("items", len(items)),
		zap.Int("sellers", len(groups)),
	)
	return result, nil
}

func validateRequest(req PlaceOrderRequest) error {
	if strings.TrimSpace(req.Customer.Name) == "" {
		return domain.Validationf("customer name is required")
	}
	if len(req.Customer.Whatsapp) < MinContactDigits {
		return domain.Validationf("customer whatsapp must be at least %d digits", MinContactDigits)
	}
	if !isDigits(req.Customer.Whatsapp) {
		return domain.Validationf("customer whatsapp must contain digits only")
	}
	if len(req.Items) == 0 {
		return domain.Validationf("order must contain at least one item")
	}

	var sum int64
	for _, item := range req.Items {
		switch {
		case item.ProductID == "":
			return domain.Validationf("every item needs a product id")
		case item.Quantity <= 0:
			return domain.Validationf("quantity for %s must be positive", item.Name)
		case item.Price < 0:
			return domain.Validationf("price for %s must not be negative", item.Name)
		case item.SellerWhatsapp == "":
			return domain.Validationf("seller contact for %s is missing", item.Name)
		case !isDigits(item.SellerWhatsapp):
			return domain.Validationf("seller contact for %s must contain digits only", item.Name)
		}
		sum += item.Subtotal()
	}
	if sum != req.Total {
		return domain.Validationf("order total %d does not match item total %d", req.Total, sum)
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
