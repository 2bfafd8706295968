package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const testMarket = "Pasar Desa Kalikatir"

var (
	testLogger = zap.NewNop()
	testTracer = noop.NewTracerProvider().Tracer("test")
	fixedNow   = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func seedProduct(t *testing.T, store docstore.Store, name string, price int64, stock int, sellerID, sellerPhone string) domain.Product {
	t.Helper()
	p := domain.Product{
		Name:           name,
		Price:          price,
		Stock:          stock,
		Category:       "Makanan",
		IsActive:       true,
		SellerID:       sellerID,
		SellerName:     "Toko " + sellerID,
		SellerWhatsapp: sellerPhone,
		CreatedAt:      fixedNow,
		UpdatedAt:      fixedNow,
	}
	id, err := store.Insert(context.Background(), docstore.Products, p)
	require.NoError(t, err)
	p.ID = id
	return p
}

func itemOf(p domain.Product, qty int) domain.OrderItem {
	return domain.OrderItem{
		ProductID:      p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Quantity:       qty,
		SellerID:       p.SellerID,
		SellerName:     p.SellerName,
		SellerWhatsapp: p.SellerWhatsapp,
	}
}

func seedOrder(t *testing.T, store docstore.Store, status domain.Status, items ...domain.OrderItem) string {
	t.Helper()
	order := domain.Order{
		Customer:  domain.Customer{Name: "Budi", Whatsapp: "081234567890"},
		Items:     items,
		Status:    status,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	order.Total = order.ItemsTotal()
	id, err := store.Insert(context.Background(), docstore.Orders, order)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, store docstore.Store, productID string) int {
	t.Helper()
	p, err := loadProduct(context.Background(), store, productID)
	require.NoError(t, err)
	return p.Stock
}

func statusOf(t *testing.T, store docstore.Store, orderID string) domain.Status {
	t.Helper()
	o, err := loadOrder(context.Background(), store, orderID)
	require.NoError(t, err)
	return o.Status
}

func sellerIdentity(id string) domain.Identity {
	return domain.Identity{UserID: id, Role: domain.RoleSeller, Verified: true}
}

var adminIdentity = domain.Identity{UserID: "admin-1", Role: domain.RoleAdmin, Verified: true}
