package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/accounts"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/catalog"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/idempotency"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/orders"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/reports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	store   docstore.Store
}

// brokenQueryStore fails every collection scan, like a store that went away.
type brokenQueryStore struct {
	*docstore.MemoryStore
}

func (brokenQueryStore) Query(context.Context, docstore.Collection, ...docstore.Filter) ([]docstore.Record, error) {
	return nil, errors.New("connection reset by peer")
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerOver(t, docstore.NewMemoryStore())
}

func newTestServerOver(t *testing.T, store docstore.Store) *testServer {
	t.Helper()
	logger := zap.NewNop()
	tracer := noop.NewTracerProvider().Tracer("test")

	ctx := context.Background()
	users := map[string]domain.UserProfile{
		"a1": {Email: "admin@example.com", Role: domain.RoleAdmin, Name: "Admin", IsVerified: true},
		"s1": {Email: "sri@example.com", Role: domain.RoleSeller, Name: "Sri", StoreName: "Warung Sri", Phone: "6281111111111", IsVerified: true},
		"s2": {Email: "tono@example.com", Role: domain.RoleSeller, Name: "Tono", Phone: "6282222222222", IsVerified: true},
		"s3": {Email: "new@example.com", Role: domain.RoleSeller, Name: "Baru", Phone: "6283333333333"},
		"b1": {Email: "budi@example.com", Role: domain.RoleBuyer, Name: "Budi", IsVerified: true},
	}
	for id, u := range users {
		require.NoError(t, store.Put(ctx, docstore.Users, id, u))
	}

	status := orders.NewStatusService(store, nil, logger, tracer)
	confirm := orders.NewConfirmationService(store, logger, tracer, nil)
	svc := Services{
		Intake:         orders.NewIntakeService(store, nil, logger, tracer, nil, "Pasar Desa Kalikatir"),
		Flow:           orders.NewSellerFlow(status, confirm, true, logger),
		Status:         status,
		Cleanup:        orders.NewCleanupService(store, nil, logger, tracer, nil),
		Catalog:        catalog.NewService(store, logger),
		Accounts:       accounts.NewService(store, logger),
		Reports:        reports.NewService(store, logger),
		Idempotency:    idempotency.NewMemoryStore(),
		IdempotencyTTL: time.Hour,
	}
	return &testServer{handler: NewRouter(svc, logger), store: store}
}

func (s *testServer) do(t *testing.T, method, path, user string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(UserIDHeader, user)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func (s *testServer) addProduct(t *testing.T, seller, name string, price int64, stock int) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/products", seller, catalog.ProductInput{Name: name, Price: price, Stock: stock, Category: "Makanan"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(parse(t, rec).Data, &view))
	return view.ID
}

func (s *testServer) stock(t *testing.T, productID string) int {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/products/"+productID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Stock int `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(parse(t, rec).Data, &view))
	return view.Stock
}

func checkoutBody(items ...domain.OrderItem) orders.PlaceOrderRequest {
	return orders.PlaceOrderRequest{
		Customer: domain.Customer{Name: "Budi", Whatsapp: "081234567890"},
		Items:    items,
		Total:    domain.Order{Items: items}.ItemsTotal(),
	}
}

func TestHealth(t *testing.T) {
	rec := newTestServer(t).do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, parse(t, rec).Success)
}

func TestCheckoutConfirmFlow(t *testing.T) {
	s := newTestServer(t)
	gula := s.addProduct(t, "s1", "Gula Aren", 15000, 10)
	madu := s.addProduct(t, "s2", "Madu Hutan", 80000, 3)

	body := checkoutBody(
		domain.OrderItem{ProductID: gula, Name: "Gula Aren", Price: 15000, Quantity: 4, SellerName: "Warung Sri", SellerWhatsapp: "6281111111111"},
		domain.OrderItem{ProductID: madu, Name: "Madu Hutan", Price: 80000, Quantity: 1, SellerName: "Tono", SellerWhatsapp: "6282222222222"},
	)
	first := s.do(t, http.MethodPost, "/checkout", "", body, IdempotencyKeyHeader, "cart-42")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	var placed orders.PlaceOrderResult
	require.NoError(t, json.Unmarshal(parse(t, first).Data, &placed))
	require.Len(t, placed.SellerMessages, 2)
	assert.True(t, strings.HasPrefix(placed.SellerMessages[0].WhatsappURL, "https://api.whatsapp.com/send?phone=6281111111111&text=Halo%20Warung%20Sri"))

	replay := s.do(t, http.MethodPost, "/checkout", "", body, IdempotencyKeyHeader, "cart-42")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	stored, err := s.store.Query(context.Background(), docstore.Orders)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
	assert.Equal(t, 10, s.stock(t, gula))

	confirm := s.do(t, http.MethodPost, "/seller/orders/"+placed.OrderID+"/confirm", "s1", nil)
	require.Equal(t, http.StatusOK, confirm.Code, confirm.Body.String())
	var outcome orders.ConfirmOutcome
	require.NoError(t, json.Unmarshal(parse(t, confirm).Data, &outcome))
	assert.Empty(t, outcome.StockWarning)
	assert.Equal(t, 6, s.stock(t, gula))
	assert.Equal(t, 3, s.stock(t, madu))

	again := s.do(t, http.MethodPost, "/seller/orders/"+placed.OrderID+"/confirm", "s2", nil)
	assert.Equal(t, http.StatusConflict, again.Code)

	reconcile := s.do(t, http.MethodPost, "/orders/"+placed.OrderID+"/reconcile", "s2", nil)
	require.Equal(t, http.StatusOK, reconcile.Code, reconcile.Body.String())
	assert.Equal(t, 2, s.stock(t, madu))

	ship := s.do(t, http.MethodPost, "/orders/"+placed.OrderID+"/status", "s1", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusOK, ship.Code, ship.Body.String())
}

func TestCheckoutRejections(t *testing.T) {
	s := newTestServer(t)
	gula := s.addProduct(t, "s1", "Gula Aren", 15000, 2)

	short := s.do(t, http.MethodPost, "/checkout", "", checkoutBody(
		domain.OrderItem{ProductID: gula, Name: "Gula Aren", Price: 15000, Quantity: 3, SellerName: "Warung Sri", SellerWhatsapp: "6281111111111"},
	))
	assert.Equal(t, http.StatusBadRequest, short.Code)
	resp := parse(t, short)
	assert.False(t, resp.Success)
	assert.Equal(t, "insufficient stock for Gula Aren: available 2, requested 3", resp.Error)

	malformed := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, malformed)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, parse(t, rec).Error, "invalid JSON body")
}

func TestAccessGuards(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		want   int
	}{
		{"anonymous product write", http.MethodPost, "/products", "", http.StatusUnauthorized},
		{"buyer product write", http.MethodPost, "/products", "b1", http.StatusForbidden},
		{"unverified seller", http.MethodPost, "/seller/orders/o1/confirm", "s3", http.StatusForbidden},
		{"seller on admin route", http.MethodGet, "/admin/cleanup", "s1", http.StatusForbidden},
		{"anonymous status change", http.MethodPost, "/orders/o1/status", "", http.StatusUnauthorized},
		{"unknown order", http.MethodPost, "/seller/orders/missing/confirm", "s1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.user, map[string]any{})
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.False(t, parse(t, rec).Success)
		})
	}
}

func TestAdminCleanup(t *testing.T) {
	s := newTestServer(t)
	gula := s.addProduct(t, "s1", "Gula Aren", 15000, 10)
	keripik := s.addProduct(t, "s1", "Keripik", 5000, 10)

	for _, items := range [][]domain.OrderItem{
		{{ProductID: gula, Name: "Gula Aren", Price: 15000, Quantity: 1, SellerName: "Warung Sri", SellerWhatsapp: "6281111111111"}},
		{{ProductID: keripik, Name: "Keripik", Price: 5000, Quantity: 2, SellerName: "Warung Sri", SellerWhatsapp: "6281111111111"}},
	} {
		rec := s.do(t, http.MethodPost, "/checkout", "", checkoutBody(items...))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	del := s.do(t, http.MethodDelete, "/products/"+keripik, "a1", nil)
	require.Equal(t, http.StatusOK, del.Code, del.Body.String())

	scan := s.do(t, http.MethodGet, "/admin/cleanup", "a1", nil)
	require.Equal(t, http.StatusOK, scan.Code)
	var report orders.InvalidOrderReport
	require.NoError(t, json.Unmarshal(parse(t, scan).Data, &report))
	assert.Equal(t, orders.CleanupStats{TotalOrders: 2, InvalidOrders: 1, ValidOrders: 1, TotalItems: 2, InvalidItems: 1}, report.Stats)

	unconfirmed := s.do(t, http.MethodPost, "/admin/cleanup", "a1", map[string]bool{"confirm": false})
	assert.Equal(t, http.StatusBadRequest, unconfirmed.Code)

	purge := s.do(t, http.MethodPost, "/admin/cleanup", "a1", map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, purge.Code)
	var result orders.PurgeResult
	require.NoError(t, json.Unmarshal(parse(t, purge).Data, &result))
	assert.Equal(t, []string{report.Orders[0].OrderID}, result.Deleted)

	remaining, err := s.store.Query(context.Background(), docstore.Orders)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestAdminSellersAndReports(t *testing.T) {
	s := newTestServer(t)

	verify := s.do(t, http.MethodPost, "/admin/sellers/s3/verify", "a1", nil)
	require.Equal(t, http.StatusOK, verify.Code, verify.Body.String())
	product := s.do(t, http.MethodPost, "/products", "s3", catalog.ProductInput{Name: "Tempe", Price: 5000, Stock: 8})
	assert.Equal(t, http.StatusCreated, product.Code, product.Body.String())

	sellers := s.do(t, http.MethodGet, "/admin/sellers", "a1", nil)
	require.Equal(t, http.StatusOK, sellers.Code)
	var views []UserView
	require.NoError(t, json.Unmarshal(parse(t, sellers).Data, &views))
	assert.Len(t, views, 3)

	summary := s.do(t, http.MethodGet, "/admin/reports/summary", "a1", nil)
	assert.Equal(t, http.StatusOK, summary.Code)

	csvRec := s.do(t, http.MethodGet, "/admin/reports/orders.csv", "a1", nil)
	assert.Equal(t, http.StatusOK, csvRec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", csvRec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(csvRec.Body.String(), "Order ID,Customer,WhatsApp,Total,Status,Created,Item Count"))
}

func TestRegisterAndMe(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/accounts", "u-new", accounts.Registration{Email: "ani@example.com", Role: domain.RoleBuyer, Name: "Ani"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	me := s.do(t, http.MethodGet, "/accounts/me", "u-new", nil)
	require.Equal(t, http.StatusOK, me.Code)
	var view UserView
	require.NoError(t, json.Unmarshal(parse(t, me).Data, &view))
	assert.Equal(t, "u-new", view.ID)
	assert.True(t, view.IsVerified)
}

func TestStoreFailureMessageIsPassedThrough(t *testing.T) {
	s := newTestServerOver(t, brokenQueryStore{docstore.NewMemoryStore()})

	rec := s.do(t, http.MethodGet, "/products", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := parse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "list products: connection reset by peer", resp.Error)
}

func TestSellerConfirmThroughStatusRouteReconcilesStock(t *testing.T) {
	s := newTestServer(t)
	gula := s.addProduct(t, "s1", "Gula Aren", 15000, 10)

	placed := s.do(t, http.MethodPost, "/checkout", "", checkoutBody(
		domain.OrderItem{ProductID: gula, Name: "Gula Aren", Price: 15000, Quantity: 3, SellerName: "Warung Sri", SellerWhatsapp: "6281111111111"},
	))
	require.Equal(t, http.StatusCreated, placed.Code, placed.Body.String())
	var result orders.PlaceOrderResult
	require.NoError(t, json.Unmarshal(parse(t, placed).Data, &result))

	rec := s.do(t, http.MethodPost, "/orders/"+result.OrderID+"/status", "s1", map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var outcome orders.ConfirmOutcome
	require.NoError(t, json.Unmarshal(parse(t, rec).Data, &outcome))
	assert.Equal(t, domain.StatusConfirmed, outcome.Transition.To)
	assert.Equal(t, 7, s.stock(t, gula))
}

func TestCheckoutForgedSellerCannotManageOrder(t *testing.T) {
	s := newTestServer(t)
	madu := s.addProduct(t, "s2", "Madu Hutan", 80000, 5)

	forged := domain.OrderItem{ProductID: madu, Name: "Madu Hutan", Price: 80000, Quantity: 1, SellerID: "s1", SellerName: "Tono", SellerWhatsapp: "6282222222222"}
	placed := s.do(t, http.MethodPost, "/checkout", "", checkoutBody(forged))
	require.Equal(t, http.StatusCreated, placed.Code, placed.Body.String())
	var result orders.PlaceOrderResult
	require.NoError(t, json.Unmarshal(parse(t, placed).Data, &result))

	stranger := s.do(t, http.MethodPost, "/seller/orders/"+result.OrderID+"/reject", "s1", nil)
	assert.Equal(t, http.StatusForbidden, stranger.Code)

	owner := s.do(t, http.MethodPost, "/seller/orders/"+result.OrderID+"/confirm", "s2", nil)
	require.Equal(t, http.StatusOK, owner.Code, owner.Body.String())
	assert.Equal(t, 4, s.stock(t, madu))

	forged.SellerWhatsapp = "6282222222222&text=halo"
	injected := s.do(t, http.MethodPost, "/checkout", "", checkoutBody(forged))
	assert.Equal(t, http.StatusBadRequest, injected.Code)
}

func TestIdempotencyKeyIsScopedToCallerAndBody(t *testing.T) {
	s := newTestServer(t)
	gula := s.addProduct(t, "s1", "Gula Aren", 15000, 10)
	item := domain.OrderItem{ProductID: gula, Name: "Gula Aren", Price: 15000, Quantity: 1, SellerName: "Warung Sri", SellerWhatsapp: "6281111111111"}

	one := s.do(t, http.MethodPost, "/checkout", "", checkoutBody(item), IdempotencyKeyHeader, "cart-1")
	require.Equal(t, http.StatusCreated, one.Code, one.Body.String())

	item.Quantity = 2
	otherBody := s.do(t, http.MethodPost, "/checkout", "", checkoutBody(item), IdempotencyKeyHeader, "cart-1")
	require.Equal(t, http.StatusCreated, otherBody.Code, otherBody.Body.String())
	assert.Empty(t, otherBody.Header().Get("Idempotent-Replayed"))

	otherCaller := s.do(t, http.MethodPost, "/checkout", "b1", checkoutBody(item), IdempotencyKeyHeader, "cart-1")
	require.Equal(t, http.StatusCreated, otherCaller.Code, otherCaller.Body.String())
	assert.Empty(t, otherCaller.Header().Get("Idempotent-Replayed"))

	stored, err := s.store.Query(context.Background(), docstore.Orders)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}
