package orders

import (
	"context"
	"testing"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/platform/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cleanupFixture struct {
	store    *docstore.MemoryStore
	valid    string
	partial  string
	orphaned string
}

func newCleanupFixture(t *testing.T) cleanupFixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	gula := seedProduct(t, store, "Gula Aren", 15000, 10, "s1", "6281111111111")
	keripik := domain.Product{ID: "gone-1", Name: "Keripik", Price: 5000, SellerID: "s1", SellerName: "Toko s1", SellerWhatsapp: "6281111111111"}
	rengginang := domain.Product{ID: "gone-2", Name: "Rengginang", Price: 7000, SellerID: "s2", SellerName: "Toko s2", SellerWhatsapp: "6282222222222"}

	return cleanupFixture{
		store:    store,
		valid:    seedOrder(t, store, domain.StatusPending, itemOf(gula, 1)),
		partial:  seedOrder(t, store, domain.StatusConfirmed, itemOf(gula, 2), itemOf(keripik, 1)),
		orphaned: seedOrder(t, store, domain.StatusPending, itemOf(keripik, 1), itemOf(rengginang, 3)),
	}
}

func TestScanReportsOrdersWithDeletedProducts(t *testing.T) {
	f := newCleanupFixture(t)
	svc := NewCleanupService(f.store, nil, testLogger, testTracer, nil)

	report, err := svc.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, CleanupStats{TotalOrders: 3, InvalidOrders: 2, ValidOrders: 1, TotalItems: 5, InvalidItems: 3}, report.Stats)
	require.Len(t, report.Orders, 2)

	assert.Equal(t, f.partial, report.Orders[0].OrderID)
	assert.Equal(t, "products not found: Keripik", report.Orders[0].Reason)
	require.Len(t, report.Orders[0].InvalidItems, 1)
	assert.Equal(t, "gone-1", report.Orders[0].InvalidItems[0].ProductID)

	assert.Equal(t, f.orphaned, report.Orders[1].OrderID)
	assert.Equal(t, "products not found: Keripik, Rengginang", report.Orders[1].Reason)
	assert.Equal(t, "Budi", report.Orders[1].Customer.Name)

	remaining, err := f.store.Query(context.Background(), docstore.Orders)
	require.NoError(t, err)
	assert.Len(t, remaining, 3, "scan writes nothing")
}

func TestPurgeRequiresConfirmation(t *testing.T) {
	f := newCleanupFixture(t)
	svc := NewCleanupService(f.store, nil, testLogger, testTracer, nil)

	_, err := svc.Purge(context.Background(), false)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	remaining, err := f.store.Query(context.Background(), docstore.Orders)
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}

func TestPurgeDeletesExactlyTheFlaggedOrders(t *testing.T) {
	f := newCleanupFixture(t)
	pub := &recordingPublisher{}
	svc := NewCleanupService(f.store, pub, testLogger, testTracer, nil)

	result, err := svc.Purge(context.Background(), true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.partial, f.orphaned}, result.Deleted)
	assert.Equal(t, 2, result.Stats.InvalidOrders)

	remaining, err := f.store.Query(context.Background(), docstore.Orders)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, f.valid, remaining[0].ID)

	report, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Orders)

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventOrdersPurged, events[0].Type)
	assert.ElementsMatch(t, result.Deleted, events[0].Purged.OrderIDs)

	again, err := svc.Purge(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, again.Deleted)
	assert.Len(t, pub.Events(), 1)
}

func TestScanFailsOnMalformedOrder(t *testing.T) {
	store := docstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), docstore.Orders, "broken", map[string]any{"status": "pending"}))

	_, err := NewCleanupService(store, nil, testLogger, testTracer, nil).Scan(context.Background())
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "broken", decodeErr.ID)
}
