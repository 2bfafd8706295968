package docstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	IsActive bool   `json:"isActive"`
	SellerID string `json:"sellerId"`
}

func backends(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "docs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func decode(t *testing.T, rec Record) testDoc {
	t.Helper()
	var doc testDoc
	require.NoError(t, json.Unmarshal(rec.Data, &doc))
	return doc
}

func TestStoreContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			id, err := store.Insert(ctx, Products, testDoc{Name: "Gula Aren", Stock: 5, IsActive: true, SellerID: "s1"})
			require.NoError(t, err)
			require.NotEmpty(t, id)

			rec, err := store.Get(ctx, Products, id)
			require.NoError(t, err)
			assert.Equal(t, id, rec.ID)
			assert.Equal(t, "Gula Aren", decode(t, rec).Name)

			_, err = store.Get(ctx, Orders, id)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Update(ctx, Products, id, map[string]any{"stock": 3}))
			rec, err = store.Get(ctx, Products, id)
			require.NoError(t, err)
			doc := decode(t, rec)
			assert.Equal(t, 3, doc.Stock)
			assert.Equal(t, "s1", doc.SellerID, "update keeps untouched fields")

			err = store.Update(ctx, Products, "missing", map[string]any{"stock": 1})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreQueryFiltersAndOrder(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first, err := store.Insert(ctx, Products, testDoc{Name: "Kopi", Stock: 10, IsActive: true, SellerID: "s1"})
			require.NoError(t, err)
			_, err = store.Insert(ctx, Products, testDoc{Name: "Teh", Stock: 0, IsActive: false, SellerID: "s1"})
			require.NoError(t, err)
			third, err := store.Insert(ctx, Products, testDoc{Name: "Madu", Stock: 10, IsActive: true, SellerID: "s2"})
			require.NoError(t, err)

			all, err := store.Query(ctx, Products)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, first, all[0].ID)
			assert.Equal(t, third, all[2].ID)

			active, err := store.Query(ctx, Products, Eq("isActive", true))
			require.NoError(t, err)
			require.Len(t, active, 2)
			assert.Equal(t, "Kopi", decode(t, active[0]).Name)
			assert.Equal(t, "Madu", decode(t, active[1]).Name)

			bySeller, err := store.Query(ctx, Products, Eq("isActive", true), Eq("sellerId", "s1"))
			require.NoError(t, err)
			require.Len(t, bySeller, 1)
			assert.Equal(t, first, bySeller[0].ID)

			byStock, err := store.Query(ctx, Products, Eq("stock", 10))
			require.NoError(t, err)
			assert.Len(t, byStock, 2)

			none, err := store.Query(ctx, Orders)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStorePutAndDeleteMany(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Put(ctx, Users, "u1", map[string]any{"email": "a@example.com"}))
			require.NoError(t, store.Put(ctx, Users, "u1", map[string]any{"email": "b@example.com"}))
			rec, err := store.Get(ctx, Users, "u1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"email":"b@example.com"}`, string(rec.Data))

			a, err := store.Insert(ctx, Orders, map[string]any{"status": "pending"})
			require.NoError(t, err)
			b, err := store.Insert(ctx, Orders, map[string]any{"status": "pending"})
			require.NoError(t, err)
			c, err := store.Insert(ctx, Orders, map[string]any{"status": "confirmed"})
			require.NoError(t, err)

			require.NoError(t, store.DeleteMany(ctx, Orders, []string{a, c, "never-existed"}))
			require.NoError(t, store.DeleteMany(ctx, Orders, nil))

			left, err := store.Query(ctx, Orders)
			require.NoError(t, err)
			require.Len(t, left, 1)
			assert.Equal(t, b, left[0].ID)
		})
	}
}

func TestSQLiteRejectsUnsafeFilterField(t *testing.T) {
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Query(context.Background(), Products, Eq("name') OR 1=1 --", "x"))
	assert.ErrorContains(t, err, "invalid filter field")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "")
	assert.ErrorContains(t, err, `unsupported store driver "mongo"`)

	store, err := Open(context.Background(), "memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}
