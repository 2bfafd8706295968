// Package docstore is a small document database abstraction: JSON documents
// grouped in collections, addressed by id, with equality filters on top-level
// fields and a batched multi-delete.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type Collection string

const (
	Products Collection = "products"
	Orders   Collection = "orders"
	Users    Collection = "users"
)

var ErrNotFound = errors.New("document not found")

// Record is a stored document with its id. Data never contains the id.
type Record struct {
	ID   string
	Data json.RawMessage
}

// Filter matches documents whose top-level Field equals Value.
type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

type Store interface {
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, coll Collection, id string) (Record, error)
	// Query returns matching documents in insertion order.
	Query(ctx context.Context, coll Collection, filters ...Filter) ([]Record, error)
	// Insert stores doc under a generated id and returns it.
	Insert(ctx context.Context, coll Collection, doc any) (string, error)
	// Put creates or replaces the document stored under id.
	Put(ctx context.Context, coll Collection, id string, doc any) error
	// Update merges fields into the top level of an existing document.
	Update(ctx context.Context, coll Collection, id string, fields map[string]any) error
	// DeleteMany removes every listed document in one batch. Missing ids are ignored.
	DeleteMany(ctx context.Context, coll Collection, ids []string) error
	Close() error
}

// Open creates a store for the given driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return OpenSQLite(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func encode(doc any) ([]byte, error) {
	switch v := doc.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// merge overlays fields onto the top level of a JSON object.
func merge(data []byte, fields map[string]any) ([]byte, error) {
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %s: %w", k, err)
		}
		obj[k] = raw
	}
	return json.Marshal(obj)
}
