// Package idempotency remembers the response to a request carrying an
// Idempotency-Key so a retried checkout replays it instead of creating a
// second order.
package idempotency

import (
	"context"
	"time"
)

// Response is the stored outcome of a request.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type Store interface {
	// Get returns the response saved under key, if any.
	Get(ctx context.Context, key string) (*Response, bool, error)
	// Save stores resp under key unless a response is already stored.
	Save(ctx context.Context, key string, resp Response, ttl time.Duration) error
	Close() error
}
