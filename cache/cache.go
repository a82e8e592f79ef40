// Package cache stores HTTP responses for the transport's cache policies.
package cache

import (
	"context"
	"net/http"
	"time"
)

// Entry is a stored response. An entry past ExpiresAt is stale but may still be
// served by policies that accept cached data regardless of age.
type Entry struct {
	StatusCode int         `json:"status_code"`
	Proto      string      `json:"proto,omitempty"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"stored_at"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Fresh reports whether the entry may be served without revalidation at now
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Cache is a response store keyed by request identity
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
}

// DefaultRetention is how long stale entries are kept around after they expire
const DefaultRetention = 24 * time.Hour
