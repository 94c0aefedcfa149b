// Package kv defines the string-keyed persistence capability the storefront
// core writes through, plus its in-memory and PostgreSQL implementations.
package kv

import "context"

// Store is a scoped read/write capability over string keys and values.
// Get reports presence via its second return value; a missing key is not
// an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// Ping reports whether the underlying medium is reachable. Used by
	// readiness checks.
	Ping(ctx context.Context) error
}
