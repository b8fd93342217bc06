// Package storage provides the durable key-value surface that holds a
// client's signed-in session. Values are plain strings; callers own their
// encoding.
package storage

import "context"

// Store is the get/set/remove capability consumed by the session manager.
// Removing a key that does not exist is not an error.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*File)(nil)
	_ Store = (*Redis)(nil)
)
