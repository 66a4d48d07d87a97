// Package store holds the raw bytes of uploaded design files under flat keys
// produced by a category codec.
//
// Stores do no locking of their own; the catalog serializes writers.
package store

import (
	"context"
)

// Store is a flat key to bytes mapping.
type Store interface {
	// Put writes data under key, replacing any previous content.
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the bytes under key or an errors.NotFoundError.
	Get(ctx context.Context, key string) ([]byte, error)

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// List returns every key in lexical order.
	List(ctx context.Context) ([]string, error)
}

// Sizer is implemented by stores that can report an object's size without
// reading it.
type Sizer interface {
	Size(ctx context.Context, key string) (int64, error)
}

// Closer is implemented by stores holding a network connection.
type Closer interface {
	Close() error
}
