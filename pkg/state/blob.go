package state

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Blob.Read when no document exists under the
// key. A fresh deployment starts from an empty document.
var ErrNotFound = errors.New("state document not found")

// Blob persists the state document as a single opaque byte blob. Writes
// must be atomic: a reader never observes a partially written document.
type Blob interface {
	// Read returns the document stored under key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores the document under key, replacing any previous version.
	Write(ctx context.Context, key string, data []byte) error
}
