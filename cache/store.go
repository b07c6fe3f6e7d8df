package cache

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Load when no payload is stored.
	ErrNotFound = errors.New("cache entry not found")
	// ErrUnavailable wraps backend failures (I/O errors, Redis down).
	// Callers treat cache failures as non-fatal: the server session check
	// remains the authority.
	ErrUnavailable = errors.New("cache unavailable")
)

// Store persists the serialized current user across restarts. A Store holds
// at most one payload; Save overwrites, Clear removes.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
	Clear(ctx context.Context) error
}
