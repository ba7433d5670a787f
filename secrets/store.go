package secrets

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("secret not found")

// Store is an opaque key to string store. Implementations: in-memory for
// tests, postgres for the daemon, and the ecies wrapper in encrypted.go.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}
