package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is the key-value contract used by services. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ErrMiss when the key does not exist.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Close() error
}

var ErrMiss = errors.New("cache: miss")
