package cache

import (
	"context"
	"errors"
)

// based on github.com/kittpat1413/go-common/framework/cache/cache.go

var ErrCacheMiss = errors.New("cache miss")

// Cache is a read-through cache keyed by K. Lookups go through the
// configured loader on a miss; Invalidate drops a single entry, used
// when a calibration is promoted outside the running process.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (*V, error)
	Invalidate(ctx context.Context, key K)
}
