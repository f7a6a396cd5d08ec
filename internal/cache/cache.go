// README: Get-or-compute cache layer over an external key-value store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Store is the external key-value store. Every call is a single atomic key operation.
type Store interface {
	// Get returns the raw value and whether a live entry exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key; the entry expires after ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Layer wraps a Store with JSON encoding and failure isolation. Concurrent misses
// on the same key are not collapsed: each caller computes and the last write wins.
type Layer struct {
	store Store
	log   *zap.Logger
}

func NewLayer(store Store, log *zap.Logger) *Layer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Layer{store: store, log: log}
}

// GetOrCompute returns the cached value for key, or runs compute, stores its
// result for ttl and returns it. The bool reports a cache hit. Errors from
// compute are returned unchanged and nothing is stored. Store failures are
// logged and degrade to a miss (on read) or an unstored value (on write).
func GetOrCompute[T any](ctx context.Context, l *Layer, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, bool, error) {
	if raw, ok := l.read(ctx, key); ok {
		var v T
		err := json.Unmarshal(raw, &v)
		if err == nil {
			return v, true, nil
		}
		l.log.Warn("cache entry undecodable, recomputing", zap.String("key", key), zap.Error(err))
	}

	v, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	if ttl <= 0 {
		return v, false, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		l.log.Warn("cache value not encodable", zap.String("key", key), zap.Error(err))
		return v, false, nil
	}
	if err := l.store.Set(ctx, key, raw, ttl); err != nil {
		l.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, false, nil
}

func (l *Layer) read(ctx context.Context, key string) ([]byte, bool) {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.log.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return raw, ok
}
