// README: Redis client initialization for the shared geospatial cache.
package infra

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis returns a client with short timeouts; cache calls degrade to misses on failure.
func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}
