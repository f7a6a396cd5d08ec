// README: Per-category TTL policy.
package cache

import (
	"fmt"
	"time"
)

// TTLPolicy holds expirations per cache category. Geocoding answers change
// slowly while routes follow live road conditions, so Geocode >= Route.
type TTLPolicy struct {
	Route   time.Duration
	Geocode time.Duration
}

func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{Route: 10 * time.Minute, Geocode: 24 * time.Hour}
}

func (p TTLPolicy) Validate() error {
	if p.Route <= 0 || p.Geocode <= 0 {
		return fmt.Errorf("cache ttl must be positive (route=%s geocode=%s)", p.Route, p.Geocode)
	}
	if p.Geocode < p.Route {
		return fmt.Errorf("geocode ttl %s must not be shorter than route ttl %s", p.Geocode, p.Route)
	}
	return nil
}
