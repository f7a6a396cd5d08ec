// README: Config loader with env defaults for HTTP, cache, providers, tariffs and audit settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"haul/internal/cache"
)

const (
	ProviderOSRM   = "osrm"
	ProviderPhoton = "photon"
	ProviderGoogle = "google"

	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

type CacheConfig struct {
	Backend string
	Prefix  string
	TTL     cache.TTLPolicy
}

type RoutingConfig struct {
	Provider     string
	OSRMURL      string
	TruckProfile string
	Precision    int
	MaxWaypoints int
	Timeout      time.Duration
}

type GeocodingConfig struct {
	Provider  string
	PhotonURL string
	Language  string
}

type Config struct {
	Env  string
	HTTP struct {
		Addr string
	}
	DB struct {
		// DSN empty means built-in tariffs.
		DSN string
	}
	Redis struct {
		Addr string
	}
	Cache     CacheConfig
	Routing   RoutingConfig
	Geocoding GeocodingConfig
	Google    struct {
		MapsAPIKey string
	}
	Pricing struct {
		Currency string
	}
	Kafka struct {
		// Brokers empty disables the price audit.
		Brokers    []string
		AuditTopic string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.Env = envOrDefault("HAUL_ENV", "production")
	cfg.HTTP.Addr = envOrDefault("HAUL_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("HAUL_DB_DSN")
	cfg.Redis.Addr = envOrDefault("HAUL_REDIS_ADDR", "localhost:6379")

	cfg.Cache.Backend = strings.ToLower(envOrDefault("HAUL_CACHE_BACKEND", CacheBackendRedis))
	cfg.Cache.Prefix = envOrDefault("HAUL_CACHE_PREFIX", "haul:")
	defaults := cache.DefaultTTLPolicy()
	cfg.Cache.TTL.Route = envOrDefaultDuration("HAUL_CACHE_ROUTE_TTL", defaults.Route)
	cfg.Cache.TTL.Geocode = envOrDefaultDuration("HAUL_CACHE_GEOCODE_TTL", defaults.Geocode)

	cfg.Routing.Provider = strings.ToLower(envOrDefault("HAUL_ROUTING_PROVIDER", ProviderOSRM))
	cfg.Routing.OSRMURL = envOrDefault("HAUL_OSRM_URL", "https://router.project-osrm.org")
	cfg.Routing.TruckProfile = envOrDefault("HAUL_OSRM_TRUCK_PROFILE", "driving")
	cfg.Routing.Precision = envOrDefaultInt("HAUL_GEOMETRY_PRECISION", 5)
	cfg.Routing.MaxWaypoints = envOrDefaultInt("HAUL_MAX_WAYPOINTS", 25)
	cfg.Routing.Timeout = envOrDefaultDuration("HAUL_PROVIDER_TIMEOUT", 5*time.Second)

	cfg.Geocoding.Provider = strings.ToLower(envOrDefault("HAUL_GEOCODING_PROVIDER", ProviderPhoton))
	cfg.Geocoding.PhotonURL = envOrDefault("HAUL_PHOTON_URL", "https://photon.komoot.io")
	cfg.Geocoding.Language = envOrDefault("HAUL_GEOCODE_LANGUAGE", "fr")

	cfg.Google.MapsAPIKey = os.Getenv("HAUL_GOOGLE_MAPS_API_KEY")
	cfg.Pricing.Currency = envOrDefault("HAUL_CURRENCY", "TND")
	cfg.Kafka.Brokers = envList("HAUL_KAFKA_BROKERS")
	cfg.Kafka.AuditTopic = envOrDefault("HAUL_KAFKA_AUDIT_TOPIC", "haul.price.audit")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Cache.TTL.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendMemory:
	default:
		return fmt.Errorf("HAUL_CACHE_BACKEND must be redis or memory, got %q", c.Cache.Backend)
	}
	if c.Routing.Precision != 5 && c.Routing.Precision != 6 {
		return fmt.Errorf("HAUL_GEOMETRY_PRECISION must be 5 or 6, got %d", c.Routing.Precision)
	}
	if c.Routing.MaxWaypoints < 2 {
		return fmt.Errorf("HAUL_MAX_WAYPOINTS must be at least 2, got %d", c.Routing.MaxWaypoints)
	}
	if c.Routing.Timeout <= 0 {
		return fmt.Errorf("HAUL_PROVIDER_TIMEOUT must be positive, got %s", c.Routing.Timeout)
	}
	switch c.Routing.Provider {
	case ProviderOSRM:
	case ProviderGoogle:
		if c.Google.MapsAPIKey == "" {
			return fmt.Errorf("HAUL_GOOGLE_MAPS_API_KEY is required for the google routing provider")
		}
	default:
		return fmt.Errorf("HAUL_ROUTING_PROVIDER must be osrm or google, got %q", c.Routing.Provider)
	}
	switch c.Geocoding.Provider {
	case ProviderPhoton:
	case ProviderGoogle:
		if c.Google.MapsAPIKey == "" {
			return fmt.Errorf("HAUL_GOOGLE_MAPS_API_KEY is required for the google geocoding provider")
		}
	default:
		return fmt.Errorf("HAUL_GEOCODING_PROVIDER must be photon or google, got %q", c.Geocoding.Provider)
	}
	return nil
}

func (c Config) Development() bool {
	return c.Env == "development"
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
