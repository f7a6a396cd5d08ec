// README: Entry point; loads config, wires cache, providers and services, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"haul/internal/audit"
	"haul/internal/cache"
	"haul/internal/config"
	httptransport "haul/internal/http"
	"haul/internal/infra"
	"haul/internal/maps"
	"haul/internal/modules/geocoding"
	"haul/internal/modules/pricing"
	"haul/internal/modules/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Development())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store cache.Store
	switch cfg.Cache.Backend {
	case config.CacheBackendMemory:
		store = cache.NewMemoryStore()
	default:
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable at startup, cache reads will miss", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		store = cache.NewRedisStore(redisClient)
	}
	layer := cache.NewLayer(store, logger.Named("cache"))

	router, err := newRouter(cfg)
	if err != nil {
		logger.Fatal("routing provider init", zap.Error(err))
	}
	geocoder, err := newGeocoder(cfg)
	if err != nil {
		logger.Fatal("geocoding provider init", zap.Error(err))
	}

	routeSvc := routing.NewService(router, layer, routing.Config{
		Namespace:       cfg.Cache.Prefix,
		TTL:             cfg.Cache.TTL.Route,
		ProviderTimeout: cfg.Routing.Timeout,
		MaxWaypoints:    cfg.Routing.MaxWaypoints,
		Precision:       cfg.Routing.Precision,
	}, logger.Named("routing"))

	geocodeSvc := geocoding.NewService(geocoder, layer, geocoding.Config{
		Namespace:       cfg.Cache.Prefix,
		TTL:             cfg.Cache.TTL.Geocode,
		ProviderTimeout: cfg.Routing.Timeout,
		Language:        cfg.Geocoding.Language,
	}, logger.Named("geocoding"))

	var tariffs pricing.TariffSource
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Fatal("postgres init", zap.Error(err))
		}
		defer dbPool.Close()
		tariffs = pricing.NewStore(dbPool)
	} else {
		pricingCfg := pricing.DefaultConfig()
		pricingCfg.Currency = cfg.Pricing.Currency
		tariffs = pricing.NewStaticSource(pricing.DefaultTariffs(), pricingCfg)
		logger.Info("HAUL_DB_DSN not set, using built-in tariffs")
	}

	var recorder audit.Recorder = audit.NopRecorder{}
	if len(cfg.Kafka.Brokers) > 0 {
		kr := audit.NewKafkaRecorder(infra.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic), logger.Named("audit"))
		defer func() { _ = kr.Close() }()
		recorder = kr
	}

	pricingSvc := pricing.NewService(routeSvc, tariffs, recorder, logger.Named("pricing"))

	handler := httptransport.NewRouter(httptransport.ServerDeps{
		Routes:    routeSvc,
		Geocoding: geocodeSvc,
		Pricing:   pricingSvc,
		Precision: cfg.Routing.Precision,
		Logger:    logger.Named("http"),
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", zap.Error(err))
		}
	}()

	logger.Info("haul-api listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("routing", cfg.Routing.Provider),
		zap.String("geocoding", cfg.Geocoding.Provider),
		zap.String("cache", cfg.Cache.Backend),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server", zap.Error(err))
	}
}

func newRouter(cfg config.Config) (maps.Router, error) {
	if cfg.Routing.Provider == config.ProviderGoogle {
		g, err := maps.NewGoogleDirections(cfg.Google.MapsAPIKey, cfg.Routing.Precision, cfg.Geocoding.Language)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return maps.NewOSRMClient(maps.OSRMConfig{
		BaseURL:   cfg.Routing.OSRMURL,
		Profiles:  map[string]string{maps.ProfileTruck: cfg.Routing.TruckProfile},
		Precision: cfg.Routing.Precision,
	}), nil
}

func newGeocoder(cfg config.Config) (maps.Geocoder, error) {
	if cfg.Geocoding.Provider == config.ProviderGoogle {
		g, err := maps.NewGooglePlaces(cfg.Google.MapsAPIKey, cfg.Geocoding.Language)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return maps.NewPhotonClient(maps.PhotonConfig{
		BaseURL:  cfg.Geocoding.PhotonURL,
		Language: cfg.Geocoding.Language,
	}), nil
}
