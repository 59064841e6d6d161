package main

import (
	"bevforge-delivery/internal/adapters/cache"
	"bevforge-delivery/internal/adapters/distance"
	"bevforge-delivery/internal/adapters/opsapi"
	"bevforge-delivery/internal/adapters/repositories"
	"bevforge-delivery/internal/api"
	"bevforge-delivery/internal/config"
	"bevforge-delivery/internal/platform/db"
	"bevforge-delivery/internal/platform/obs"
	"bevforge-delivery/internal/ports"
	"bevforge-delivery/internal/services"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, OPS client, ORS) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	obs.SetLogger(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, conn, err := openStore(cfg)
	if err != nil {
		return err
	}
	if conn != nil {
		defer conn.Close()
	}

	seed := loadSeed(ctx, store, cfg.SeedPath)

	orders, err := orderClient(cfg, seed)
	if err != nil {
		return err
	}

	opts := []services.Option{}
	if provider, err := distanceProvider(cfg, conn); err != nil {
		return err
	} else if provider != nil {
		opts = append(opts, services.WithDistanceProvider(provider))
	}

	svc := services.NewLogistics(store, orders, cfg.HubAddress, opts...)
	router := api.NewRouter(svc)

	// Timeouts leave room for cold-cache ETA lookups (external API latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		obs.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("db_driver", cfg.DBDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		obs.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	// Let in-flight order status pushes finish before exiting.
	svc.Wait()
	return nil
}

// openStore returns the SQL connection too so caches can share it; it is nil
// for the in-memory store.
func openStore(cfg *config.Config) (ports.Store, *sql.DB, error) {
	if cfg.DBDriver == config.DriverMemory {
		return repositories.NewMemoryStore(), nil, nil
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.Migrate(conn, cfg.DBDriver); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return repositories.NewSQLStore(conn, cfg.DBDriver), conn, nil
}

// loadSeed inserts missing seed records; a missing or broken seed file is
// logged and the server starts with whatever is stored.
func loadSeed(ctx context.Context, store ports.Store, path string) *repositories.FleetSeed {
	seed, err := repositories.ReadSeed(path)
	if err != nil {
		obs.L().Warn("seed file not loaded", zap.String("path", path), zap.Error(err))
		return &repositories.FleetSeed{}
	}

	trucks, containers, err := repositories.Seed(ctx, store, path)
	if err != nil {
		obs.L().Warn("seeding failed", zap.String("path", path), zap.Error(err))
		return seed
	}
	obs.L().Info("seed applied", zap.Int("trucks", trucks), zap.Int("containers", containers))
	return seed
}

func orderClient(cfg *config.Config, seed *repositories.FleetSeed) (ports.OrderClient, error) {
	var client ports.OrderClient
	if cfg.OpsAPIURL == "" {
		obs.L().Info("OPS_API_URL not set; using the seeded order book", zap.Int("orders", len(seed.Orders)))
		client = opsapi.NewMemoryClient(seed.DomainOrders()...)
	} else {
		c, err := opsapi.NewClient(cfg.OpsAPIURL)
		if err != nil {
			return nil, err
		}
		client = c
	}

	if cfg.RedisURL == "" {
		return client, nil
	}
	rdb, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return cache.NewRedisOrderCache(client, rdb, cfg.OrderCacheTTL), nil
}

// distanceProvider returns nil when no ORS key is configured; ETAs then fall
// back to fixed rates and optimize is unavailable.
func distanceProvider(cfg *config.Config, conn *sql.DB) (ports.DistanceProvider, error) {
	if cfg.ORSAPIKey == "" {
		obs.L().Info("ORS_API_KEY not set; travel-time estimates disabled")
		return nil, nil
	}

	var (
		distanceCache *cache.SQLDistanceCache
		geocodeCache  *cache.SQLGeocodeCache
	)
	// ORS results are cached in the database to avoid repeated geocode/matrix calls.
	if conn != nil {
		distanceCache = cache.NewSQLDistanceCache(conn, cfg.DBDriver)
		geocodeCache = cache.NewSQLGeocodeCache(conn, cfg.DBDriver)
	}
	provider, err := distance.NewORSDistanceProvider(cfg.ORSAPIKey, distanceCache, geocodeCache)
	if err != nil {
		return nil, err
	}
	return provider, nil
}
