package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment (and .env).
type Config struct {
	Port          string
	DBDriver      string
	DatabaseURL   string
	SeedPath      string
	HubAddress    string
	ORSAPIKey     string
	OpsAPIURL     string
	RedisURL      string
	OrderCacheTTL time.Duration
	LogLevel      string
}

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
	DriverMemory   = "memory"
)

// Load reads .env when present, then the environment, applying defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := &Config{
		Port:        Get("PORT", "8080"),
		DBDriver:    strings.ToLower(Get("DB_DRIVER", DriverSQLite)),
		DatabaseURL: Get("DATABASE_URL", ""),
		SeedPath:    Get("SEED_PATH", "data/seeds/fleet.yaml"),
		HubAddress:  Get("HUB_ADDRESS", "1901 W Madison St, Phoenix, AZ 85009"),
		ORSAPIKey:   strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		OpsAPIURL:   strings.TrimRight(Get("OPS_API_URL", ""), "/"),
		RedisURL:    Get("REDIS_URL", ""),
		LogLevel:    Get("LOG_LEVEL", "info"),
	}

	ttl, err := time.ParseDuration(Get("ORDER_CACHE_TTL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("load config: ORDER_CACHE_TTL: %w", err)
	}
	cfg.OrderCacheTTL = ttl

	switch cfg.DBDriver {
	case DriverSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = Get("DB_PATH", "data/app.db")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("load config: DATABASE_URL is required for DB_DRIVER=%s", cfg.DBDriver)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("load config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
