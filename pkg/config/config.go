package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Env               string
	Port              int
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration

	ShopifyStore       string
	ShopifyAccessToken string
	ShopifyAPIVersion  string
	ShopifyTimeout     time.Duration
	ShopifyWorkers     int

	ScheduleSpec    string
	ScheduleVendor  string
	ScheduleTimeout time.Duration
	ScheduleLockTTL time.Duration

	RedisURL string
}

const (
	defaultEnv               = "development"
	defaultPort              = 3000
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultShopifyAPIVersion = "2024-01"
	defaultShopifyTimeout    = 30 * time.Second
	defaultShopifyWorkers    = 4

	defaultScheduleSpec    = "0 * * * *"
	defaultScheduleVendor  = "Nectar"
	defaultScheduleTimeout = 10 * time.Minute
	defaultScheduleLockTTL = 15 * time.Minute
)

// Load reads a .env file when present, then the environment, applying
// defaults where necessary.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
} // ./Load

// FromEnv builds the configuration from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:               getEnv("APP_ENV", defaultEnv),
		Port:              getInt("PORT", defaultPort),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),

		ShopifyStore:       storeHost(os.Getenv("SHOPIFY_STORE_URL")),
		ShopifyAccessToken: os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		ShopifyAPIVersion:  getEnv("SHOPIFY_API_VERSION", defaultShopifyAPIVersion),
		ShopifyTimeout:     getDuration("SHOPIFY_TIMEOUT", defaultShopifyTimeout),
		ShopifyWorkers:     getInt("SHOPIFY_WORKERS", defaultShopifyWorkers),

		ScheduleSpec:    getEnv("SCHEDULE_SPEC", defaultScheduleSpec),
		ScheduleVendor:  getEnv("SCHEDULE_VENDOR", defaultScheduleVendor),
		ScheduleTimeout: getDuration("SCHEDULE_TIMEOUT", defaultScheduleTimeout),
		ScheduleLockTTL: getDuration("SCHEDULE_LOCK_TTL", defaultScheduleLockTTL),

		RedisURL: os.Getenv("REDIS_URL"),
	}

	if cfg.ShopifyStore == "" {
		return Config{}, errors.New("SHOPIFY_STORE_URL is required")
	}
	if cfg.ShopifyAccessToken == "" {
		return Config{}, errors.New("SHOPIFY_ACCESS_TOKEN is required")
	}
	if cfg.ShopifyWorkers < 1 {
		return Config{}, errors.New("SHOPIFY_WORKERS must be at least 1")
	}

	return cfg, nil
} // ./FromEnv

// storeHost accepts either a bare shop domain or a URL and returns the domain.
func storeHost(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "https://")
	v = strings.TrimPrefix(v, "http://")
	return strings.TrimSuffix(v, "/")
} // ./storeHost

func getEnv(key string, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
} // ./getEnv

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
} // ./getInt

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
} // ./getDuration
