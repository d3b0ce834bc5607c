package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/dealbite/helpers"
	apperrors "sjsage522/dealbite/pkg/errors"
)

// Target is one (restaurant, market) pair refreshed by the worker
type Target struct {
	Restaurant string
	Market     string
}

// Config represents the application configuration
type Config struct {
	// HTTP server
	Port int

	// Persistence
	DatabaseURL string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// Fetcher configuration
	FetchTimeout   time.Duration
	FetchBlockTime time.Duration

	// Worker configuration, zero disables scheduled refreshes
	RefreshInterval time.Duration
	Targets         []Target

	// Sources maps a restaurant slug to its deals page URL.
	// Entries here override the built-in registry.
	Sources map[string]string

	// Environment
	Environment string

	// raw values kept for Validate
	rawSources string
	rawTargets string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))
	fetchTimeout, _ := strconv.Atoi(getEnv("FETCH_TIMEOUT_SECONDS", "15"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "300"))
	refreshInterval, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "0"))

	cfg := &Config{
		Port:                 port,
		DatabaseURL:          getEnv("DATABASE_URL", "dealbite.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "dealbite:deals"),
		RedisStreamMaxLength: streamMaxLength,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		FetchTimeout:         time.Duration(fetchTimeout) * time.Second,
		FetchBlockTime:       time.Duration(blockTime) * time.Second,
		RefreshInterval:      time.Duration(refreshInterval) * time.Second,
		Sources:              map[string]string{},
		Environment:          getEnv("DEALBITE_ENVIRONMENT", "development"),
		rawSources:           os.Getenv("DEALBITE_SOURCES"),
		rawTargets:           getEnv("DEALBITE_TARGETS", "wendys:austin-tx"),
	}

	// malformed entries are skipped here and reported by Validate
	for _, entry := range helpers.SplitList(cfg.rawSources) {
		if name, url, err := helpers.SplitPair(entry, "="); err == nil {
			cfg.Sources[strings.ToLower(name)] = url
		}
	}
	for _, entry := range helpers.SplitList(cfg.rawTargets) {
		if restaurant, market, err := helpers.SplitPair(entry, ":"); err == nil {
			cfg.Targets = append(cfg.Targets, Target{Restaurant: restaurant, Market: market})
		}
	}

	return cfg
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return apperrors.NewConfiguration(fmt.Sprintf("invalid PORT %d", c.Port), nil)
	}
	if c.DatabaseURL == "" {
		return apperrors.NewConfiguration("DATABASE_URL is empty", nil)
	}
	if c.RefreshInterval < 0 {
		return apperrors.NewConfiguration("REFRESH_INTERVAL_SECONDS must not be negative", nil)
	}
	if c.FetchTimeout <= 0 {
		return apperrors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.FetchBlockTime < 0 {
		return apperrors.NewConfiguration("FETCH_BLOCK_SECONDS must not be negative", nil)
	}
	for _, entry := range helpers.SplitList(c.rawSources) {
		if _, _, err := helpers.SplitPair(entry, "="); err != nil {
			return apperrors.NewConfiguration("invalid DEALBITE_SOURCES entry", err)
		}
	}
	for _, entry := range helpers.SplitList(c.rawTargets) {
		if _, _, err := helpers.SplitPair(entry, ":"); err != nil {
			return apperrors.NewConfiguration("invalid DEALBITE_TARGETS entry", err)
		}
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
