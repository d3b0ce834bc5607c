package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/dealbite/config"
	"sjsage522/dealbite/helpers"
	"sjsage522/dealbite/internal/api"
	"sjsage522/dealbite/internal/deals"
	"sjsage522/dealbite/internal/fetcher"
	"sjsage522/dealbite/internal/source"
	"sjsage522/dealbite/internal/store"
	"sjsage522/dealbite/logger"
	"sjsage522/dealbite/services/cache"
	"sjsage522/dealbite/services/publisher"
	"sjsage522/dealbite/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	registry := source.NewRegistry(cfg.Sources)
	pageFetcher := fetcher.New(fetcher.Options{
		Timeout:   cfg.FetchTimeout,
		BlockTime: cfg.FetchBlockTime,
		Cache:     services.Cache,
	})
	svc := deals.NewService(pageFetcher, services.Store, registry, services.Publisher)

	log.Info().
		Strs("restaurants", registry.Restaurants()).
		Msg("Registered deal sources")

	// Start the worker when scheduled refreshes are enabled
	workerDone := make(chan error, 1)
	if cfg.RefreshInterval > 0 {
		w := worker.NewWorker(
			ctx,
			cfg.Targets,
			svc,
			services.Publisher,
			helpers.NewLogger("worker"),
			cfg.RefreshInterval,
		)
		go func() {
			log.Info().Int("targets", len(cfg.Targets)).Msg("Starting refresh worker")
			workerDone <- w.Start()
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.NewServer(svc).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverDone := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
			return
		}
		serverDone <- nil
	}()

	// Wait for shutdown signal, server failure or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
	case err := <-serverDone:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server exited with error")
		}
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}
	cancel()

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

// Services holds all the initialized services
type Services struct {
	Store     *store.Store
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Store != nil {
		s.Store.Close()
	}
}

// initializeServices initializes all required services. Memcache and Redis
// are optional: without them the block window lives in memory and new deal
// events are dropped.
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize store
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	services.Store = st
	logger.Info("Opened %s store", st.Dialect())

	// Initialize cache service
	memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if err := memcacheService.Ping(); err != nil {
		logger.Warn("Memcache at %s unavailable, using in-memory cache: %v", cfg.MemcacheAddr, err)
		services.Cache = cache.NewMemoryCache()
	} else {
		services.Cache = memcacheService
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLength,
	)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := redisPublisher.Ping(pingCtx); err != nil {
		logger.Warn("Redis at %s unavailable, deal events disabled: %v", cfg.RedisAddr, err)
		redisPublisher.Close()
		services.Publisher = publisher.Nop{}
	} else {
		services.Publisher = redisPublisher
		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return services, nil
}
