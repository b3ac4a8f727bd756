package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/duelhq/duelsync/internal/api"
	"github.com/duelhq/duelsync/internal/factory"
	redisstorage "github.com/duelhq/duelsync/internal/storage/redis"
	"github.com/duelhq/duelsync/internal/workers"
)

func main() {
	// Load .env if present; real env vars take precedence
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start the ended-game janitor
	janitorCfg := workers.DefaultJanitorConfig()
	if d := envDuration("JANITOR_INTERVAL"); d > 0 {
		janitorCfg.Interval = d
	}
	if d := envDuration("GAME_RETENTION"); d > 0 {
		janitorCfg.Retention = d
	}
	janitor := workers.NewJanitor(app.Storage, app.Clock, janitorCfg, logger)
	if err := janitor.Start(); err != nil {
		logger.Error("failed to start janitor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = janitor.Stop() }()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		HistoryService:    app.HistoryService,
		IdentityProvider:  app.IdentityProvider,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		serverConfig.Port = port
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

// envDuration parses a duration env var, returning 0 when unset or invalid
func envDuration(key string) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("invalid duration env var", slog.String("key", key), slog.String("value", val))
		return 0
	}
	return d
}
