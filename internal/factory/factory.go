package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/duelhq/duelsync/internal/dependencies/clock"
	"github.com/duelhq/duelsync/internal/dependencies/random"
	"github.com/duelhq/duelsync/internal/services/history"
	"github.com/duelhq/duelsync/internal/services/identity"
	"github.com/duelhq/duelsync/internal/services/session"
	"github.com/duelhq/duelsync/internal/storage"
	"github.com/duelhq/duelsync/internal/storage/memory"
	redisstorage "github.com/duelhq/duelsync/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	HistoryService    *history.Service
	SessionController *session.Controller
	IdentityProvider  identity.Provider
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Store
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Store, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	historyService := history.New(store, logger)
	sessionController := session.NewController(store, historyService, clk, rnd, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		HistoryService:    historyService,
		SessionController: sessionController,
		IdentityProvider:  identity.NewGuest(),
	}
}
