package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/duelhq/duelsync/internal/dependencies/clock"
	"github.com/duelhq/duelsync/internal/storage"
)

// JanitorConfig controls the ended-game sweep
type JanitorConfig struct {
	// Interval between sweeps
	Interval time.Duration
	// Retention is how long ended games stay readable for display before
	// being deleted. Match records are never swept.
	Retention time.Duration
}

// DefaultJanitorConfig returns sensible defaults for the janitor
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		Interval:  time.Hour,
		Retention: 24 * time.Hour,
	}
}

// Janitor periodically deletes ended game documents past their retention
// window. The memory backend has no TTLs, so without the sweep ended games
// would accumulate for the life of the process.
type Janitor struct {
	storage   storage.Store
	clock     clock.Clock
	config    JanitorConfig
	logger    *slog.Logger
	scheduler gocron.Scheduler
}

// NewJanitor creates a new janitor
func NewJanitor(storage storage.Store, clock clock.Clock, config JanitorConfig, logger *slog.Logger) *Janitor {
	return &Janitor{
		storage: storage,
		clock:   clock,
		config:  config,
		logger:  logger.With("component", "janitor"),
	}
}

// Start schedules the recurring sweep
func (j *Janitor) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(j.config.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error("sweep failed", "error", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	j.scheduler = sched
	sched.Start()
	j.logger.Info("janitor started", "interval", j.config.Interval, "retention", j.config.Retention)
	return nil
}

// Sweep runs one pass, deleting ended games older than the retention window
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	cutoff := j.clock.Now().Add(-j.config.Retention)
	pruned, err := j.storage.PruneEndedGames(ctx, cutoff)
	if err != nil {
		return pruned, err
	}
	if pruned > 0 {
		j.logger.Info("pruned ended games", "count", pruned)
	}
	return pruned, nil
}

// Stop shuts the scheduler down
func (j *Janitor) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	return j.scheduler.Shutdown()
}
