package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driving"
)

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// CheckInterval is how often the scheduler re-attempts the
	// automatic path. The daily guard supplies the once-per-day
	// semantics; a failed day retries on the next tick (fail-open).
	CheckInterval time.Duration
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:       true,
		CheckInterval: 1 * time.Hour,
	}
}

// Scheduler periodically triggers the automatic sync path for all
// collections. It is a pure core service with no external control API.
type Scheduler struct {
	config SchedulerConfig
	runner driving.AutoSyncRunner

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config SchedulerConfig, runner driving.AutoSyncRunner) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultSchedulerConfig().CheckInterval
	}
	return &Scheduler{
		config: config,
		runner: runner,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Attempt immediately on startup, then on every tick.
	s.runOnce(ctx)

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for an in-flight
// run to complete.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// runOnce fires one automatic sync attempt across all collections.
func (s *Scheduler) runOnce(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		results, err := s.runner.RunAll(ctx)
		for _, result := range results {
			if result.Synced {
				log.Printf("scheduler: %s synced, %d created, %d updated",
					result.Collection, result.Created, result.Updated)
			}
		}
		if err != nil && !errors.Is(err, domain.ErrSyncInProgress) {
			log.Printf("scheduler: autosync: %v", err)
		}
	}()
}
