package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
	"github.com/caldera-ops/opsync/internal/core/ports/driving"
	"github.com/caldera-ops/opsync/internal/logger"
)

// Ensure Coordinator implements the interface.
var _ driving.ReviewCoordinator = (*Coordinator)(nil)

// Coordinator owns one collection's review workflow state. It
// serialises analyze-and-commit cycles: a second trigger while one is
// in flight gets domain.ErrSyncInProgress. The reviewing state itself
// is a user-paced pause with no timeout; only the active work phases
// count as in flight.
type Coordinator struct {
	pipeline *Pipeline
	guards   driven.GuardStore
	clock    func() time.Time

	mu             sync.Mutex
	busy           bool
	gen            int
	state          domain.ReviewState
	classification *domain.ClassificationSet
	lastErr        error
}

// NewCoordinator creates a review coordinator for one collection.
func NewCoordinator(pipeline *Pipeline, guards driven.GuardStore) *Coordinator {
	return &Coordinator{
		pipeline: pipeline,
		guards:   guards,
		clock:    time.Now,
		state:    domain.ReviewIdle,
	}
}

// WithClock overrides the coordinator clock. For tests.
func (c *Coordinator) WithClock(clock func() time.Time) *Coordinator {
	c.clock = clock
	return c
}

// Collection returns the collection this coordinator owns.
func (c *Coordinator) Collection() domain.Collection {
	return c.pipeline.Collection
}

// State returns the current review state.
func (c *Coordinator) State() domain.ReviewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Classification returns the held classification, or nil.
func (c *Coordinator) Classification() *domain.ClassificationSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classification
}

// LastError returns the error surfaced by the most recent failed
// action, or nil.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Analyze runs fetch-normalise-dedupe-classify and moves to reviewing.
// Allowed from idle, done, failed, and reviewing (re-analyze discards
// the held classification). Failures before a classification exists
// return the coordinator to idle with no side effects.
func (c *Coordinator) Analyze(ctx context.Context) (*domain.ClassificationSet, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, domain.ErrSyncInProgress
	}
	switch c.state {
	case domain.ReviewIdle, domain.ReviewDone, domain.ReviewReviewing, domain.ReviewFailed:
	default:
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: analyze from %s", domain.ErrInvalidState, state)
	}
	c.busy = true
	c.state = domain.ReviewAnalyzing
	c.classification = nil
	c.lastErr = nil
	gen := c.gen
	c.mu.Unlock()

	set, err := c.pipeline.Analyze(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if gen != c.gen {
		// Cancelled while analysing; the run's result is discarded.
		return nil, context.Canceled
	}
	if err != nil {
		c.state = domain.ReviewIdle
		c.lastErr = err
		return nil, err
	}
	c.classification = set
	c.state = domain.ReviewReviewing
	return set, nil
}

// Confirm commits the held new and updated records. Allowed from
// reviewing, and from failed to retry a commit without re-fetching.
func (c *Coordinator) Confirm(ctx context.Context) (*domain.CommitResult, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, domain.ErrSyncInProgress
	}
	if c.state != domain.ReviewReviewing && c.state != domain.ReviewFailed {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: confirm from %s", domain.ErrInvalidState, state)
	}
	set := c.classification
	if set == nil || set.Pending() == 0 {
		c.mu.Unlock()
		return nil, domain.ErrNoPendingChanges
	}
	c.busy = true
	c.state = domain.ReviewCommitting
	c.lastErr = nil
	gen := c.gen
	c.mu.Unlock()

	result, err := c.pipeline.Committer.Commit(ctx, set)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if gen != c.gen {
		return nil, context.Canceled
	}
	if err != nil {
		// Classification stays; the operator can retry commit.
		c.state = domain.ReviewFailed
		c.lastErr = err
		return nil, err
	}

	c.stampGuard(ctx, domain.SyncManual, result.Written())
	c.classification = nil
	c.state = domain.ReviewDone
	return result, nil
}

// Cancel discards any held classification and returns to idle. It
// never touches the store; a run in flight has its result discarded on
// completion.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.classification = nil
	c.lastErr = nil
	c.state = domain.ReviewIdle
}

// AutoRun executes the automatic path: guard check, then the full
// chain with no review pause, committing everything classified new or
// updated. The guard is written only after a successful commit, so a
// failed run leaves the day open for a retry.
func (c *Coordinator) AutoRun(ctx context.Context) (*domain.AutoSyncResult, error) {
	c.mu.Lock()
	if c.busy || c.state == domain.ReviewReviewing || c.state == domain.ReviewFailed {
		// An operator mid-review keeps the automatic path out.
		c.mu.Unlock()
		return nil, domain.ErrSyncInProgress
	}
	c.busy = true
	c.state = domain.ReviewAnalyzing
	c.lastErr = nil
	gen := c.gen
	c.mu.Unlock()

	result, err := c.autoRun(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if gen != c.gen {
		return nil, context.Canceled
	}
	if err != nil {
		c.state = domain.ReviewIdle
		c.lastErr = err
		return nil, err
	}
	if result.Synced {
		c.state = domain.ReviewDone
	} else {
		c.state = domain.ReviewIdle
	}
	return result, nil
}

// autoRun is the body of AutoRun, run without the state lock held.
func (c *Coordinator) autoRun(ctx context.Context) (*domain.AutoSyncResult, error) {
	collection := c.pipeline.Collection
	now := c.clock()

	guard, err := c.guards.Get(ctx, collection)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("read sync guard: %w", err)
	}
	if guard.CoversDay(now) {
		logger.Debug("autosync %s: suppressed, already synced %s", collection, guard.LastSyncDate)
		return &domain.AutoSyncResult{
			Collection: collection,
			Synced:     false,
			Reason:     domain.ReasonAlreadySynced,
		}, nil
	}

	set, err := c.pipeline.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	written := 0
	if set.Pending() > 0 {
		result, err := c.pipeline.Committer.Commit(ctx, set)
		if err != nil {
			return nil, err
		}
		written = result.Written()
	}

	c.stampGuard(ctx, domain.SyncAuto, written)

	return &domain.AutoSyncResult{
		Collection: collection,
		Synced:     true,
		Created:    len(set.New),
		Updated:    len(set.Updated),
		Skipped:    set.Skipped,
	}, nil
}

// stampGuard records today's sync in the guard. A guard write failure
// is logged only; it never retroactively fails the commit.
func (c *Coordinator) stampGuard(ctx context.Context, syncType domain.SyncType, count int) {
	now := c.clock()
	guard := domain.SyncGuard{
		Collection:   c.pipeline.Collection,
		LastSyncDate: domain.SyncDay(now),
		LastSyncType: syncType,
		LastRunAt:    now.UTC(),
		UpdatedCount: count,
	}
	if err := c.guards.Save(ctx, guard); err != nil {
		logger.Warn("guard: save after %s sync of %s failed: %v", syncType, c.pipeline.Collection, err)
	}
}
