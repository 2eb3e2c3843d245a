package driving

import (
	"context"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// ReviewCoordinator runs the two-phase analyze-confirm workflow for one
// collection. At most one analyze-or-commit cycle is in flight at a
// time; concurrent triggers are rejected with domain.ErrSyncInProgress.
type ReviewCoordinator interface {
	// Collection returns the collection this coordinator owns.
	Collection() domain.Collection

	// State returns the current review state.
	State() domain.ReviewState

	// Classification returns the held classification, or nil outside
	// the reviewing/failed phases.
	Classification() *domain.ClassificationSet

	// Analyze fetches, normalises, deduplicates and classifies,
	// leaving the coordinator in the reviewing state. Allowed from
	// idle, done, failed, and reviewing (re-analyze, discarding the
	// held classification). A fetch failure returns the coordinator to idle
	// with no side effects.
	Analyze(ctx context.Context) (*domain.ClassificationSet, error)

	// Confirm commits the held new and updated records. Enabled only
	// in the reviewing and failed states with at least one pending
	// change. On
	// success the classification is discarded, the guard is stamped
	// for today as a manual sync, and the state becomes done. On
	// commit failure the classification is preserved and the state
	// becomes failed so commit can be retried without re-fetching.
	Confirm(ctx context.Context) (*domain.CommitResult, error)

	// Cancel discards any held classification and returns to idle.
	// Allowed from any state; it never touches the store.
	Cancel()

	// LastError returns the error surfaced by the most recent failed
	// action, or nil.
	LastError() error
}
