package driving

import (
	"context"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// AutoSyncRunner drives the automatic, review-free sync path.
type AutoSyncRunner interface {
	// Run executes the guard-gated automatic sync for one collection.
	// When the guard already covers today it returns
	// {Synced:false, Reason:already_synced} without fetching.
	Run(ctx context.Context, collection domain.Collection) (*domain.AutoSyncResult, error)

	// RunAll executes Run for every configured collection and returns
	// the per-collection results. Individual failures do not stop the
	// remaining collections.
	RunAll(ctx context.Context) ([]domain.AutoSyncResult, error)
}
