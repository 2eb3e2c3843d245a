package driven

import (
	"context"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// GuardStore persists the per-collection daily sync guard.
//
// The guard's check-then-act sequence (read, decide, write) is not
// transactional here. A single process serialises it per collection,
// but concurrent automatic triggers from multiple running instances
// can both pass the check before either writes and double-run a day.
// Multi-instance deployments need a compare-and-swap or external lock
// behind this interface.
type GuardStore interface {
	// Get retrieves the guard for a collection. Returns
	// domain.ErrNotFound when no sync has ever been recorded.
	Get(ctx context.Context, collection domain.Collection) (*domain.SyncGuard, error)

	// Save stores or replaces the guard for its collection.
	Save(ctx context.Context, guard domain.SyncGuard) error
}
