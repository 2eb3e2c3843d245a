package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driving"
)

// Ensure AutoSync implements the interface.
var _ driving.AutoSyncRunner = (*AutoSync)(nil)

// AutoSync drives the automatic sync path across collections. Each
// collection's coordinator serialises against manual runs, so an
// operator mid-review blocks that collection's automatic run rather
// than racing it.
type AutoSync struct {
	order        []domain.Collection
	coordinators map[domain.Collection]*Coordinator
}

// NewAutoSync creates a runner over the given coordinators. Collection
// order follows the argument order.
func NewAutoSync(coordinators ...*Coordinator) *AutoSync {
	a := &AutoSync{
		coordinators: make(map[domain.Collection]*Coordinator, len(coordinators)),
	}
	for _, c := range coordinators {
		a.order = append(a.order, c.Collection())
		a.coordinators[c.Collection()] = c
	}
	return a
}

// Run executes the guard-gated automatic sync for one collection.
func (a *AutoSync) Run(ctx context.Context, collection domain.Collection) (*domain.AutoSyncResult, error) {
	coordinator, ok := a.coordinators[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, collection)
	}
	return coordinator.AutoRun(ctx)
}

// RunAll executes Run for every configured collection. Failures are
// joined and returned after all collections have been attempted.
func (a *AutoSync) RunAll(ctx context.Context) ([]domain.AutoSyncResult, error) {
	var results []domain.AutoSyncResult
	var errs []error

	for _, collection := range a.order {
		result, err := a.Run(ctx, collection)
		if err != nil {
			errs = append(errs, fmt.Errorf("autosync %s: %w", collection, err))
			continue
		}
		results = append(results, *result)
	}

	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	return results, nil
}
