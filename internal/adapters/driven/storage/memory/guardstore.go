package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
)

// GuardStore is an in-memory implementation of driven.GuardStore.
type GuardStore struct {
	mu     sync.RWMutex
	guards map[domain.Collection]domain.SyncGuard

	// SaveErr, when set, is returned by every Save call.
	SaveErr error
}

var _ driven.GuardStore = (*GuardStore)(nil)

// NewGuardStore creates an empty in-memory guard store.
func NewGuardStore() *GuardStore {
	return &GuardStore{
		guards: make(map[domain.Collection]domain.SyncGuard),
	}
}

// Get retrieves the guard for a collection.
func (s *GuardStore) Get(_ context.Context, collection domain.Collection) (*domain.SyncGuard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guard, ok := s.guards[collection]
	if !ok {
		return nil, fmt.Errorf("%w: no guard for %s", domain.ErrNotFound, collection)
	}
	return &guard, nil
}

// Save stores or replaces the guard for its collection.
func (s *GuardStore) Save(_ context.Context, guard domain.SyncGuard) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.guards[guard.Collection] = guard
	return nil
}
