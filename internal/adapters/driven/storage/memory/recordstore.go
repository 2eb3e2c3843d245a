// Package memory provides in-memory store implementations for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[domain.Collection]map[string]domain.Record

	// maxBatch overrides the batch cap when non-zero. Tests use small
	// caps to exercise chunking without building huge fixtures.
	maxBatch int

	// Batches records the size of every UpsertBatch call.
	Batches []int
}

var _ driven.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[domain.Collection]map[string]domain.Record),
	}
}

// WithMaxBatchSize sets the batch cap reported by MaxBatchSize.
func (s *RecordStore) WithMaxBatchSize(n int) *RecordStore {
	s.maxBatch = n
	return s
}

// Get retrieves a record by natural key.
func (s *RecordStore) Get(_ context.Context, collection domain.Collection, naturalKey string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[collection][naturalKey]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, naturalKey)
	}
	return &rec, nil
}

// List returns all records in a collection ordered by natural key.
func (s *RecordStore) List(_ context.Context, collection domain.Collection) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.Record, 0, len(s.records[collection]))
	for _, rec := range s.records[collection] {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].NaturalKey < records[j].NaturalKey
	})
	return records, nil
}

// Exists reports whether a record with the natural key is stored.
func (s *RecordStore) Exists(_ context.Context, collection domain.Collection, naturalKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[collection][naturalKey]
	return ok, nil
}

// UpsertBatch writes records as create-or-update keyed by natural key.
func (s *RecordStore) UpsertBatch(_ context.Context, collection domain.Collection, records []domain.Record) error {
	if len(records) > s.MaxBatchSize() {
		return fmt.Errorf("%w: batch of %d exceeds limit of %d",
			domain.ErrInvalidInput, len(records), s.MaxBatchSize())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Batches = append(s.Batches, len(records))
	if s.records[collection] == nil {
		s.records[collection] = make(map[string]domain.Record)
	}

	now := time.Now().UTC()
	for _, rec := range records {
		if existing, ok := s.records[collection][rec.Key()]; ok {
			rec.CreatedAt = existing.CreatedAt
		} else {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		s.records[collection][rec.Key()] = rec
	}
	return nil
}

// Delete removes a record by natural key.
func (s *RecordStore) Delete(_ context.Context, collection domain.Collection, naturalKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[collection][naturalKey]; !ok {
		return fmt.Errorf("%w: %s/%s", domain.ErrNotFound, collection, naturalKey)
	}
	delete(s.records[collection], naturalKey)
	return nil
}

// MaxBatchSize is the largest batch UpsertBatch accepts.
func (s *RecordStore) MaxBatchSize() int {
	if s.maxBatch > 0 {
		return s.maxBatch
	}
	return 500
}
