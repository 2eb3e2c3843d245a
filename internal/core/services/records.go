package services

import (
	"context"
	"fmt"
	"time"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
)

// RecordService exposes ordinary CRUD over local records. Every
// successful mutation triggers a detached outbound push; the push
// result never reaches the caller.
type RecordService struct {
	store driven.RecordStore
	push  *PushService
	clock func() time.Time
}

// NewRecordService creates a record service. The push service may be
// nil when outbound mirroring is not configured.
func NewRecordService(store driven.RecordStore, push *PushService) *RecordService {
	return &RecordService{
		store: store,
		push:  push,
		clock: time.Now,
	}
}

// Get retrieves one record by natural key.
func (s *RecordService) Get(ctx context.Context, collection domain.Collection, naturalKey string) (*domain.Record, error) {
	return s.store.Get(ctx, collection, naturalKey)
}

// List returns all records in a collection.
func (s *RecordService) List(ctx context.Context, collection domain.Collection) ([]domain.Record, error) {
	return s.store.List(ctx, collection)
}

// Create stores a new record and mirrors it outbound.
func (s *RecordService) Create(ctx context.Context, collection domain.Collection, rec domain.Record) error {
	if rec.Key() == "" {
		return fmt.Errorf("%w: empty natural key", domain.ErrInvalidInput)
	}
	exists, err := s.store.Exists(ctx, collection, rec.Key())
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, rec.Key())
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.clock().UTC()
	}
	if err := s.store.UpsertBatch(ctx, collection, []domain.Record{rec}); err != nil {
		return fmt.Errorf("create record: %w", err)
	}

	s.push.Dispatch(collection, rec, domain.PushCreate)
	return nil
}

// Update overwrites an existing record and mirrors it outbound.
func (s *RecordService) Update(ctx context.Context, collection domain.Collection, rec domain.Record) error {
	if rec.Key() == "" {
		return fmt.Errorf("%w: empty natural key", domain.ErrInvalidInput)
	}
	exists, err := s.store.Exists(ctx, collection, rec.Key())
	if err != nil {
		return fmt.Errorf("check existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, rec.Key())
	}
	if err := s.store.UpsertBatch(ctx, collection, []domain.Record{rec}); err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	s.push.Dispatch(collection, rec, domain.PushUpdate)
	return nil
}

// Delete removes a record and mirrors the deletion outbound. Sync
// never deletes; this is the only path that does.
func (s *RecordService) Delete(ctx context.Context, collection domain.Collection, naturalKey string) error {
	rec, err := s.store.Get(ctx, collection, naturalKey)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, collection, naturalKey); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.push.Dispatch(collection, *rec, domain.PushDelete)
	return nil
}
