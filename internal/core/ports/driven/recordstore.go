package driven

import (
	"context"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// RecordStore persists local records keyed by collection and natural
// key.
type RecordStore interface {
	// Get retrieves a record by natural key. Returns
	// domain.ErrNotFound if absent.
	Get(ctx context.Context, collection domain.Collection, naturalKey string) (*domain.Record, error)

	// List returns all records in a collection.
	List(ctx context.Context, collection domain.Collection) ([]domain.Record, error)

	// Exists reports whether a record with the natural key is stored.
	Exists(ctx context.Context, collection domain.Collection, naturalKey string) (bool, error)

	// UpsertBatch writes records as create-or-update keyed by natural
	// key. Canonical fields are overwritten; store-managed audit
	// fields and anything outside the canonical set are left
	// untouched. The batch must not exceed MaxBatchSize; the batch is
	// atomic.
	UpsertBatch(ctx context.Context, collection domain.Collection, records []domain.Record) error

	// Delete removes a record by natural key. Returns
	// domain.ErrNotFound if absent. Sync never calls this; deletion is
	// an explicit user action only.
	Delete(ctx context.Context, collection domain.Collection, naturalKey string) error

	// MaxBatchSize is the largest batch UpsertBatch accepts.
	MaxBatchSize() int
}
