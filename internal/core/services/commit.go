package services

import (
	"context"
	"fmt"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
	"github.com/caldera-ops/opsync/internal/logger"
)

// DefaultChunkSize is the number of records written per batch.
const DefaultChunkSize = 500

// Committer writes accepted classification results to the local store.
//
// Only records classified new or updated are ever written; unchanged
// records are never touched. Each chunk is atomic but the commit across
// chunks is not: a failure partway leaves earlier chunks committed.
// Re-running commit on the same classification is safe because upserts
// are idempotent per key.
type Committer struct {
	store     driven.RecordStore
	chunkSize int
}

// NewCommitter creates a committer. The chunk size is DefaultChunkSize
// capped by the store's maximum batch size.
func NewCommitter(store driven.RecordStore) *Committer {
	size := DefaultChunkSize
	if max := store.MaxBatchSize(); max > 0 && max < size {
		size = max
	}
	return &Committer{store: store, chunkSize: size}
}

// Commit upserts the new and updated records of a classification set,
// keyed by natural key, in chunks.
func (c *Committer) Commit(ctx context.Context, set *domain.ClassificationSet) (*domain.CommitResult, error) {
	records := make([]domain.Record, 0, set.Pending())
	for _, cls := range set.New {
		records = append(records, cls.Incoming)
	}
	for _, cls := range set.Updated {
		records = append(records, cls.Incoming)
	}

	result := &domain.CommitResult{
		Created: len(set.New),
		Updated: len(set.Updated),
	}

	for start := 0; start < len(records); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(records) {
			end = len(records)
		}
		if err := c.store.UpsertBatch(ctx, set.Collection, records[start:end]); err != nil {
			return nil, fmt.Errorf("commit chunk %d-%d of %d records: %w", start, end, len(records), err)
		}
		result.Chunks++
		logger.Debug("commit: %s wrote chunk %d (%d records)", set.Collection, result.Chunks, end-start)
	}

	return result, nil
}
