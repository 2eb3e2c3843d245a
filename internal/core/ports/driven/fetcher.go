package driven

import (
	"context"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

// SourceFetcher retrieves raw rows from an external tabular source.
type SourceFetcher interface {
	// Fetch returns all rows in source order. It fails when the
	// transport call fails, the response is not a recognised tabular
	// shape, the source answers with an explicit error envelope, or
	// the dataset is empty. A failed fetch has no side effects.
	Fetch(ctx context.Context) ([]domain.RawRecord, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
