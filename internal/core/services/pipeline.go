package services

import (
	"context"
	"fmt"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
	"github.com/caldera-ops/opsync/internal/logger"
)

// Pipeline bundles one collection's fetch, normalise, dedupe and
// classify chain plus its committer. Fetch and store access are the
// only suspension points; normalisation, dedup and classification are
// synchronous CPU work.
type Pipeline struct {
	Collection domain.Collection
	Fetcher    driven.SourceFetcher
	Normaliser RecordNormaliser
	Classifier *Classifier
	Committer  *Committer
}

// RecordNormaliser maps raw source rows onto canonical records,
// returning the count of rows dropped for an empty natural key.
type RecordNormaliser interface {
	NormaliseAll(rows []domain.RawRecord) ([]domain.Record, int)
}

// Analyze runs the inbound half of the pipeline. A fetch failure
// aborts with no side effects anywhere.
func (p *Pipeline) Analyze(ctx context.Context) (*domain.ClassificationSet, error) {
	rows, err := p.Fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", p.Collection, err)
	}

	records, skipped := p.Normaliser.NormaliseAll(rows)
	deduped, replaced := Dedupe(records)

	set, err := p.Classifier.Classify(ctx, p.Collection, deduped)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", p.Collection, err)
	}
	set.Skipped = skipped
	set.Deduplicated = replaced

	logger.Info("analyze %s: %d new, %d updated, %d unchanged (%d skipped, %d deduplicated)",
		p.Collection, len(set.New), len(set.Updated), len(set.Unchanged), skipped, replaced)
	return set, nil
}
