package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
)

// Dedupe collapses records sharing a natural key within one batch. The
// record appearing later in the input fully replaces the earlier one;
// every field of the earlier record is discarded, even where the later
// record carries a default. Output order follows the first occurrence
// of each key. The second return value counts replaced records.
func Dedupe(records []domain.Record) ([]domain.Record, int) {
	index := make(map[string]int, len(records))
	out := make([]domain.Record, 0, len(records))
	replaced := 0

	for _, rec := range records {
		key := rec.Key()
		if at, seen := index[key]; seen {
			out[at] = rec
			replaced++
			continue
		}
		index[key] = len(out)
		out = append(out, rec)
	}
	return out, replaced
}

// Classifier compares incoming records against local state for one
// collection.
type Classifier struct {
	store         driven.RecordStore
	compareFields []string
	clock         func() time.Time
}

// NewClassifier creates a classifier using the given compare-field
// whitelist. An empty whitelist falls back to
// domain.DefaultCompareFields.
func NewClassifier(store driven.RecordStore, compareFields []string) *Classifier {
	if len(compareFields) == 0 {
		compareFields = domain.DefaultCompareFields
	}
	return &Classifier{
		store:         store,
		compareFields: compareFields,
		clock:         time.Now,
	}
}

// WithClock overrides the classifier clock. For tests.
func (c *Classifier) WithClock(clock func() time.Time) *Classifier {
	c.clock = clock
	return c
}

// Classify compares deduplicated incoming records against the stored
// records of the collection. Matching is by exact equality of the
// trimmed natural key. Each output list is sorted by record timestamp
// descending, ties broken by input order.
func (c *Classifier) Classify(
	ctx context.Context,
	collection domain.Collection,
	incoming []domain.Record,
) (*domain.ClassificationSet, error) {
	locals, err := c.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list local records: %w", err)
	}

	localByKey := make(map[string]*domain.Record, len(locals))
	for i := range locals {
		localByKey[locals[i].Key()] = &locals[i]
	}

	set := &domain.ClassificationSet{
		RunID:      uuid.New().String(),
		Collection: collection,
		AnalyzedAt: c.clock(),
	}

	for _, rec := range incoming {
		prev, exists := localByKey[rec.Key()]
		switch {
		case !exists:
			set.New = append(set.New, domain.Classification{
				NaturalKey: rec.Key(),
				Kind:       domain.KindNew,
				Incoming:   rec,
			})
		case c.differs(&rec, prev):
			previous := *prev
			set.Updated = append(set.Updated, domain.Classification{
				NaturalKey: rec.Key(),
				Kind:       domain.KindUpdated,
				Incoming:   rec,
				Previous:   &previous,
			})
		default:
			previous := *prev
			set.Unchanged = append(set.Unchanged, domain.Classification{
				NaturalKey: rec.Key(),
				Kind:       domain.KindUnchanged,
				Incoming:   rec,
				Previous:   &previous,
			})
		}
	}

	sortByTimestampDesc(set.New)
	sortByTimestampDesc(set.Updated)
	sortByTimestampDesc(set.Unchanged)

	return set, nil
}

// differs reports whether any whitelisted field differs between the
// incoming and stored record. Comparison is plain string inequality;
// a field the store never populated reads as the empty string.
func (c *Classifier) differs(incoming, previous *domain.Record) bool {
	for _, field := range c.compareFields {
		if incoming.Field(field) != previous.Field(field) {
			return true
		}
	}
	return false
}

// sortByTimestampDesc orders classifications most recent first. The
// stable sort keeps input order for equal timestamps.
func sortByTimestampDesc(list []domain.Classification) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Incoming.Timestamp.After(list[j].Incoming.Timestamp)
	})
}
