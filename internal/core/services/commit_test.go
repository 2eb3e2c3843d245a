package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-ops/opsync/internal/adapters/driven/storage/memory"
	"github.com/caldera-ops/opsync/internal/core/domain"
	"github.com/caldera-ops/opsync/internal/core/ports/driven"
)

// failingStore wraps a record store and fails UpsertBatch from the
// given call number on.
type failingStore struct {
	driven.RecordStore

	mu       sync.Mutex
	calls    int
	failFrom int
}

func (s *failingStore) UpsertBatch(ctx context.Context, collection domain.Collection, records []domain.Record) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls >= s.failFrom
	s.mu.Unlock()

	if fail {
		return errors.New("disk full")
	}
	return s.RecordStore.UpsertBatch(ctx, collection, records)
}

func newSet(collection domain.Collection, created, updated int) *domain.ClassificationSet {
	set := &domain.ClassificationSet{RunID: "run-1", Collection: collection}
	for i := 0; i < created; i++ {
		rec := domain.Record{NaturalKey: "new-" + string(rune('a'+i))}
		set.New = append(set.New, domain.Classification{
			NaturalKey: rec.NaturalKey, Kind: domain.KindNew, Incoming: rec,
		})
	}
	for i := 0; i < updated; i++ {
		rec := domain.Record{NaturalKey: "upd-" + string(rune('a'+i))}
		set.Updated = append(set.Updated, domain.Classification{
			NaturalKey: rec.NaturalKey, Kind: domain.KindUpdated, Incoming: rec,
		})
	}
	return set
}

func TestCommitWritesNewAndUpdatedOnly(t *testing.T) {
	store := memory.NewRecordStore()
	set := newSet(domain.CollectionTickets, 2, 1)
	set.Unchanged = append(set.Unchanged, domain.Classification{
		NaturalKey: "same-a",
		Kind:       domain.KindUnchanged,
		Incoming:   domain.Record{NaturalKey: "same-a"},
	})

	result, err := NewCommitter(store).Commit(context.Background(), set)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 3, result.Written())
	assert.Equal(t, 1, result.Chunks)

	list, err := store.List(context.Background(), domain.CollectionTickets)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCommitChunksLargeSets(t *testing.T) {
	store := memory.NewRecordStore().WithMaxBatchSize(2)
	set := newSet(domain.CollectionTickets, 3, 2)

	result, err := NewCommitter(store).Commit(context.Background(), set)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Chunks)
	assert.Equal(t, []int{2, 2, 1}, store.Batches)
}

func TestCommitEmptySetWritesNothing(t *testing.T) {
	store := memory.NewRecordStore()
	result, err := NewCommitter(store).Commit(context.Background(), newSet(domain.CollectionTickets, 0, 0))
	require.NoError(t, err)

	assert.Zero(t, result.Written())
	assert.Zero(t, result.Chunks)
	assert.Empty(t, store.Batches)
}

func TestCommitFailureKeepsEarlierChunks(t *testing.T) {
	inner := memory.NewRecordStore().WithMaxBatchSize(2)
	store := &failingStore{RecordStore: inner, failFrom: 2}
	set := newSet(domain.CollectionTickets, 4, 0)

	_, err := NewCommitter(store).Commit(context.Background(), set)
	require.Error(t, err)
	assert.ErrorContains(t, err, "commit chunk")

	// The first chunk committed before the failure and stays committed.
	list, listErr := inner.List(context.Background(), domain.CollectionTickets)
	require.NoError(t, listErr)
	assert.Len(t, list, 2)
}
