package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-ops/opsync/internal/adapters/driven/storage/memory"
	"github.com/caldera-ops/opsync/internal/core/domain"
)

func TestDedupeLastWinsWholeRecord(t *testing.T) {
	early := domain.Record{NaturalKey: "T-1", Status: "Open", Remark: "first note"}
	late := domain.Record{NaturalKey: "T-1", Status: "Closed"}

	out, replaced := Dedupe([]domain.Record{early, late})

	require.Len(t, out, 1)
	assert.Equal(t, 1, replaced)
	assert.Equal(t, "Closed", out[0].Status)
	// The later record replaces the earlier one wholesale; fields the
	// later record left empty do not inherit from the earlier one.
	assert.Equal(t, "", out[0].Remark)
}

func TestDedupeKeepsFirstOccurrenceOrder(t *testing.T) {
	out, replaced := Dedupe([]domain.Record{
		{NaturalKey: "A", Status: "1"},
		{NaturalKey: "B", Status: "1"},
		{NaturalKey: "A", Status: "2"},
		{NaturalKey: "C", Status: "1"},
	})

	require.Len(t, out, 3)
	assert.Equal(t, 1, replaced)
	assert.Equal(t, "A", out[0].NaturalKey)
	assert.Equal(t, "2", out[0].Status)
	assert.Equal(t, "B", out[1].NaturalKey)
	assert.Equal(t, "C", out[2].NaturalKey)
}

func TestDedupeNoDuplicates(t *testing.T) {
	in := []domain.Record{{NaturalKey: "A"}, {NaturalKey: "B"}}
	out, replaced := Dedupe(in)
	assert.Equal(t, in, out)
	assert.Zero(t, replaced)
}

func TestClassifySplitsNewUpdatedUnchanged(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.UpsertBatch(ctx, domain.CollectionTickets, []domain.Record{
		{NaturalKey: "T-1", Status: "Open", Subject: "Printer jam"},
		{NaturalKey: "T-2", Status: "Open", Subject: "VPN down"},
	}))

	classifier := NewClassifier(store, nil)
	set, err := classifier.Classify(ctx, domain.CollectionTickets, []domain.Record{
		{NaturalKey: "T-1", Status: "Open", Subject: "Printer jam"},
		{NaturalKey: "T-2", Status: "Closed", Subject: "VPN down"},
		{NaturalKey: "T-3", Status: "Open", Subject: "New laptop"},
	})
	require.NoError(t, err)

	require.Len(t, set.New, 1)
	require.Len(t, set.Updated, 1)
	require.Len(t, set.Unchanged, 1)
	assert.Equal(t, "T-3", set.New[0].NaturalKey)
	assert.Equal(t, "T-2", set.Updated[0].NaturalKey)
	assert.Equal(t, "T-1", set.Unchanged[0].NaturalKey)

	assert.Nil(t, set.New[0].Previous)
	require.NotNil(t, set.Updated[0].Previous)
	assert.Equal(t, "Open", set.Updated[0].Previous.Status)
	assert.NotEmpty(t, set.RunID)
	assert.Equal(t, 2, set.Pending())
	assert.Equal(t, 3, set.Total())
}

func TestClassifyFieldOutsideWhitelistIsUnchanged(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.UpsertBatch(ctx, domain.CollectionTickets, []domain.Record{
		{NaturalKey: "T-1", Status: "Open", Remark: "old remark"},
	}))

	// Whitelist narrowed to status; remark changes must not count.
	classifier := NewClassifier(store, []string{domain.FieldStatus})
	set, err := classifier.Classify(ctx, domain.CollectionTickets, []domain.Record{
		{NaturalKey: "T-1", Status: "Open", Remark: "completely different remark"},
	})
	require.NoError(t, err)

	assert.Empty(t, set.Updated)
	require.Len(t, set.Unchanged, 1)
	assert.Equal(t, "T-1", set.Unchanged[0].NaturalKey)
}

func TestClassifyMatchesOnTrimmedKey(t *testing.T) {
	store := memory.NewRecordStore()
	ctx := context.Background()
	require.NoError(t, store.UpsertBatch(ctx, domain.CollectionTickets, []domain.Record{
		{NaturalKey: "T-1", Status: "Open"},
	}))

	classifier := NewClassifier(store, nil)
	set, err := classifier.Classify(ctx, domain.CollectionTickets, []domain.Record{
		{NaturalKey: "  T-1  ", Status: "Open"},
	})
	require.NoError(t, err)

	assert.Empty(t, set.New)
	require.Len(t, set.Unchanged, 1)
}

func TestClassifySortsByTimestampDescending(t *testing.T) {
	store := memory.NewRecordStore()
	classifier := NewClassifier(store, nil)

	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	}
	set, err := classifier.Classify(context.Background(), domain.CollectionTickets, []domain.Record{
		{NaturalKey: "old", Timestamp: day(1)},
		{NaturalKey: "tie-a", Timestamp: day(10)},
		{NaturalKey: "newest", Timestamp: day(20)},
		{NaturalKey: "tie-b", Timestamp: day(10)},
	})
	require.NoError(t, err)

	require.Len(t, set.New, 4)
	assert.Equal(t, "newest", set.New[0].NaturalKey)
	// Equal timestamps keep source order.
	assert.Equal(t, "tie-a", set.New[1].NaturalKey)
	assert.Equal(t, "tie-b", set.New[2].NaturalKey)
	assert.Equal(t, "old", set.New[3].NaturalKey)
}

func TestClassifyEmptyStoreEverythingNew(t *testing.T) {
	classifier := NewClassifier(memory.NewRecordStore(), nil)
	set, err := classifier.Classify(context.Background(), domain.CollectionIncidents, []domain.Record{
		{NaturalKey: "INC-1"},
		{NaturalKey: "INC-2"},
	})
	require.NoError(t, err)
	assert.Len(t, set.New, 2)
	assert.Empty(t, set.Updated)
	assert.Empty(t, set.Unchanged)
}
