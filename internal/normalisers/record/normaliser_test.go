package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

func testAliases() AliasTable {
	return AliasTable{
		domain.FieldNaturalKey: {"ticketNo", "ticketNumber"},
		domain.FieldStatus:     {"status", "ticketStatus"},
		domain.FieldSeverity:   {"severity"},
		domain.FieldSubject:    {"description", "subject"},
		domain.FieldTimestamp:  {"reportedAt", "createdDate"},
	}
}

func testDefaults() Defaults {
	return Defaults{
		domain.FieldStatus:   "Open",
		domain.FieldSeverity: "Low",
		domain.FieldSubject:  "-",
	}
}

func TestNormalise_FirstAliasWins(t *testing.T) {
	n := New(testAliases(), testDefaults())

	rec, ok := n.Normalise(domain.RawRecord{
		"ticketNo":     "TCK-1",
		"ticketNumber": "TCK-IGNORED",
		"status":       "Pending",
	})

	require.True(t, ok)
	assert.Equal(t, "TCK-1", rec.NaturalKey)
	assert.Equal(t, "Pending", rec.Status)
}

func TestNormalise_LaterAliasWhenFirstEmpty(t *testing.T) {
	n := New(testAliases(), testDefaults())

	rec, ok := n.Normalise(domain.RawRecord{
		"ticketNo":    "",
		"ticketNumber": "TCK-2",
		"description": "",
		"subject":     "printer on fire",
	})

	require.True(t, ok)
	assert.Equal(t, "TCK-2", rec.NaturalKey)
	assert.Equal(t, "printer on fire", rec.Subject)
}

func TestNormalise_DefaultsApplied(t *testing.T) {
	n := New(testAliases(), testDefaults())

	rec, ok := n.Normalise(domain.RawRecord{"ticketNo": "TCK-3"})

	require.True(t, ok)
	assert.Equal(t, "Open", rec.Status)
	assert.Equal(t, "Low", rec.Severity)
	assert.Equal(t, "-", rec.Subject)
	// Fields without a configured default resolve to empty, never
	// absent.
	assert.Equal(t, "", rec.Assignee)
}

func TestNormalise_NumericValuesStringified(t *testing.T) {
	n := New(testAliases(), testDefaults())

	rec, ok := n.Normalise(domain.RawRecord{
		"ticketNo": float64(4711), // JSON numbers decode as float64
		"severity": float64(2),
	})

	require.True(t, ok)
	assert.Equal(t, "4711", rec.NaturalKey)
	assert.Equal(t, "2", rec.Severity)
}

func TestNormalise_TimestampResolved(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	n := New(testAliases(), testDefaults()).WithClock(func() time.Time { return now })

	rec, ok := n.Normalise(domain.RawRecord{
		"ticketNo":   "TCK-5",
		"reportedAt": "15/3/24",
	})

	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), rec.Timestamp)
}

func TestNormalise_MissingTimestampFallsBackToClock(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	n := New(testAliases(), testDefaults()).WithClock(func() time.Time { return now })

	rec, ok := n.Normalise(domain.RawRecord{"ticketNo": "TCK-6"})

	require.True(t, ok)
	assert.Equal(t, now, rec.Timestamp)
}

func TestNormalise_EmptyKeyDropped(t *testing.T) {
	n := New(testAliases(), testDefaults())

	_, ok := n.Normalise(domain.RawRecord{"status": "Open"})
	assert.False(t, ok)

	_, ok = n.Normalise(domain.RawRecord{"ticketNo": "   "})
	assert.False(t, ok)
}

func TestNormaliseAll_TalliesSkipped(t *testing.T) {
	n := New(testAliases(), testDefaults())

	records, skipped := n.NormaliseAll([]domain.RawRecord{
		{"ticketNo": "TCK-1"},
		{"status": "Open"}, // no key
		{"ticketNo": "TCK-2"},
		{"ticketNo": ""}, // empty key
	})

	assert.Len(t, records, 2)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "TCK-1", records[0].NaturalKey)
	assert.Equal(t, "TCK-2", records[1].NaturalKey)
}
