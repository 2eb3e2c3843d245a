package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormaliseAt_ISOInput(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got := NormaliseAt("2024-03-15T10:30:00Z", now)

	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), got)
}

func TestNormaliseAt_DateOnly(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got := NormaliseAt("2024-03-15", now)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestNormaliseAt_DayFirstTwoDigitYear(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got := NormaliseAt("15/3/24", now)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestNormaliseAt_DayFirstTwoDigitYearPadded(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got := NormaliseAt("05/03/24", now)

	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestNormaliseAt_DayFirstFourDigitYear(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got := NormaliseAt("15/3/2024", now)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestNormaliseAt_TwoDigitYearCenturyCorrection(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// "98" parses below 2000 and gains a century rather than staying
	// in the nineties.
	got := NormaliseAt("1/1/98", now)

	assert.Equal(t, 2098, got.Year())
}

func TestNormaliseAt_UnparseableFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	got := NormaliseAt("not-a-date", now)

	assert.Equal(t, now, got)
}

func TestNormaliseAt_EmptyFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now, NormaliseAt("", now))
	assert.Equal(t, now, NormaliseAt("   ", now))
}

func TestNormalise_NeverZero(t *testing.T) {
	got := Normalise("garbage in")

	assert.False(t, got.IsZero())
}
