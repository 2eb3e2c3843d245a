package domain

import "time"

// SyncType records which path performed a sync run.
type SyncType string

const (
	// SyncManual is an operator-triggered run through the review flow.
	SyncManual SyncType = "manual"

	// SyncAuto is a scheduler-triggered run with no review pause.
	SyncAuto SyncType = "auto"
)

// GuardDateLayout is the calendar-date representation stored in the
// guard. All guard dates are UTC.
const GuardDateLayout = "2006-01-02"

// SyncGuard is the persisted once-per-day lock for a collection's
// automatic sync. It is mutated only on successful commit, so a failed
// run leaves the day open for a retry (fail-open).
type SyncGuard struct {
	// Collection is the collection this guard protects.
	Collection Collection

	// LastSyncDate is the UTC calendar date of the last successful
	// sync, in GuardDateLayout. A manual run stamps this too, which
	// suppresses that day's automatic run.
	LastSyncDate string

	// LastSyncType is the path that performed the last sync.
	LastSyncType SyncType

	// LastRunAt is when the last successful sync completed.
	LastRunAt time.Time

	// UpdatedCount is how many records the last sync wrote.
	UpdatedCount int
}

// SyncDay formats an instant as a guard calendar date in UTC.
func SyncDay(t time.Time) string {
	return t.UTC().Format(GuardDateLayout)
}

// CoversDay reports whether the guard already recorded a sync for the
// day containing now.
func (g *SyncGuard) CoversDay(now time.Time) bool {
	return g != nil && g.LastSyncDate == SyncDay(now)
}

// ReasonAlreadySynced is returned by the automatic path when the guard
// suppressed the run.
const ReasonAlreadySynced = "already_synced"

// AutoSyncResult summarises one invocation of the automatic sync path.
type AutoSyncResult struct {
	// Collection is the collection the run targeted.
	Collection Collection

	// Synced is true when a fetch-classify-commit cycle actually ran.
	Synced bool

	// Reason explains a skipped run (e.g. ReasonAlreadySynced).
	Reason string

	// Created and Updated count committed records when Synced is true.
	Created int
	Updated int

	// Skipped counts rows dropped during normalisation.
	Skipped int
}
