package domain

import "time"

// ClassificationKind describes how an incoming record relates to the
// local store.
type ClassificationKind string

const (
	// KindNew means no local record shares the natural key.
	KindNew ClassificationKind = "new"

	// KindUpdated means a local record exists and at least one
	// whitelisted field differs.
	KindUpdated ClassificationKind = "updated"

	// KindUnchanged means a local record exists and no whitelisted
	// field differs.
	KindUnchanged ClassificationKind = "unchanged"
)

// Classification is the result of comparing one incoming record against
// local state.
type Classification struct {
	// NaturalKey is the matching key.
	NaturalKey string

	// Kind is the comparison outcome.
	Kind ClassificationKind

	// Incoming is the normalised record from the source.
	Incoming Record

	// Previous is the stored record when Kind is updated or unchanged,
	// kept for the reviewer's reference. Nil for new records.
	Previous *Record
}

// ClassificationSet holds one analysis run's results. It lives only in
// memory for the duration of one analyze-to-commit cycle and is
// discarded on re-analyze, cancel, or successful commit.
type ClassificationSet struct {
	// RunID uniquely identifies the analysis run.
	RunID string

	// Collection is the collection the run analysed.
	Collection Collection

	// New, Updated and Unchanged are each sorted by record timestamp
	// descending, ties broken by source order.
	New       []Classification
	Updated   []Classification
	Unchanged []Classification

	// Skipped counts source rows dropped for an empty natural key.
	Skipped int

	// Deduplicated counts source rows replaced by a later row sharing
	// the same natural key.
	Deduplicated int

	// AnalyzedAt is when classification completed.
	AnalyzedAt time.Time
}

// Pending returns the number of records a commit would write.
func (s *ClassificationSet) Pending() int {
	return len(s.New) + len(s.Updated)
}

// Total returns the number of classified records.
func (s *ClassificationSet) Total() int {
	return len(s.New) + len(s.Updated) + len(s.Unchanged)
}
