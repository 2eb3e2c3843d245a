package domain

// ReviewState is the current phase of a collection's analyze-confirm
// workflow. Each collection owns exactly one state value; it is never
// shared global state.
type ReviewState string

const (
	// ReviewIdle is the initial and reset state. No classification is
	// held.
	ReviewIdle ReviewState = "idle"

	// ReviewAnalyzing means the fetch-normalise-classify chain is
	// running.
	ReviewAnalyzing ReviewState = "analyzing"

	// ReviewReviewing means a classification is held in memory and the
	// operator may confirm, cancel, or re-analyze. This state has no
	// timeout; it is user-paced.
	ReviewReviewing ReviewState = "reviewing"

	// ReviewCommitting means accepted changes are being written.
	ReviewCommitting ReviewState = "committing"

	// ReviewDone means the last cycle committed successfully.
	ReviewDone ReviewState = "done"

	// ReviewFailed means the last commit attempt failed. The
	// classification is preserved, so the operator can retry commit
	// without re-fetching, or re-analyze, or cancel.
	ReviewFailed ReviewState = "failed"
)

// String returns the state name.
func (s ReviewState) String() string {
	return string(s)
}
