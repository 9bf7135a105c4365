package model

import "time"

// Conclusion is a check run's terminal outcome as reported by GitHub.
type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"
	ConclusionSkipped Conclusion = "skipped"
)

// Recordable reports whether the conclusion is one the ledger records.
// Other terminal conclusions (neutral, cancelled, timed_out, action_required)
// are ignored by the trigger filter.
func (c Conclusion) Recordable() bool {
	switch c {
	case ConclusionSuccess, ConclusionFailure, ConclusionSkipped:
		return true
	}
	return false
}

// CheckRunEvent is the subset of a GitHub check_run webhook delivery that the
// recorder consumes. The driving adapter maps go-github event types into this
// struct before handing it to the application layer.
type CheckRunEvent struct {
	Action       string
	AppID        int64  // ID of the GitHub App that created the check run.
	CheckRunID   int64  // GitHub check run ID, used for deduplication.
	RepoFullName string // "owner/repo" of the repository the check ran in.
	HeadSHA      string
	Conclusion   Conclusion
	Summary      string // Markdown summary from the check run output; may be empty.
	PRNumbers    []int  // Pull requests the check run is associated with; may be empty.
}

// Result is one recorded check outcome for a pull request. Rows are
// append-only; the (CheckRunID, PRNumber) pair dedupes webhook redeliveries.
type Result struct {
	ID           int64
	Day          Day
	RepoFullName string
	PRNumber     int
	Conclusion   Conclusion
	Summary      string
	CheckRunID   int64
	RecordedAt   time.Time
}
