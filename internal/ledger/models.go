package ledger

import (
	"strings"
	"time"
)

// Status is the outcome of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	// StatusFailed runs can be retried as-is.
	StatusFailed Status = "failed"
	// StatusBlocked runs need operator action (bad input, missing file, held lock).
	StatusBlocked Status = "blocked"
)

// Kind names the pipeline operation a run performed.
type Kind string

const (
	KindUpdate  Kind = "update"
	KindClean   Kind = "clean"
	KindApprove Kind = "approve"
)

// ParseStatus converts a string into a Status, defaulting to false when unknown.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusRunning:
		return StatusRunning, true
	case StatusSucceeded:
		return StatusSucceeded, true
	case StatusFailed:
		return StatusFailed, true
	case StatusBlocked:
		return StatusBlocked, true
	}
	return "", false
}

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusBlocked
}

// Stats summarizes what a run changed.
type Stats struct {
	Candidates int
	New        int
	Updated    int
	Missing    int
	Dropped    int
	Flagged    int
}

// Run is one pass of one operation over one organization.
type Run struct {
	ID           string
	Organization string
	Kind         Kind
	Status       Status
	StartedAt    time.Time
	FinishedAt   time.Time
	ErrorMessage string
	Stats        Stats
}

// Duration returns the elapsed run time, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Organization is the ledger's view of one organization.
type Organization struct {
	Name       string
	Starred    bool
	LastStatus Status
	LastKind   Kind
	LastRunAt  time.Time
}
