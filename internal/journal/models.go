package journal

import "time"

// Phase names the organizer step an entry belongs to.
type Phase string

const (
	PhaseCopy      Phase = "copy"
	PhaseCluster   Phase = "cluster"
	PhasePartition Phase = "partition"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// Run is one recorded sort run.
type Run struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Source      string
	Destination string
	Policy      string
	Status      string
	Summary
}

// Summary holds the counters written when a run finishes.
type Summary struct {
	Copied    int
	Clustered int
	Moved     int
	Failures  int
}

// Entry is one file-level event within a run. Error is empty on success.
type Entry struct {
	Seq         int
	Phase       Phase
	Source      string
	Destination string
	Error       string
}

// Finished reports whether the run recorded a finish time.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Duration returns how long a finished run took, or zero.
func (r Run) Duration() time.Duration {
	if !r.Finished() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
