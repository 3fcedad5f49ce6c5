package organizer

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"recsort/internal/partition"
)

// Phase names used in failures, observer events and the journal.
const (
	PhaseScan      = "scan"
	PhaseCopy      = "copy"
	PhaseCluster   = "cluster"
	PhasePartition = "partition"
)

// MediaFile tracks one source file through a run.
type MediaFile struct {
	Source    string
	Name      string
	Extension string
	Taken     *time.Time
	Dest      string
}

// Failure is a per-file problem that did not stop the run.
type Failure struct {
	Phase string
	Path  string
	Err   error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Phase, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// BucketSummary describes one clustered year or year/month folder.
type BucketSummary struct {
	Root  string
	Key   string
	Files int
}

// Report summarizes a run.
type Report struct {
	RunID       string
	Source      string
	Destination string
	Policy      string
	StartedAt   time.Time
	FinishedAt  time.Time

	Scanned   int
	Copied    int
	Dated     int
	Undated   int
	Clustered int
	Buckets   []BucketSummary
	Partition partition.Result
	Failures  []Failure
}

// Err combines every failure into one error, or nil for a clean run.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Duration returns the wall-clock time of the run.
func (r *Report) Duration() time.Duration {
	if r == nil || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) addFailure(phase, path string, err error) {
	r.Failures = append(r.Failures, Failure{Phase: phase, Path: path, Err: err})
}
