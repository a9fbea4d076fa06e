package history

import "time"

// Status is the lifecycle state of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Run is one row of the ledger.
type Run struct {
	ID             string
	URL            string
	OutputType     string
	Artifact       string
	FrameCount     int
	FramesCaptured int
	Bytes          int64
	Status         Status
	ErrorKind      string
	ErrorMessage   string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Outcome describes how a run ended.
type Outcome struct {
	Status         Status
	FramesCaptured int
	Bytes          int64
	ErrorKind      string
	ErrorMessage   string
	FinishedAt     time.Time
}

// Elapsed is the wall time of a finished run, or zero while it is running.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
