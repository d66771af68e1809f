package model

import "time"

// JobState is the lifecycle state of one simulation job.
type JobState int

const (
	JobPending JobState = iota
	JobRunning
	JobAwaitingOutput
	JobSucceeded
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobAwaitingOutput:
		return "awaiting_output"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SimulationJob is one invocation of the external simulator against one input
// deck. It is created when enqueued and mutated only by the runner goroutine
// that owns it; the working directory is removed on terminal state regardless
// of outcome.
type SimulationJob struct {
	Input    string    `json:"input"`              // source input deck path
	WorkDir  string    `json:"work_dir"`           // unique per-job working directory
	State    JobState  `json:"state"`              // lifecycle state
	Artifact string    `json:"artifact,omitempty"` // relocated result file on success
	Error    string    `json:"error,omitempty"`    // failure kind + detail
	Started  time.Time `json:"started,omitempty"`
	Finished time.Time `json:"finished,omitempty"`
}
