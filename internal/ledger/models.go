package ledger

import (
	"fmt"
	"time"
)

// Status is a movie's position in the per-stage state machine.
type Status string

const (
	StatusDiscovered     Status = "discovered"
	StatusSkipped        Status = "skipped"
	StatusPacketized     Status = "packetized"
	StatusMerged         Status = "merged"
	StatusScored         Status = "scored"
	StatusSegmented      Status = "segmented"
	StatusShotPacketized Status = "shot_packetized"
	StatusAggregated     Status = "aggregated"
	StatusFailed         Status = "failed"
)

var transitions = map[Status][]Status{
	StatusDiscovered: {StatusSkipped, StatusPacketized, StatusMerged},
	StatusMerged:     {StatusScored, StatusAggregated},
	StatusScored:     {StatusSegmented},
	StatusSegmented:  {StatusShotPacketized},
}

// Terminal reports whether no further transition leaves status.
func (s Status) Terminal() bool {
	switch s {
	case StatusSkipped, StatusPacketized, StatusShotPacketized, StatusAggregated, StatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether from may move to to. Any non-terminal status
// may fail.
func CanTransition(from, to Status) bool {
	if to == StatusFailed {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrInvalidTransition is returned for a transition the state machine forbids.
type ErrInvalidTransition struct {
	Movie    string
	From, To Status
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("movie %s: invalid transition %s -> %s", e.Movie, e.From, e.To)
}

// RunStatus is the outcome of a whole batch run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
)

// Run is one invocation of a stage over a root.
type Run struct {
	ID           string    `json:"id"`
	Stage        string    `json:"stage"`
	Status       RunStatus `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Processed    int       `json:"processed"`
	Skipped      int       `json:"skipped"`
	Failed       int       `json:"failed"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// Movie is the ledger row for one movie folder within a run.
type Movie struct {
	RunID        string    `json:"run_id"`
	Name         string    `json:"name"`
	SourcePath   string    `json:"source_path"`
	Status       Status    `json:"status"`
	Packets      int       `json:"packets"`
	Records      int       `json:"records"`
	Boundaries   int       `json:"boundaries"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Detail carries the counters recorded alongside a transition. Zero values
// leave the stored counters unchanged.
type Detail struct {
	Packets      int
	Records      int
	Boundaries   int
	ErrorKind    string
	ErrorMessage string
}

// Transition is one entry of the transition log.
type Transition struct {
	RunID string
	Movie string
	From  Status
	To    Status
	At    time.Time
}

// Totals summarizes a run's movie outcomes.
type Totals struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// DatabaseHealth captures diagnostic information about the ledger database.
type DatabaseHealth struct {
	DBPath         string
	DatabaseExists bool
	SchemaVersion  int
	IntegrityOK    bool
	Runs           int
	Movies         int
	Error          string
}
