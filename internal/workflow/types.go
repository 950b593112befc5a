package workflow

import (
	"time"

	"scenepack/internal/ledger"
	"scenepack/internal/services"
)

// OutcomeStatus is the result of one folder within a run.
type OutcomeStatus string

const (
	OutcomeProcessed OutcomeStatus = "processed"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// Skip reasons reported in Outcome.Reason besides those of the packetizer.
const (
	ReasonNameCollision   = "name_collision"
	ReasonUnnamed         = "unnamed_folder"
	ReasonInputIncomplete = "input_incomplete"
	ReasonEmptyFeatureSet = "empty_feature_set"
)

// Outcome records what happened to one movie folder.
type Outcome struct {
	Movie         string        `json:"movie"`
	Source        string        `json:"source"`
	Status        OutcomeStatus `json:"status"`
	Reason        string        `json:"reason,omitempty"`
	Kind          services.Kind `json:"error_kind,omitempty"`
	Error         string        `json:"error,omitempty"`
	Output        string        `json:"output,omitempty"`
	Records       int           `json:"records"`
	Packets       int           `json:"packets"`
	Boundaries    int           `json:"boundaries,omitempty"`
	LowConfidence int           `json:"low_confidence,omitempty"`
	Corrupt       int           `json:"corrupt,omitempty"`
	Resumed       bool          `json:"resumed,omitempty"`
	Duration      time.Duration `json:"duration_ns"`

	Err error `json:"-"`
}

// Summary is the result of running one stage over its input root.
type Summary struct {
	RunID    string        `json:"run_id"`
	Stage    string        `json:"stage"`
	Input    string        `json:"input"`
	Output   string        `json:"output"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Canceled bool          `json:"canceled,omitempty"`
	Outcomes []Outcome     `json:"outcomes"`
}

// Totals counts the outcomes by status.
func (s *Summary) Totals() ledger.Totals {
	var totals ledger.Totals
	if s == nil {
		return totals
	}
	for _, o := range s.Outcomes {
		switch o.Status {
		case OutcomeProcessed:
			totals.Processed++
		case OutcomeSkipped:
			totals.Skipped++
		case OutcomeFailed:
			totals.Failed++
		}
	}
	return totals
}

// Failed returns the outcomes that failed.
func (s *Summary) Failed() []Outcome {
	if s == nil {
		return nil
	}
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Status == OutcomeFailed {
			failed = append(failed, o)
		}
	}
	return failed
}
