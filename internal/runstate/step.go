package runstate

import (
	"fmt"
	"time"

	"github.com/hdlforge/hdlforge/internal/classify"
)

// StepState tracks the lifecycle of a single step within a run.
type StepState string

const (
	// StatePending means the step has not started.
	StatePending StepState = "pending"
	// StateRunning means the step is actively executing.
	StateRunning StepState = "running"
	// StateCompleted means the step finished cleanly.
	StateCompleted StepState = "completed"
	// StateWarning means the step finished with warnings but no errors.
	StateWarning StepState = "warning"
	// StateFailed means the step failed.
	StateFailed StepState = "failed"
	// StateSkipped means a later step started before this one ever did.
	StateSkipped StepState = "skipped"
)

// Terminal reports whether the state can no longer change.
func (s StepState) Terminal() bool {
	switch s {
	case StateCompleted, StateWarning, StateFailed, StateSkipped:
		return true
	}
	return false
}

// StepRecord is the mutable per-run record for one step definition. It is
// owned by a RunState and guarded by that run's mutex.
type StepRecord struct {
	Definition classify.StepDefinition
	State      StepState
	StartTime  time.Time
	EndTime    time.Time
	WarnCount  int
	CritCount  int
	ErrCount   int
}

// Duration returns the elapsed time of the step, using now for a step that
// is still running.
func (r *StepRecord) Duration(now time.Time) time.Duration {
	if r.StartTime.IsZero() {
		return 0
	}
	end := r.EndTime
	if end.IsZero() {
		end = now
	}
	return end.Sub(r.StartTime)
}

// CountSummary renders the step's accumulated counts as a compact suffix,
// or an empty string when every counter is zero.
func (r *StepRecord) CountSummary() string {
	if r.WarnCount == 0 && r.CritCount == 0 && r.ErrCount == 0 {
		return ""
	}
	return fmt.Sprintf("[W:%d C:%d E:%d]", r.WarnCount, r.CritCount, r.ErrCount)
}
