package runstate

import (
	"fmt"
	"strings"
	"time"
)

// StepSnapshot is an immutable view of one step for rendering.
type StepSnapshot struct {
	ID          string
	DisplayName string
	State       StepState
	Duration    time.Duration
	WarnCount   int
	CritCount   int
	ErrCount    int
}

// Snapshot is an immutable projection of a RunState taken under its lock.
// The render goroutine works exclusively from snapshots.
type Snapshot struct {
	Name         string
	Operation    string
	ContextName  string
	ArtefactPath string
	LogPath      string
	Overall      StepState
	Elapsed      time.Duration
	TotalWarn    int
	TotalCrit    int
	TotalErr     int
	TimingFailed bool
	TimingReport string
	Message      string
	Steps        []StepSnapshot
}

// Snapshot captures the run's current state for the display.
func (r *RunState) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	snap := Snapshot{
		Name:         r.name,
		Operation:    r.operation,
		ContextName:  r.contextName,
		ArtefactPath: r.artefactPath,
		LogPath:      r.logPath,
		Overall:      r.overall,
		TotalWarn:    r.totalWarn,
		TotalCrit:    r.totalCrit,
		TotalErr:     r.totalErr,
		TimingFailed: r.timingFailed,
		TimingReport: r.timingReport,
	}

	if !r.startTime.IsZero() {
		end := r.endTime
		if end.IsZero() {
			end = now
		}
		snap.Elapsed = end.Sub(r.startTime)
	}

	if r.finalized && r.failed() {
		snap.Message = r.failureMessage()
	}

	snap.Steps = make([]StepSnapshot, 0, len(r.steps))
	for _, rec := range r.steps {
		snap.Steps = append(snap.Steps, StepSnapshot{
			ID:          rec.Definition.ID,
			DisplayName: rec.Definition.DisplayName,
			State:       rec.State,
			Duration:    rec.Duration(now),
			WarnCount:   rec.WarnCount,
			CritCount:   rec.CritCount,
			ErrCount:    rec.ErrCount,
		})
	}

	return snap
}

// CountSummary renders the run's aggregate counts, empty when clean.
func (s Snapshot) CountSummary() string {
	var parts []string
	if s.TotalWarn > 0 {
		parts = append(parts, fmt.Sprintf("W:%d", s.TotalWarn))
	}
	if s.TotalCrit > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", s.TotalCrit))
	}
	if s.TotalErr > 0 {
		parts = append(parts, fmt.Sprintf("E:%d", s.TotalErr))
	}
	return strings.Join(parts, " ")
}
