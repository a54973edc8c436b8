package runstate

import (
	"fmt"
	"sync"
	"time"

	"github.com/hdlforge/hdlforge/internal/classify"
)

// RunState is the per-run state machine. It consumes classified events from
// the run's two reader goroutines and is read by the display and by the
// scheduler's result collector. A single mutex guards all mutation.
type RunState struct {
	mu sync.Mutex

	name         string
	operation    string
	contextName  string
	artefactPath string
	logPath      string

	steps        []*StepRecord
	index        map[string]int
	currentIndex int

	overall   StepState
	startTime time.Time
	endTime   time.Time

	totalWarn int
	totalCrit int
	totalErr  int

	markedFailures []string
	errorLines     []string
	timingFailed   bool
	timingReport   string

	finalized bool
	exitCode  int
}

// Result is the collaborator-facing outcome of a finalized run.
type Result struct {
	Name           string
	Operation      string
	Success        bool
	Overall        StepState
	ErrorLines     []string
	MarkedFailures []string
	ExitCode       int
	TotalWarn      int
	TotalCrit      int
	TotalErr       int
	TimingFailed   bool
	TimingReport   string
	LogPath        string
	FailureMessage string
}

// New creates a RunState with the given ordered step definitions. The step
// order is fixed before the first event arrives.
func New(name, operation string, defs []classify.StepDefinition, logPath string) *RunState {
	r := &RunState{
		name:         name,
		operation:    operation,
		logPath:      logPath,
		index:        make(map[string]int, len(defs)),
		currentIndex: -1,
		overall:      StatePending,
	}
	for i, def := range defs {
		r.steps = append(r.steps, &StepRecord{Definition: def, State: StatePending})
		r.index[def.ID] = i
	}
	return r
}

// Name returns the run's name.
func (r *RunState) Name() string { return r.name }

// LogPath returns the persisted log location for this run.
func (r *RunState) LogPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logPath
}

// SetLogPath records where the run's output log is persisted.
func (r *RunState) SetLogPath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logPath = path
}

// Start transitions the run from Pending to Running.
func (r *RunState) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overall == StatePending {
		r.overall = StateRunning
		r.startTime = time.Now()
	}
}

// RecordFailure appends a run-level failure to the structured error list and
// counts it as one error. It bypasses step attribution entirely, so a marked
// step being current cannot suppress it.
func (r *RunState) RecordFailure(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	r.totalErr++
	r.errorLines = append(r.errorLines, msg)
}

// Apply folds one classified event into the run. Info events are a no-op
// here; the pump has already persisted them to the log.
func (r *RunState) Apply(ev classify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return
	}

	switch ev.Type {
	case classify.EventError:
		r.applySeverity(ev)
	case classify.EventCriticalWarning:
		r.applySeverity(ev)
	case classify.EventWarning:
		r.applySeverity(ev)
	case classify.EventStep:
		r.applyStep(ev)
	case classify.EventContext:
		r.contextName = ev.ContextName
	case classify.EventArtefacts:
		r.artefactPath = ev.ArtefactPath
	case classify.EventTiming:
		r.timingReport = ev.ReportPath
		if !ev.TimingPassed {
			r.timingFailed = true
			r.errorLines = append(r.errorLines, "timing analysis failed")
		}
	}
}

// activeRecord returns the step the run is currently inside: the Running
// step if there is one, otherwise the next Pending step in order.
func (r *RunState) activeRecord() (int, *StepRecord) {
	if r.currentIndex >= 0 && r.currentIndex < len(r.steps) {
		if rec := r.steps[r.currentIndex]; rec.State == StateRunning {
			return r.currentIndex, rec
		}
	}
	for i := r.currentIndex + 1; i < len(r.steps); i++ {
		if r.steps[i].State == StatePending {
			return i, r.steps[i]
		}
	}
	return -1, nil
}

func (r *RunState) applySeverity(ev classify.Event) {
	idx, rec := r.activeRecord()

	// Marked steps report their own counts through the marker protocol.
	// Ordinary diagnostics emitted while one is current are tool noise and
	// are suppressed entirely.
	if rec != nil && rec.Definition.Kind == classify.StepMarked {
		if rec.State == StatePending {
			rec.State = StateRunning
			rec.StartTime = time.Now()
			r.currentIndex = idx
		}
		return
	}

	counting := rec != nil && rec.State == StateRunning && rec.Definition.Kind == classify.StepPhased

	switch ev.Type {
	case classify.EventError:
		r.totalErr++
		r.errorLines = append(r.errorLines, ev.Message)
		if counting {
			rec.ErrCount++
		}
	case classify.EventCriticalWarning:
		r.totalCrit++
		if counting {
			rec.CritCount++
		}
	case classify.EventWarning:
		r.totalWarn++
		if counting {
			rec.WarnCount++
		}
	}
}

func (r *RunState) applyStep(ev classify.Event) {
	idx, ok := r.index[ev.StepID]
	if !ok {
		return
	}
	rec := r.steps[idx]

	if ev.Phase == classify.PhaseStart {
		r.advanceTo(idx)
		if rec.State == StatePending {
			rec.State = StateRunning
			rec.StartTime = time.Now()
		}
		return
	}

	// Result phase.
	r.advanceTo(idx)
	if rec.StartTime.IsZero() {
		rec.StartTime = time.Now()
	}

	if ev.Marked {
		r.completeMarked(rec, ev)
		return
	}
	r.completePhased(rec, ev)
}

// advanceTo moves currentIndex forward to idx, closing a still-running
// predecessor and skipping steps that never started. currentIndex never
// rewinds.
func (r *RunState) advanceTo(idx int) {
	if idx <= r.currentIndex {
		return
	}
	if r.currentIndex >= 0 {
		if prev := r.steps[r.currentIndex]; prev.State == StateRunning {
			r.closeByCounts(prev)
		}
	}
	for i := r.currentIndex + 1; i < idx; i++ {
		if r.steps[i].State == StatePending {
			r.steps[i].State = StateSkipped
		}
	}
	r.currentIndex = idx
}

// closeByCounts finishes a step from its accumulated counters when no
// explicit result was observed.
func (r *RunState) closeByCounts(rec *StepRecord) {
	switch {
	case rec.ErrCount > 0:
		rec.State = StateFailed
	case rec.WarnCount > 0 || rec.CritCount > 0:
		rec.State = StateWarning
	default:
		rec.State = StateCompleted
	}
	rec.EndTime = time.Now()
}

func (r *RunState) completeMarked(rec *StepRecord, ev classify.Event) {
	// A re-emitted marker for a step that already closed must not add its
	// counts to the totals again.
	if rec.State.Terminal() {
		return
	}

	rec.WarnCount += ev.WarnCount
	rec.ErrCount += ev.ErrCount
	r.totalWarn += ev.WarnCount
	r.totalErr += ev.ErrCount

	switch ev.Result {
	case classify.ResultError:
		// An explicit error marker forces the step to Failed regardless of
		// any earlier state.
		rec.State = StateFailed
		r.markedFailures = append(r.markedFailures, rec.Definition.DisplayName)
		r.errorLines = append(r.errorLines, fmt.Sprintf("step failed: %s", rec.Definition.DisplayName))
	case classify.ResultWarning:
		if rec.State != StateFailed {
			rec.State = StateWarning
		}
	default:
		if rec.State != StateFailed {
			rec.State = StateCompleted
		}
	}
	rec.EndTime = time.Now()
}

func (r *RunState) completePhased(rec *StepRecord, ev classify.Event) {
	if rec.State.Terminal() {
		return
	}

	if ev.Result == classify.ResultError {
		// The failure phrase itself counts as one tool error so the run
		// fails even when no separate error line was emitted.
		rec.ErrCount++
		r.totalErr++
		r.errorLines = append(r.errorLines, ev.Message)
		rec.State = StateFailed
		rec.EndTime = time.Now()
		return
	}

	// Completion pattern: the inferred success is overridable by counts
	// accumulated while the step ran.
	switch {
	case rec.ErrCount > 0:
		rec.State = StateFailed
	case rec.WarnCount > 0 || rec.CritCount > 0 || ev.Result == classify.ResultWarning:
		rec.State = StateWarning
	default:
		rec.State = StateCompleted
	}
	rec.EndTime = time.Now()
}

// Finalize closes the run once the process has exited and both readers have
// drained. A second call is a no-op returning the same result.
func (r *RunState) Finalize(exitCode int) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return r.result()
	}
	r.finalized = true
	r.exitCode = exitCode
	r.endTime = time.Now()

	for _, rec := range r.steps {
		switch rec.State {
		case StateRunning:
			if exitCode != 0 || rec.ErrCount > 0 {
				rec.State = StateFailed
			} else if rec.WarnCount > 0 || rec.CritCount > 0 {
				rec.State = StateWarning
			} else {
				rec.State = StateCompleted
			}
			rec.EndTime = r.endTime
		case StatePending:
			rec.State = StateSkipped
		}
	}

	if exitCode != 0 && len(r.errorLines) == 0 {
		r.errorLines = append(r.errorLines, fmt.Sprintf("process exited with code %d", exitCode))
	}

	switch {
	case r.failed():
		r.overall = StateFailed
	case r.totalWarn > 0 || r.totalCrit > 0 || r.anyStepWarned():
		r.overall = StateWarning
	default:
		r.overall = StateCompleted
	}

	return r.result()
}

func (r *RunState) failed() bool {
	return len(r.markedFailures) > 0 || r.totalErr > 0 || r.timingFailed || r.exitCode != 0
}

func (r *RunState) anyStepWarned() bool {
	for _, rec := range r.steps {
		if rec.State == StateWarning {
			return true
		}
	}
	return false
}

func (r *RunState) result() Result {
	res := Result{
		Name:           r.name,
		Operation:      r.operation,
		Success:        !r.failed(),
		Overall:        r.overall,
		ErrorLines:     append([]string(nil), r.errorLines...),
		MarkedFailures: append([]string(nil), r.markedFailures...),
		ExitCode:       r.exitCode,
		TotalWarn:      r.totalWarn,
		TotalCrit:      r.totalCrit,
		TotalErr:       r.totalErr,
		TimingFailed:   r.timingFailed,
		TimingReport:   r.timingReport,
		LogPath:        r.logPath,
	}
	if !res.Success {
		res.FailureMessage = r.failureMessage()
	}
	return res
}

func (r *RunState) failureMessage() string {
	switch {
	case len(r.markedFailures) > 0:
		return fmt.Sprintf("%s failed with %d step error(s)", r.operation, len(r.markedFailures))
	case r.timingFailed:
		return fmt.Sprintf("%s failed - timing violations", r.operation)
	case r.totalErr > 0:
		return fmt.Sprintf("%s failed with %d tool error(s)", r.operation, r.totalErr)
	default:
		return fmt.Sprintf("%s failed (exit code %d)", r.operation, r.exitCode)
	}
}
