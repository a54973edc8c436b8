package classify

// EventType identifies the classification assigned to a single output line.
type EventType string

const (
	// EventInfo marks a line with no actionable content.
	EventInfo EventType = "info"
	// EventError marks a line matching the generic error heuristic.
	EventError EventType = "error"
	// EventCriticalWarning marks a line matching the critical-warning heuristic.
	EventCriticalWarning EventType = "critical_warning"
	// EventWarning marks a line matching the plain warning heuristic.
	EventWarning EventType = "warning"
	// EventStep marks a line matching a registered step definition.
	EventStep EventType = "step"
	// EventContext carries a machine-readable context name.
	EventContext EventType = "context"
	// EventArtefacts carries the build artefacts path.
	EventArtefacts EventType = "artefacts"
	// EventTiming carries a timing analysis verdict.
	EventTiming EventType = "timing"
)

// StepPhase distinguishes a step starting from a step reporting its result.
type StepPhase string

const (
	// PhaseStart indicates the step has begun.
	PhaseStart StepPhase = "start"
	// PhaseResult indicates the step has finished and carries a result.
	PhaseResult StepPhase = "result"
)

// StepResult is the outcome reported by a step marker or inferred from a
// completion pattern.
type StepResult string

const (
	// ResultSuccess indicates the step completed cleanly.
	ResultSuccess StepResult = "success"
	// ResultWarning indicates the step completed with warnings.
	ResultWarning StepResult = "warning"
	// ResultError indicates the step failed.
	ResultError StepResult = "error"
)

// Event is the result of classifying one line of tool output. Exactly one
// Event is produced per input line; fields beyond Type and Message are
// populated only for the matching classification.
type Event struct {
	Type    EventType
	Message string

	// Step marker fields (Type == EventStep).
	StepID    string
	Phase     StepPhase
	Result    StepResult
	WarnCount int
	ErrCount  int
	Marked    bool

	// Machine-readable tag payloads.
	ContextName  string
	ArtefactPath string
	TimingPassed bool
	ReportPath   string
}
