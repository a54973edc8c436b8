package classify

// StepKind separates the two step-detection regimes. Marked steps report
// their outcome through an explicit bracketed marker emitted by the driver
// script; phased steps are coarser tool stages detected only through
// free-text start/completion/failure phrases.
type StepKind string

const (
	// StepMarked steps complete only via an explicit [STEP_*] marker.
	StepMarked StepKind = "marked"
	// StepPhased steps are tracked through start/done/fail phrase patterns.
	StepPhased StepKind = "phased"
)

// StepDefinition describes one named step of an operation. Definitions are
// supplied by the operation registry and immutable for the lifetime of a run.
type StepDefinition struct {
	ID          string
	DisplayName string
	Kind        StepKind

	// Patterns match marker lines for marked steps.
	Patterns []string

	// StartPatterns, DonePatterns and FailPatterns apply to phased steps.
	StartPatterns []string
	DonePatterns  []string
	FailPatterns  []string
}
