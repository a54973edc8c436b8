package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testSteps() []StepDefinition {
	return []StepDefinition{
		{
			ID:          "setup_sources",
			DisplayName: "Loading HDL Sources",
			Kind:        StepMarked,
			Patterns:    []string{`\[STEP_[A-Z]+\] setup::load_sources`},
		},
		{
			ID:            "synthesis",
			DisplayName:   "Synthesis",
			Kind:          StepPhased,
			StartPatterns: []string{`Launching Runs -- Synthesis`},
			DonePatterns:  []string{`synth_design completed successfully`},
			FailPatterns:  []string{`synth_design failed`},
		},
	}
}

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(testSteps())
	require.NoError(t, err)
	return c
}

func TestNewClassifier_RejectsInvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewClassifier([]StepDefinition{
		{ID: "bad", Kind: StepPhased, StartPatterns: []string{`([`}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad")
}

func TestClassify_Severities(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	tests := []struct {
		name string
		line string
		want EventType
	}{
		{"empty line", "", EventInfo},
		{"whitespace only", "   \t ", EventInfo},
		{"plain output", "Reading design checkpoint", EventInfo},
		{"tool error prefix", "ERROR: [Synth 8-439] module not found", EventError},
		{"lowercase error prefix", "error: something broke", EventError},
		{"bracketed error", "[ERROR] cannot open file", EventError},
		{"tool warning prefix", "WARNING: [Synth 8-32] unused port", EventWarning},
		{"critical warning", "CRITICAL WARNING: [Timing 38-282] path unconstrained", EventCriticalWarning},
		{"false positive error_count", "error_count set to 0", EventInfo},
		{"false positive no error", "Command finished with no errors", EventInfo},
		{"false positive warning_msg", "set warning_msg {}", EventInfo},
		{"error keyword mid line", "the previous error was recovered", EventInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := c.Classify(tt.line)
			require.Equal(t, tt.want, ev.Type)
		})
	}
}

func TestClassify_CriticalBeforeWarning(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	// The line matches both the critical and the plain warning patterns; it
	// must land in exactly one bucket.
	ev := c.Classify("CRITICAL WARNING: clock constraint missing")
	require.Equal(t, EventCriticalWarning, ev.Type)
}

func TestClassify_MarkedStep(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	t.Run("success marker", func(t *testing.T) {
		ev := c.Classify("[STEP_SUCCESS] setup::load_sources")
		require.Equal(t, EventStep, ev.Type)
		require.Equal(t, "setup_sources", ev.StepID)
		require.Equal(t, PhaseResult, ev.Phase)
		require.Equal(t, ResultSuccess, ev.Result)
		require.True(t, ev.Marked)
	})

	t.Run("warning marker with counts", func(t *testing.T) {
		ev := c.Classify("[STEP_WARNING] setup::load_sources [W:3 E:0]")
		require.Equal(t, ResultWarning, ev.Result)
		require.Equal(t, 3, ev.WarnCount)
		require.Equal(t, 0, ev.ErrCount)
	})

	t.Run("error marker with counts", func(t *testing.T) {
		ev := c.Classify("[STEP_ERROR] setup::load_sources [W:2 E:1]")
		require.Equal(t, ResultError, ev.Result)
		require.Equal(t, 2, ev.WarnCount)
		require.Equal(t, 1, ev.ErrCount)
	})

	t.Run("marker without counts defaults to zero", func(t *testing.T) {
		ev := c.Classify("[STEP_ERROR] setup::load_sources")
		require.Equal(t, ResultError, ev.Result)
		require.Zero(t, ev.WarnCount)
		require.Zero(t, ev.ErrCount)
	})
}

func TestClassify_UnregisteredMarkerIsInfo(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	// An unknown [STEP_ERROR] line must not fall through to the error
	// heuristics, or the failure would be counted twice.
	ev := c.Classify("[STEP_ERROR] setup::unknown_procedure [W:0 E:1]")
	require.Equal(t, EventInfo, ev.Type)
}

func TestClassify_PhasedStep(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	start := c.Classify("Launching Runs -- Synthesis")
	require.Equal(t, EventStep, start.Type)
	require.Equal(t, "synthesis", start.StepID)
	require.Equal(t, PhaseStart, start.Phase)
	require.False(t, start.Marked)

	done := c.Classify("synth_design completed successfully")
	require.Equal(t, PhaseResult, done.Phase)
	require.Equal(t, ResultSuccess, done.Result)

	fail := c.Classify("synth_design failed with errors")
	require.Equal(t, PhaseResult, fail.Phase)
	require.Equal(t, ResultError, fail.Result)
}

func TestClassify_Tags(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	t.Run("context", func(t *testing.T) {
		ev := c.Classify("[CONTEXT] name=fpga_top rev=2")
		require.Equal(t, EventContext, ev.Type)
		require.Equal(t, "fpga_top", ev.ContextName)
	})

	t.Run("context without name is info", func(t *testing.T) {
		ev := c.Classify("[CONTEXT] rev=2")
		require.Equal(t, EventInfo, ev.Type)
	})

	t.Run("artefacts", func(t *testing.T) {
		ev := c.Classify("[ARTEFACTS] /build/out/fpga_top")
		require.Equal(t, EventArtefacts, ev.Type)
		require.Equal(t, "/build/out/fpga_top", ev.ArtefactPath)
	})

	t.Run("timing passed", func(t *testing.T) {
		ev := c.Classify("[TIMING_RESULT] status=PASSED report=timing.rpt")
		require.Equal(t, EventTiming, ev.Type)
		require.True(t, ev.TimingPassed)
		require.Equal(t, "timing.rpt", ev.ReportPath)
	})

	t.Run("timing failed", func(t *testing.T) {
		ev := c.Classify("[TIMING_RESULT] status=FAILED report=timing.rpt")
		require.Equal(t, EventTiming, ev.Type)
		require.False(t, ev.TimingPassed)
	})

	t.Run("timing without status is info", func(t *testing.T) {
		ev := c.Classify("[TIMING_RESULT] report=timing.rpt")
		require.Equal(t, EventInfo, ev.Type)
	})
}

func TestClassify_TagBeatsHeuristics(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	// A tag on a line that would otherwise match a severity pattern is still
	// classified by the tag tier.
	ev := c.Classify("WARNING: [TIMING_RESULT] status=FAILED")
	require.Equal(t, EventTiming, ev.Type)
}

func TestClassify_FirstDefinitionWins(t *testing.T) {
	t.Parallel()

	c, err := NewClassifier([]StepDefinition{
		{ID: "first", Kind: StepPhased, StartPatterns: []string{`shared phrase`}},
		{ID: "second", Kind: StepPhased, StartPatterns: []string{`shared phrase`}},
	})
	require.NoError(t, err)

	ev := c.Classify("shared phrase observed")
	require.Equal(t, "first", ev.StepID)
}
