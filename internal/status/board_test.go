package status

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdlforge/hdlforge/internal/classify"
	"github.com/hdlforge/hdlforge/internal/runstate"
)

func newRun(name string) *runstate.RunState {
	return runstate.New(name, "build", nil, "")
}

func TestBoard_SnapshotsPreserveOrder(t *testing.T) {
	t.Parallel()

	b := NewBoard("build: 3 project(s)")
	b.Add(newRun("gamma"))
	b.Add(newRun("alpha"))
	b.Add(newRun("beta"))

	snaps := b.Snapshots()
	require.Len(t, snaps, 3)
	require.Equal(t, "gamma", snaps[0].Name)
	require.Equal(t, "alpha", snaps[1].Name)
	require.Equal(t, "beta", snaps[2].Name)
}

func TestBoard_ReAddKeepsPosition(t *testing.T) {
	t.Parallel()

	b := NewBoard("batch")
	b.Add(newRun("alpha"))
	b.Add(newRun("beta"))

	replacement := newRun("alpha")
	b.Add(replacement)

	snaps := b.Snapshots()
	require.Len(t, snaps, 2)
	require.Equal(t, "alpha", snaps[0].Name)
	require.Same(t, replacement, b.Get("alpha"))
}

func TestBoard_GetUnknownRun(t *testing.T) {
	t.Parallel()

	b := NewBoard("batch")
	require.Nil(t, b.Get("missing"))
}

func TestBuckets_GroupsByOverallState(t *testing.T) {
	t.Parallel()

	running := newRun("running")
	running.Start()

	done := newRun("done")
	done.Start()
	done.Finalize(0)

	failed := newRun("failed")
	failed.Start()
	failed.Finalize(1)

	snaps := []runstate.Snapshot{
		running.Snapshot(), done.Snapshot(), failed.Snapshot(), newRun("waiting").Snapshot(),
	}

	groups := Buckets(snaps)
	require.Len(t, groups[runstate.StateRunning], 1)
	require.Len(t, groups[runstate.StateCompleted], 1)
	require.Len(t, groups[runstate.StateFailed], 1)
	require.Len(t, groups[runstate.StatePending], 1)
}

func TestFinalSummary_BucketCounts(t *testing.T) {
	t.Parallel()

	b := NewBoard("build: 2 project(s)")

	ok := newRun("alpha")
	ok.Start()
	ok.Finalize(0)
	b.Add(ok)

	bad := newRun("beta")
	bad.SetLogPath("/logs/beta.log")
	bad.Start()
	bad.Finalize(2)
	b.Add(bad)

	out := b.FinalSummary()
	require.Contains(t, out, "build: 2 project(s)")
	require.Contains(t, out, "1 succeeded")
	require.Contains(t, out, "1 failed")
	require.Contains(t, out, "beta")
	require.Contains(t, out, "exit code 2")
	require.Contains(t, out, "log: /logs/beta.log")
	require.NotContains(t, out, "alpha")
}

func TestFinalSummary_ListsFailedSteps(t *testing.T) {
	t.Parallel()

	defs := []classify.StepDefinition{
		{ID: "setup", DisplayName: "Setup", Kind: classify.StepMarked},
	}
	run := runstate.New("beta", "build", defs, "")
	run.Start()
	run.Apply(classify.Event{
		Type: classify.EventStep, StepID: "setup", Phase: classify.PhaseResult,
		Result: classify.ResultError, Marked: true, ErrCount: 1,
	})
	run.Finalize(0)

	b := NewBoard("batch")
	b.Add(run)

	out := b.FinalSummary()
	require.Contains(t, out, "✗ Setup")
	require.Contains(t, out, "E:1")
}

func TestFinalSummary_TimingFailure(t *testing.T) {
	t.Parallel()

	run := newRun("beta")
	run.Start()
	run.Apply(classify.Event{Type: classify.EventTiming, TimingPassed: false, ReportPath: "timing.rpt"})
	run.Finalize(0)

	b := NewBoard("batch")
	b.Add(run)

	out := b.FinalSummary()
	require.Contains(t, out, "timing analysis")
	require.Contains(t, out, "timing.rpt")
}

func TestFinalSummary_EmptyBoard(t *testing.T) {
	t.Parallel()

	out := NewBoard("batch").FinalSummary()
	require.Contains(t, out, "no runs processed")
}
