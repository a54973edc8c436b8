package status

import (
	"fmt"
	"strings"

	"github.com/hdlforge/hdlforge/internal/runstate"
)

// BucketOrder is the fixed presentation order for overall-state groups.
var BucketOrder = []runstate.StepState{
	runstate.StateRunning,
	runstate.StateWarning,
	runstate.StateFailed,
	runstate.StateCompleted,
	runstate.StatePending,
}

// Buckets groups snapshots by overall state, preserving run order within
// each bucket.
func Buckets(snaps []runstate.Snapshot) map[runstate.StepState][]runstate.Snapshot {
	groups := make(map[runstate.StepState][]runstate.Snapshot)
	for _, snap := range snaps {
		groups[snap.Overall] = append(groups[snap.Overall], snap)
	}
	return groups
}

// FinalSummary renders the static rollup printed after any live overlay is
// torn down: per-bucket counts, and for every non-clean run its failed and
// warned steps plus the log path.
func (b *Board) FinalSummary() string {
	snaps := b.Snapshots()
	groups := Buckets(snaps)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: ", b.title)

	var parts []string
	for _, state := range BucketOrder {
		if n := len(groups[state]); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, stateLabel(state)))
		}
	}
	if len(parts) == 0 {
		sb.WriteString("no runs processed")
		return sb.String()
	}
	sb.WriteString(strings.Join(parts, ", "))

	for _, snap := range snaps {
		if snap.Overall != runstate.StateFailed && snap.Overall != runstate.StateWarning {
			continue
		}
		fmt.Fprintf(&sb, "\n\n%s", snap.Name)
		if summary := snap.CountSummary(); summary != "" {
			fmt.Fprintf(&sb, " [%s]", summary)
		}
		if snap.Message != "" {
			fmt.Fprintf(&sb, " - %s", snap.Message)
		}
		for _, step := range snap.Steps {
			if step.State != runstate.StateFailed && step.State != runstate.StateWarning {
				continue
			}
			fmt.Fprintf(&sb, "\n  %s %s", stepGlyph(step.State), step.DisplayName)
			if step.WarnCount > 0 || step.CritCount > 0 || step.ErrCount > 0 {
				fmt.Fprintf(&sb, " [W:%d C:%d E:%d]", step.WarnCount, step.CritCount, step.ErrCount)
			}
		}
		if snap.TimingFailed {
			sb.WriteString("\n  ✗ timing analysis")
			if snap.TimingReport != "" {
				fmt.Fprintf(&sb, " (report: %s)", snap.TimingReport)
			}
		}
		if snap.LogPath != "" {
			fmt.Fprintf(&sb, "\n  log: %s", snap.LogPath)
		}
	}

	return sb.String()
}

func stateLabel(state runstate.StepState) string {
	switch state {
	case runstate.StateCompleted:
		return "succeeded"
	case runstate.StateWarning:
		return "with warnings"
	case runstate.StateFailed:
		return "failed"
	case runstate.StateRunning:
		return "running"
	default:
		return "pending"
	}
}

func stepGlyph(state runstate.StepState) string {
	if state == runstate.StateFailed {
		return "✗"
	}
	return "!"
}
