package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hdlforge/hdlforge/internal/runstate"
	"github.com/hdlforge/hdlforge/internal/status"
)

// View renders the current state of every run, grouped by overall-state
// bucket.
func (m Model) View() string {
	snaps := m.board.Snapshots()
	groups := status.Buckets(snaps)

	var sections []string
	sections = append(sections, titleStyle.Render(m.board.Title()))

	completed := 0
	for _, snap := range snaps {
		if snap.Overall != runstate.StatePending && snap.Overall != runstate.StateRunning {
			completed++
		}
	}
	if len(snaps) > 0 {
		ratio := math.Min(1.0, float64(completed)/float64(len(snaps)))
		label := fmt.Sprintf("%d/%d", completed, len(snaps))
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Left, runStyle.Render(label), " ", m.bar.ViewAs(ratio)))
	}

	for _, state := range status.BucketOrder {
		runs := groups[state]
		if len(runs) == 0 {
			continue
		}

		header := fmt.Sprintf("%s %s (%d)", bucketGlyph(state, m.spin.View()), bucketTitle(state), len(runs))
		sections = append(sections, bucketStyle.Render(header))

		for _, snap := range runs {
			sections = append(sections, m.renderRun(snap))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderRun(snap runstate.Snapshot) string {
	line := "  " + runStyle.Render(snap.Name)
	if snap.ContextName != "" && snap.ContextName != snap.Name {
		line += detailStyle.Render(fmt.Sprintf(" (%s)", snap.ContextName))
	}
	if summary := snap.CountSummary(); summary != "" {
		line += warningStyle.Render(" [" + summary + "]")
	}
	if snap.Elapsed > 0 {
		line += detailStyle.Render(" [" + formatDuration(snap.Elapsed) + "]")
	}
	if snap.Message != "" {
		line += failureStyle.Render(" - " + snap.Message)
	}

	if snap.Overall != runstate.StateRunning {
		if snap.Overall == runstate.StateFailed && snap.LogPath != "" {
			return line + "\n" + detailStyle.Render("    log: "+snap.LogPath)
		}
		return line
	}

	// Running runs show their active step list.
	var lines []string
	lines = append(lines, line)
	for _, step := range snap.Steps {
		if step.State == runstate.StatePending {
			continue
		}
		stepLine := fmt.Sprintf("    %s %s", stepGlyph(step.State, m.spin.View()), step.DisplayName)
		if step.Duration > 0 {
			stepLine += detailStyle.Render(" (" + formatDuration(step.Duration) + ")")
		}
		if step.WarnCount > 0 || step.CritCount > 0 || step.ErrCount > 0 {
			stepLine += warningStyle.Render(fmt.Sprintf(" [W:%d C:%d E:%d]", step.WarnCount, step.CritCount, step.ErrCount))
		}
		lines = append(lines, stepLine)
	}
	if snap.ArtefactPath != "" {
		lines = append(lines, detailStyle.Render("    artefacts: "+snap.ArtefactPath))
	}
	if snap.LogPath != "" {
		lines = append(lines, detailStyle.Render("    log: "+snap.LogPath))
	}
	return strings.Join(lines, "\n")
}

func bucketTitle(state runstate.StepState) string {
	switch state {
	case runstate.StateRunning:
		return "Running"
	case runstate.StateWarning:
		return "Warning"
	case runstate.StateFailed:
		return "Failed"
	case runstate.StateCompleted:
		return "Completed"
	default:
		return "Pending"
	}
}

func bucketGlyph(state runstate.StepState, spin string) string {
	switch state {
	case runstate.StateRunning:
		return spin
	case runstate.StateWarning:
		return warningStyle.Render("!")
	case runstate.StateFailed:
		return failureStyle.Render("✗")
	case runstate.StateCompleted:
		return successStyle.Render("✓")
	default:
		return pendingStyle.Render("○")
	}
}

func stepGlyph(state runstate.StepState, spin string) string {
	switch state {
	case runstate.StateRunning:
		return spin
	case runstate.StateCompleted:
		return successStyle.Render("✓")
	case runstate.StateWarning:
		return warningStyle.Render("!")
	case runstate.StateFailed:
		return failureStyle.Render("✗")
	case runstate.StateSkipped:
		return skippedStyle.Render("—")
	default:
		return pendingStyle.Render("·")
	}
}

func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
