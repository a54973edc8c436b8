package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hdlforge/hdlforge/internal/status"
)

// Refresh interval for the live view; rendering is timer-driven and
// independent of event arrival.
const refreshInterval = 250 * time.Millisecond

type tickMsg time.Time

// BatchDoneMsg tells the dashboard the scheduler has finished every run.
type BatchDoneMsg struct{}

// Model is the Bubbletea state for the live batch dashboard. All run data
// lives in the shared board; the model only holds presentation state.
type Model struct {
	board    *status.Board
	spin     spinner.Model
	bar      progress.Model
	finished bool
	quitting bool
}

// NewModel constructs a dashboard over the given board.
func NewModel(board *status.Board) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30

	return Model{board: board, spin: sp, bar: bar}
}

// Init starts the spinner and the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Finished reports whether the batch has completed.
func (m Model) Finished() bool {
	return m.finished
}
