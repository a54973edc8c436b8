package status

import (
	"sync"

	"github.com/hdlforge/hdlforge/internal/runstate"
)

// Board is the aggregate projection over every run in a batch. One coarse
// lock guards the run map; per-run state keeps its own mutex. The board does
// the same bookkeeping whether or not anything renders it, so headless use
// still gets a correct final summary.
type Board struct {
	mu    sync.Mutex
	title string
	runs  map[string]*runstate.RunState
	order []string
}

// NewBoard creates an empty board with a display title.
func NewBoard(title string) *Board {
	return &Board{
		title: title,
		runs:  make(map[string]*runstate.RunState),
	}
}

// Title returns the board's display title.
func (b *Board) Title() string { return b.title }

// Add registers a run. Adding the same name twice replaces the entry but
// keeps its original position.
func (b *Board) Add(run *runstate.RunState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.runs[run.Name()]; !exists {
		b.order = append(b.order, run.Name())
	}
	b.runs[run.Name()] = run
}

// Get returns the run with the given name, or nil.
func (b *Board) Get(name string) *runstate.RunState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs[name]
}

// Snapshots captures every run's current state in registration order. The
// board lock covers only the iteration; each run snapshot is taken under
// that run's own mutex.
func (b *Board) Snapshots() []runstate.Snapshot {
	b.mu.Lock()
	runs := make([]*runstate.RunState, 0, len(b.order))
	for _, name := range b.order {
		runs = append(runs, b.runs[name])
	}
	b.mu.Unlock()

	snaps := make([]runstate.Snapshot, 0, len(runs))
	for _, run := range runs {
		snaps = append(snaps, run.Snapshot())
	}
	return snaps
}
