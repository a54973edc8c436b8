package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"github.com/hdlforge/hdlforge/internal/classify"
	"github.com/hdlforge/hdlforge/internal/logger"
	"github.com/hdlforge/hdlforge/internal/pump"
	"github.com/hdlforge/hdlforge/internal/runstate"
	"github.com/hdlforge/hdlforge/internal/status"
	forgeerrors "github.com/hdlforge/hdlforge/pkg/errors"
)

const defaultWorkers = 4

// RunSpec is one run submitted to the scheduler. Prepare performs the run's
// own setup (directories, config resolution) and is called inside the worker
// immediately before spawn, so a late-failing preparation never delays runs
// already in flight.
type RunSpec struct {
	Name    string
	Prepare func(ctx context.Context) (SpawnSpec, string, error)
}

// Batch groups independent runs under one concurrency bound and failure
// policy. It exists only for the duration of one scheduler invocation.
type Batch struct {
	Operation        string
	Runs             []RunSpec
	Steps            []classify.StepDefinition
	SupportsParallel bool
	PerUnitCost      int
	TotalUnits       int
	FailFast         bool
}

// Scheduler coordinates parallel runs and aggregates their results.
type Scheduler struct {
	board *status.Board
	log   *logger.Logger
}

// NewScheduler creates a scheduler reporting onto the given board.
func NewScheduler(board *status.Board, log *logger.Logger) *Scheduler {
	return &Scheduler{board: board, log: log}
}

// WorkerCount computes the static admission bound: sequential without
// parallel support or with a single run; otherwise derived from the resource
// budget when a per-unit cost is known, or a fixed default, capped at the
// run count either way.
func WorkerCount(supportsParallel bool, perUnitCost, totalUnits, runCount int) int {
	if !supportsParallel || runCount <= 1 {
		return 1
	}

	workers := defaultWorkers
	if perUnitCost > 0 {
		workers = totalUnits / perUnitCost
		if workers < 1 {
			workers = 1
		}
	}
	if workers > runCount {
		workers = runCount
	}
	return workers
}

// Run executes the whole batch. Every submitted run is driven to completion
// regardless of earlier failures; with FailFast the failures surface as one
// aggregated error only after the batch finishes, otherwise each failure is
// reported inline and the error result is nil.
func (s *Scheduler) Run(ctx context.Context, batch Batch) ([]runstate.Result, error) {
	classifier, err := classify.NewClassifier(batch.Steps)
	if err != nil {
		return nil, err
	}

	states := make([]*runstate.RunState, len(batch.Runs))
	for i, spec := range batch.Runs {
		states[i] = runstate.New(spec.Name, batch.Operation, batch.Steps, "")
		s.board.Add(states[i])
	}

	workers := WorkerCount(batch.SupportsParallel, batch.PerUnitCost, batch.TotalUnits, len(batch.Runs))
	s.log.Debugf("scheduling %d run(s) with %d worker(s)", len(batch.Runs), workers)

	sem := make(chan struct{}, workers)
	results := make([]runstate.Result, len(batch.Runs))
	var wg sync.WaitGroup

	for i := range batch.Runs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.runOne(ctx, batch.Runs[i], states[i], classifier)
		}(i)
	}

	wg.Wait()

	var failed []string
	for _, res := range results {
		if !res.Success {
			failed = append(failed, res.Name)
		}
	}
	if len(failed) > 0 && batch.FailFast {
		return results, forgeerrors.NewBatchError(batch.Operation, failed)
	}
	return results, nil
}

// runOne spawns one process, pumps its output, and finalizes the run state
// once the process has exited and both readers have drained.
func (s *Scheduler) runOne(ctx context.Context, spec RunSpec, state *runstate.RunState, classifier *classify.Classifier) runstate.Result {
	runLog := s.log.WithRun(spec.Name)

	spawn, logPath, err := spec.Prepare(ctx)
	if err != nil {
		runLog.Error(err, "preparation failed")
		return s.failEarly(state, fmt.Sprintf("preparation failed: %v", err))
	}
	state.SetLogPath(logPath)

	logw, err := pump.OpenLog(logPath)
	if err != nil {
		runLog.Error(err, "cannot open run log")
		return s.failEarly(state, fmt.Sprintf("cannot open run log: %v", err))
	}
	defer logw.Close()

	cmd := spawn.Cmd(ctx)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		runLog.Error(err, "cannot open stdout pipe")
		return s.failEarly(state, err.Error())
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		runLog.Error(err, "cannot open stderr pipe")
		return s.failEarly(state, err.Error())
	}

	state.Start()
	runLog.Infof("executing %s", spawn.Command)

	if err := cmd.Start(); err != nil {
		runLog.Error(err, "spawn failed")
		return s.failEarly(state, fmt.Sprintf("spawn failed: %v", err))
	}

	p := pump.New(state, classifier, logw, runLog)
	p.Attach(pump.ChannelStdout, stdout)
	p.Attach(pump.ChannelStderr, stderr)

	// Drain both channels before reaping the process; Wait would close the
	// pipes under the readers.
	p.Wait()
	waitErr := cmd.Wait()

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	res := state.Finalize(exitCode)
	if res.Success {
		if res.TotalWarn > 0 || res.TotalCrit > 0 {
			runLog.Infof("%s completed with warnings (W:%d C:%d)", res.Operation, res.TotalWarn, res.TotalCrit)
		} else {
			runLog.Infof("%s completed successfully", res.Operation)
		}
	} else {
		runLog.Error(failureError(res, waitErr), res.FailureMessage)
	}
	return res
}

// failureError maps a failed result onto the error taxonomy for reporting.
func failureError(res runstate.Result, waitErr error) error {
	switch {
	case len(res.MarkedFailures) > 0:
		return forgeerrors.NewMarkedStepError(res.Name, res.MarkedFailures[0])
	case res.TimingFailed:
		return forgeerrors.NewTimingError(res.Name, res.TimingReport)
	case res.ExitCode != 0:
		return forgeerrors.NewProcessExitError(res.Name, res.ExitCode, waitErr)
	default:
		return fmt.Errorf("%d tool error(s) reported", res.TotalErr)
	}
}

// failEarly records a run that never produced output. The message goes
// through RecordFailure rather than the event path, so it lands in the error
// list even when the operation's first step is marked.
func (s *Scheduler) failEarly(state *runstate.RunState, message string) runstate.Result {
	state.Start()
	state.RecordFailure(message)
	return state.Finalize(-1)
}
