package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/hdlforge/hdlforge/internal/compileorder"
	"github.com/hdlforge/hdlforge/internal/config"
	"github.com/hdlforge/hdlforge/internal/engine"
	"github.com/hdlforge/hdlforge/internal/logger"
	"github.com/hdlforge/hdlforge/internal/ops"
	"github.com/hdlforge/hdlforge/internal/status"
	"github.com/hdlforge/hdlforge/internal/tui"
)

const defaultLogDir = "logs"

type batchOptions struct {
	Workspace string
	Operation string
	Projects  []string
	Verbose   bool
	Silent    bool
	FailFast  bool
}

var batchRunner = runBatch

// runBatch drives one operation over the selected projects: parse configs,
// schedule the runs, render them live when stdout is a terminal, and print
// the rollup either way.
func runBatch(opts batchOptions) error {
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	ws, err := config.ParseWorkspace(opts.Workspace)
	if err != nil {
		return err
	}

	registry, err := ops.Default()
	if err != nil {
		return err
	}
	op, ok := registry.Get(opts.Operation)
	if !ok {
		return fmt.Errorf("unknown operation %q (available: %s)", opts.Operation, strings.Join(registry.Names(), ", "))
	}

	projects, err := resolveProjects(ws, opts.Projects)
	if err != nil {
		return err
	}

	logDir := ws.LogDir
	if logDir == "" {
		logDir = defaultLogDir
	}

	// Dependency configs live next to the workspace file.
	repoRoot := filepath.Dir(opts.Workspace)
	gen := compileorder.New(log)

	perUnitCost := 0
	runs := make([]engine.RunSpec, 0, len(projects))
	for _, proj := range projects {
		if proj.CostUnits > perUnitCost {
			perUnitCost = proj.CostUnits
		}
		runs = append(runs, engine.RunSpec{
			Name: proj.Name,
			Prepare: func(ctx context.Context) (engine.SpawnSpec, string, error) {
				runDir := filepath.Join(ws.ProjectsDir, proj.Name)
				if op.CompileOrder {
					// Best effort: a stale or missing compile order never
					// blocks the run itself.
					if _, err := gen.Generate(ctx, repoRoot, proj, runDir); err != nil {
						log.WithRun(proj.Name).Warnf("compile order generation failed: %v", err)
					}
				}
				stamp := time.Now().Format("20060102_150405")
				logPath := filepath.Join(logDir, fmt.Sprintf("%s_%s_%s.log", proj.Name, op.Name, stamp))
				return op.Spawn(proj, runDir), logPath, nil
			},
		})
	}

	board := status.NewBoard(fmt.Sprintf("%s: %d project(s)", op.Description, len(runs)))
	sched := engine.NewScheduler(board, log)

	batch := engine.Batch{
		Operation:        op.Name,
		Runs:             runs,
		Steps:            op.Steps,
		SupportsParallel: op.SupportsParallel && ws.Parallel,
		PerUnitCost:      perUnitCost,
		TotalUnits:       ws.TotalUnits,
		FailFast:         opts.FailFast,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interactive := !opts.Silent && term.IsTerminal(int(os.Stdout.Fd()))

	var program *tea.Program
	if interactive {
		program = tea.NewProgram(tui.NewModel(board))
	}

	var batchErr error
	done := make(chan struct{})
	go func() {
		_, batchErr = sched.Run(ctx, batch)
		close(done)
		if program != nil {
			program.Send(tui.BatchDoneMsg{})
		}
	}()

	if program != nil {
		if _, err := program.Run(); err != nil {
			log.Error(err, "dashboard terminated")
		}
	}
	<-done

	fmt.Println(board.FinalSummary())
	return batchErr
}

// resolveProjects loads the named project definitions, or every definition
// under the workspace's projects directory when no names are given.
func resolveProjects(ws *config.Workspace, names []string) ([]*config.Project, error) {
	var paths []string
	if len(names) == 0 {
		matches, err := filepath.Glob(filepath.Join(ws.ProjectsDir, "*.yaml"))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no project definitions found in %s", ws.ProjectsDir)
		}
		sort.Strings(matches)
		paths = matches
	} else {
		for _, name := range names {
			paths = append(paths, filepath.Join(ws.ProjectsDir, name+".yaml"))
		}
	}

	projects := make([]*config.Project, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		proj, err := config.ParseProject(path)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[proj.Name]; dup {
			return nil, fmt.Errorf("duplicate project name %q in %s", proj.Name, path)
		}
		seen[proj.Name] = struct{}{}
		projects = append(projects, proj)
	}
	return projects, nil
}
