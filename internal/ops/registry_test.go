package ops

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdlforge/hdlforge/internal/classify"
	"github.com/hdlforge/hdlforge/internal/config"
	forgeerrors "github.com/hdlforge/hdlforge/pkg/errors"
)

func TestDefault_RegistersBuiltinOperations(t *testing.T) {
	t.Parallel()

	registry, err := Default()
	require.NoError(t, err)
	require.Equal(t, []string{"build", "export", "open"}, registry.Names())

	build, ok := registry.Get("build")
	require.True(t, ok)
	require.True(t, build.SupportsParallel)
	require.True(t, build.CompileOrder)
	require.NotEmpty(t, build.Steps)
	require.NotNil(t, build.Spawn)

	// GUI sessions hold the project open, so open never runs in parallel.
	open, ok := registry.Get("open")
	require.True(t, ok)
	require.False(t, open.SupportsParallel)
	require.True(t, open.CompileOrder)

	export, ok := registry.Get("export")
	require.True(t, ok)
	require.False(t, export.CompileOrder)

	_, ok = registry.Get("package")
	require.False(t, ok)
}

func TestNewRegistry_DuplicateOperationName(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(buildOperation(), buildOperation())
	require.Error(t, err)

	var verr *forgeerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "build", verr.Field)
}

func TestNewRegistry_DuplicateStepID(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Operation{
		Name: "custom",
		Steps: []classify.StepDefinition{
			markedStep("dup", "First", `custom::first`),
			markedStep("dup", "Second", `custom::second`),
		},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "custom.dup")
}

func TestNewRegistry_InvalidStepPattern(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Operation{
		Name: "custom",
		Steps: []classify.StepDefinition{
			{ID: "broken", Kind: classify.StepPhased, StartPatterns: []string{`([`}},
		},
	})
	require.Error(t, err)
}

func TestBuildOperation_StepsClassify(t *testing.T) {
	t.Parallel()

	op := buildOperation()
	c, err := classify.NewClassifier(op.Steps)
	require.NoError(t, err)

	marker := c.Classify("[STEP_SUCCESS] setup::load_sources")
	require.Equal(t, classify.EventStep, marker.Type)
	require.Equal(t, "setup_sources", marker.StepID)
	require.True(t, marker.Marked)

	start := c.Classify("Launching Runs -- Synthesis")
	require.Equal(t, "synthesis", start.StepID)
	require.Equal(t, classify.PhaseStart, start.Phase)

	fail := c.Classify("route_design failed")
	require.Equal(t, "routing", fail.StepID)
	require.Equal(t, classify.ResultError, fail.Result)

	// Option- and generic-application phases report via markers too.
	for marker, stepID := range map[string]string{
		"[STEP_WARNING] settings::apply_synthesis_options [W:1 E:0]":    "apply_synthesis_options",
		"[STEP_SUCCESS] settings::apply_generics":                       "apply_generics",
		"[STEP_ERROR] settings::apply_implementation_options [W:0 E:2]": "apply_implementation_options",
	} {
		ev := c.Classify(marker)
		require.Equal(t, classify.EventStep, ev.Type, marker)
		require.Equal(t, stepID, ev.StepID, marker)
		require.True(t, ev.Marked, marker)
	}
}

func TestOpenOperation_StepsClassify(t *testing.T) {
	t.Parallel()

	op := openOperation()
	c, err := classify.NewClassifier(op.Steps)
	require.NoError(t, err)

	cfg := c.Classify("Loading configuration from /work/fpga_top.yaml")
	require.Equal(t, "load_config", cfg.StepID)
	require.Equal(t, classify.ResultSuccess, cfg.Result)

	gui := c.Classify("Opening Vivado GUI")
	require.Equal(t, "open_gui", gui.StepID)

	marker := c.Classify("[STEP_SUCCESS] setup::load_sources")
	require.Equal(t, "setup_sources", marker.StepID)
	require.True(t, marker.Marked)
}

func TestToolSpawn_BuildsInvocation(t *testing.T) {
	t.Parallel()

	proj := &config.Project{
		Name: "fpga_top",
		Toolchain: config.Toolchain{
			Command: "vivado",
			Args:    []string{"-verbose"},
		},
		Env: map[string]string{"BOARD": "zcu104"},
	}

	spec := toolSpawn("build")(proj, "/work/fpga_top")
	require.Equal(t, "vivado", spec.Command)
	require.Equal(t, []string{
		"-mode", "batch", "-notrace", "-source", "workflow.tcl",
		"-tclargs", "build", "fpga_top", "-verbose",
	}, spec.Args)
	require.Equal(t, []string{"BOARD=zcu104"}, spec.Env)
	require.Equal(t, "/work/fpga_top", spec.Dir)
}

func TestToolSpawn_WorkDirOverride(t *testing.T) {
	t.Parallel()

	proj := &config.Project{
		Name:      "fpga_top",
		WorkDir:   "/custom",
		Toolchain: config.Toolchain{Command: "vivado"},
	}

	spec := toolSpawn("export")(proj, "/work/fpga_top")
	require.Equal(t, "/custom", spec.Dir)
}
