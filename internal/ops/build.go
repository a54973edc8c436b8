package ops

import (
	"fmt"

	"github.com/hdlforge/hdlforge/internal/classify"
	"github.com/hdlforge/hdlforge/internal/config"
	"github.com/hdlforge/hdlforge/internal/engine"
)

// buildOperation runs a full synthesis/implementation/bitstream flow. The
// setup phase is reported by the driver script through explicit markers; the
// tool stages that follow are detected from free-text phrases.
func buildOperation() Operation {
	return Operation{
		Name:             "build",
		Description:      "Build projects from source",
		SupportsParallel: true,
		CompileOrder:     true,
		Steps: []classify.StepDefinition{
			markedStep("setup_cores", "Processing IP Cores", `setup::process_cores`),
			markedStep("setup_sources", "Loading HDL Sources", `setup::load_sources`),
			markedStep("setup_block_designs", "Processing Block Designs", `setup::process_block_designs`),
			markedStep("setup_constraints", "Loading Constraints", `setup::load_constraints`),
			markedStep("setup_top_level", "Setting Top Level", `setup::set_top_level`),
			markedStep("configure_synthesis", "Configuring Synthesis", `settings::configure_synthesis`),
			markedStep("apply_synthesis_options", "Applying Synthesis Options", `settings::apply_synthesis_options`),
			markedStep("apply_generics", "Applying Generics", `settings::apply_generics`),
			markedStep("configure_implementation", "Configuring Implementation", `settings::configure_implementation`),
			markedStep("apply_implementation_options", "Applying Implementation Options", `settings::apply_implementation_options`),
			{
				ID:            "synthesis",
				DisplayName:   "Synthesis",
				Kind:          classify.StepPhased,
				StartPatterns: []string{`Launching Runs -- Synthesis`},
				DonePatterns:  []string{`synth_design completed successfully`},
				FailPatterns:  []string{`synth_design failed`},
			},
			{
				ID:            "implementation",
				DisplayName:   "Implementation",
				Kind:          classify.StepPhased,
				StartPatterns: []string{`Launching Runs -- Implementation`},
			},
			{
				ID:           "optimization",
				DisplayName:  "Optimization",
				Kind:         classify.StepPhased,
				DonePatterns: []string{`opt_design completed`},
				FailPatterns: []string{`opt_design failed`},
			},
			{
				ID:           "placement",
				DisplayName:  "Placement",
				Kind:         classify.StepPhased,
				DonePatterns: []string{`place_design completed`},
				FailPatterns: []string{`place_design failed`},
			},
			{
				ID:           "routing",
				DisplayName:  "Routing",
				Kind:         classify.StepPhased,
				DonePatterns: []string{`route_design completed`},
				FailPatterns: []string{`route_design failed`},
			},
			{
				ID:           "bitstream",
				DisplayName:  "Writing Bitstream",
				Kind:         classify.StepPhased,
				DonePatterns: []string{`write_bitstream completed successfully`},
				FailPatterns: []string{`write_bitstream failed`},
			},
		},
		Spawn: toolSpawn("build"),
	}
}

// markedStep builds a definition matching any [STEP_*] marker that names the
// driver-script procedure.
func markedStep(id, display, procedure string) classify.StepDefinition {
	return classify.StepDefinition{
		ID:          id,
		DisplayName: display,
		Kind:        classify.StepMarked,
		Patterns:    []string{fmt.Sprintf(`\[STEP_[A-Z]+\] %s`, procedure)},
	}
}

// toolSpawn builds the spawn descriptor for a batch-mode driver invocation.
func toolSpawn(mode string) func(proj *config.Project, runDir string) engine.SpawnSpec {
	return func(proj *config.Project, runDir string) engine.SpawnSpec {
		args := []string{"-mode", "batch", "-notrace", "-source", "workflow.tcl", "-tclargs", mode, proj.Name}
		args = append(args, proj.Toolchain.Args...)

		env := make([]string, 0, len(proj.Env))
		for key, value := range proj.Env {
			env = append(env, key+"="+value)
		}

		dir := runDir
		if proj.WorkDir != "" {
			dir = proj.WorkDir
		}

		return engine.SpawnSpec{
			Command: proj.Toolchain.Command,
			Args:    args,
			Env:     env,
			Dir:     dir,
		}
	}
}
