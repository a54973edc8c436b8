package ops

import (
	"github.com/hdlforge/hdlforge/internal/classify"
)

// openOperation regenerates the project on disk and hands it to the
// toolchain GUI. The GUI holds the project open for the whole session, so
// runs are never admitted in parallel.
func openOperation() Operation {
	return Operation{
		Name:             "open",
		Description:      "Open projects in the toolchain GUI",
		SupportsParallel: false,
		CompileOrder:     true,
		Steps: []classify.StepDefinition{
			{
				ID:           "load_config",
				DisplayName:  "Loading Configuration",
				Kind:         classify.StepPhased,
				DonePatterns: []string{`Loading configuration from`},
			},
			{
				ID:           "setup_project",
				DisplayName:  "Setting up Project",
				Kind:         classify.StepPhased,
				DonePatterns: []string{`Setting up Project`},
			},
			markedStep("setup_cores", "Processing IP Cores", `setup::process_cores`),
			markedStep("setup_sources", "Loading HDL Sources", `setup::load_sources`),
			markedStep("setup_block_designs", "Processing Block Designs", `setup::process_block_designs`),
			markedStep("setup_constraints", "Loading Constraints", `setup::load_constraints`),
			markedStep("setup_top_level", "Setting Top Level", `setup::set_top_level`),
			markedStep("configure_synthesis", "Configuring Synthesis", `settings::configure_synthesis`),
			markedStep("configure_implementation", "Configuring Implementation", `settings::configure_implementation`),
			{
				ID:           "open_gui",
				DisplayName:  "Opening GUI",
				Kind:         classify.StepPhased,
				DonePatterns: []string{`Opening Vivado GUI`},
			},
		},
		Spawn: toolSpawn("open"),
	}
}
