package ops

import (
	"github.com/hdlforge/hdlforge/internal/classify"
)

// exportOperation regenerates a project's on-disk form without building it.
// Every step is driver-reported, so the whole run is marker-tracked.
func exportOperation() Operation {
	return Operation{
		Name:             "export",
		Description:      "Export projects for the toolchain IDE",
		SupportsParallel: true,
		Steps: []classify.StepDefinition{
			markedStep("setup_sources", "Loading HDL Sources", `setup::load_sources`),
			markedStep("setup_constraints", "Loading Constraints", `setup::load_constraints`),
			markedStep("export_project", "Writing Project", `export::write_project`),
			markedStep("export_wrapper", "Generating Wrappers", `export::generate_wrappers`),
		},
		Spawn: toolSpawn("export"),
	}
}
