package config

// Workspace is the top-level configuration for a checkout: where project
// definitions live, where run logs go, and the machine's resource budget for
// parallel admission.
type Workspace struct {
	ProjectsDir string `yaml:"projects_dir" validate:"required"`
	LogDir      string `yaml:"log_dir,omitempty"`
	TotalUnits  int    `yaml:"total_units,omitempty" validate:"omitempty,min=1,max=1024"`
	Parallel    bool   `yaml:"parallel,omitempty"`
}

// Project describes one buildable project: how to invoke its toolchain and
// what it costs to run.
type Project struct {
	Name      string            `yaml:"name" validate:"required,run_name"`
	Toolchain Toolchain         `yaml:"toolchain" validate:"required"`
	CostUnits int               `yaml:"cost_units,omitempty" validate:"omitempty,min=1,max=64"`
	WorkDir   string            `yaml:"work_dir,omitempty"`
	TopLevel  string            `yaml:"top_level,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

// Toolchain identifies the external build tool to spawn. Extra arguments are
// appended after the operation's own arguments.
type Toolchain struct {
	Command string   `yaml:"command" validate:"required"`
	Args    []string `yaml:"args,omitempty"`
	Version string   `yaml:"version,omitempty"`
}
