package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	forgeerrors "github.com/hdlforge/hdlforge/pkg/errors"
)

var (
	yamlLineRegex = regexp.MustCompile(`line (\d+)`)
	envVarRegex   = regexp.MustCompile(`\$\{([A-Z_][A-Z0-9_]*)\}`)
)

// ParseWorkspace loads the workspace configuration from disk.
func ParseWorkspace(path string) (*Workspace, error) {
	var ws Workspace
	if err := parseInto(path, &ws); err != nil {
		return nil, err
	}
	ws.ProjectsDir = expandEnv(ws.ProjectsDir)
	ws.LogDir = expandEnv(ws.LogDir)

	if err := ValidateWorkspace(&ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// ParseProject loads and validates one project definition.
func ParseProject(path string) (*Project, error) {
	var proj Project
	if err := parseInto(path, &proj); err != nil {
		return nil, err
	}

	proj.WorkDir = expandEnv(proj.WorkDir)
	proj.TopLevel = expandEnv(proj.TopLevel)
	proj.Toolchain.Command = expandEnv(proj.Toolchain.Command)
	for i, arg := range proj.Toolchain.Args {
		proj.Toolchain.Args[i] = expandEnv(arg)
	}
	for key, value := range proj.Env {
		proj.Env[key] = expandEnv(value)
	}

	if err := ValidateProject(&proj); err != nil {
		return nil, err
	}
	return &proj, nil
}

func parseInto(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return forgeerrors.NewParseError(path, 0, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return forgeerrors.NewParseError(path, extractLine(err), err)
	}
	return nil
}

// expandEnv substitutes ${VAR} references from the environment, leaving
// unknown references untouched.
func expandEnv(value string) string {
	return envVarRegex.ReplaceAllStringFunc(value, func(match string) string {
		name := match[2 : len(match)-1]
		if resolved, ok := os.LookupEnv(name); ok {
			return resolved
		}
		return match
	})
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
