package compileorder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/hdlforge/hdlforge/internal/config"
	"github.com/hdlforge/hdlforge/internal/logger"
)

const outputName = "compile_order.json"

// Dependency configuration files recognised in the repository root.
var configNames = []string{"hdldepends.json", "hdldepends.toml"}

// Generator produces a project's compile order file by invoking the external
// hdldepends tool before the toolchain is spawned. Generation is best
// effort: a project without a top level, a repository without a dependency
// config, or a machine without the tool all skip generation rather than
// failing the run.
type Generator struct {
	log *logger.Logger
}

// New creates a Generator.
func New(log *logger.Logger) *Generator {
	return &Generator{log: log}
}

// Available reports whether the hdldepends tool can be found.
func (g *Generator) Available() bool {
	_, err := exec.LookPath("hdldepends")
	return err == nil
}

// Generate writes the compile order file for proj into workDir and returns
// its path. An empty path with a nil error means generation was skipped.
func (g *Generator) Generate(ctx context.Context, root string, proj *config.Project, workDir string) (string, error) {
	if proj.TopLevel == "" {
		return "", nil
	}
	if !g.Available() {
		g.log.Debug("hdldepends not found, skipping compile order generation")
		return "", nil
	}

	configPath := findConfig(root)
	if configPath == "" {
		g.log.Debugf("no dependency config in %s, skipping compile order generation", root)
		return "", nil
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", err
	}
	outPath := filepath.Join(workDir, outputName)

	cmd := exec.CommandContext(ctx, "hdldepends",
		"--top-file", proj.TopLevel,
		"--compile-order-json", outPath,
		"--no-pickle",
		"-vv",
		configPath,
	)
	cmd.Dir = workDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("hdldepends: %w: %s", err, bytes.TrimSpace(output))
	}
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("hdldepends reported success but wrote no %s", outputName)
	}

	g.log.Debugf("compile order written to %s", outPath)
	return outPath, nil
}

func findConfig(root string) string {
	for _, name := range configNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
