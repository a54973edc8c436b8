package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	forgeerrors "github.com/hdlforge/hdlforge/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseWorkspace_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "workspace.yaml", `
projects_dir: ./projects
log_dir: ./logs
total_units: 16
parallel: true
`)

	ws, err := ParseWorkspace(path)
	require.NoError(t, err)
	require.Equal(t, "./projects", ws.ProjectsDir)
	require.Equal(t, "./logs", ws.LogDir)
	require.Equal(t, 16, ws.TotalUnits)
	require.True(t, ws.Parallel)
}

func TestParseWorkspace_MissingProjectsDir(t *testing.T) {
	path := writeFile(t, t.TempDir(), "workspace.yaml", `log_dir: ./logs`)

	_, err := ParseWorkspace(path)
	require.Error(t, err)

	var verr *forgeerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Field, "ProjectsDir")
}

func TestParseWorkspace_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "workspace.yaml", "projects_dir: [unclosed")

	_, err := ParseWorkspace(path)
	require.Error(t, err)

	var perr *forgeerrors.ParseError
	require.ErrorAs(t, err, &perr)
	require.Equal(t, path, perr.Path)
}

func TestParseWorkspace_MissingFile(t *testing.T) {
	_, err := ParseWorkspace(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var perr *forgeerrors.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseProject_Valid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fpga_top.yaml", `
name: fpga_top
cost_units: 4
toolchain:
  command: vivado
  args: ["-verbose"]
env:
  BOARD: zcu104
`)

	proj, err := ParseProject(path)
	require.NoError(t, err)
	require.Equal(t, "fpga_top", proj.Name)
	require.Equal(t, 4, proj.CostUnits)
	require.Equal(t, "vivado", proj.Toolchain.Command)
	require.Equal(t, []string{"-verbose"}, proj.Toolchain.Args)
	require.Equal(t, "zcu104", proj.Env["BOARD"])
}

func TestParseProject_EnvExpansion(t *testing.T) {
	t.Setenv("HDLFORGE_TEST_TOOL", "/opt/xilinx/vivado")

	path := writeFile(t, t.TempDir(), "fpga_top.yaml", `
name: fpga_top
work_dir: ${HDLFORGE_TEST_TOOL}/work
top_level: ${HDLFORGE_TEST_TOOL}/src/top.vhd
toolchain:
  command: ${HDLFORGE_TEST_TOOL}/bin/vivado
  args: ["${HDLFORGE_TEST_UNSET}"]
env:
  TOOL_HOME: ${HDLFORGE_TEST_TOOL}
`)

	proj, err := ParseProject(path)
	require.NoError(t, err)
	require.Equal(t, "/opt/xilinx/vivado/bin/vivado", proj.Toolchain.Command)
	require.Equal(t, "/opt/xilinx/vivado/work", proj.WorkDir)
	require.Equal(t, "/opt/xilinx/vivado/src/top.vhd", proj.TopLevel)
	require.Equal(t, "/opt/xilinx/vivado", proj.Env["TOOL_HOME"])
	// Unknown references stay untouched rather than expanding to empty.
	require.Equal(t, []string{"${HDLFORGE_TEST_UNSET}"}, proj.Toolchain.Args)
}

func TestParseProject_InvalidName(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `
name: "bad name with spaces"
toolchain:
  command: vivado
`)

	_, err := ParseProject(path)
	require.Error(t, err)

	var verr *forgeerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Message, "run_name")
}

func TestParseProject_CostOutOfRange(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", `
name: fpga_top
cost_units: 100
toolchain:
  command: vivado
`)

	_, err := ParseProject(path)
	require.Error(t, err)

	var verr *forgeerrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestValidateWorkspace_Nil(t *testing.T) {
	t.Parallel()
	require.Error(t, ValidateWorkspace(nil))
	require.Error(t, ValidateProject(nil))
}
