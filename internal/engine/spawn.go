package engine

import (
	"context"
	"os"
	"os/exec"
)

// SpawnSpec describes how to launch one external tool invocation. It is
// supplied by the operation registry at preparation time, immediately before
// the run's own spawn.
type SpawnSpec struct {
	Command string
	Args    []string
	Env     []string
	Dir     string
}

// Cmd builds the process handle. The context lets a caller terminate a
// stuck run without restarting the whole batch.
func (s SpawnSpec) Cmd(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	if s.Dir != "" {
		cmd.Dir = s.Dir
	}
	return cmd
}
