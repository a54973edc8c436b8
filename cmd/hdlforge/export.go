package main

import (
	"github.com/spf13/cobra"
)

func newExportCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [project...]",
		Short: "Export project files for the given projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return batchRunner(batchOptions{
				Workspace: root.workspace,
				Operation: "export",
				Projects:  args,
				Verbose:   root.verbose,
				Silent:    root.silent,
				FailFast:  root.failFast,
			})
		},
	}

	return cmd
}
