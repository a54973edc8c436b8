package main

import (
	"github.com/spf13/cobra"
)

func newOpenCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [project...]",
		Short: "Open projects in the toolchain GUI",
		Long:  "Regenerates each named project and opens it in the toolchain GUI. Projects are opened one at a time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return batchRunner(batchOptions{
				Workspace: root.workspace,
				Operation: "open",
				Projects:  args,
				Verbose:   root.verbose,
				Silent:    root.silent,
				FailFast:  root.failFast,
			})
		},
	}

	return cmd
}
