package main

import (
	"github.com/spf13/cobra"
)

func newBuildCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [project...]",
		Short: "Run the full build flow for the given projects",
		Long:  "Builds each named project through synthesis, implementation and bitstream generation. With no arguments every project in the workspace is built.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return batchRunner(batchOptions{
				Workspace: root.workspace,
				Operation: "build",
				Projects:  args,
				Verbose:   root.verbose,
				Silent:    root.silent,
				FailFast:  root.failFast,
			})
		},
	}

	return cmd
}
