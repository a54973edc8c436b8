package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	workspace string
	verbose   bool
	silent    bool
	failFast  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "hdlforge",
		Short:         "hdlforge orchestrates HDL toolchain builds across projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.workspace, "workspace", "w", "workspace.yaml", "Path to workspace configuration")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.silent, "silent", false, "Disable the live dashboard, print only the final summary")
	cmd.PersistentFlags().BoolVar(&flags.failFast, "fail-fast", false, "Return a non-zero exit when any run fails")

	cmd.AddCommand(newBuildCmd(flags))
	cmd.AddCommand(newExportCmd(flags))
	cmd.AddCommand(newOpenCmd(flags))
	cmd.AddCommand(newPublishCmd(flags))
	cmd.AddCommand(newOpsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
