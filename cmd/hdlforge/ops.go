package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdlforge/hdlforge/internal/ops"
)

func newOpsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List available operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := ops.Default()
			if err != nil {
				return err
			}
			for _, name := range registry.Names() {
				op, _ := registry.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s (%d step(s))\n", op.Name, op.Description, len(op.Steps))
			}
			return nil
		},
	}

	return cmd
}
