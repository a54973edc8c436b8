package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdlforge/hdlforge/internal/config"
	"github.com/hdlforge/hdlforge/internal/logger"
	"github.com/hdlforge/hdlforge/internal/publish"
)

type publishOptions struct {
	Workspace string
	RepoRoot  string
	Verbose   bool
}

func newPublishCmd(root *rootFlags) *cobra.Command {
	opts := publishOptions{}

	cmd := &cobra.Command{
		Use:   "publish [project...]",
		Short: "Refresh the build token and commit it",
		Long:  "Writes a new build token naming the given projects and commits it to the repository, signalling CI to rebuild them. With no arguments every project in the workspace is listed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Workspace = root.workspace
			opts.Verbose = root.verbose
			return runPublish(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.RepoRoot, "repo", ".", "Path to the repository receiving the token commit")

	return cmd
}

func runPublish(cmd *cobra.Command, opts publishOptions, args []string) error {
	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	ws, err := config.ParseWorkspace(opts.Workspace)
	if err != nil {
		return err
	}

	projects, err := resolveProjects(ws, args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(projects))
	for _, proj := range projects {
		names = append(names, proj.Name)
	}

	hash, err := publish.New(log).Publish(opts.RepoRoot, names)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "published build token for %d project(s) (%s)\n", len(names), hash[:8])
	return nil
}
