package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "aicp-web",
		Short:   "AICP web frontend",
		Long:    "Server rendered web frontend for the AI content production API",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCmdServe())
	cmd.AddCommand(newCmdProjects())
	cmd.AddCommand(newCmdVersion())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed")
		os.Exit(1)
	}
}
