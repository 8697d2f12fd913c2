// Command agent answers portfolio questions by driving a chat model
// through a running analysis server's tools. It supports one-shot
// queries and an interactive chat mode.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/data-power-io/tariffscope/internal/agent"
	"github.com/data-power-io/tariffscope/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		query       string
		interactive bool
		verbose     bool
		configPath  string
	)

	root := &cobra.Command{
		Use:          "agent",
		Short:        "Chat agent for the tariff-exposure analysis server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := agent.LoadConfig(configPath)
			if err != nil {
				return err
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			logger, err := logging.New(level, "console", true)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer logger.Sync()

			runner := agent.NewRunner(cfg, logger, cmd.OutOrStdout(), verbose)

			if interactive {
				return runner.Interactive(cmd.Context(), cmd.InOrStdin())
			}

			answer, err := runner.RunOnce(cmd.Context(), query)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVarP(&query, "query", "q", "", "query to run (uses the configured default if not provided)")
	flags.BoolVarP(&interactive, "interactive", "i", false, "run in interactive chat mode")
	flags.BoolVarP(&verbose, "verbose", "v", false, "show progress messages")
	flags.StringVar(&configPath, "config", "", "path to the agent YAML config")

	return root
}
