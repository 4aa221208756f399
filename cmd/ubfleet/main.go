// Command ubfleet drives the orchestrator and aggregator described in
// internal/orchestrator and internal/aggregator: "run" executes a tool
// against a ranked package list and uploads transcripts; "sync" rebuilds
// the diagnosis/rendering/listing pages from whatever's already uploaded.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ubfleet/ubfleet/internal/applog"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ubfleet",
		Short:         "Fleet-scale UB checker: run instrumented test suites and publish the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (optional)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newSyncCmd())
	return root
}

func main() {
	applog.InitFromEnv()

	if err := newRootCmd().Execute(); err != nil {
		applog.Error().Err(err).Msg("ubfleet: fatal")
		os.Exit(1)
	}
}
