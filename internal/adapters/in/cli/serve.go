package cli

import (
	"github.com/spf13/cobra"
)

// newServeCmd creates the serve command.
func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the webhook and the dispatch workers",
		Long: `Start the webhook listener and the worker pool. Runs until SIGINT or
SIGTERM; deposits left unsettled by a previous run are queued again on start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath)
		},
	}
}
