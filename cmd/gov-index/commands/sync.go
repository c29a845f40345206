package commands

import (
	"github.com/spf13/cobra"

	"github.com/govscout/gov-index/cmd/cmdsfx"
)

// NewSyncCommand mirrors proposals and votes from the governance subgraph.
func NewSyncCommand(flags *GlobalFlags) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror proposals and votes from the subgraph",
		Long:  "Pull proposals created since the last sync, or the entire corpus with --full.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRunner(cmd.Context(), flags, func(r *cmdsfx.CommandRunner) error {
				return r.RunSync(cmd.Context(), full)
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "re-sync the entire corpus")
	return cmd
}
