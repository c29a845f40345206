package commands

import (
	"github.com/spf13/cobra"

	"github.com/govscout/gov-index/cmd/cmdsfx"
)

// NewIndexCommand embeds proposals that have no chunks yet.
func NewIndexCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Embed proposal text for semantic search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRunner(cmd.Context(), flags, func(r *cmdsfx.CommandRunner) error {
				return r.RunIndex(cmd.Context())
			})
		},
	}
}
