package commands

import (
	"github.com/spf13/cobra"

	"github.com/govscout/gov-index/cmd/cmdsfx"
)

// NewMCPCommand runs the MCP server exposing the proposal mirror tools.
func NewMCPCommand(flags *GlobalFlags) *cobra.Command {
	var (
		transport string
		address   string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run MCP server",
		Long:  "Run the MCP server exposing proposal listing, lookup, votes, sync, indexing and semantic search tools.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRunner(cmd.Context(), flags, func(r *cmdsfx.CommandRunner) error {
				return r.RunMCPServer(transport, address)
			})
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "transport (stdio, http, sse)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "server address (http modes), e.g. :8080")
	return cmd
}
