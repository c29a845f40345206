package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/govscout/gov-index/cmd/cmdsfx"
	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/search"
)

// NewSearchCommand runs a semantic search over mirrored proposal text.
func NewSearchCommand(flags *GlobalFlags) *cobra.Command {
	var (
		limit     int
		status    string
		threshold float32
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic search over proposal text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := search.Request{
				Query:     args[0],
				Limit:     limit,
				Threshold: threshold,
			}
			if status != "" {
				parsed, ok := models.StringToProposalStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				req.Status = &parsed
			}
			return runWithRunner(cmd.Context(), flags, func(r *cmdsfx.CommandRunner) error {
				return r.RunSearch(req)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "max proposals to return (default 5, max 20)")
	cmd.Flags().StringVar(&status, "status", "", "filter by proposal status")
	cmd.Flags().Float32Var(&threshold, "threshold", 0, "minimum cosine similarity (default 0.3)")
	return cmd
}
