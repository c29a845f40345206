package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/govscout/gov-index/cmd/cmdsfx"
	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/storage"
)

// NewProposalsCommand lists mirrored proposals.
func NewProposalsCommand(flags *GlobalFlags) *cobra.Command {
	var (
		status string
		limit  int
		offset int
		order  string
	)

	cmd := &cobra.Command{
		Use:   "proposals",
		Short: "List mirrored proposals",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := storage.ListOptions{Limit: limit, Offset: offset}
			switch order {
			case "asc":
				opts.Order = storage.OrderAsc
			case "desc":
				opts.Order = storage.OrderDesc
			default:
				return fmt.Errorf("unknown order %q (expected asc or desc)", order)
			}
			if status != "" {
				parsed, ok := models.StringToProposalStatus(status)
				if !ok {
					return fmt.Errorf("unknown status %q", status)
				}
				opts.Status = &parsed
			}
			return runWithRunner(cmd.Context(), flags, func(r *cmdsfx.CommandRunner) error {
				return r.RunListProposals(opts)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by proposal status")
	cmd.Flags().IntVar(&limit, "limit", 20, "max proposals to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	cmd.Flags().StringVar(&order, "order", "desc", "creation time order (asc or desc)")
	return cmd
}

// NewProposalCommand shows one proposal by number or hex id.
func NewProposalCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "proposal [number|id]",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithRunner(cmd.Context(), flags, func(r *cmdsfx.CommandRunner) error {
				return r.RunShowProposal(args[0])
			})
		},
	}
}

// NewVotesCommand lists votes on one proposal.
func NewVotesCommand(flags *GlobalFlags) *cobra.Command {
	var (
		support string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "votes [number|id]",
		Short: "List votes on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := storage.VoteOptions{Limit: limit, Offset: offset}
			if support != "" {
				parsed, ok := models.StringToVoteSupport(support)
				if !ok {
					return fmt.Errorf("unknown support %q (expected for, against or abstain)", support)
				}
				opts.Support = &parsed
			}
			return runWithRunner(cmd.Context(), flags, func(r *cmdsfx.CommandRunner) error {
				return r.RunVotes(args[0], opts)
			})
		},
	}

	cmd.Flags().StringVar(&support, "support", "", "filter by vote (for, against, abstain)")
	cmd.Flags().IntVar(&limit, "limit", 50, "max votes to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	return cmd
}
