package sync

import (
	"fmt"
	"strconv"

	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/subgraph"
)

// fromRemoteProposal maps a wire proposal into the local model. Decimal
// tallies stay strings; only identifiers and timestamps are parsed, with
// range validation, and the status is derived at map time.
func fromRemoteProposal(raw subgraph.Proposal, now int64) (models.Proposal, error) {
	number, err := strconv.ParseUint(raw.ProposalNumber, 10, 64)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("proposal number %q: %w", raw.ProposalNumber, err)
	}
	p := models.Proposal{
		ProposalNumber:  number,
		ProposalID:      raw.ID,
		Title:           raw.Title,
		Description:     raw.Description,
		Proposer:        raw.Proposer.ID,
		ForVotes:        zeroIfEmpty(raw.ForVotes),
		AgainstVotes:    zeroIfEmpty(raw.AgainstVotes),
		AbstainVotes:    zeroIfEmpty(raw.AbstainVotes),
		QuorumVotes:     zeroIfEmpty(raw.QuorumVotes),
		Executed:        raw.Executed,
		Canceled:        raw.Canceled,
		Vetoed:          raw.Vetoed,
		Queued:          raw.Queued,
		TransactionHash: raw.CreatedTransactionHash,
	}
	for _, field := range []struct {
		name string
		raw  string
		dst  *int64
	}{
		{"createdTimestamp", raw.CreatedTimestamp, &p.CreatedTimestamp},
		{"voteStart", raw.VoteStart, &p.VoteStart},
		{"voteEnd", raw.VoteEnd, &p.VoteEnd},
		{"executionETA", raw.ExecutionETA, &p.ExecutionETA},
		{"expiresAt", raw.ExpiresAt, &p.ExpiresAt},
	} {
		ts, err := parseUnix(field.raw)
		if err != nil {
			return models.Proposal{}, fmt.Errorf("%s: %w", field.name, err)
		}
		*field.dst = ts
	}
	status, err := models.DeriveStatus(&p, now)
	if err != nil {
		return models.Proposal{}, err
	}
	p.Status = status
	return p, nil
}

func fromRemoteVote(raw subgraph.Vote, proposalID string) (models.Vote, error) {
	if raw.SupportDetailed < 0 || raw.SupportDetailed > 2 {
		return models.Vote{}, fmt.Errorf("vote %s: unknown support value %d", raw.ID, raw.SupportDetailed)
	}
	ts, err := parseUnix(raw.BlockTimestamp)
	if err != nil {
		return models.Vote{}, fmt.Errorf("vote %s: blockTimestamp: %w", raw.ID, err)
	}
	return models.Vote{
		VoteID:          raw.ID,
		ProposalID:      proposalID,
		Voter:           raw.Voter.ID,
		Support:         models.VoteSupport(raw.SupportDetailed),
		Weight:          zeroIfEmpty(raw.Weight),
		Reason:          raw.Reason,
		BlockTimestamp:  ts,
		TransactionHash: raw.TransactionHash,
	}, nil
}

func parseUnix(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed timestamp %q", s)
	}
	return ts, nil
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
