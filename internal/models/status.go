package models

import (
	"fmt"
	"math/big"
)

// DeriveStatus computes the lifecycle status of a proposal from its flags,
// tallies and timestamps. Flag precedence: vetoed beats everything, then
// canceled, then executed. Tallies are decimal strings and are compared as
// big integers; a malformed tally is a validation error.
func DeriveStatus(p *Proposal, now int64) (ProposalStatus, error) {
	switch {
	case p.Vetoed:
		return StatusVetoed, nil
	case p.Canceled:
		return StatusCancelled, nil
	case p.Executed:
		return StatusExecuted, nil
	case p.Queued:
		if p.ExpiresAt > 0 && now > p.ExpiresAt {
			return StatusExpired, nil
		}
		return StatusQueued, nil
	}

	if now < p.VoteStart {
		return StatusPending, nil
	}
	if now <= p.VoteEnd {
		return StatusActive, nil
	}

	forVotes, err := parseTally(p.ForVotes)
	if err != nil {
		return "", fmt.Errorf("for votes: %w", err)
	}
	againstVotes, err := parseTally(p.AgainstVotes)
	if err != nil {
		return "", fmt.Errorf("against votes: %w", err)
	}
	quorum, err := parseTally(p.QuorumVotes)
	if err != nil {
		return "", fmt.Errorf("quorum votes: %w", err)
	}

	// Voting ended: losing or missing quorum is a defeat.
	if forVotes.Cmp(againstVotes) <= 0 {
		return StatusDefeated, nil
	}
	if forVotes.Cmp(quorum) < 0 {
		return StatusDefeated, nil
	}
	if p.ExpiresAt > 0 && now > p.ExpiresAt {
		return StatusExpired, nil
	}
	return StatusSucceeded, nil
}

func parseTally(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed decimal tally %q", s)
	}
	return n, nil
}
