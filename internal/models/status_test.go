package models_test

import (
	"testing"

	"github.com/govscout/gov-index/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	now := int64(1_700_000_000)

	base := models.Proposal{
		ForVotes:     "100",
		AgainstVotes: "50",
		QuorumVotes:  "80",
		VoteStart:    now - 2000,
		VoteEnd:      now - 1000,
	}

	tests := []struct {
		name   string
		mutate func(*models.Proposal)
		want   models.ProposalStatus
	}{
		{"vetoed wins over everything", func(p *models.Proposal) {
			p.Vetoed = true
			p.Executed = true
			p.Canceled = true
		}, models.StatusVetoed},
		{"canceled", func(p *models.Proposal) { p.Canceled = true }, models.StatusCancelled},
		{"executed", func(p *models.Proposal) { p.Executed = true }, models.StatusExecuted},
		{"queued", func(p *models.Proposal) { p.Queued = true }, models.StatusQueued},
		{"queued past expiry", func(p *models.Proposal) {
			p.Queued = true
			p.ExpiresAt = now - 1
		}, models.StatusExpired},
		{"future vote start forces pending", func(p *models.Proposal) {
			p.VoteStart = now + 100
			p.VoteEnd = now + 200
		}, models.StatusPending},
		{"inside voting window", func(p *models.Proposal) {
			p.VoteStart = now - 100
			p.VoteEnd = now + 100
		}, models.StatusActive},
		{"ended with for <= against", func(p *models.Proposal) {
			p.ForVotes = "50"
			p.AgainstVotes = "50"
		}, models.StatusDefeated},
		{"ended below quorum", func(p *models.Proposal) {
			p.ForVotes = "60"
			p.AgainstVotes = "10"
			p.QuorumVotes = "80"
		}, models.StatusDefeated},
		{"ended, quorum met, not expired", func(p *models.Proposal) {}, models.StatusSucceeded},
		{"succeeded but expiry passed", func(p *models.Proposal) {
			p.ExpiresAt = now - 1
		}, models.StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			got, err := models.DeriveStatus(&p, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatus_LargeTallies(t *testing.T) {
	// 256-bit scale values must compare without overflow.
	p := models.Proposal{
		ForVotes:     "115792089237316195423570985008687907853269984665640564039457",
		AgainstVotes: "115792089237316195423570985008687907853269984665640564039456",
		QuorumVotes:  "1",
		VoteStart:    0,
		VoteEnd:      1,
	}
	got, err := models.DeriveStatus(&p, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSucceeded, got)
}

func TestDeriveStatus_MalformedTally(t *testing.T) {
	p := models.Proposal{ForVotes: "12x4", VoteStart: 0, VoteEnd: 1}
	_, err := models.DeriveStatus(&p, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed decimal tally")
}

func TestStringToProposalStatus(t *testing.T) {
	got, ok := models.StringToProposalStatus("queued")
	require.True(t, ok)
	assert.Equal(t, models.StatusQueued, got)

	_, ok = models.StringToProposalStatus("bogus")
	assert.False(t, ok)
}

func TestVoteSupportRoundTrip(t *testing.T) {
	for _, s := range []models.VoteSupport{models.SupportAgainst, models.SupportFor, models.SupportAbstain} {
		got, ok := models.StringToVoteSupport(s.String())
		require.True(t, ok)
		assert.Equal(t, s, got)
	}
}
