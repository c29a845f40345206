package sync_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/storage"
	"github.com/govscout/gov-index/internal/storage/memory"
	syncpkg "github.com/govscout/gov-index/internal/sync"
	"github.com/govscout/gov-index/internal/subgraph"
)

type fakeRemote struct {
	proposals []subgraph.Proposal
	votes     map[string][]subgraph.Vote
	votesErr  map[string]error
	sinceErr  error
	pageCalls int
}

func (f *fakeRemote) FetchProposalsSince(_ context.Context, since int64, limit int) ([]subgraph.Proposal, error) {
	if f.sinceErr != nil {
		return nil, f.sinceErr
	}
	var out []subgraph.Proposal
	for _, p := range f.proposals {
		ts, _ := strconv.ParseInt(p.CreatedTimestamp, 10, 64)
		if ts > since {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeRemote) FetchProposalsPage(_ context.Context, limit, offset int) ([]subgraph.Proposal, error) {
	f.pageCalls++
	if offset >= len(f.proposals) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.proposals) {
		end = len(f.proposals)
	}
	return f.proposals[offset:end], nil
}

func (f *fakeRemote) FetchVotes(_ context.Context, proposalID string) ([]subgraph.Vote, error) {
	if err := f.votesErr[proposalID]; err != nil {
		return nil, err
	}
	return f.votes[proposalID], nil
}

func remoteProposal(number uint64, created int64) subgraph.Proposal {
	return subgraph.Proposal{
		ID:               fmt.Sprintf("0xprop%d", number),
		ProposalNumber:   strconv.FormatUint(number, 10),
		Title:            fmt.Sprintf("Proposal %d", number),
		Description:      "Fund the thing",
		Proposer:         subgraph.Account{ID: "0xproposer"},
		ForVotes:         "10",
		AgainstVotes:     "2",
		AbstainVotes:     "0",
		QuorumVotes:      "5",
		CreatedTimestamp: strconv.FormatInt(created, 10),
		VoteStart:        strconv.FormatInt(created+10, 10),
		VoteEnd:          strconv.FormatInt(created+20, 10),
	}
}

func newEngine(remote syncpkg.Remote, store *memory.Store) *syncpkg.Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return syncpkg.New(remote, store, store, store, log)
}

func TestIncremental_NewProposalsAndVotes(t *testing.T) {
	store := memory.New()
	remote := &fakeRemote{
		proposals: []subgraph.Proposal{
			remoteProposal(1, 100),
			remoteProposal(2, 200),
		},
		votes: map[string][]subgraph.Vote{
			"0xprop1": {
				{ID: "v1", Voter: subgraph.Account{ID: "0xa"}, SupportDetailed: 1, Weight: "7", BlockTimestamp: "150"},
				{ID: "v2", Voter: subgraph.Account{ID: "0xb"}, SupportDetailed: 0, Weight: "3", BlockTimestamp: "160"},
			},
		},
	}

	result, err := newEngine(remote, store).Incremental(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 2, result.Synced)
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, result.Errors)
	assert.InDelta(t, time.Now().Unix(), result.LastSyncTime, 5)

	p, err := store.GetProposalByNumber(1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "0xprop1", p.ProposalID)
	assert.NotEmpty(t, p.Status)

	votes, err := store.ListVotes("0xprop1", storage.VoteOptions{})
	require.NoError(t, err)
	assert.Len(t, votes, 2)

	cursor, err := store.GetSyncCursor()
	require.NoError(t, err)
	assert.Equal(t, result.LastSyncTime, cursor)
}

func TestIncremental_SecondRunSeesNothingNew(t *testing.T) {
	store := memory.New()
	remote := &fakeRemote{proposals: []subgraph.Proposal{remoteProposal(1, 100)}}
	engine := newEngine(remote, store)

	first, err := engine.Incremental(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, first.Synced)

	second, err := engine.Incremental(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Synced)
	assert.Equal(t, 0, second.Updated)

	count, err := store.CountProposals(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIncremental_CursorAdvancesDespiteFetchFailure(t *testing.T) {
	store := memory.New()
	remote := &fakeRemote{sinceErr: errors.New("subgraph down")}

	result, err := newEngine(remote, store).Incremental(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "subgraph down")

	cursor, err := store.GetSyncCursor()
	require.NoError(t, err)
	assert.Equal(t, result.LastSyncTime, cursor)
	assert.NotZero(t, cursor)
}

func TestIncremental_PerProposalFailuresTolerated(t *testing.T) {
	store := memory.New()
	bad := remoteProposal(3, 300)
	bad.ProposalNumber = "not-a-number"
	remote := &fakeRemote{
		proposals: []subgraph.Proposal{
			remoteProposal(1, 100),
			bad,
			remoteProposal(2, 200),
		},
		votesErr: map[string]error{"0xprop2": errors.New("timeout")},
	}

	result, err := newEngine(remote, store).Incremental(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Synced)
	assert.Len(t, result.Errors, 2)

	count, err := store.CountProposals(nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIncremental_ExistingProposalCountsAsUpdated(t *testing.T) {
	store := memory.New()
	remote := &fakeRemote{proposals: []subgraph.Proposal{remoteProposal(1, 100)}}
	engine := newEngine(remote, store)

	_, err := engine.Incremental(context.Background())
	require.NoError(t, err)

	// Reset the cursor so the same proposal comes back with fresh tallies.
	require.NoError(t, store.SetSyncCursor(0))
	remote.proposals[0].ForVotes = "99"

	result, err := engine.Incremental(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 1, result.Updated)

	p, err := store.GetProposalByNumber(1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "99", p.ForVotes)
}

func TestFull_PaginatesUntilShortPage(t *testing.T) {
	store := memory.New()
	var proposals []subgraph.Proposal
	for i := uint64(1); i <= 120; i++ {
		proposals = append(proposals, remoteProposal(i, int64(i*10)))
	}
	remote := &fakeRemote{proposals: proposals}

	result, err := newEngine(remote, store).Full(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 120, result.Synced)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 3, remote.pageCalls)

	count, err := store.CountProposals(nil)
	require.NoError(t, err)
	assert.Equal(t, 120, count)
}

func TestFull_RefreshesExistingProposals(t *testing.T) {
	store := memory.New()
	_, err := store.UpsertProposals([]models.Proposal{{ProposalNumber: 1, ProposalID: "0xprop1", ForVotes: "1"}})
	require.NoError(t, err)

	remote := &fakeRemote{proposals: []subgraph.Proposal{remoteProposal(1, 100)}}
	result, err := newEngine(remote, store).Full(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Synced)
	assert.Equal(t, 1, result.Updated)

	p, err := store.GetProposalByNumber(1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "10", p.ForVotes)
}

func TestVoteSupportValidation(t *testing.T) {
	store := memory.New()
	remote := &fakeRemote{
		proposals: []subgraph.Proposal{remoteProposal(1, 100)},
		votes: map[string][]subgraph.Vote{
			"0xprop1": {
				{ID: "v1", Voter: subgraph.Account{ID: "0xa"}, SupportDetailed: 7, Weight: "1", BlockTimestamp: "150"},
				{ID: "v2", Voter: subgraph.Account{ID: "0xb"}, SupportDetailed: 2, Weight: "1", BlockTimestamp: "151"},
			},
		},
	}

	result, err := newEngine(remote, store).Incremental(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unknown support value 7")

	votes, err := store.ListVotes("0xprop1", storage.VoteOptions{})
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, models.SupportAbstain, votes[0].Support)
}
