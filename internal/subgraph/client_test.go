package subgraph_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/govscout/gov-index/internal/subgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchProposalsSince(t *testing.T) {
	var gotVars map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotVars = req.Variables
		assert.Contains(t, req.Query, "createdTimestamp_gt")

		_, _ = w.Write([]byte(`{"data": {"proposals": [
			{
				"id": "0xdeadbeef",
				"proposalNumber": "7",
				"title": "Prop 7",
				"description": "desc",
				"proposer": {"id": "0xp"},
				"forVotes": "115792089237316195423570985008687907853269984665640564039457",
				"againstVotes": "1",
				"abstainVotes": "0",
				"quorumVotes": "10",
				"executed": false,
				"canceled": false,
				"vetoed": false,
				"queued": true,
				"createdTimestamp": "1000",
				"voteStart": "1100",
				"voteEnd": "1200",
				"executionETA": "1300",
				"expiresAt": "1400",
				"createdTransactionHash": "0xtx"
			}
		]}}`))
	}))
	defer srv.Close()

	c := subgraph.NewClient(srv.URL)
	proposals, err := c.FetchProposalsSince(context.Background(), 999, 100)
	require.NoError(t, err)
	require.Len(t, proposals, 1)

	assert.Equal(t, "999", gotVars["since"])
	assert.Equal(t, float64(100), gotVars["first"])

	p := proposals[0]
	assert.Equal(t, "0xdeadbeef", p.ID)
	assert.Equal(t, "7", p.ProposalNumber)
	assert.Equal(t, "0xp", p.Proposer.ID)
	// 256-bit tallies survive as strings
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457", p.ForVotes)
	assert.True(t, p.Queued)
}

func TestFetchVotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"votes": [
			{"id": "v1", "voter": {"id": "0x1"}, "supportDetailed": 1,
			 "weight": "10", "reason": "looks good", "blockTimestamp": "1500",
			 "transactionHash": "0xv"}
		]}}`))
	}))
	defer srv.Close()

	c := subgraph.NewClient(srv.URL)
	votes, err := c.FetchVotes(context.Background(), "0xdeadbeef")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "v1", votes[0].ID)
	assert.Equal(t, 1, votes[0].SupportDetailed)
	assert.Equal(t, "looks good", votes[0].Reason)
}

func TestQueryError_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := subgraph.NewClient(srv.URL)
	_, err := c.FetchProposalsPage(context.Background(), 50, 0)
	require.Error(t, err)

	var qe *subgraph.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, http.StatusBadGateway, qe.Status)
	assert.Contains(t, qe.Query, "proposals")
	assert.Equal(t, 50, qe.Variables["first"])
}

func TestQueryError_GraphErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": null, "errors": [{"message": "field missing"}]}`))
	}))
	defer srv.Close()

	c := subgraph.NewClient(srv.URL)
	_, err := c.FetchVotes(context.Background(), "0x1")
	require.Error(t, err)

	var qe *subgraph.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, qe.Error(), "field missing")
}
