// Package subgraph is the client for the remote governance data source, a
// GraphQL-style query service. Failures carry the original query and
// variables for diagnostics.
package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// QueryError reports a failed query: a transport error, a non-200 status,
// or a response with a populated top-level errors array.
type QueryError struct {
	Query     string
	Variables map[string]any
	Status    int
	Messages  []string
}

func (e *QueryError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("subgraph query failed: %s", strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("subgraph query failed: status %d", e.Status)
}

// Client talks to one subgraph endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphError struct {
	Message string `json:"message"`
}

// execute posts a query and decodes the data payload into out. A non-200
// status or any reported query error becomes a *QueryError.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(&request{Query: query, Variables: variables})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &QueryError{Query: query, Variables: variables, Messages: []string{err.Error()}}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &QueryError{Query: query, Variables: variables, Status: resp.StatusCode}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphError    `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &QueryError{
			Query: query, Variables: variables, Status: resp.StatusCode,
			Messages: []string{fmt.Sprintf("decode response: %v", err)},
		}
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, ge := range envelope.Errors {
			messages[i] = ge.Message
		}
		return &QueryError{Query: query, Variables: variables, Status: resp.StatusCode, Messages: messages}
	}
	return json.Unmarshal(envelope.Data, out)
}

const proposalFields = `
	id
	proposalNumber
	title
	description
	proposer { id }
	forVotes
	againstVotes
	abstainVotes
	quorumVotes
	executed
	canceled
	vetoed
	queued
	createdTimestamp
	voteStart
	voteEnd
	executionETA
	expiresAt
	createdTransactionHash`

const proposalsSinceQuery = `query ProposalsSince($since: BigInt!, $first: Int!) {
	proposals(
		where: { createdTimestamp_gt: $since }
		orderBy: createdTimestamp
		orderDirection: asc
		first: $first
	) {` + proposalFields + `
	}
}`

const proposalsPageQuery = `query ProposalsPage($first: Int!, $skip: Int!) {
	proposals(
		orderBy: createdTimestamp
		orderDirection: asc
		first: $first
		skip: $skip
	) {` + proposalFields + `
	}
}`

const votesQuery = `query ProposalVotes($proposal: String!, $first: Int!) {
	votes(
		where: { proposal: $proposal }
		orderBy: blockTimestamp
		orderDirection: asc
		first: $first
	) {
		id
		voter { id }
		supportDetailed
		weight
		reason
		blockTimestamp
		transactionHash
	}
}`

// FetchProposalsSince returns proposals created strictly after the given
// unix timestamp, oldest first. The page size is enforced upstream.
func (c *Client) FetchProposalsSince(ctx context.Context, since int64, limit int) ([]Proposal, error) {
	var out struct {
		Proposals []Proposal `json:"proposals"`
	}
	err := c.execute(ctx, proposalsSinceQuery, map[string]any{
		"since": fmt.Sprintf("%d", since),
		"first": limit,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Proposals, nil
}

// FetchProposalsPage returns one page of the full proposal set.
func (c *Client) FetchProposalsPage(ctx context.Context, limit, offset int) ([]Proposal, error) {
	var out struct {
		Proposals []Proposal `json:"proposals"`
	}
	err := c.execute(ctx, proposalsPageQuery, map[string]any{
		"first": limit,
		"skip":  offset,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Proposals, nil
}

// FetchVotes returns all votes recorded for one proposal.
func (c *Client) FetchVotes(ctx context.Context, proposalID string) ([]Vote, error) {
	var out struct {
		Votes []Vote `json:"votes"`
	}
	err := c.execute(ctx, votesQuery, map[string]any{
		"proposal": proposalID,
		"first":    1000,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Votes, nil
}
