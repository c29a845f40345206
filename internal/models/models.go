package models

import "time"

type ProposalStatus string

const (
	StatusPending   ProposalStatus = "pending"
	StatusActive    ProposalStatus = "active"
	StatusCancelled ProposalStatus = "cancelled"
	StatusDefeated  ProposalStatus = "defeated"
	StatusSucceeded ProposalStatus = "succeeded"
	StatusQueued    ProposalStatus = "queued"
	StatusExpired   ProposalStatus = "expired"
	StatusExecuted  ProposalStatus = "executed"
	StatusVetoed    ProposalStatus = "vetoed"
)

func StringToProposalStatus(s string) (ProposalStatus, bool) {
	switch ProposalStatus(s) {
	case StatusPending, StatusActive, StatusCancelled, StatusDefeated,
		StatusSucceeded, StatusQueued, StatusExpired, StatusExecuted, StatusVetoed:
		return ProposalStatus(s), true
	}
	return "", false
}

// VoteSupport follows the Governor supportDetailed encoding.
type VoteSupport int

const (
	SupportAgainst VoteSupport = 0
	SupportFor     VoteSupport = 1
	SupportAbstain VoteSupport = 2
)

func (s VoteSupport) String() string {
	switch s {
	case SupportAgainst:
		return "against"
	case SupportFor:
		return "for"
	case SupportAbstain:
		return "abstain"
	}
	return "unknown"
}

func StringToVoteSupport(s string) (VoteSupport, bool) {
	switch s {
	case "against":
		return SupportAgainst, true
	case "for":
		return SupportFor, true
	case "abstain":
		return SupportAbstain, true
	}
	return 0, false
}

// Proposal mirrors one on-chain governance proposal. ProposalNumber is the
// stable natural key; ProposalID is the canonical hex identifier, which may
// lag behind the number while the subgraph indexes a new proposal.
// Vote tallies stay decimal strings to preserve 256-bit precision.
type Proposal struct {
	ProposalNumber   uint64         `json:"proposal_number"`
	ProposalID       string         `json:"proposal_id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Proposer         string         `json:"proposer"`
	Status           ProposalStatus `json:"status"`
	ForVotes         string         `json:"for_votes"`
	AgainstVotes     string         `json:"against_votes"`
	AbstainVotes     string         `json:"abstain_votes"`
	QuorumVotes      string         `json:"quorum_votes"`
	Executed         bool           `json:"executed"`
	Canceled         bool           `json:"canceled"`
	Vetoed           bool           `json:"vetoed"`
	Queued           bool           `json:"queued"`
	CreatedTimestamp int64          `json:"created_timestamp"`
	VoteStart        int64          `json:"vote_start"`
	VoteEnd          int64          `json:"vote_end"`
	ExecutionETA     int64          `json:"execution_eta"`
	ExpiresAt        int64          `json:"expires_at"`
	TransactionHash  string         `json:"transaction_hash"`
}

// Vote is one voter's recorded choice on a proposal. Votes are immutable
// upstream; VoteID is the external identifier that makes upserts idempotent.
type Vote struct {
	VoteID          string      `json:"vote_id"`
	ProposalID      string      `json:"proposal_id"`
	Voter           string      `json:"voter"`
	Support         VoteSupport `json:"support"`
	Weight          string      `json:"weight"`
	Reason          string      `json:"reason"`
	BlockTimestamp  int64       `json:"block_timestamp"`
	TransactionHash string      `json:"transaction_hash"`
}

// EmbeddingChunk is one embedded segment of a proposal's text, keyed by
// (ProposalID, ChunkIndex). ChunkIndex values form a contiguous 0..N-1 range.
type EmbeddingChunk struct {
	ProposalID string
	ChunkIndex int
	Text       string
	Vector     []float32
	CreatedAt  time.Time
}

// ProposalChunk joins a chunk with its owning proposal so filtered search
// needs a single round trip.
type ProposalChunk struct {
	EmbeddingChunk
	ProposalNumber uint64
	Title          string
	Status         ProposalStatus
}

// ChunkHit is one chunk returned by a nearest-neighbor store query.
type ChunkHit struct {
	Chunk      ProposalChunk
	Similarity float32
}

// VoteSummary aggregates voter counts over the full unfiltered vote set.
type VoteSummary struct {
	ForCount     int `json:"for"`
	AgainstCount int `json:"against"`
	AbstainCount int `json:"abstain"`
}

// SyncResult reports one sync run. Errors lists per-item failures that were
// tolerated; the cursor still advances.
type SyncResult struct {
	RunID        string   `json:"run_id"`
	Synced       int      `json:"synced"`
	Updated      int      `json:"updated"`
	Errors       []string `json:"errors"`
	LastSyncTime int64    `json:"last_sync_time"`
}

// IndexResult reports one embedding-index run.
type IndexResult struct {
	Indexed int      `json:"indexed"`
	Errors  []string `json:"errors"`
}

// SearchHit is one ranked proposal in a semantic search response.
type SearchHit struct {
	ProposalNumber uint64         `json:"proposal_number"`
	ProposalID     string         `json:"proposal_id"`
	Title          string         `json:"title"`
	Status         ProposalStatus `json:"status"`
	Similarity     float32        `json:"similarity"`
	Excerpt        string         `json:"excerpt"`
}

// SearchResponse distinguishes "nothing indexed yet" from "no matches":
// EmbeddingsIndexed is the total chunk count considered.
type SearchResponse struct {
	Hits              []SearchHit `json:"hits"`
	EmbeddingsIndexed int         `json:"embeddings_indexed"`
}
