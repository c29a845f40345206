package storage

import "github.com/govscout/gov-index/internal/models"

// SortOrder controls proposal listing order by creation time.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListOptions shape proposal listings. A nil Status means no filter.
type ListOptions struct {
	Status *models.ProposalStatus
	Limit  int
	Offset int
	Order  SortOrder
}

// VoteOptions shape vote listings for one proposal. A nil Support means no
// filter; the summary is always computed over the unfiltered set.
type VoteOptions struct {
	Support *models.VoteSupport
	Limit   int
	Offset  int
}

// ProposalStore persists proposals keyed by their natural number.
// Get methods return (nil, nil) when the proposal is absent.
type ProposalStore interface {
	UpsertProposals(proposals []models.Proposal) (int, error)
	GetProposalByNumber(number uint64) (*models.Proposal, error)
	GetProposalByID(id string) (*models.Proposal, error)
	ListProposals(opts ListOptions) ([]models.Proposal, error)
	CountProposals(status *models.ProposalStatus) (int, error)
}

// VoteStore persists votes keyed by their external vote id, so re-syncing a
// seen window is idempotent.
type VoteStore interface {
	UpsertVotes(votes []models.Vote) (int, error)
	ListVotes(proposalID string, opts VoteOptions) ([]models.Vote, error)
	VoteSummary(proposalID string) (models.VoteSummary, error)
}

// CursorStore holds the single sync watermark. Get returns 0 before the
// first sync; Set overwrites unconditionally.
type CursorStore interface {
	GetSyncCursor() (int64, error)
	SetSyncCursor(ts int64) error
}

// ChunkStore persists embedding chunks keyed by (proposal id, chunk index)
// with their vectors.
type ChunkStore interface {
	UpsertChunks(chunks []models.EmbeddingChunk) (int, error)
	ListChunks(status *models.ProposalStatus) ([]models.ProposalChunk, error)
	ProposalsWithoutChunks() ([]models.Proposal, error)
	CountChunks() (int, error)
	Close() error
}
