package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/govscout/gov-index/internal/constants"
	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/storage"
	"github.com/govscout/gov-index/internal/subgraph"
)

// incrementalFetchLimit bounds one incremental pull. The subgraph orders
// proposals by creation time ascending, so a truncated pull is picked up by
// the next run through the cursor.
const incrementalFetchLimit = 1000

// Remote is the slice of the subgraph client the engine consumes.
type Remote interface {
	FetchProposalsSince(ctx context.Context, since int64, limit int) ([]subgraph.Proposal, error)
	FetchProposalsPage(ctx context.Context, limit, offset int) ([]subgraph.Proposal, error)
	FetchVotes(ctx context.Context, proposalID string) ([]subgraph.Vote, error)
}

// Engine mirrors proposals and votes from the subgraph into local storage.
// Remote failures are tolerated per item and collected in the result; only
// local storage failures abort a run.
type Engine struct {
	remote    Remote
	proposals storage.ProposalStore
	votes     storage.VoteStore
	cursor    storage.CursorStore
	log       *slog.Logger
	now       func() time.Time
	pageSize  int
}

func New(remote Remote, proposals storage.ProposalStore, votes storage.VoteStore, cursor storage.CursorStore, log *slog.Logger) *Engine {
	return &Engine{
		remote:    remote,
		proposals: proposals,
		votes:     votes,
		cursor:    cursor,
		log:       log,
		now:       time.Now,
		pageSize:  constants.SyncPageSize,
	}
}

// Incremental pulls proposals created after the stored cursor. The cursor
// always advances to the run's start time, even when items failed, so a
// failing proposal cannot wedge the mirror.
func (e *Engine) Incremental(ctx context.Context) (models.SyncResult, error) {
	result := models.SyncResult{RunID: uuid.New().String()}
	started := e.now().Unix()

	since, err := e.cursor.GetSyncCursor()
	if err != nil {
		return result, fmt.Errorf("read sync cursor: %w", err)
	}

	items, err := e.remote.FetchProposalsSince(ctx, since, incrementalFetchLimit)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetch proposals since %d: %v", since, err))
	} else if err := e.processBatch(ctx, items, &result); err != nil {
		return result, err
	}

	if err := e.finish(started, &result); err != nil {
		return result, err
	}
	e.log.Info("incremental sync finished",
		"run_id", result.RunID,
		"since", since,
		"synced", result.Synced,
		"updated", result.Updated,
		"errors", len(result.Errors))
	return result, nil
}

// Full re-mirrors the entire corpus page by page, refreshing every stored
// proposal and its votes. It terminates on an empty or short page.
func (e *Engine) Full(ctx context.Context) (models.SyncResult, error) {
	result := models.SyncResult{RunID: uuid.New().String()}
	started := e.now().Unix()

	for offset := 0; ; offset += e.pageSize {
		page, err := e.remote.FetchProposalsPage(ctx, e.pageSize, offset)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fetch page at offset %d: %v", offset, err))
			break
		}
		if len(page) == 0 {
			break
		}
		if err := e.processBatch(ctx, page, &result); err != nil {
			return result, err
		}
		if len(page) < e.pageSize {
			break
		}
	}

	if err := e.finish(started, &result); err != nil {
		return result, err
	}
	e.log.Info("full sync finished",
		"run_id", result.RunID,
		"synced", result.Synced,
		"updated", result.Updated,
		"errors", len(result.Errors))
	return result, nil
}

func (e *Engine) processBatch(ctx context.Context, items []subgraph.Proposal, result *models.SyncResult) error {
	now := e.now().Unix()
	for _, raw := range items {
		p, err := fromRemoteProposal(raw, now)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("proposal %s: %v", raw.ProposalNumber, err))
			continue
		}
		existing, err := e.proposals.GetProposalByNumber(p.ProposalNumber)
		if err != nil {
			return fmt.Errorf("lookup proposal %d: %w", p.ProposalNumber, err)
		}
		if _, err := e.proposals.UpsertProposals([]models.Proposal{p}); err != nil {
			return fmt.Errorf("upsert proposal %d: %w", p.ProposalNumber, err)
		}
		if existing != nil {
			result.Updated++
		} else {
			result.Synced++
		}
		if err := e.syncVotes(ctx, p.ProposalID, result); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) syncVotes(ctx context.Context, proposalID string, result *models.SyncResult) error {
	raw, err := e.remote.FetchVotes(ctx, proposalID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetch votes for %s: %v", proposalID, err))
		return nil
	}
	votes := make([]models.Vote, 0, len(raw))
	for _, rv := range raw {
		v, err := fromRemoteVote(rv, proposalID)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		votes = append(votes, v)
	}
	if len(votes) == 0 {
		return nil
	}
	if _, err := e.votes.UpsertVotes(votes); err != nil {
		return fmt.Errorf("upsert votes for %s: %w", proposalID, err)
	}
	return nil
}

func (e *Engine) finish(started int64, result *models.SyncResult) error {
	if err := e.cursor.SetSyncCursor(started); err != nil {
		return fmt.Errorf("advance sync cursor: %w", err)
	}
	result.LastSyncTime = started
	for _, msg := range result.Errors {
		e.log.Warn("sync item failed", "run_id", result.RunID, "error", msg)
	}
	return nil
}
