// Package indexer embeds proposal text into chunk vectors for search.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/govscout/gov-index/internal/chunker"
	"github.com/govscout/gov-index/internal/constants"
	"github.com/govscout/gov-index/internal/embeddings"
	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/storage"
)

// Progress is called after each proposal is processed, whether it indexed
// cleanly or failed.
type Progress func(done, total int)

// Job indexes every stored proposal that has no embedding chunks yet.
// Proposal text is treated as immutable once created, so a proposal with
// chunks is never re-embedded.
type Job struct {
	chunks   storage.ChunkStore
	embedder embeddings.Embedder
	log      *slog.Logger
}

func NewJob(chunks storage.ChunkStore, embedder embeddings.Embedder, log *slog.Logger) *Job {
	return &Job{chunks: chunks, embedder: embedder, log: log}
}

// Run processes proposals sequentially so a failure is attributed to one
// proposal and memory stays bounded by a single proposal's chunk set.
// Per-proposal failures, embedding and storage alike, are recorded in the
// result and the run continues; only listing failures and a cancelled
// context abort it.
func (j *Job) Run(ctx context.Context, progress Progress) (models.IndexResult, error) {
	var result models.IndexResult

	pending, err := j.chunks.ProposalsWithoutChunks()
	if err != nil {
		return result, fmt.Errorf("list unindexed proposals: %w", err)
	}
	total := len(pending)

	for done, p := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := j.indexProposal(p); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("proposal %d: %v", p.ProposalNumber, err))
			j.log.Warn("indexing proposal failed", "proposal_number", p.ProposalNumber, "error", err)
		} else {
			result.Indexed++
		}
		if progress != nil {
			progress(done+1, total)
		}
	}

	j.log.Info("indexing finished", "indexed", result.Indexed, "errors", len(result.Errors))
	return result, nil
}

func (j *Job) indexProposal(p models.Proposal) error {
	text := chunker.PrepareProposalText(p.Title, p.Description)
	if text == "" {
		return fmt.Errorf("no text to index")
	}

	parts := chunker.Chunk(text, constants.ChunkMaxSize, constants.ChunkOverlap)
	vectors, err := j.embedder.EmbedTexts(parts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(parts), err)
	}
	if len(vectors) != len(parts) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(parts))
	}

	now := time.Now()
	chunks := make([]models.EmbeddingChunk, len(parts))
	for i, part := range parts {
		chunks[i] = models.EmbeddingChunk{
			ProposalID: p.ProposalID,
			ChunkIndex: i,
			Text:       part,
			Vector:     vectors[i],
			CreatedAt:  now,
		}
	}
	if _, err := j.chunks.UpsertChunks(chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}
