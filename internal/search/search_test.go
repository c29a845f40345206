package search_test

import (
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/search"
	"github.com/govscout/gov-index/internal/storage/memory"
)

// fixedEmbedder returns the same query vector for any input.
type fixedEmbedder struct {
	query []float32
}

func (e *fixedEmbedder) EmbedTexts(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.query
	}
	return out, nil
}

func (e *fixedEmbedder) EmbedQuery(string) ([]float32, error) { return e.query, nil }
func (e *fixedEmbedder) Dimension() int                       { return len(e.query) }
func (e *fixedEmbedder) ModelName() string                    { return "fixed" }

// vec builds a unit vector whose cosine similarity with [1,0,0] equals score.
func vec(score float64) []float32 {
	return []float32{float32(score), float32(math.Sqrt(1 - score*score)), 0}
}

func newService(store *memory.Store) *search.Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return search.NewService(store, &fixedEmbedder{query: []float32{1, 0, 0}}, log)
}

func seed(t *testing.T, store *memory.Store, number uint64, status models.ProposalStatus, scores ...float64) {
	t.Helper()
	id := "0xprop" + strings.Repeat("0", int(number))
	_, err := store.UpsertProposals([]models.Proposal{{
		ProposalNumber: number,
		ProposalID:     id,
		Title:          "Proposal",
		Status:         status,
	}})
	require.NoError(t, err)
	chunks := make([]models.EmbeddingChunk, len(scores))
	for i, s := range scores {
		chunks[i] = models.EmbeddingChunk{
			ProposalID: id,
			ChunkIndex: i,
			Text:       "chunk text",
			Vector:     vec(s),
		}
	}
	_, err = store.UpsertChunks(chunks)
	require.NoError(t, err)
}

func TestSearch_QueryTooShort(t *testing.T) {
	_, err := newService(memory.New()).Search(search.Request{Query: " a "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 2 characters")
}

func TestSearch_EmptyIndex(t *testing.T) {
	resp, err := newService(memory.New()).Search(search.Request{Query: "grants"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.EmbeddingsIndexed)
	assert.Empty(t, resp.Hits)
}

func TestSearch_DeduplicatesByProposal(t *testing.T) {
	store := memory.New()
	seed(t, store, 1, models.StatusActive, 0.9, 0.8)
	seed(t, store, 2, models.StatusActive, 0.85)

	resp, err := newService(store).Search(search.Request{Query: "grants"})
	require.NoError(t, err)

	require.Len(t, resp.Hits, 2)
	assert.Equal(t, uint64(1), resp.Hits[0].ProposalNumber)
	assert.InDelta(t, 0.9, resp.Hits[0].Similarity, 1e-4)
	assert.Equal(t, uint64(2), resp.Hits[1].ProposalNumber)
	assert.InDelta(t, 0.85, resp.Hits[1].Similarity, 1e-4)
	assert.Equal(t, 3, resp.EmbeddingsIndexed)
}

func TestSearch_ThresholdFiltersWeakMatches(t *testing.T) {
	store := memory.New()
	seed(t, store, 1, models.StatusActive, 0.1)
	seed(t, store, 2, models.StatusActive, 0.7)

	resp, err := newService(store).Search(search.Request{Query: "grants"})
	require.NoError(t, err)

	require.Len(t, resp.Hits, 1)
	assert.Equal(t, uint64(2), resp.Hits[0].ProposalNumber)
}

func TestSearch_StatusFilter(t *testing.T) {
	store := memory.New()
	seed(t, store, 1, models.StatusExecuted, 0.9)
	seed(t, store, 2, models.StatusActive, 0.8)

	active := models.StatusActive
	resp, err := newService(store).Search(search.Request{Query: "grants", Status: &active})
	require.NoError(t, err)

	require.Len(t, resp.Hits, 1)
	assert.Equal(t, uint64(2), resp.Hits[0].ProposalNumber)
	assert.Equal(t, 1, resp.EmbeddingsIndexed)
}

func TestSearch_LimitClamped(t *testing.T) {
	store := memory.New()
	for i := uint64(1); i <= 25; i++ {
		seed(t, store, i, models.StatusActive, 0.9)
	}

	resp, err := newService(store).Search(search.Request{Query: "grants", Limit: 100})
	require.NoError(t, err)
	assert.Len(t, resp.Hits, 20)

	resp, err = newService(store).Search(search.Request{Query: "grants"})
	require.NoError(t, err)
	assert.Len(t, resp.Hits, 5)
}

func TestSearch_ExcerptTruncation(t *testing.T) {
	store := memory.New()
	long := strings.Repeat("budget allocation ", 30)
	_, err := store.UpsertProposals([]models.Proposal{{
		ProposalNumber: 1, ProposalID: "0xp", Title: "Proposal", Status: models.StatusActive,
	}})
	require.NoError(t, err)
	_, err = store.UpsertChunks([]models.EmbeddingChunk{{
		ProposalID: "0xp", ChunkIndex: 0, Text: long, Vector: vec(0.9),
	}})
	require.NoError(t, err)

	resp, err := newService(store).Search(search.Request{Query: "grants"})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)

	excerpt := resp.Hits[0].Excerpt
	assert.True(t, strings.HasSuffix(excerpt, "..."), "excerpt %q should end with ellipsis", excerpt)
	assert.LessOrEqual(t, len(excerpt), 203)
	body := strings.TrimSuffix(excerpt, "...")
	assert.False(t, strings.HasSuffix(body, " "))
	assert.True(t, strings.HasPrefix(long, body))
}

func TestSearch_ShortTextKeptWhole(t *testing.T) {
	store := memory.New()
	seed(t, store, 1, models.StatusActive, 0.9)

	resp, err := newService(store).Search(search.Request{Query: "grants"})
	require.NoError(t, err)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "chunk text", resp.Hits[0].Excerpt)
}
