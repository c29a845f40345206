// Package search ranks stored proposal chunks against a query embedding
// and shapes the result as one hit per proposal.
package search

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/govscout/gov-index/internal/constants"
	"github.com/govscout/gov-index/internal/embeddings"
	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/storage"
)

const (
	minQueryLength = 2
	excerptLength  = 200
	// overFetchFactor widens the chunk ranking so deduplication by proposal
	// still fills the requested limit.
	overFetchFactor = 3
)

// Request carries one search call. Zero Limit and Threshold take defaults;
// a nil Status means chunks of every proposal status are considered.
type Request struct {
	Query     string
	Status    *models.ProposalStatus
	Limit     int
	Threshold float32
}

type Service struct {
	chunks   storage.ChunkStore
	embedder embeddings.Embedder
	log      *slog.Logger
}

func NewService(chunks storage.ChunkStore, embedder embeddings.Embedder, log *slog.Logger) *Service {
	return &Service{chunks: chunks, embedder: embedder, log: log}
}

// Search embeds the query, ranks stored chunks against it, and returns the
// best-matching chunk per proposal, ordered by similarity. The response's
// EmbeddingsIndexed count lets callers tell an empty index from no matches.
func (s *Service) Search(req Request) (models.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return models.SearchResponse{}, fmt.Errorf("query must be at least %d characters", minQueryLength)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = constants.SearchDefaultLimit
	}
	if limit > constants.SearchMaxLimit {
		limit = constants.SearchMaxLimit
	}
	threshold := req.Threshold
	if threshold == 0 {
		threshold = constants.SearchDefaultThreshold
	}

	chunks, err := s.chunks.ListChunks(req.Status)
	if err != nil {
		return models.SearchResponse{}, fmt.Errorf("load chunks: %w", err)
	}
	if len(chunks) == 0 {
		return models.SearchResponse{Hits: []models.SearchHit{}}, nil
	}

	queryVec, err := s.embedder.EmbedQuery(query)
	if err != nil {
		return models.SearchResponse{}, fmt.Errorf("embed query: %w", err)
	}

	candidates := make([][]float32, len(chunks))
	for i, ch := range chunks {
		candidates[i] = ch.Vector
	}
	ranked, err := embeddings.Rank(queryVec, candidates, limit*overFetchFactor, threshold)
	if err != nil {
		return models.SearchResponse{}, fmt.Errorf("rank chunks: %w", err)
	}

	hits := dedupeByProposal(chunks, ranked, limit)
	s.log.Debug("search finished",
		"query_len", len(query),
		"chunks", len(chunks),
		"hits", len(hits))
	return models.SearchResponse{Hits: hits, EmbeddingsIndexed: len(chunks)}, nil
}

// dedupeByProposal keeps each proposal's best-scoring chunk. Ranked results
// arrive sorted by score descending with stable ties, so the first chunk
// seen for a proposal is its best one and the hit order stays sorted.
func dedupeByProposal(chunks []models.ProposalChunk, ranked []embeddings.RankedResult, limit int) []models.SearchHit {
	hits := make([]models.SearchHit, 0, limit)
	seen := make(map[uint64]bool, limit)
	for _, r := range ranked {
		ch := chunks[r.Index]
		if seen[ch.ProposalNumber] {
			continue
		}
		seen[ch.ProposalNumber] = true
		hits = append(hits, models.SearchHit{
			ProposalNumber: ch.ProposalNumber,
			ProposalID:     ch.ProposalID,
			Title:          ch.Title,
			Status:         ch.Status,
			Similarity:     r.Score,
			Excerpt:        excerpt(ch.Text, excerptLength),
		})
		if len(hits) == limit {
			break
		}
	}
	return hits
}

// excerpt truncates text to about max runes, breaking at a word boundary
// when one falls in the last 30% of the window.
func excerpt(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	cut := max
	window := max - max*3/10
	for i := max; i > window; i-- {
		if runes[i-1] == ' ' {
			cut = i - 1
			break
		}
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "..."
}
