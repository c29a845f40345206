// Package memory holds in-memory store implementations used by tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/govscout/gov-index/internal/models"
	"github.com/govscout/gov-index/internal/storage"
)

type Store struct {
	mu        sync.RWMutex
	proposals map[uint64]models.Proposal
	votes     map[string]models.Vote
	chunks    map[string][]models.EmbeddingChunk // proposal id -> chunks
	cursor    int64
}

func New() *Store {
	return &Store{
		proposals: make(map[uint64]models.Proposal),
		votes:     make(map[string]models.Vote),
		chunks:    make(map[string][]models.EmbeddingChunk),
	}
}

func (s *Store) UpsertProposals(proposals []models.Proposal) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range proposals {
		s.proposals[p.ProposalNumber] = p
	}
	return len(proposals), nil
}

func (s *Store) GetProposalByNumber(number uint64) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.proposals[number]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *Store) GetProposalByID(id string) (*models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.proposals {
		if p.ProposalID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) ListProposals(opts storage.ListOptions) ([]models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Proposal
	for _, p := range s.proposals {
		if opts.Status != nil && p.Status != *opts.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Order == storage.OrderAsc {
			return out[i].CreatedTimestamp < out[j].CreatedTimestamp
		}
		return out[i].CreatedTimestamp > out[j].CreatedTimestamp
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) CountProposals(status *models.ProposalStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status == nil {
		return len(s.proposals), nil
	}
	n := 0
	for _, p := range s.proposals {
		if p.Status == *status {
			n++
		}
	}
	return n, nil
}

func (s *Store) UpsertVotes(votes []models.Vote) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range votes {
		s.votes[v.VoteID] = v
	}
	return len(votes), nil
}

func (s *Store) ListVotes(proposalID string, opts storage.VoteOptions) ([]models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Vote
	for _, v := range s.votes {
		if v.ProposalID != proposalID {
			continue
		}
		if opts.Support != nil && v.Support != *opts.Support {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BlockTimestamp > out[j].BlockTimestamp
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return nil, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) VoteSummary(proposalID string) (models.VoteSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var summary models.VoteSummary
	for _, v := range s.votes {
		if v.ProposalID != proposalID {
			continue
		}
		switch v.Support {
		case models.SupportFor:
			summary.ForCount++
		case models.SupportAgainst:
			summary.AgainstCount++
		case models.SupportAbstain:
			summary.AbstainCount++
		}
	}
	return summary, nil
}

func (s *Store) GetSyncCursor() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor, nil
}

func (s *Store) SetSyncCursor(ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = ts
	return nil
}

func (s *Store) UpsertChunks(chunks []models.EmbeddingChunk) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range chunks {
		if ch.CreatedAt.IsZero() {
			ch.CreatedAt = time.Now()
		}
		existing := s.chunks[ch.ProposalID]
		replaced := false
		for i := range existing {
			if existing[i].ChunkIndex == ch.ChunkIndex {
				existing[i] = ch
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, ch)
		}
		sort.Slice(existing, func(i, j int) bool {
			return existing[i].ChunkIndex < existing[j].ChunkIndex
		})
		s.chunks[ch.ProposalID] = existing
	}
	return len(chunks), nil
}

func (s *Store) ListChunks(status *models.ProposalStatus) ([]models.ProposalChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owners []models.Proposal
	for _, p := range s.proposals {
		if _, ok := s.chunks[p.ProposalID]; !ok {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		owners = append(owners, p)
	}
	sort.Slice(owners, func(i, j int) bool {
		return owners[i].ProposalNumber < owners[j].ProposalNumber
	})
	var out []models.ProposalChunk
	for _, p := range owners {
		for _, ch := range s.chunks[p.ProposalID] {
			out = append(out, models.ProposalChunk{
				EmbeddingChunk: ch,
				ProposalNumber: p.ProposalNumber,
				Title:          p.Title,
				Status:         p.Status,
			})
		}
	}
	return out, nil
}

func (s *Store) ProposalsWithoutChunks() ([]models.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Proposal
	for _, p := range s.proposals {
		if len(s.chunks[p.ProposalID]) == 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProposalNumber < out[j].ProposalNumber
	})
	return out, nil
}

func (s *Store) CountChunks() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, chs := range s.chunks {
		n += len(chs)
	}
	return n, nil
}

func (s *Store) Close() error { return nil }
