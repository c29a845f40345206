// Package factory builds component graphs outside the fx container, for
// callers that need a fresh set against a caller-chosen database.
package factory

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/govscout/gov-index/internal/config/configfx"
	"github.com/govscout/gov-index/internal/embeddings"
	"github.com/govscout/gov-index/internal/indexer"
	"github.com/govscout/gov-index/internal/search"
	"github.com/govscout/gov-index/internal/storage"
	"github.com/govscout/gov-index/internal/storage/sqlite"
	"github.com/govscout/gov-index/internal/storage/sqlvec"
	"github.com/govscout/gov-index/internal/subgraph"
	syncengine "github.com/govscout/gov-index/internal/sync"
)

// Components holds one wired set of application components sharing a
// database file. Close releases both underlying connections.
type Components struct {
	Proposals storage.ProposalStore
	Votes     storage.VoteStore
	Cursor    storage.CursorStore
	Chunks    storage.ChunkStore
	Embedder  embeddings.Embedder
	Remote    *subgraph.Client
	Searcher  *search.Service
	Engine    *syncengine.Engine
	Indexer   *indexer.Job

	relational *sqlite.Store
	vectors    *sqlvec.Store
}

// New wires a full component set from config. The relational store and the
// vector store open the same database file on their own connections.
func New(cfg configfx.Config, log *slog.Logger) (*Components, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("database path must be specified")
	}

	relational, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	vectors, err := sqlvec.New(cfg.DBPath, cfg.Dimension)
	if err != nil {
		relational.Close() //nolint:errcheck
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	embedder := embeddings.NewApi(cfg.EmbedURL)
	remote := subgraph.NewClient(cfg.SubgraphURL)

	return &Components{
		Proposals:  relational,
		Votes:      relational,
		Cursor:     relational,
		Chunks:     vectors,
		Embedder:   embedder,
		Remote:     remote,
		Searcher:   search.NewService(vectors, embedder, log),
		Engine:     syncengine.New(remote, relational, relational, relational, log),
		Indexer:    indexer.NewJob(vectors, embedder, log),
		relational: relational,
		vectors:    vectors,
	}, nil
}

func (c *Components) Close() error {
	return errors.Join(c.relational.Close(), c.vectors.Close())
}
