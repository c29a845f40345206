package fx

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/embeddings"
	"github.com/govscout/gov-index/internal/indexer"
	"github.com/govscout/gov-index/internal/storage"
)

// IndexerParams represents dependencies for the indexing job
type IndexerParams struct {
	fx.In

	Chunks   storage.ChunkStore
	Embedder embeddings.Embedder
	Log      *slog.Logger
}

// NewIndexJob creates the embedding index job
func NewIndexJob(params IndexerParams) *indexer.Job {
	return indexer.NewJob(params.Chunks, params.Embedder, params.Log)
}

// IndexerModule provides the indexing job
var IndexerModule = fx.Module("indexer",
	fx.Provide(NewIndexJob),
)
