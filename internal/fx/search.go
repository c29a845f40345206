package fx

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/embeddings"
	"github.com/govscout/gov-index/internal/search"
	"github.com/govscout/gov-index/internal/storage"
)

// SearchParams represents dependencies for search service
type SearchParams struct {
	fx.In

	Chunks   storage.ChunkStore
	Embedder embeddings.Embedder
	Log      *slog.Logger
}

// NewSearchService creates the semantic search service
func NewSearchService(params SearchParams) *search.Service {
	return search.NewService(params.Chunks, params.Embedder, params.Log)
}

// SearchModule provides search components
var SearchModule = fx.Module("search",
	fx.Provide(NewSearchService),
)
