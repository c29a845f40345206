package fx

import (
	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/config/configfx"
	"github.com/govscout/gov-index/internal/embeddings"
)

// EmbeddingsParams represents dependencies for embeddings components
type EmbeddingsParams struct {
	fx.In

	Config *configfx.Config
}

// NewEmbedder creates the API embedder shared by indexing and search
func NewEmbedder(params EmbeddingsParams) embeddings.Embedder {
	return embeddings.NewApi(params.Config.EmbedURL)
}

// EmbeddingsModule provides embeddings components
var EmbeddingsModule = fx.Module("embeddings",
	fx.Provide(NewEmbedder),
)
