package fx

import (
	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/config/configfx"
	"github.com/govscout/gov-index/internal/subgraph"
)

// SubgraphParams represents dependencies for the subgraph client
type SubgraphParams struct {
	fx.In

	Config *configfx.Config
}

// NewSubgraphClient creates the GraphQL client for the governance subgraph
func NewSubgraphClient(params SubgraphParams) *subgraph.Client {
	return subgraph.NewClient(params.Config.SubgraphURL)
}

// SubgraphModule provides the remote proposal source
var SubgraphModule = fx.Module("subgraph",
	fx.Provide(NewSubgraphClient),
)
