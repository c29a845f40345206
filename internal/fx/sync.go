package fx

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/storage"
	"github.com/govscout/gov-index/internal/subgraph"
	syncengine "github.com/govscout/gov-index/internal/sync"
)

// SyncParams represents dependencies for the sync engine
type SyncParams struct {
	fx.In

	Remote    *subgraph.Client
	Proposals storage.ProposalStore
	Votes     storage.VoteStore
	Cursor    storage.CursorStore
	Log       *slog.Logger
}

// NewSyncEngine creates the proposal mirror engine
func NewSyncEngine(params SyncParams) *syncengine.Engine {
	return syncengine.New(params.Remote, params.Proposals, params.Votes, params.Cursor, params.Log)
}

// SyncModule provides the sync engine
var SyncModule = fx.Module("sync",
	fx.Provide(NewSyncEngine),
)
