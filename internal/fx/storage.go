package fx

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/config/configfx"
	"github.com/govscout/gov-index/internal/storage"
	"github.com/govscout/gov-index/internal/storage/sqlite"
	"github.com/govscout/gov-index/internal/storage/sqlvec"
)

// StorageParams represents dependencies for storage components
type StorageParams struct {
	fx.In

	Config    *configfx.Config
	Lifecycle fx.Lifecycle
}

// RelationalStores exposes the proposal, vote and cursor interfaces of the
// single relational store.
type RelationalStores struct {
	fx.Out

	Proposals storage.ProposalStore
	Votes     storage.VoteStore
	Cursor    storage.CursorStore
}

// NewRelationalStores opens the relational side of the database. One store
// backs all three interfaces; it is closed on shutdown.
func NewRelationalStores(params StorageParams) (RelationalStores, error) {
	if params.Config.DBPath == "" {
		return RelationalStores{}, fmt.Errorf("database path must be specified")
	}
	store, err := sqlite.New(params.Config.DBPath)
	if err != nil {
		return RelationalStores{}, err
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return RelationalStores{
		Proposals: store,
		Votes:     store,
		Cursor:    store,
	}, nil
}

// NewChunkStore opens the vector side of the same database file.
func NewChunkStore(params StorageParams) (storage.ChunkStore, error) {
	if params.Config.DBPath == "" {
		return nil, fmt.Errorf("database path must be specified")
	}
	store, err := sqlvec.New(params.Config.DBPath, params.Config.Dimension)
	if err != nil {
		return nil, err
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error { return store.Close() },
	})
	return store, nil
}

// StorageModule provides storage components
var StorageModule = fx.Module("storage",
	fx.Provide(
		NewRelationalStores,
		NewChunkStore,
	),
)
