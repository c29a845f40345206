package fx

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/govscout/gov-index/internal/config/configfx"
)

// NewLogger exposes the process logger configured in main to the container
func NewLogger() *slog.Logger {
	return slog.Default()
}

// AppModule combines all application modules
var AppModule = fx.Options(
	configfx.Module,
	fx.Provide(NewLogger),
	StorageModule,
	EmbeddingsModule,
	SubgraphModule,
	SyncModule,
	IndexerModule,
	SearchModule,
	MCPModule,
)

// NewAppWithConfig creates an Fx app with the given configuration values
// plus the extra options, typically the command module and an fx.Invoke.
func NewAppWithConfig(dbPath, subgraphURL, embedURL, configFile string, extra ...fx.Option) *fx.App {
	opts := []fx.Option{
		AppModule,
		fx.Supply(
			fx.Annotate(dbPath, fx.ResultTags(`name:"dbPath"`)),
			fx.Annotate(subgraphURL, fx.ResultTags(`name:"subgraphURL"`)),
			fx.Annotate(embedURL, fx.ResultTags(`name:"embedURL"`)),
			fx.Annotate(configFile, fx.ResultTags(`name:"configFile"`)),
		),
		fx.NopLogger,
	}
	opts = append(opts, extra...)
	return fx.New(opts...)
}
