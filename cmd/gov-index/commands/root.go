// Package commands holds the cobra commands of the gov-index CLI. Each
// command builds the fx application around the shared global flags and
// drives it through the CommandRunner facade.
package commands

import (
	"context"

	"go.uber.org/fx"

	"github.com/govscout/gov-index/cmd/cmdsfx"
	appfx "github.com/govscout/gov-index/internal/fx"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	DB          string
	SubgraphURL string
	EmbedURL    string
	ConfigFile  string
}

// runWithRunner builds the fx app, runs fn inside its lifecycle and tears
// the app down so the stores are closed before the command returns.
func runWithRunner(ctx context.Context, flags *GlobalFlags, fn func(*cmdsfx.CommandRunner) error) error {
	var runner *cmdsfx.CommandRunner
	app := appfx.NewAppWithConfig(
		flags.DB, flags.SubgraphURL, flags.EmbedURL, flags.ConfigFile,
		cmdsfx.Module,
		fx.Populate(&runner),
	)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	runErr := fn(runner)
	if err := app.Stop(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
