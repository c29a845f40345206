package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/govscout/gov-index/cmd/gov-index/commands"
)

func main() {
	// Missing .env is fine, environment variables still apply.
	_ = godotenv.Load()

	flags := &commands.GlobalFlags{}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "gov-index",
		Short: "Governance proposal mirror with semantic search",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.DB, "db",
		envOr("GOV_INDEX_DB", filepath.Join(os.TempDir(), "gov_index.db")), "SQLite DB path")
	rootCmd.PersistentFlags().StringVar(&flags.SubgraphURL, "subgraph-url",
		os.Getenv("GOV_INDEX_SUBGRAPH_URL"), "governance subgraph endpoint")
	rootCmd.PersistentFlags().StringVar(&flags.EmbedURL, "embed-url",
		os.Getenv("GOV_INDEX_EMBED_URL"), "embedding API address")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config",
		os.Getenv("GOV_INDEX_CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		commands.NewSyncCommand(flags),
		commands.NewIndexCommand(flags),
		commands.NewSearchCommand(flags),
		commands.NewProposalsCommand(flags),
		commands.NewProposalCommand(flags),
		commands.NewVotesCommand(flags),
		commands.NewMCPCommand(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(level string) error {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
