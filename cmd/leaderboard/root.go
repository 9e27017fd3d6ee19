package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/projectconfig"
)

var version = "dev"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	dir    string
	source string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Benchmark leaderboard for model and agent evaluations",
		Long: `leaderboard serves and renders benchmark results for (model, agent) pairs.

Flat evaluation results are fetched from a file, a SQL view, Azure Blob
Storage or another leaderboard API, pivoted into one row per model and agent,
and then filtered, sorted and rendered as JSON, a terminal table, markdown
or HTML.

Configuration is read from .leaderboard.yaml in the project directory or
any parent. A .env file in the project directory is loaded first.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.dir, "project-dir", ".", "Project directory to load .leaderboard.yaml and .env from")
	cmd.PersistentFlags().StringVar(&opts.source, "source", "",
		"Override the result source: a file path, file:<path>, sqlite:<dsn>, mysql:<dsn> or an http(s) URL")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return loadDotEnv(opts.dir)
	}

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newTableCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	cmd.AddCommand(newStatsCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newCacheCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadDotEnv loads dir/.env without overriding variables already set.
func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Debug("loaded environment file", "path", path)
	return nil
}

// loadConfig reads and validates the project configuration and applies the
// --source override.
func (o *rootOptions) loadConfig() (*projectconfig.ProjectConfig, error) {
	cfg, err := projectconfig.Load(o.dir)
	if err != nil {
		return nil, err
	}
	if o.source != "" {
		if err := applySourceFlag(&cfg.Source, o.source); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if p := cfg.Path(); p != "" {
		slog.Debug("loaded project configuration", "path", p)
	}
	return cfg, nil
}

// applySourceFlag rewrites src from a --source value. Settings the flag does
// not mention, such as the SQL view and the timeout, are kept.
func applySourceFlag(src *projectconfig.SourceConfig, value string) error {
	switch {
	case strings.HasPrefix(value, "http://"), strings.HasPrefix(value, "https://"):
		src.Kind, src.URL = projectconfig.SourceHTTP, value
	case strings.HasPrefix(value, "sqlite:"):
		src.Kind, src.DSN = projectconfig.SourceSQLite, strings.TrimPrefix(value, "sqlite:")
	case strings.HasPrefix(value, "mysql:"):
		src.Kind, src.DSN = projectconfig.SourceMySQL, strings.TrimPrefix(value, "mysql:")
	case strings.HasPrefix(value, "blob:"):
		return errors.New("blob sources are configured in " + projectconfig.FileName)
	default:
		src.Kind, src.Path = projectconfig.SourceFile, strings.TrimPrefix(value, "file:")
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "leaderboard %s\n", version) //nolint:errcheck
		},
	}
}
