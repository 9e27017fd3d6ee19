package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/cache"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/projectconfig"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/snapshot"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/source"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/spinner"
)

// cacheDir resolves the configured cache directory relative to the directory
// holding .leaderboard.yaml, or --project-dir when there is none.
func (o *rootOptions) cacheDir(cfg *projectconfig.ProjectConfig) string {
	dir := cfg.Cache.Dir
	if filepath.IsAbs(dir) {
		return dir
	}
	base := o.dir
	if p := cfg.Path(); p != "" {
		base = filepath.Dir(p)
	}
	return filepath.Join(base, dir)
}

// openHolder opens the configured source and wraps it in a snapshot holder.
// The caller closes the returned source.
func (o *rootOptions) openHolder(cfg *projectconfig.ProjectConfig, logger *slog.Logger) (*snapshot.Holder, source.ResultSource, error) {
	src, err := source.Open(cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s source: %w", cfg.Source.Kind, err)
	}

	holderOpts := []snapshot.Option{snapshot.WithLogger(logger)}
	if cfg.CacheEnabled() {
		holderOpts = append(holderOpts, snapshot.WithCache(cache.New(o.cacheDir(cfg)), cache.Key(cfg.Source)))
	}
	return snapshot.New(src, holderOpts...), src, nil
}

// fetchSnapshot performs one fetch for the one-shot commands, with a spinner
// on stderr when it is a terminal. When the source is unreachable a cached
// snapshot is used if there is one; invalid records are always an error.
func (o *rootOptions) fetchSnapshot(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) (*snapshot.Snapshot, error) {
	logger := slog.Default()
	holder, src, err := o.openHolder(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer src.Close() //nolint:errcheck

	timeout, err := cfg.Source.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	stop := spinner.StartIfTerminal(cmd.ErrOrStderr(), fmt.Sprintf("Fetching results from %s source", cfg.Source.Kind))
	snap, err := holder.Refresh(ctx)
	stop()
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, models.ErrInvalidResult) {
		return nil, err
	}
	if cached, cerr := holder.Current(); cerr == nil && cached.Cached {
		logger.Warn("source unavailable, using cached snapshot", "error", err)
		return cached, nil
	}
	return nil, err
}
