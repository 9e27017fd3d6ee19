package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/cache"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/projectconfig"
)

func newCacheCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the snapshot cache",
		Long: `Manage the on-disk snapshot cache.

When cache.enabled is set, every successful fetch is written to the cache
directory, keyed by the source settings. The cached snapshot is served when
the source is unreachable.`,
	}

	cmd.AddCommand(newCacheClearCommand(opts))

	return cmd
}

func newCacheClearCommand(opts *rootOptions) *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := cacheDir
			if dir == "" {
				cfg, err := projectconfig.Load(opts.dir)
				if err != nil {
					return err
				}
				dir = opts.cacheDir(cfg)
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving cache directory: %w", err)
			}

			c := cache.New(absDir)
			if err := c.Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Cache directory to clear (default from configuration)")

	return cmd
}
