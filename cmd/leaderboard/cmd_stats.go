package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/report"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/webapi"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-benchmark statistics",
		Long: `Fetch the current results once and print statistics for every benchmark
that is not excluded in .leaderboard.yaml.

For each benchmark this reports the accuracy distribution with a 95%
bootstrap confidence interval of the mean, the leading (model, agent) row,
and for fine-tuned models the mean improvement over their base model. An
asterisk after the improvement marks an interval that excludes zero. Gain is
the mean normalized gain, the share of the base model's headroom that was
closed.

The JSON output matches GET /api/benchmark-stats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			snap, err := opts.fetchSnapshot(cmd, cfg)
			if err != nil {
				return err
			}

			stats := leaderboard.BenchmarkStatistics(snap.Rows, cfg.Benchmarks.Exclude)
			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(webapi.BenchmarkStatsResponse{
					Benchmarks:   stats,
					Primary:      cfg.Benchmarks.Primary,
					SnapshotInfo: webapi.SnapshotInfo{FetchedAt: snap.FetchedAt, Cached: snap.Cached},
				})
			}
			return report.WriteStats(out, stats, report.Options{
				Primary: cfg.Benchmarks.Primary,
				Color:   report.ColorEnabled(out),
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}
