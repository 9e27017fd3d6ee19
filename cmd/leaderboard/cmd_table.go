package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/report"
)

func newTableCommand(opts *rootOptions) *cobra.Command {
	var flags renderFlags
	var format string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the leaderboard in the terminal",
		Long: `Fetch the current results once and print the rendered leaderboard.

Filters, sort and view flags mirror the query parameters of /api/leaderboard.
Flags that are not given fall back to .leaderboard.yaml; in particular the
benchmark columns default to benchmarks.default_visible.

Examples:
  leaderboard table --tab all --sort dev_set_71_tasks --dir desc
  leaderboard table --model qwen --benchmarks dev_set_71_tasks,swebench
  leaderboard table --sort dev_set_71_tasks --dir desc --metric dev_set_71_tasks=improvement`,
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
			resp, err := flags.render(cmd, cfg, snap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			return report.WriteTable(out, resp.Result, report.Options{
				Primary: cfg.Benchmarks.Primary,
				Color:   report.ColorEnabled(out),
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}
