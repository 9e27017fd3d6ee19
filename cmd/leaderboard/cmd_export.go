package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/report"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var flags renderFlags
	var format, output, title string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the leaderboard as a markdown or HTML document",
		Long: `Fetch the current results once and write the rendered leaderboard as a
document. Accuracies link to their traces where a traces link exists, and rows
whose primary benchmark result has no traces link are flagged.

The filter, sort and view flags are the same as for "leaderboard table".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "markdown" && format != "html" {
				return fmt.Errorf("unsupported format %q: must be markdown or html", format)
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

			ropts := report.Options{
				Title:       title,
				Primary:     cfg.Benchmarks.Primary,
				GeneratedAt: snap.FetchedAt,
			}
			write := func(w io.Writer) error {
				if format == "html" {
					return report.WriteHTML(w, resp.Result, ropts)
				}
				_, err := io.WriteString(w, report.Markdown(resp.Result, ropts))
				return err
			}

			if output == "" || output == "-" {
				return write(cmd.OutOrStdout())
			}
			if err := writeFileAtomic(output, write); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output) //nolint:errcheck
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&title, "title", "", "Document title (default \"Leaderboard\")")

	return cmd
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(tmp); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
