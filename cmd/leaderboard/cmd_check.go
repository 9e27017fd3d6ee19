package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/source"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/validation"
)

func newCheckCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check [results.json|results.csv]",
		Short: "Validate the configuration and optionally a results file",
		Long: `Validate .leaderboard.yaml and, when given, a flat results file.

The configuration is checked against its schema and for cross-field
problems such as a benchmark that is both excluded and default-visible.
A results file is checked record by record against the result schema;
for JSON every violation is reported, not just the first. Files ending in
.csv (or .csv.gz) are decoded as CSV with a header row and report the first
violation.

Exit codes:
  0  everything is valid
  1  the results file violates the input contract
  2  the configuration is invalid or the file cannot be read`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be text or json", format)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			report := checkReport{
				Config: configCheck{Path: cfg.Path(), Valid: true, Source: cfg.Source.Kind},
			}
			if len(args) == 1 {
				rc, err := checkResultsFile(cmd.Context(), args[0], cfg.Leaderboard())
				if err != nil {
					return err
				}
				report.Results = rc
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				printCheckReport(out, report)
			}

			if report.Results != nil && !report.Results.Valid {
				return &InvalidInputError{
					Message: fmt.Sprintf("%s: %d violation(s)", report.Results.Path, len(report.Results.Errors)),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text | json")
	return cmd
}

type checkReport struct {
	Config  configCheck   `json:"config"`
	Results *resultsCheck `json:"results,omitempty"`
}

type configCheck struct {
	Path   string `json:"path,omitempty"`
	Valid  bool   `json:"valid"`
	Source string `json:"source"`
}

type resultsCheck struct {
	Path    string               `json:"path"`
	Valid   bool                 `json:"valid"`
	Errors  []string             `json:"errors,omitempty"`
	Summary *leaderboard.Summary `json:"summary,omitempty"`
	// Excluded lists configured exclusions that occur in the file.
	Excluded []string `json:"excluded,omitempty"`
}

// checkResultsFile validates path. Contract violations are reported in the
// returned check; only I/O problems are errors.
func checkResultsFile(ctx context.Context, path string, cfg leaderboard.Config) (*resultsCheck, error) {
	rc := &resultsCheck{Path: path}

	var results []models.EvaluationResult
	if source.IsCSV(path) {
		var err error
		results, err = source.NewFileSource(path).Fetch(ctx)
		if err != nil {
			if !errors.Is(err, models.ErrInvalidResult) {
				return nil, err
			}
			rc.Errors = []string{err.Error()}
			return rc, nil
		}
	} else {
		data, err := readMaybeGzip(path)
		if err != nil {
			return nil, err
		}
		if errs := validation.ValidateResultsBytes(data); len(errs) > 0 {
			rc.Errors = errs
			return rc, nil
		}
		// The schema cannot check timestamps or cross-record constraints.
		results, err = source.DecodeJSON(bytes.NewReader(data))
		if err != nil {
			rc.Errors = []string{err.Error()}
			return rc, nil
		}
	}

	rows, err := leaderboard.Group(results)
	if err != nil {
		rc.Errors = []string{err.Error()}
		return rc, nil
	}

	summary := leaderboard.Summarize(results, rows)
	rc.Valid = true
	rc.Summary = &summary
	for _, f := range leaderboard.Facets(rows, cfg.Exclude).Benchmarks {
		if f.Excluded {
			rc.Excluded = append(rc.Excluded, f.Name)
		}
	}
	return rc, nil
}

func readMaybeGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		defer zr.Close() //nolint:errcheck
		r = zr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func printCheckReport(w io.Writer, r checkReport) {
	cfgPath := r.Config.Path
	if cfgPath == "" {
		cfgPath = "(defaults)"
	}
	fmt.Fprintf(w, "✅ Configuration %s (source: %s)\n", cfgPath, r.Config.Source) //nolint:errcheck

	rc := r.Results
	if rc == nil {
		return
	}
	if !rc.Valid {
		fmt.Fprintf(w, "❌ %s: %d violation(s)\n", rc.Path, len(rc.Errors)) //nolint:errcheck
		for _, e := range rc.Errors {
			fmt.Fprintf(w, "   - %s\n", e) //nolint:errcheck
		}
		return
	}
	s := rc.Summary
	fmt.Fprintf(w, "✅ %s: %d results, %d rows, %d models, %d agents, %d benchmarks\n", //nolint:errcheck
		rc.Path, s.Results, s.Rows, s.Models, s.Agents, s.Benchmarks)
	if len(rc.Excluded) > 0 {
		fmt.Fprintf(w, "   excluded from display: %s\n", strings.Join(rc.Excluded, ", ")) //nolint:errcheck
	}
}
