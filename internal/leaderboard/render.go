package leaderboard

import (
	"errors"
	"fmt"
	"slices"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// ErrConfigOverlap is returned when a benchmark is both excluded and listed
// as default-visible or primary.
var ErrConfigOverlap = errors.New("benchmark configuration overlap")

// Config is the statically configured input to the pipeline.
type Config struct {
	// Exclude lists benchmarks that are never shown.
	Exclude []string `json:"exclude"`
	// DefaultVisible seeds the benchmark inclusion set of a fresh filter.
	DefaultVisible []string `json:"defaultVisible"`
	// Primary is the benchmark that ranks the Top-N half of the curated view.
	Primary string `json:"primary"`
}

// Validate rejects configurations whose lists are not disjoint.
func (c Config) Validate() error {
	excluded := toSet(c.Exclude)
	var overlap []string
	for _, name := range c.DefaultVisible {
		if _, ok := excluded[name]; ok {
			overlap = append(overlap, name)
		}
	}
	if len(overlap) > 0 {
		return fmt.Errorf("%w: default-visible benchmarks %q are also excluded", ErrConfigOverlap, overlap)
	}
	if _, ok := excluded[c.Primary]; ok && c.Primary != "" {
		return fmt.Errorf("%w: primary benchmark %q is excluded", ErrConfigOverlap, c.Primary)
	}
	return nil
}

// DefaultFilter returns the filter state a new session starts with.
func (c Config) DefaultFilter() FilterState {
	return FilterState{Benchmarks: slices.Clone(c.DefaultVisible)}
}

// Result is what the presentation layer renders: ordered rows and the
// benchmark columns to show.
type Result struct {
	Rows    []models.PivotedRow `json:"rows"`
	Columns []string            `json:"columns"`
	// Total counts the rows of the active tab before filtering.
	Total int `json:"total"`
	Tab   Tab `json:"tab"`
}

// Render runs the whole pipeline over one snapshot of pivoted rows:
// tab selection, search, selection, then sort. Benchmark columns are resolved
// from the full data set. Calling it twice with equal inputs gives equal
// output.
func Render(data []models.PivotedRow, cfg Config, filter FilterState, sort SortState, view ViewMode) Result {
	all := AllBenchmarks(data, cfg.Exclude)
	columns := VisibleBenchmarks(all, filter.BenchmarkSearch, filter.Benchmarks)

	tab := view.Tab
	if tab == "" {
		tab = TabCurated
	}
	rows := data
	if tab == TabCurated {
		rows = SelectCurated(data, cfg.Primary, view.TopN, view.RecentN)
	}
	total := len(rows)

	rows = SearchRows(rows, filter)
	rows = SelectRows(rows, filter)
	rows = SortRows(rows, sort)

	return Result{
		Rows:    rows,
		Columns: columns,
		Total:   total,
		Tab:     tab,
	}
}
