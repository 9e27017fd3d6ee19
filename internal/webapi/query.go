package webapi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
)

const metricPrefix = "metric."

// ParseQuery reads filter, sort and view state from query parameters.
// Missing parameters fall back to cfg and view; an absent "benchmarks"
// parameter selects the configured default-visible list.
func ParseQuery(q url.Values, cfg leaderboard.Config, view leaderboard.ViewMode) (leaderboard.FilterState, leaderboard.SortState, leaderboard.ViewMode, error) {
	filter := leaderboard.FilterState{
		ModelSearch:     q.Get("model"),
		AgentSearch:     q.Get("agent"),
		BaseModelSearch: q.Get("baseModel"),
		BenchmarkSearch: q.Get("benchmark"),
		Models:          nonEmpty(q["models"]),
		Agents:          nonEmpty(q["agents"]),
		BaseModels:      nonEmpty(q["baseModels"]),
	}
	if vals, ok := q["benchmarks"]; ok {
		filter.Benchmarks = nonEmpty(vals)
	} else {
		filter.Benchmarks = cfg.DefaultFilter().Benchmarks
	}

	var errs []error

	sort := leaderboard.DefaultSortState()
	if field := q.Get("sort"); field != "" {
		sort.Field = field
	}
	if q.Has("dir") {
		dir, err := leaderboard.ParseSortDirection(q.Get("dir"))
		if err != nil {
			errs = append(errs, err)
		}
		sort.Direction = dir
	}
	for key, vals := range q {
		bench, ok := strings.CutPrefix(key, metricPrefix)
		if !ok || bench == "" || len(vals) == 0 {
			continue
		}
		m, err := leaderboard.ParseSortMetric(vals[0])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		sort = sort.WithMetric(bench, m)
	}

	if q.Has("tab") {
		tab, err := leaderboard.ParseTab(q.Get("tab"))
		if err != nil {
			errs = append(errs, err)
		}
		view.Tab = tab
	}
	for _, p := range []struct {
		name string
		dst  *leaderboard.Limit
	}{
		{"topN", &view.TopN},
		{"recentN", &view.RecentN},
	} {
		if !q.Has(p.name) {
			continue
		}
		l, err := leaderboard.ParseLimit(q.Get(p.name))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
			continue
		}
		*p.dst = l
	}

	return filter, sort, view, errors.Join(errs...)
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
