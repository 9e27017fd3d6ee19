package leaderboard

import (
	"slices"
	"strings"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// AllBenchmarks returns every benchmark name present in rows, minus the
// excluded names, sorted byte-wise.
func AllBenchmarks(rows []models.PivotedRow, exclude []string) []string {
	excluded := toSet(exclude)
	seen := make(map[string]struct{})
	for i := range rows {
		for name := range rows[i].Benchmarks {
			if _, skip := excluded[name]; skip {
				continue
			}
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// VisibleBenchmarks narrows all by a case-insensitive substring query and then
// by the inclusion set. all is expected to already exclude hidden benchmarks,
// so an excluded name can never come back through include.
func VisibleBenchmarks(all []string, query string, include []string) []string {
	included := toSet(include)
	visible := make([]string, 0, len(all))
	for _, name := range all {
		if !containsFold(name, query) {
			continue
		}
		if len(included) > 0 {
			if _, ok := included[name]; !ok {
				continue
			}
		}
		visible = append(visible, name)
	}
	return visible
}

func containsFold(s, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(query))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
