package leaderboard

import (
	"slices"
	"time"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// BenchmarkFacet is one benchmark option in the filter controls. Excluded
// benchmarks are listed but cannot be selected.
type BenchmarkFacet struct {
	Name     string `json:"name"`
	Excluded bool   `json:"excluded"`
}

// FacetSet lists the distinct values available to each inclusion filter.
type FacetSet struct {
	Models     []string         `json:"models"`
	Agents     []string         `json:"agents"`
	BaseModels []string         `json:"baseModels"`
	Benchmarks []BenchmarkFacet `json:"benchmarks"`
}

// Facets collects sorted distinct names from rows.
func Facets(rows []models.PivotedRow, exclude []string) FacetSet {
	modelSet := make(map[string]struct{})
	agentSet := make(map[string]struct{})
	baseSet := make(map[string]struct{})
	benchSet := make(map[string]struct{})

	for i := range rows {
		modelSet[rows[i].ModelName] = struct{}{}
		agentSet[rows[i].AgentName] = struct{}{}
		if rows[i].BaseModelName != "" {
			baseSet[rows[i].BaseModelName] = struct{}{}
		}
		for name := range rows[i].Benchmarks {
			benchSet[name] = struct{}{}
		}
	}

	excluded := toSet(exclude)
	benchmarks := make([]BenchmarkFacet, 0, len(benchSet))
	for _, name := range sortedKeys(benchSet) {
		_, ex := excluded[name]
		benchmarks = append(benchmarks, BenchmarkFacet{Name: name, Excluded: ex})
	}

	return FacetSet{
		Models:     sortedKeys(modelSet),
		Agents:     sortedKeys(agentSet),
		BaseModels: sortedKeys(baseSet),
		Benchmarks: benchmarks,
	}
}

// Summary holds headline counts for a snapshot.
type Summary struct {
	Results        int        `json:"results"`
	Rows           int        `json:"rows"`
	Models         int        `json:"models"`
	Agents         int        `json:"agents"`
	Benchmarks     int        `json:"benchmarks"`
	LatestEndedAt  *time.Time `json:"latestEndedAt,omitempty"`
	BaseModelRows  int        `json:"baseModelRows"`
	ImprovedCells  int        `json:"improvedCells"`
	RegressedCells int        `json:"regressedCells"`
}

// Summarize counts a snapshot's results and rows.
func Summarize(results []models.EvaluationResult, rows []models.PivotedRow) Summary {
	facets := Facets(rows, nil)
	s := Summary{
		Results:    len(results),
		Rows:       len(rows),
		Models:     len(facets.Models),
		Agents:     len(facets.Agents),
		Benchmarks: len(facets.Benchmarks),
	}
	for i := range rows {
		row := &rows[i]
		if row.IsBaseModel() {
			s.BaseModelRows++
		}
		if row.LatestEndedAt != nil && (s.LatestEndedAt == nil || row.LatestEndedAt.After(*s.LatestEndedAt)) {
			latest := *row.LatestEndedAt
			s.LatestEndedAt = &latest
		}
		for _, cell := range row.Benchmarks {
			if cell.Improvement == nil {
				continue
			}
			switch {
			case *cell.Improvement > 0:
				s.ImprovedCells++
			case *cell.Improvement < 0:
				s.RegressedCells++
			}
		}
	}
	return s
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
