package leaderboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

func sampleRows() []models.PivotedRow {
	return []models.PivotedRow{
		{ModelName: "Qwen3-8B-sft", AgentName: "terminus", BaseModelName: "Qwen3-8B",
			Benchmarks: map[string]models.BenchmarkCell{"dev_set_71_tasks": {Accuracy: 40}}},
		{ModelName: "Qwen3-8B", AgentName: "terminus", BaseModelName: "None",
			Benchmarks: map[string]models.BenchmarkCell{"dev_set_71_tasks": {Accuracy: 30}}},
		{ModelName: "gpt-4o", AgentName: "openhands",
			Benchmarks: map[string]models.BenchmarkCell{"swe": {Accuracy: 50}}},
		{ModelName: "Qwen3-8B-rl", AgentName: "openhands", BaseModelName: "Qwen3-8B",
			Benchmarks: map[string]models.BenchmarkCell{"swe": {Accuracy: 20}}},
	}
}

func keys(rows []models.PivotedRow) []models.RowKey {
	out := make([]models.RowKey, len(rows))
	for i := range rows {
		out[i] = rows[i].Key()
	}
	return out
}

func TestFilterRows_EmptyFilterIsIdentity(t *testing.T) {
	rows := sampleRows()
	got := FilterRows(rows, FilterState{})
	assert.Equal(t, keys(rows), keys(got))
}

func TestFilterRows_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	got := FilterRows(sampleRows(), FilterState{ModelSearch: "qwen3-8b-"})
	assert.Equal(t, []models.RowKey{
		{Model: "Qwen3-8B-sft", Agent: "terminus"},
		{Model: "Qwen3-8B-rl", Agent: "openhands"},
	}, keys(got))
}

func TestFilterRows_SearchAllFieldsAreConjunctive(t *testing.T) {
	got := FilterRows(sampleRows(), FilterState{
		ModelSearch:     "qwen",
		AgentSearch:     "OPEN",
		BaseModelSearch: "8b",
	})
	require.Len(t, got, 1)
	assert.Equal(t, "Qwen3-8B-rl", got[0].ModelName)
}

func TestFilterRows_EmptyBaseModelFailsNonEmptySearch(t *testing.T) {
	got := FilterRows(sampleRows(), FilterState{BaseModelSearch: "o"})
	require.Len(t, got, 1)
	assert.Equal(t, "Qwen3-8B", got[0].ModelName)
}

func TestFilterRows_InclusionSets(t *testing.T) {
	got := FilterRows(sampleRows(), FilterState{
		Models: []string{"gpt-4o", "Qwen3-8B"},
		Agents: []string{"openhands"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "gpt-4o", got[0].ModelName)
}

func TestFilterRows_InclusionIsExactMatch(t *testing.T) {
	got := FilterRows(sampleRows(), FilterState{Models: []string{"qwen3-8b"}})
	assert.Empty(t, got)
}

func TestFilterRows_OrderIndependent(t *testing.T) {
	rows := sampleRows()
	f := FilterState{
		ModelSearch: "qwen",
		AgentSearch: "term",
		BaseModels:  []string{"Qwen3-8B", "None"},
		Agents:      []string{"terminus", "openhands"},
	}
	preds := append(f.SearchPredicates(), f.SelectionPredicates()...)
	reversed := make([]RowPredicate, len(preds))
	for i, p := range preds {
		reversed[len(preds)-1-i] = p
	}

	a := Where(rows, preds...)
	b := Where(rows, reversed...)
	c := SearchRows(SelectRows(rows, f), f)
	assert.Equal(t, keys(a), keys(b))
	assert.Equal(t, keys(a), keys(c))
	assert.Equal(t, keys(a), keys(FilterRows(rows, f)))
	assert.Len(t, a, 2)
}

func TestWhere_NoPredicatesKeepsOrder(t *testing.T) {
	rows := sampleRows()
	assert.Equal(t, keys(rows), keys(Where(rows)))
}

func TestAllBenchmarks_SortedAndExcluded(t *testing.T) {
	rows := sampleRows()
	rows = append(rows, models.PivotedRow{
		ModelName: "x", AgentName: "y",
		Benchmarks: map[string]models.BenchmarkCell{"clean-sandboxes-tasks-eval-set": {}, "alpha": {}},
	})

	got := AllBenchmarks(rows, []string{"clean-sandboxes-tasks-eval-set"})
	assert.Equal(t, []string{"alpha", "dev_set_71_tasks", "swe"}, got)
}

func TestVisibleBenchmarks(t *testing.T) {
	all := []string{"alpha", "dev_set_71_tasks", "swe_bench"}

	tests := []struct {
		name    string
		query   string
		include []string
		want    []string
	}{
		{"no filter", "", nil, all},
		{"search", "BENCH", nil, []string{"swe_bench"}},
		{"inclusion", "", []string{"alpha", "swe_bench"}, []string{"alpha", "swe_bench"}},
		{"search and inclusion", "a", []string{"alpha", "swe_bench"}, []string{"alpha"}},
		{"unknown inclusion", "", []string{"nope"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VisibleBenchmarks(all, tt.query, tt.include))
		})
	}
}

func TestVisibleBenchmarks_ExclusionIsPermanent(t *testing.T) {
	excluded := "clean-sandboxes-tasks-eval-set"
	rows := []models.PivotedRow{{
		ModelName: "m", AgentName: "a",
		Benchmarks: map[string]models.BenchmarkCell{excluded: {}, "kept": {}},
	}}
	all := AllBenchmarks(rows, []string{excluded})

	for _, query := range []string{"", "clean", excluded} {
		for _, include := range [][]string{nil, {excluded}, {excluded, "kept"}} {
			assert.NotContains(t, VisibleBenchmarks(all, query, include), excluded)
		}
	}
}
