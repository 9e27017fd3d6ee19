package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

const primary = "dev_set_71_tasks"

func TestSelectCurated_TopAndRecentUnion(t *testing.T) {
	t1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)
	rows := []models.PivotedRow{
		{ModelName: "A", AgentName: "x", Benchmarks: map[string]models.BenchmarkCell{primary: {Accuracy: 90}}},
		{ModelName: "B", AgentName: "x", LatestEndedAt: ptr(t1), EarliestEndedAt: ptr(t1),
			Benchmarks: map[string]models.BenchmarkCell{primary: {Accuracy: 80}}},
		{ModelName: "C", AgentName: "x", LatestEndedAt: ptr(t2), EarliestEndedAt: ptr(t2),
			Benchmarks: map[string]models.BenchmarkCell{"other": {Accuracy: 99}}},
	}

	got := SelectCurated(rows, primary, 1, 1)
	assert.Equal(t, []string{"A", "C"}, modelNames(got))
}

func TestSelectCurated_Deduplicates(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.PivotedRow{
		{ModelName: "A", AgentName: "x", LatestEndedAt: ptr(now),
			Benchmarks: map[string]models.BenchmarkCell{primary: {Accuracy: 90}}},
		{ModelName: "B", AgentName: "x",
			Benchmarks: map[string]models.BenchmarkCell{primary: {Accuracy: 10}}},
	}

	got := SelectCurated(rows, primary, 1, 1)
	assert.Equal(t, []string{"A"}, modelNames(got))
}

func TestSelectCurated_Limits(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	var rows []models.PivotedRow
	for i, name := range []string{"r0", "r1", "r2", "r3"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		rows = append(rows, models.PivotedRow{
			ModelName: name, AgentName: "x", LatestEndedAt: ptr(ts),
			Benchmarks: map[string]models.BenchmarkCell{primary: {Accuracy: float64(10 * i)}},
		})
	}

	assert.Empty(t, SelectCurated(rows, primary, 0, 0))
	assert.Len(t, SelectCurated(rows, primary, Unbounded, 0), 4)
	assert.Equal(t, []string{"r3", "r2"}, modelNames(SelectCurated(rows, primary, 0, 2)))
	assert.Equal(t, []string{"r3", "r2", "r1"}, modelNames(TopByAccuracy(rows, primary, 3)))
	assert.Equal(t, []string{"r3"}, modelNames(MostRecent(rows, 1)))
}

func TestConfig_Validate(t *testing.T) {
	ok := Config{Exclude: []string{"x"}, DefaultVisible: []string{"a"}, Primary: "a"}
	require.NoError(t, ok.Validate())

	err := Config{Exclude: []string{"x"}, DefaultVisible: []string{"a", "x"}}.Validate()
	assert.ErrorIs(t, err, ErrConfigOverlap)

	err = Config{Exclude: []string{"x"}, Primary: "x"}.Validate()
	assert.ErrorIs(t, err, ErrConfigOverlap)
}

func TestConfig_DefaultFilter(t *testing.T) {
	cfg := Config{DefaultVisible: []string{"a", "b"}}
	f := cfg.DefaultFilter()
	assert.Equal(t, []string{"a", "b"}, f.Benchmarks)

	f.Benchmarks[0] = "changed"
	assert.Equal(t, "a", cfg.DefaultVisible[0])
}

func TestRender_EndToEnd(t *testing.T) {
	results := []models.EvaluationResult{
		result("1", "modelA", "agentX", "bench1", 90.0, 1.0),
		result("2", "modelA", "agentX", "bench2", 70.0, 2.0),
		result("3", "modelB", "agentY", "bench1", 95.0, 0.5),
	}
	rows, err := Group(results)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	cfg := Config{Primary: "bench1"}
	view := ViewMode{Tab: TabAll}
	sort := SortState{Field: "bench1", Direction: Descending}

	out := Render(rows, cfg, FilterState{}, sort, view)
	assert.Equal(t, []string{"modelB", "modelA"}, modelNames(out.Rows))
	assert.Equal(t, []string{"bench1", "bench2"}, out.Columns)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, TabAll, out.Tab)

	out = Render(rows, cfg, FilterState{ModelSearch: "modelA"}, sort, view)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "modelA", out.Rows[0].ModelName)
	assert.Equal(t, 2, out.Total)
}

func TestRender_IsDeterministic(t *testing.T) {
	rows := sampleRows()
	cfg := Config{Primary: primary}
	filter := FilterState{ModelSearch: "q"}
	sort := SortState{Field: primary, Direction: Descending}
	view := ViewMode{Tab: TabCurated, TopN: 10, RecentN: 10}

	a := Render(rows, cfg, filter, sort, view)
	b := Render(rows, cfg, filter, sort, view)
	assert.Equal(t, a, b)
}

func TestRender_EmptyData(t *testing.T) {
	out := Render(nil, Config{}, FilterState{}, DefaultSortState(), ViewMode{})
	assert.NotNil(t, out.Rows)
	assert.NotNil(t, out.Columns)
	assert.Equal(t, TabCurated, out.Tab)
	assert.Zero(t, out.Total)
}

func TestRender_ExcludedColumnNeverShown(t *testing.T) {
	rows := []models.PivotedRow{{
		ModelName: "m", AgentName: "a",
		Benchmarks: map[string]models.BenchmarkCell{"hidden": {}, "shown": {}},
	}}
	cfg := Config{Exclude: []string{"hidden"}}
	out := Render(rows, cfg, FilterState{Benchmarks: []string{"hidden", "shown"}}, DefaultSortState(), ViewMode{Tab: TabAll})
	assert.Equal(t, []string{"shown"}, out.Columns)
}

func TestFacets(t *testing.T) {
	f := Facets(sampleRows(), []string{"swe"})
	assert.Equal(t, []string{"Qwen3-8B", "Qwen3-8B-rl", "Qwen3-8B-sft", "gpt-4o"}, f.Models)
	assert.Equal(t, []string{"openhands", "terminus"}, f.Agents)
	assert.Equal(t, []string{"None", "Qwen3-8B"}, f.BaseModels)
	assert.Equal(t, []BenchmarkFacet{
		{Name: "dev_set_71_tasks"},
		{Name: "swe", Excluded: true},
	}, f.Benchmarks)
}

func TestSummarize(t *testing.T) {
	ts := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []models.PivotedRow{
		{ModelName: "a", AgentName: "x", BaseModelName: "b", LatestEndedAt: ptr(ts),
			Benchmarks: map[string]models.BenchmarkCell{
				"one": {Improvement: ptr(2.0)},
				"two": {Improvement: ptr(-1.0)},
				"six": {},
			}},
		{ModelName: "b", AgentName: "x", LatestEndedAt: ptr(ts.Add(time.Hour)),
			Benchmarks: map[string]models.BenchmarkCell{"one": {}}},
	}

	s := Summarize(make([]models.EvaluationResult, 4), rows)
	assert.Equal(t, 4, s.Results)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, 2, s.Models)
	assert.Equal(t, 1, s.Agents)
	assert.Equal(t, 3, s.Benchmarks)
	assert.Equal(t, 1, s.BaseModelRows)
	assert.Equal(t, 1, s.ImprovedCells)
	assert.Equal(t, 1, s.RegressedCells)
	require.NotNil(t, s.LatestEndedAt)
	assert.True(t, s.LatestEndedAt.Equal(ts.Add(time.Hour)))
}
