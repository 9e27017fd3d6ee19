package main

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/projectconfig"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/snapshot"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/webapi"
)

// renderFlags are the filter, sort and view flags shared by table and
// export. They are translated to the query parameters of /api/leaderboard
// so both surfaces parse state the same way.
type renderFlags struct {
	model      string
	agent      string
	baseModel  string
	benchmark  string
	models     []string
	agents     []string
	baseModels []string
	benchmarks []string
	sort       string
	dir        string
	metrics    map[string]string
	tab        string
	topN       string
	recentN    string
}

func (f *renderFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.model, "model", "", "Case-insensitive substring filter on model name")
	fl.StringVar(&f.agent, "agent", "", "Case-insensitive substring filter on agent name")
	fl.StringVar(&f.baseModel, "base-model", "", "Case-insensitive substring filter on base model name")
	fl.StringVar(&f.benchmark, "benchmark", "", "Case-insensitive substring filter on benchmark columns")
	fl.StringSliceVar(&f.models, "models", nil, "Only these model names (repeatable)")
	fl.StringSliceVar(&f.agents, "agents", nil, "Only these agent names (repeatable)")
	fl.StringSliceVar(&f.baseModels, "base-models", nil, "Only these base model names (repeatable)")
	fl.StringSliceVar(&f.benchmarks, "benchmarks", nil,
		"Only these benchmark columns (repeatable; empty shows all, default from configuration)")
	fl.StringVar(&f.sort, "sort", "", "Sort field: modelName, agentName, baseModelName, endedAt or a benchmark name")
	fl.StringVar(&f.dir, "dir", "", "Sort direction: asc or desc")
	fl.StringToStringVar(&f.metrics, "metric", nil, "Per-benchmark sort metric, e.g. dev_set_71_tasks=improvement")
	fl.StringVar(&f.tab, "tab", "", "View tab: curated or all (default from configuration)")
	fl.StringVar(&f.topN, "top-n", "", "Curated view: top rows by primary benchmark (number or all)")
	fl.StringVar(&f.recentN, "recent-n", "", "Curated view: most recent rows (number or all)")
}

// query builds /api/leaderboard parameters from the flags that were set.
func (f *renderFlags) query(cmd *cobra.Command) url.Values {
	q := url.Values{}
	for _, p := range []struct {
		flag, param string
		value       *string
	}{
		{"model", "model", &f.model},
		{"agent", "agent", &f.agent},
		{"base-model", "baseModel", &f.baseModel},
		{"benchmark", "benchmark", &f.benchmark},
		{"sort", "sort", &f.sort},
		{"dir", "dir", &f.dir},
		{"tab", "tab", &f.tab},
		{"top-n", "topN", &f.topN},
		{"recent-n", "recentN", &f.recentN},
	} {
		if cmd.Flags().Changed(p.flag) {
			q.Set(p.param, *p.value)
		}
	}
	for _, p := range []struct {
		flag, param string
		values      []string
	}{
		{"models", "models", f.models},
		{"agents", "agents", f.agents},
		{"base-models", "baseModels", f.baseModels},
		{"benchmarks", "benchmarks", f.benchmarks},
	} {
		if cmd.Flags().Changed(p.flag) {
			q[p.param] = append([]string{}, p.values...)
		}
	}
	for bench, metric := range f.metrics {
		q.Set("metric."+bench, metric)
	}
	return q
}

// render runs the leaderboard pipeline over snap with the flag state.
func (f *renderFlags) render(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, snap *snapshot.Snapshot) (webapi.LeaderboardResponse, error) {
	lb := cfg.Leaderboard()
	filter, sort, view, err := webapi.ParseQuery(f.query(cmd), lb, cfg.ViewMode())
	if err != nil {
		return webapi.LeaderboardResponse{}, err
	}
	return webapi.LeaderboardResponse{
		Result:       leaderboard.Render(snap.Rows, lb, filter, sort, view),
		Filter:       filter,
		Sort:         sort,
		View:         view,
		SnapshotInfo: webapi.SnapshotInfo{FetchedAt: snap.FetchedAt, Cached: snap.Cached},
	}, nil
}
