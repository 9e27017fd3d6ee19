package leaderboard

import (
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/statistics"
)

const (
	statsConfidenceLevel = 0.95
	// statsSeed fixes the bootstrap resampling so a snapshot always reports
	// the same intervals.
	statsSeed = 20250601
)

// BenchmarkLeader is the row with the highest accuracy on a benchmark.
type BenchmarkLeader struct {
	ModelName string  `json:"modelName"`
	AgentName string  `json:"agentName"`
	Accuracy  float64 `json:"accuracy"`
}

// ImprovementStats summarises the improvement column of a benchmark over the
// cells whose base model also has a result.
type ImprovementStats struct {
	Cells          int                           `json:"cells"`
	Improved       int                           `json:"improved"`
	Regressed      int                           `json:"regressed"`
	Mean           float64                       `json:"mean"`
	CI             statistics.ConfidenceInterval `json:"ci"`
	Significant    bool                          `json:"significant"`
	NormalizedGain float64                       `json:"normalizedGain"`
}

// BenchmarkStats describes one benchmark column.
type BenchmarkStats struct {
	Benchmark   string                        `json:"benchmark"`
	Rows        int                           `json:"rows"`
	Accuracy    statistics.Distribution       `json:"accuracy"`
	AccuracyCI  statistics.ConfidenceInterval `json:"accuracyCi"`
	Leader      *BenchmarkLeader              `json:"leader,omitempty"`
	Improvement *ImprovementStats             `json:"improvement,omitempty"`
}

// BenchmarkStatistics computes per-benchmark statistics over rows, in
// AllBenchmarks order. Excluded benchmarks are skipped. Accuracy ties for the
// leader go to the first row in model, agent order.
func BenchmarkStatistics(rows []models.PivotedRow, exclude []string) []BenchmarkStats {
	ordered := SortByIdentity(rows)
	names := AllBenchmarks(ordered, exclude)

	out := make([]BenchmarkStats, 0, len(names))
	for _, name := range names {
		out = append(out, benchmarkStats(ordered, name))
	}
	return out
}

func benchmarkStats(rows []models.PivotedRow, benchmark string) BenchmarkStats {
	var (
		accuracies   []float64
		improvements []float64
		gains        []float64
		leader       *BenchmarkLeader
		imp          ImprovementStats
	)

	for i := range rows {
		cell, ok := rows[i].Cell(benchmark)
		if !ok {
			continue
		}
		accuracies = append(accuracies, cell.Accuracy)
		if leader == nil || cell.Accuracy > leader.Accuracy {
			leader = &BenchmarkLeader{
				ModelName: rows[i].ModelName,
				AgentName: rows[i].AgentName,
				Accuracy:  cell.Accuracy,
			}
		}

		if cell.Improvement == nil {
			continue
		}
		improvements = append(improvements, *cell.Improvement)
		switch {
		case *cell.Improvement > 0:
			imp.Improved++
		case *cell.Improvement < 0:
			imp.Regressed++
		}
		if cell.BaseModelAccuracy != nil {
			gains = append(gains, statistics.NormalizedGain(*cell.BaseModelAccuracy, cell.Accuracy))
		}
	}

	s := BenchmarkStats{
		Benchmark:  benchmark,
		Rows:       len(accuracies),
		Accuracy:   statistics.Describe(accuracies),
		AccuracyCI: statistics.BootstrapCI(accuracies, statsConfidenceLevel, statsSeed),
		Leader:     leader,
	}

	if len(improvements) > 0 {
		imp.Cells = len(improvements)
		imp.Mean = statistics.Mean(improvements)
		imp.CI = statistics.BootstrapCI(improvements, statsConfidenceLevel, statsSeed)
		// a single cell gives a degenerate interval; don't call it significant
		imp.Significant = imp.Cells > 1 && statistics.IsSignificant(imp.CI)
		imp.NormalizedGain = statistics.Mean(gains)
		s.Improvement = &imp
	}
	return s
}
