package models

import "time"

// BaseModelNone is the base-model name the upstream view reports for models
// that were not derived from another model.
const BaseModelNone = "None"

// RowKey identifies a pivoted row. It is a struct key, so names containing
// any separator never collide.
type RowKey struct {
	Model string
	Agent string
}

// BenchmarkCell is the data for one benchmark within one pivoted row.
type BenchmarkCell struct {
	Accuracy          float64  `json:"accuracy"`
	StandardError     float64  `json:"standardError"`
	HFTracesLink      string   `json:"hfTracesLink,omitempty"`
	BaseModelAccuracy *float64 `json:"baseModelAccuracy,omitempty"`
	// Improvement is Accuracy minus BaseModelAccuracy in percentage points.
	// Nil when the base model has no result on the benchmark.
	Improvement *float64 `json:"improvement,omitempty"`
}

// PivotedRow is one leaderboard row per (model, agent) pair with benchmarks
// spread across columns. A benchmark the pair was never evaluated on has no
// key in Benchmarks.
type PivotedRow struct {
	ModelName       string                   `json:"modelName"`
	AgentName       string                   `json:"agentName"`
	ModelID         string                   `json:"modelId,omitempty"`
	BaseModelName   string                   `json:"baseModelName,omitempty"`
	EarliestEndedAt *time.Time               `json:"endedAt,omitempty"`
	LatestEndedAt   *time.Time               `json:"latestEndedAt,omitempty"`
	Benchmarks      map[string]BenchmarkCell `json:"benchmarks"`
}

// Key returns the row identity.
func (r *PivotedRow) Key() RowKey {
	return RowKey{Model: r.ModelName, Agent: r.AgentName}
}

// IsBaseModel reports whether the row's model is itself a base model.
func (r *PivotedRow) IsBaseModel() bool {
	return r.BaseModelName == "" || r.BaseModelName == BaseModelNone
}

// Cell returns the cell for benchmark, if the row has one.
func (r *PivotedRow) Cell(benchmark string) (BenchmarkCell, bool) {
	c, ok := r.Benchmarks[benchmark]
	return c, ok
}
