package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidResult marks an evaluation result that breaks the input contract
// (missing identity, names or numeric fields).
var ErrInvalidResult = errors.New("invalid evaluation result")

// EvaluationResult is one (model, agent, benchmark) outcome as produced by the
// upstream leaderboard_results view. Source rows are never mutated after fetch.
type EvaluationResult struct {
	ID            string  `json:"id" mapstructure:"id"`
	ModelName     string  `json:"modelName" mapstructure:"modelName"`
	AgentName     string  `json:"agentName" mapstructure:"agentName"`
	BenchmarkName string  `json:"benchmarkName" mapstructure:"benchmarkName"`
	Accuracy      float64 `json:"accuracy" mapstructure:"accuracy"`
	StandardError float64 `json:"standardError" mapstructure:"standardError"`

	HFTracesLink *string    `json:"hfTracesLink,omitempty" mapstructure:"hfTracesLink"`
	EndedAt      *time.Time `json:"endedAt,omitempty" mapstructure:"endedAt"`

	ModelID           *string  `json:"modelId,omitempty" mapstructure:"modelId"`
	BaseModelID       *string  `json:"baseModelId,omitempty" mapstructure:"baseModelId"`
	BaseModelName     *string  `json:"baseModelName,omitempty" mapstructure:"baseModelName"`
	BaseModelAccuracy *float64 `json:"baseModelAccuracy,omitempty" mapstructure:"baseModelAccuracy"`
	AgentID           *string  `json:"agentId,omitempty" mapstructure:"agentId"`
	BenchmarkID       *string  `json:"benchmarkId,omitempty" mapstructure:"benchmarkId"`
}

// Validate checks the fields every present result must carry. The returned
// error wraps ErrInvalidResult.
func (r *EvaluationResult) Validate() error {
	var problems []string
	if r.ID == "" {
		problems = append(problems, "id is required")
	}
	if r.ModelName == "" {
		problems = append(problems, "modelName is required")
	}
	if r.AgentName == "" {
		problems = append(problems, "agentName is required")
	}
	if r.BenchmarkName == "" {
		problems = append(problems, "benchmarkName is required")
	}
	if math.IsNaN(r.Accuracy) || math.IsInf(r.Accuracy, 0) || r.Accuracy < 0 || r.Accuracy > 100 {
		problems = append(problems, fmt.Sprintf("accuracy %v outside [0, 100]", r.Accuracy))
	}
	if math.IsNaN(r.StandardError) || math.IsInf(r.StandardError, 0) || r.StandardError < 0 {
		problems = append(problems, fmt.Sprintf("standardError %v must be a non-negative number", r.StandardError))
	}
	if r.BaseModelAccuracy != nil {
		if v := *r.BaseModelAccuracy; math.IsNaN(v) || math.IsInf(v, 0) {
			problems = append(problems, "baseModelAccuracy must be finite")
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %s", ErrInvalidResult, r.ID, strings.Join(problems, "; "))
}
