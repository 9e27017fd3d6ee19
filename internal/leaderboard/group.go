// Package leaderboard reshapes flat evaluation results into a pivoted,
// filterable and sortable leaderboard. Every function here is a pure
// transformation over immutable inputs.
package leaderboard

import (
	"fmt"
	"time"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// Group pivots results into one row per (model, agent) pair. Rows come back
// in first-seen order; callers sort downstream.
//
// A later result for the same (model, agent, benchmark) overwrites the earlier
// cell. A result that fails validation aborts the whole grouping.
func Group(results []models.EvaluationResult) ([]models.PivotedRow, error) {
	index := make(map[models.RowKey]int, len(results))
	rows := make([]models.PivotedRow, 0)

	for i := range results {
		r := &results[i]
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}

		key := models.RowKey{Model: r.ModelName, Agent: r.AgentName}
		pos, ok := index[key]
		if !ok {
			row := models.PivotedRow{
				ModelName:  r.ModelName,
				AgentName:  r.AgentName,
				Benchmarks: make(map[string]models.BenchmarkCell),
			}
			if r.BaseModelName != nil {
				row.BaseModelName = *r.BaseModelName
			}
			if r.ModelID != nil {
				row.ModelID = *r.ModelID
			}
			rows = append(rows, row)
			pos = len(rows) - 1
			index[key] = pos
		}

		row := &rows[pos]
		if r.EndedAt != nil {
			trackEnded(row, *r.EndedAt)
		}
		row.Benchmarks[r.BenchmarkName] = newCell(r)
	}

	return rows, nil
}

// trackEnded folds t into the row's earliest and latest end times. Upstream
// ordering is not assumed.
func trackEnded(row *models.PivotedRow, t time.Time) {
	if row.EarliestEndedAt == nil || t.Before(*row.EarliestEndedAt) {
		earliest := t
		row.EarliestEndedAt = &earliest
	}
	if row.LatestEndedAt == nil || t.After(*row.LatestEndedAt) {
		latest := t
		row.LatestEndedAt = &latest
	}
}

func newCell(r *models.EvaluationResult) models.BenchmarkCell {
	cell := models.BenchmarkCell{
		Accuracy:      r.Accuracy,
		StandardError: r.StandardError,
	}
	if r.HFTracesLink != nil {
		cell.HFTracesLink = *r.HFTracesLink
	}
	if r.BaseModelAccuracy != nil {
		base := *r.BaseModelAccuracy
		improvement := r.Accuracy - base
		cell.BaseModelAccuracy = &base
		cell.Improvement = &improvement
	}
	return cell
}
