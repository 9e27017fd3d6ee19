package leaderboard

import (
	"slices"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// SelectCurated returns the union of the top topN rows by accuracy on the
// primary benchmark and the recentN rows with the latest end time. A row
// chosen by both appears once. Rows without a primary cell never rank for
// Top-N; rows without an end time never rank for Recent-N.
func SelectCurated(rows []models.PivotedRow, primary string, topN, recentN Limit) []models.PivotedRow {
	top := TopByAccuracy(rows, primary, topN)
	recent := MostRecent(rows, recentN)

	seen := make(map[models.RowKey]struct{}, len(top)+len(recent))
	out := make([]models.PivotedRow, 0, len(top)+len(recent))
	for _, group := range [][]models.PivotedRow{top, recent} {
		for i := range group {
			key := group[i].Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, group[i])
		}
	}
	return out
}

// TopByAccuracy ranks rows holding a primary cell by its accuracy, highest
// first, and keeps the first n.
func TopByAccuracy(rows []models.PivotedRow, primary string, n Limit) []models.PivotedRow {
	ranked := make([]models.PivotedRow, 0, len(rows))
	for i := range rows {
		if _, ok := rows[i].Cell(primary); ok {
			ranked = append(ranked, rows[i])
		}
	}
	slices.SortStableFunc(ranked, func(a, b models.PivotedRow) int {
		av, bv := a.Benchmarks[primary].Accuracy, b.Benchmarks[primary].Accuracy
		switch {
		case av > bv:
			return -1
		case av < bv:
			return 1
		}
		return 0
	})
	return ranked[:n.take(len(ranked))]
}

// MostRecent ranks rows with an end time by their latest end time, newest
// first, and keeps the first n.
func MostRecent(rows []models.PivotedRow, n Limit) []models.PivotedRow {
	ranked := make([]models.PivotedRow, 0, len(rows))
	for i := range rows {
		if rows[i].LatestEndedAt != nil {
			ranked = append(ranked, rows[i])
		}
	}
	slices.SortStableFunc(ranked, func(a, b models.PivotedRow) int {
		return b.LatestEndedAt.Compare(*a.LatestEndedAt)
	})
	return ranked[:n.take(len(ranked))]
}
