package leaderboard

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// newCollator returns the collator used for name columns. Collators keep
// internal buffers, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// SortRows returns a stably sorted copy of rows. A row missing the compared
// value (no timestamp, no base model, no cell for the benchmark) sorts after
// every row that has one, in both directions.
func SortRows(rows []models.PivotedRow, state SortState) []models.PivotedRow {
	field, dir := state.Effective()
	compare := rowComparer(field, dir, state.Metric(field), newCollator())

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b models.PivotedRow) int {
		return compare(&a, &b)
	})
	return out
}

// SortByIdentity orders rows by model name, then agent name.
func SortByIdentity(rows []models.PivotedRow) []models.PivotedRow {
	coll := newCollator()
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b models.PivotedRow) int {
		if c := coll.CompareString(a.ModelName, b.ModelName); c != 0 {
			return c
		}
		return coll.CompareString(a.AgentName, b.AgentName)
	})
	return out
}

func rowComparer(field string, dir SortDirection, metric SortMetric, coll *collate.Collator) func(a, b *models.PivotedRow) int {
	names := func(get rowField) func(a, b *models.PivotedRow) int {
		return func(a, b *models.PivotedRow) int {
			av, bv := get(a), get(b)
			return compareDefined(av != "", bv != "", dir, func() int {
				return coll.CompareString(av, bv)
			})
		}
	}

	switch field {
	case FieldModelName:
		return names(modelName)
	case FieldAgentName:
		return names(agentName)
	case FieldBaseModelName:
		// "None" means no base model, same as an empty name.
		return func(a, b *models.PivotedRow) int {
			return compareDefined(!a.IsBaseModel(), !b.IsBaseModel(), dir, func() int {
				return coll.CompareString(a.BaseModelName, b.BaseModelName)
			})
		}
	case FieldEndedAt:
		return func(a, b *models.PivotedRow) int {
			at, bt := a.EarliestEndedAt, b.EarliestEndedAt
			return compareDefined(at != nil, bt != nil, dir, func() int {
				return at.Compare(*bt)
			})
		}
	}

	return func(a, b *models.PivotedRow) int {
		av, aok := cellValue(a, field, metric)
		bv, bok := cellValue(b, field, metric)
		return compareDefined(aok, bok, dir, func() int {
			return cmp.Compare(av, bv)
		})
	}
}

// compareDefined applies the undefined-last policy and only negates the
// comparison of two defined values for descending order.
func compareDefined(aok, bok bool, dir SortDirection, compare func() int) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return 1
	case !bok:
		return -1
	}
	c := compare()
	if dir == Descending {
		return -c
	}
	return c
}

// cellValue resolves the metric value of benchmark for row.
func cellValue(row *models.PivotedRow, benchmark string, metric SortMetric) (float64, bool) {
	cell, ok := row.Cell(benchmark)
	if !ok {
		return 0, false
	}
	if metric == MetricImprovement {
		if cell.Improvement == nil {
			return 0, false
		}
		return *cell.Improvement, true
	}
	return cell.Accuracy, true
}
