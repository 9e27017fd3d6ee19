package leaderboard

import "github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"

// RowPredicate reports whether a row passes one filter.
type RowPredicate func(row *models.PivotedRow) bool

// rowField extracts a filterable name from a row.
type rowField func(row *models.PivotedRow) string

func modelName(row *models.PivotedRow) string     { return row.ModelName }
func agentName(row *models.PivotedRow) string     { return row.AgentName }
func baseModelName(row *models.PivotedRow) string { return row.BaseModelName }

// SearchPredicates returns one predicate per non-empty search query on the
// model, agent and base-model fields.
func (f FilterState) SearchPredicates() []RowPredicate {
	var preds []RowPredicate
	for _, s := range []struct {
		query string
		field rowField
	}{
		{f.ModelSearch, modelName},
		{f.AgentSearch, agentName},
		{f.BaseModelSearch, baseModelName},
	} {
		if s.query == "" {
			continue
		}
		query, field := s.query, s.field
		preds = append(preds, func(row *models.PivotedRow) bool {
			return containsFold(field(row), query)
		})
	}
	return preds
}

// SelectionPredicates returns one predicate per non-empty inclusion set on
// the model, agent and base-model fields.
func (f FilterState) SelectionPredicates() []RowPredicate {
	var preds []RowPredicate
	for _, s := range []struct {
		values []string
		field  rowField
	}{
		{f.Models, modelName},
		{f.Agents, agentName},
		{f.BaseModels, baseModelName},
	} {
		if len(s.values) == 0 {
			continue
		}
		set, field := toSet(s.values), s.field
		preds = append(preds, func(row *models.PivotedRow) bool {
			_, ok := set[field(row)]
			return ok
		})
	}
	return preds
}

// SearchRows keeps rows matching every active search query.
func SearchRows(rows []models.PivotedRow, f FilterState) []models.PivotedRow {
	return Where(rows, f.SearchPredicates()...)
}

// SelectRows keeps rows belonging to every active inclusion set.
func SelectRows(rows []models.PivotedRow, f FilterState) []models.PivotedRow {
	return Where(rows, f.SelectionPredicates()...)
}

// FilterRows applies search then selection. The two commute.
func FilterRows(rows []models.PivotedRow, f FilterState) []models.PivotedRow {
	return SelectRows(SearchRows(rows, f), f)
}

// Where returns the rows passing all predicates, in their input order. With
// no predicates every row passes.
func Where(rows []models.PivotedRow, preds ...RowPredicate) []models.PivotedRow {
	out := make([]models.PivotedRow, 0, len(rows))
	for i := range rows {
		keep := true
		for _, p := range preds {
			if !p(&rows[i]) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rows[i])
		}
	}
	return out
}
