// Package report renders a leaderboard.Result for people: an aligned
// terminal table, a GitHub-flavoured markdown document, or an HTML page.
package report

import (
	"fmt"
	"time"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// Missing marks a value that does not exist, such as a benchmark the row
// was never evaluated on or an improvement without a base-model result.
const Missing = "—"

// FormatAccuracy renders an accuracy percentage.
func FormatAccuracy(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatStandardError renders a standard error in percentage points.
func FormatStandardError(v float64) string {
	return fmt.Sprintf("±%.2f", v)
}

// FormatImprovement renders a signed improvement over the base model.
func FormatImprovement(v *float64) string {
	if v == nil {
		return Missing
	}
	return fmt.Sprintf("%+.2f pp", *v)
}

// FormatEndedAt renders a completion time in UTC to the minute.
func FormatEndedAt(t *time.Time) string {
	if t == nil {
		return Missing
	}
	return t.UTC().Format("2006-01-02 15:04")
}

// FormatCell renders accuracy and standard error, followed by the improvement
// when there is one.
func FormatCell(c models.BenchmarkCell) string {
	s := FormatAccuracy(c.Accuracy) + " " + FormatStandardError(c.StandardError)
	if c.Improvement != nil {
		s += " (" + FormatImprovement(c.Improvement) + ")"
	}
	return s
}

// AccuracyTier classifies an accuracy for highlighting.
type AccuracyTier int

const (
	AccuracyNormal AccuracyTier = iota
	AccuracyMedium
	AccuracyHigh
)

// ClassifyAccuracy returns High from 90 and Medium from 70.
func ClassifyAccuracy(v float64) AccuracyTier {
	switch {
	case v >= 90:
		return AccuracyHigh
	case v >= 70:
		return AccuracyMedium
	default:
		return AccuracyNormal
	}
}

// ImprovementTier classifies an improvement over the base model.
type ImprovementTier int

const (
	ImprovementNone ImprovementTier = iota
	ImprovementLoss
	ImprovementSmallLoss
	ImprovementGain
	ImprovementStrongGain
)

// ClassifyImprovement returns None when there is no improvement value.
func ClassifyImprovement(v *float64) ImprovementTier {
	if v == nil {
		return ImprovementNone
	}
	switch d := *v; {
	case d >= 5:
		return ImprovementStrongGain
	case d >= 0:
		return ImprovementGain
	case d >= -5:
		return ImprovementSmallLoss
	default:
		return ImprovementLoss
	}
}

// MissingTraces reports whether row has a result on primary that carries no
// traces link. Such rows cannot be audited and are flagged in reports.
func MissingTraces(row *models.PivotedRow, primary string) bool {
	if primary == "" {
		return false
	}
	c, ok := row.Cell(primary)
	return ok && c.HFTracesLink == ""
}
