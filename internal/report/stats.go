package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
)

// WriteStats writes one line per benchmark with its accuracy distribution,
// leader and improvement over base models. The primary benchmark is marked
// with an asterisk.
func WriteStats(w io.Writer, stats []leaderboard.BenchmarkStats, opts Options) error {
	p := newPalette(opts.Color)

	header := []cell{
		plain("Benchmark"), plain("Rows"), plain("Mean"), plain("95% CI"),
		plain("Median"), plain("Range"), plain("Leader"), plain("Δ vs base"), plain("Gain"),
	}
	body := make([][]cell, 0, len(stats))
	for i := range stats {
		s := &stats[i]
		name := plain(s.Benchmark)
		if s.Benchmark == opts.Primary {
			name = append(name, segment{text: " *", color: p.warn})
		}
		line := []cell{
			name,
			plain(fmt.Sprint(s.Rows)),
			{{text: FormatAccuracy(s.Accuracy.Mean), color: p.accuracy(s.Accuracy.Mean)}},
			plain(fmt.Sprintf("%.1f–%.1f", s.AccuracyCI.Lower, s.AccuracyCI.Upper)),
			plain(FormatAccuracy(s.Accuracy.Median)),
			plain(fmt.Sprintf("%.1f–%.1f", s.Accuracy.Min, s.Accuracy.Max)),
			leaderCell(s.Leader, p),
		}
		line = append(line, improvementCells(s.Improvement, p)...)
		body = append(body, line)
	}

	widths := make([]int, len(header))
	for _, line := range append([][]cell{header}, body...) {
		for j, c := range line {
			widths[j] = max(widths[j], c.width())
		}
	}

	var b strings.Builder
	writeLine(&b, header, widths, p.header)
	rule := make([]cell, len(widths))
	for j, wd := range widths {
		rule[j] = plain(strings.Repeat("─", wd))
	}
	writeLine(&b, rule, widths, p.faint)
	for _, line := range body {
		writeLine(&b, line, widths, nil)
	}
	fmt.Fprintf(&b, "\n%d benchmark(s)\n", len(stats))

	_, err := io.WriteString(w, b.String())
	return err
}

func leaderCell(l *leaderboard.BenchmarkLeader, p palette) cell {
	if l == nil {
		return cell{{text: Missing, color: p.faint}}
	}
	name := l.ModelName + " / " + l.AgentName
	return plain(fmt.Sprintf("%s (%s)", truncateName(name), FormatAccuracy(l.Accuracy)))
}

func improvementCells(imp *leaderboard.ImprovementStats, p palette) []cell {
	if imp == nil {
		return []cell{
			{{text: Missing, color: p.faint}},
			{{text: Missing, color: p.faint}},
		}
	}
	mean := imp.Mean
	delta := cell{{text: FormatImprovement(&mean), color: p.improvement(&mean)}}
	if imp.Significant {
		delta = append(delta, segment{text: " *"})
	}
	delta = append(delta, segment{
		text:  fmt.Sprintf(" (%d↑ %d↓ of %d)", imp.Improved, imp.Regressed, imp.Cells),
		color: p.faint,
	})
	return []cell{delta, plain(fmt.Sprintf("%.2f", imp.NormalizedGain))}
}
