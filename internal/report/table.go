package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

const (
	defaultTitle = "Leaderboard"
	maxNameWidth = 40
	tracesFlag   = "⚠"
)

// Options controls rendering.
type Options struct {
	// Title heads markdown and HTML output. Defaults to "Leaderboard".
	Title string
	// Primary is the benchmark whose rows are flagged when they lack a
	// traces link. Empty disables the flag.
	Primary string
	// Color enables ANSI colors in the terminal table.
	Color bool
	// GeneratedAt is printed in the document header when set.
	GeneratedAt time.Time
}

func (o Options) title() string {
	if o.Title == "" {
		return defaultTitle
	}
	return o.Title
}

// ColorEnabled reports whether w is a terminal that accepts color.
func ColorEnabled(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type palette struct {
	header *color.Color
	high   *color.Color
	medium *color.Color
	gain   *color.Color
	loss   *color.Color
	faint  *color.Color
	warn   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header: color.New(color.Bold),
		high:   color.New(color.FgGreen, color.Bold),
		medium: color.New(color.FgYellow),
		gain:   color.New(color.FgGreen),
		loss:   color.New(color.FgRed),
		faint:  color.New(color.Faint),
		warn:   color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{p.header, p.high, p.medium, p.gain, p.loss, p.faint, p.warn} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) accuracy(v float64) *color.Color {
	switch ClassifyAccuracy(v) {
	case AccuracyHigh:
		return p.high
	case AccuracyMedium:
		return p.medium
	}
	return nil
}

func (p palette) improvement(v *float64) *color.Color {
	switch ClassifyImprovement(v) {
	case ImprovementStrongGain, ImprovementGain:
		return p.gain
	case ImprovementSmallLoss, ImprovementLoss:
		return p.loss
	}
	return nil
}

// segment is a piece of cell text with an optional color. Widths are
// measured on the plain text so colors never skew alignment.
type segment struct {
	text  string
	color *color.Color
}

type cell []segment

func plain(s string) cell { return cell{{text: s}} }

func (c cell) String() string {
	var b strings.Builder
	for _, s := range c {
		b.WriteString(s.text)
	}
	return b.String()
}

func (c cell) width() int { return runewidth.StringWidth(c.String()) }

func (c cell) render() string {
	var b strings.Builder
	for _, s := range c {
		if s.color != nil {
			b.WriteString(s.color.Sprint(s.text))
		} else {
			b.WriteString(s.text)
		}
	}
	return b.String()
}

// WriteTable writes res as an aligned plain-text table followed by a one
// line footer.
func WriteTable(w io.Writer, res leaderboard.Result, opts Options) error {
	p := newPalette(opts.Color)

	header := []cell{plain("Model"), plain("Agent"), plain("Base model"), plain("Ended")}
	for _, name := range res.Columns {
		header = append(header, plain(name))
	}

	flagged := 0
	body := make([][]cell, 0, len(res.Rows))
	for i := range res.Rows {
		row := &res.Rows[i]
		model := cell{{text: truncateName(row.ModelName)}}
		if MissingTraces(row, opts.Primary) {
			model = append(model, segment{text: " " + tracesFlag, color: p.warn})
			flagged++
		}
		line := []cell{
			model,
			plain(truncateName(row.AgentName)),
			orMissing(truncateName(row.BaseModelName), p),
			orMissing(endedAt(row), p),
		}
		for _, name := range res.Columns {
			line = append(line, benchmarkCell(row, name, p))
		}
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

	fmt.Fprintf(&b, "\n%d of %d rows (%s)", len(res.Rows), res.Total, res.Tab)
	if flagged > 0 {
		fmt.Fprintf(&b, ", %d without traces on %s %s", flagged, opts.Primary, p.warn.Sprint(tracesFlag))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeLine pads every cell but the last to its column width.
func writeLine(b *strings.Builder, line []cell, widths []int, whole *color.Color) {
	for j, c := range line {
		text := c.render()
		if whole != nil {
			text = whole.Sprint(c.String())
		}
		b.WriteString(text)
		if j < len(line)-1 {
			b.WriteString(strings.Repeat(" ", widths[j]-c.width()+2))
		}
	}
	b.WriteString("\n")
}

func benchmarkCell(row *models.PivotedRow, name string, p palette) cell {
	c, ok := row.Cell(name)
	if !ok {
		return cell{{text: Missing, color: p.faint}}
	}
	out := cell{
		{text: FormatAccuracy(c.Accuracy), color: p.accuracy(c.Accuracy)},
		{text: " " + FormatStandardError(c.StandardError), color: p.faint},
	}
	if c.Improvement != nil {
		out = append(out, segment{text: " " + FormatImprovement(c.Improvement), color: p.improvement(c.Improvement)})
	}
	return out
}

func orMissing(s string, p palette) cell {
	if s == "" || s == Missing {
		return cell{{text: Missing, color: p.faint}}
	}
	return plain(s)
}

func truncateName(s string) string {
	return runewidth.Truncate(s, maxNameWidth, "…")
}

func endedAt(row *models.PivotedRow) string {
	return FormatEndedAt(row.LatestEndedAt)
}
