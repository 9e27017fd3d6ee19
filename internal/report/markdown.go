package report

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/leaderboard"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
)

// escapeMarkdown makes s safe to place in a table cell.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

var urlEscaper = strings.NewReplacer(
	"|", "%7C",
	" ", "%20",
	"<", "%3C",
	">", "%3E",
)

// Markdown renders res as a GitHub-flavoured markdown document with one
// table. Accuracies link to their traces when a link exists.
func Markdown(res leaderboard.Result, opts Options) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(opts.title()))
	fmt.Fprintf(&b, "%d of %d rows, tab %s", len(res.Rows), res.Total, res.Tab)
	if !opts.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, ", generated %s", opts.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	b.WriteString(".\n\n")

	if len(res.Rows) == 0 {
		b.WriteString("No rows match the current filters.\n")
		return b.String()
	}

	b.WriteString("| Model | Agent | Base model | Ended |")
	for _, name := range res.Columns {
		fmt.Fprintf(&b, " %s |", escapeMarkdown(name))
	}
	b.WriteString("\n| --- | --- | --- | --- |")
	for range res.Columns {
		b.WriteString(" ---: |")
	}
	b.WriteString("\n")

	flagged := 0
	for i := range res.Rows {
		row := &res.Rows[i]
		model := escapeMarkdown(row.ModelName)
		if MissingTraces(row, opts.Primary) {
			model += " " + tracesFlag
			flagged++
		}
		base := Missing
		if row.BaseModelName != "" {
			base = escapeMarkdown(row.BaseModelName)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |", model, escapeMarkdown(row.AgentName), base, FormatEndedAt(row.LatestEndedAt))
		for _, name := range res.Columns {
			fmt.Fprintf(&b, " %s |", markdownCell(row, name))
		}
		b.WriteString("\n")
	}

	if flagged > 0 {
		fmt.Fprintf(&b, "\n%s %d row(s) have no traces link on %s.\n", tracesFlag, flagged, escapeMarkdown(opts.Primary))
	}
	return b.String()
}

func markdownCell(row *models.PivotedRow, name string) string {
	c, ok := row.Cell(name)
	if !ok {
		return Missing
	}
	acc := FormatAccuracy(c.Accuracy)
	if c.HFTracesLink != "" {
		acc = fmt.Sprintf("[%s](%s)", acc, urlEscaper.Replace(c.HFTracesLink))
	}
	s := acc + " " + FormatStandardError(c.StandardError)
	if c.Improvement != nil {
		s += " (" + FormatImprovement(c.Improvement) + ")"
	}
	return s
}

const htmlHead = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ddd; padding: 0.3rem 0.6rem; white-space: nowrap; }
th { background: #f5f5f5; }
</style>
</head>
<body>
`

const htmlTail = `</body>
</html>
`

// WriteHTML renders the markdown document to a standalone HTML page.
func WriteHTML(w io.Writer, res leaderboard.Result, opts Options) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(res, opts)), &body); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}

	if _, err := fmt.Fprintf(w, htmlHead, html.EscapeString(opts.title())); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, htmlTail)
	return err
}
