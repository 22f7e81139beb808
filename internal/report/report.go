// Package report renders the operator digest: aggregate metrics plus the
// most recent feedback, as Markdown and as a standalone HTML page.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/stats"
)

// DefaultRecent is how many records the digest lists when Options.Recent is 0.
const DefaultRecent = 10

//go:embed templates/report.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// Options controls digest rendering.
type Options struct {
	Recent      int       // records to list; 0 means DefaultRecent, negative means all
	GeneratedAt time.Time // zero means now
}

// Markdown renders the digest. records must already be ordered newest first.
func Markdown(snap stats.Snapshot, records []feedback.Record, opts Options) string {
	at := opts.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	recent := opts.Recent
	if recent == 0 {
		recent = DefaultRecent
	}
	if recent < 0 || recent > len(records) {
		recent = len(records)
	}

	var b strings.Builder
	b.WriteString("# Feedback Report\n\n")
	fmt.Fprintf(&b, "_Generated %s_\n\n", at.Format("2006-01-02 15:04"))

	if snap.Count == 0 {
		b.WriteString("No feedback submissions yet.\n")
		return b.String()
	}

	b.WriteString("## Overview\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total reviews | %d |\n", snap.Count)
	fmt.Fprintf(&b, "| Average rating | %.1f %s |\n", snap.MeanRating, trendMark(snap))
	fmt.Fprintf(&b, "| Positive | %.0f%% (%d reviews) |\n", snap.PositivePct, snap.PositiveCount)
	fmt.Fprintf(&b, "| Negative | %.0f%% (%d reviews) |\n", snap.NegativePct, snap.NegativeCount)
	fmt.Fprintf(&b, "| Awaiting analysis | %d |\n\n", snap.PendingAnalysis)

	b.WriteString("## Rating Distribution\n\n")
	b.WriteString("| Rating | Count |\n|---|---|\n")
	for r := 1; r <= 5; r++ {
		fmt.Fprintf(&b, "| %s | %d |\n", stars(r), snap.Histogram[r])
	}
	b.WriteString("\n")

	b.WriteString("## Submissions Over Time\n\n")
	b.WriteString("| Date | Submissions |\n|---|---|\n")
	for _, d := range snap.Timeline {
		fmt.Fprintf(&b, "| %s | %d |\n", d.Date, d.Count)
	}
	b.WriteString("\n")

	b.WriteString("## Recent Feedback\n\n")
	for i := 0; i < recent; i++ {
		writeRecord(&b, &records[i])
	}
	return b.String()
}

func writeRecord(b *strings.Builder, r *feedback.Record) {
	fmt.Fprintf(b, "### %s (%d/5) · %s\n\n", stars(r.Rating), r.Rating, r.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(b, "**Review** (#%d):\n\n%s\n\n", r.ID, quote(r.Review))
	fmt.Fprintf(b, "**Reply sent:**\n\n%s\n\n", quote(r.AIResponse))

	if !r.HasAnalysis() {
		b.WriteString("_Analysis not generated yet._\n\n---\n\n")
		return
	}
	fmt.Fprintf(b, "**Summary:** %s\n\n", oneLine(r.Summary))
	b.WriteString("**Recommended actions:**\n\n")
	actions := r.Actions
	if len(actions) == 0 {
		actions = []string{feedback.MissingActionsHint}
	}
	for i, a := range actions {
		fmt.Fprintf(b, "%d. %s\n", i+1, oneLine(a))
	}
	b.WriteString("\n---\n\n")
}

// HTML converts a Markdown digest into a standalone page. Raw HTML in the
// input is dropped by the converter.
func HTML(md string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	if err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{"Feedback Report", template.HTML(body.String())}); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return page.Bytes(), nil
}

// TerminalWidth is the default wrap width for terminal rendering.
const TerminalWidth = 100

// Terminal renders a Markdown digest for a terminal. An empty style picks
// dark or light from the terminal background; "notty" yields plain text.
func Terminal(md, style string, width int) (string, error) {
	if width <= 0 {
		width = TerminalWidth
	}
	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStylePath(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("build terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render terminal report: %w", err)
	}
	return out, nil
}

func trendMark(s stats.Snapshot) string {
	if s.TrendUp() {
		return "▲"
	}
	return "▼"
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat("★", n)
}

// quote renders text as a Markdown blockquote, one quoted line per input line.
func quote(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = "> " + strings.TrimRight(l, "\r")
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
