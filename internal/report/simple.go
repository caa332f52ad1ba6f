package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/scoring"
)

// SimpleWriter writes plain text reports for the terminal.
type SimpleWriter struct {
	baseWriter
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose adds every criterion and the detected evidence counts.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs report as text.
func (w *SimpleWriter) Write(report *model.ScanReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	if report.Failed() {
		fmt.Fprintf(&sb, "Error:    %s\n", report.ErrorMessage)
		sb.WriteString("No score was computed for this page.\n\n")
		return w.output.Write([]byte(sb.String()))
	}

	w.writeScores(&sb, report)
	if w.verbose {
		w.writeEvidence(&sb, report)
	}
	w.writeOpportunities(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, r *model.ScanReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "URL:      %s\n", r.URL)
	fmt.Fprintf(sb, "Scanned:  %s\n", r.ScannedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Status:   %s\n", statusText(r))
	if r.Score != nil {
		fmt.Fprintf(sb, "Score:    %d/%d (%s)\n", r.Score.Total, model.TotalMax, r.Quality)
	}
	if r.Validation != nil && r.Validation.Fallback && r.Validation.FallbackReason != "" {
		fmt.Fprintf(sb, "Note:     %s score, %s\n", Unverified, r.Validation.FallbackReason)
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeScores(sb *strings.Builder, r *model.ScanReport) {
	sb.WriteString("\n")
	for _, g := range groups {
		fmt.Fprintf(sb, "%-14s %3d / %d\n", GroupTitle(g), groupPoints(r.Score, g), g.Max())
		if !w.verbose {
			continue
		}
		for _, c := range scoring.Criteria() {
			if c.Group == g {
				fmt.Fprintf(sb, "  %-22s %2d / %d\n", Label(c.Name), c.Value(*r.Score), c.Max)
			}
		}
	}
}

func (w *SimpleWriter) writeEvidence(sb *strings.Builder, r *model.ScanReport) {
	if r.Parse == nil {
		return
	}
	c := r.Parse.Counts
	sb.WriteString("\nEvidence (detected / validated):\n")
	rows := []struct {
		label    string
		detected int
		category model.Category
	}{
		{"Expert quotes", c.ExpertQuotes, model.CategoryExpertQuotes},
		{"Statistics", c.Statistics, model.CategoryStatistics},
		{"Sources", c.SourceCitations, model.CategorySources},
		{"Case studies", c.CaseStudies, model.CategoryCaseStudies},
		{"FAQs", c.FAQCount, model.CategoryFAQs},
	}
	for _, row := range rows {
		fmt.Fprintf(sb, "  %-14s %3d / %s\n", row.label, row.detected, validatedText(r, row.category))
	}
	fmt.Fprintf(sb, "  %-14s %3d words, Flesch %.1f\n", "Text", c.WordCount, c.FleschScore)
}

func (w *SimpleWriter) writeOpportunities(sb *strings.Builder, r *model.ScanReport) {
	opportunities := scoring.Opportunities(*r.Score)
	if len(opportunities) == 0 {
		sb.WriteString("\nEvery criterion earned its maximum.\n\n")
		return
	}

	limit := len(opportunities)
	if !w.verbose {
		limit = min(limit, 5)
	}
	sb.WriteString("\nTop opportunities:\n")
	for _, o := range opportunities[:limit] {
		fmt.Fprintf(sb, "  +%d  %s / %s (%d/%d)\n", o.Missing, GroupTitle(o.Group), Label(o.Name), o.Points, o.Max)
	}
	sb.WriteString("\n")
}
