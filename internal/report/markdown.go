package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/scoring"
)

// MarkdownWriter writes GitHub-flavored Markdown reports.
type MarkdownWriter struct {
	baseWriter
	showSnippets bool
}

// MarkdownOption configures a MarkdownWriter.
type MarkdownOption func(*MarkdownWriter)

// WithSnippets includes the detected quotes, statistics, sources, case
// studies and FAQs in collapsible sections.
func WithSnippets(show bool) MarkdownOption {
	return func(w *MarkdownWriter) {
		w.showSnippets = show
	}
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter:   newBaseWriter(output),
		showSnippets: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs report as Markdown.
func (w *MarkdownWriter) Write(report *model.ScanReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	if report.Failed() {
		md.Cautionf("The scan failed at the %s stage: %s. No score was computed.",
			report.FailureStage, report.ErrorMessage)
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	w.writeValidationAlert(md, report)
	w.writeScores(md, report)
	w.writeOpportunities(md, report)
	if w.showSnippets {
		w.writeSnippets(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, r *model.ScanReport) {
	md.H1("Content Score Report")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + r.URL + "`"},
		{"Scanned", r.ScannedAt.Format("2006-01-02 15:04:05 MST")},
		{"Status", statusText(r)},
	}
	if r.Parse != nil && r.Parse.Metadata.Title != "" {
		rows = append(rows, []string{"Title", r.Parse.Metadata.Title})
	}
	if r.Page != nil {
		rows = append(rows, []string{"Renderer", r.Page.Renderer})
	}
	if r.Score != nil {
		rows = append(rows,
			[]string{"Total", fmt.Sprintf("**%d / %d**", r.Score.Total, model.TotalMax)},
			[]string{"Quality", r.Quality.String()},
		)
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeValidationAlert(md *markdown.Markdown, r *model.ScanReport) {
	v := r.Validation
	switch {
	case v == nil || v.Fallback:
		reason := "validation not run"
		if v != nil && v.FallbackReason != "" {
			reason = v.FallbackReason
		}
		md.Warningf("This score is %s: parser counts were used without validation (%s).", Unverified, reason)
	case r.Score.Total >= 80:
		md.Tip(r.Quality.Description())
	default:
		md.Note(r.Quality.Description())
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeScores(md *markdown.Markdown, r *model.ScanReport) {
	md.H2("Scores")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Points by rubric"),
		piechart.WithShowData(true),
	)
	for _, g := range groups {
		if p := groupPoints(r.Score, g); p > 0 {
			chart.LabelAndIntValue(GroupTitle(g), uint64(p))
		}
	}
	if r.Score.Total > 0 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	for _, g := range groups {
		md.PlainText(fmt.Sprintf("### %s (%d / %d)", GroupTitle(g), groupPoints(r.Score, g), g.Max()))
		md.PlainText("")

		rows := make([][]string, 0, 5)
		for _, c := range scoring.Criteria() {
			if c.Group != g {
				continue
			}
			rows = append(rows, []string{Label(c.Name), strconv.Itoa(c.Value(*r.Score)), strconv.Itoa(c.Max)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Criterion", "Points", "Max"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeOpportunities(md *markdown.Markdown, r *model.ScanReport) {
	md.H2("Opportunities")
	md.PlainText("")

	opportunities := scoring.Opportunities(*r.Score)
	if len(opportunities) == 0 {
		md.PlainText("Every criterion earned its maximum.")
		md.PlainText("")
		return
	}

	items := make([]string, len(opportunities))
	for i, o := range opportunities {
		items[i] = fmt.Sprintf("%s / %s: %d of %d points (+%d available)",
			GroupTitle(o.Group), Label(o.Name), o.Points, o.Max, o.Missing)
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeSnippets(md *markdown.Markdown, r *model.ScanReport) {
	if r.Parse == nil {
		return
	}
	s := r.Parse.Snippets
	c := r.Parse.Counts

	md.H2("Evidence")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Detected", "Validated"},
		Rows: [][]string{
			{"Expert quotes", strconv.Itoa(c.ExpertQuotes), validatedText(r, model.CategoryExpertQuotes)},
			{"Statistics", strconv.Itoa(c.Statistics), validatedText(r, model.CategoryStatistics)},
			{"Sources", strconv.Itoa(c.SourceCitations), validatedText(r, model.CategorySources)},
			{"Case studies", strconv.Itoa(c.CaseStudies), validatedText(r, model.CategoryCaseStudies)},
			{"FAQs", strconv.Itoa(c.FAQCount), validatedText(r, model.CategoryFAQs)},
		},
	})
	md.PlainText("")

	details := func(title string, n int, item func(int) string) {
		if n == 0 {
			return
		}
		var body string
		for i := range n {
			body += fmt.Sprintf("%d. %s\n", i+1, item(i))
		}
		md.Details(fmt.Sprintf("%s (%d)", title, n), body)
	}
	details("Expert quotes", len(s.ExpertQuotes), func(i int) string {
		q := s.ExpertQuotes[i]
		if q.Attribution == "" {
			return truncate(q.Text, 160)
		}
		return truncate(q.Text, 160) + " (" + q.Attribution + ")"
	})
	details("Statistics", len(s.Statistics), func(i int) string {
		return s.Statistics[i].Value + ": " + truncate(s.Statistics[i].Context, 160)
	})
	details("Sources", len(s.SourceCitations), func(i int) string {
		return fmt.Sprintf("[%s](%s)", truncate(s.SourceCitations[i].Text, 80), s.SourceCitations[i].URL)
	})
	details("Case studies", len(s.CaseStudies), func(i int) string {
		return truncate(s.CaseStudies[i].Text, 200)
	})
	details("FAQs", len(s.FAQs), func(i int) string {
		return fmt.Sprintf("%s (%d words)", s.FAQs[i].Question, s.FAQs[i].AnswerWords)
	})
	md.PlainText("")

	if r.Validation == nil || r.Validation.Fallback {
		return
	}
	var rejected []string
	for _, cat := range model.ValidatedCategories() {
		for _, rej := range r.Validation.Rejections[cat] {
			rejected = append(rejected, fmt.Sprintf("%s #%d: %s", cat, rej.Index+1, rej.Reason))
		}
	}
	if len(rejected) > 0 {
		md.PlainText("### Rejected by validation")
		md.PlainText("")
		md.BulletList(rejected...)
		md.PlainText("")
	}
}

func validatedText(r *model.ScanReport, c model.Category) string {
	if r.Validation == nil || r.Validation.Fallback {
		return "-"
	}
	return strconv.Itoa(r.Validation.Get(c))
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [contentscale](https://github.com/nao1215/contentscale)*")
}
