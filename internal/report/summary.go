package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/contentscale/internal/model"
)

// WriteSummaries writes a ranked table of scan summaries as text.
func WriteSummaries(output io.Writer, title string, rows []model.ScanSummary) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d):\n\n", title, len(rows))
	fmt.Fprintf(&sb, "  %-4s  %-5s  %-17s  %-20s  %-10s  %s\n", "#", "Score", "Quality", "Scanned", "Validation", "URL")
	sb.WriteString("  " + strings.Repeat("-", 90) + "\n")
	for i, s := range rows {
		fmt.Fprintf(&sb, "  %-4d  %-5s  %-17s  %-20s  %-10s  %s\n",
			i+1,
			summaryScore(s),
			summaryQuality(s),
			s.ScannedAt.Format("2006-01-02 15:04:05"),
			summaryValidation(s),
			s.URL,
		)
	}
	_, err := io.WriteString(output, sb.String())
	return err
}

// WriteSummariesMarkdown writes the same table as Markdown.
func WriteSummariesMarkdown(output io.Writer, title string, rows []model.ScanSummary) error {
	md := markdown.NewMarkdown(output)
	md.H2(title)
	md.PlainText("")

	table := make([][]string, len(rows))
	for i, s := range rows {
		table[i] = []string{
			fmt.Sprint(i + 1),
			summaryScore(s),
			summaryQuality(s),
			s.ScannedAt.Format("2006-01-02 15:04"),
			summaryValidation(s),
			s.URL,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Score", "Quality", "Scanned", "Validation", "URL"},
		Rows:   table,
	})
	return md.Build()
}

func summaryScore(s model.ScanSummary) string {
	if s.FailureStage != "" {
		return "-"
	}
	return fmt.Sprint(s.Total)
}

func summaryQuality(s model.ScanSummary) string {
	if s.FailureStage != "" {
		return "failed (" + s.FailureStage + ")"
	}
	return s.Quality.String()
}

func summaryValidation(s model.ScanSummary) string {
	switch {
	case s.FailureStage != "":
		return "-"
	case s.Verified:
		return "verified"
	default:
		return Unverified
	}
}
