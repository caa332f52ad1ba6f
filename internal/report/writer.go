package report

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/contentscale/internal/model"
	"github.com/nao1215/contentscale/internal/scoring"
)

// Writer writes scan reports.
type Writer interface {
	// Write outputs one report and returns the number of bytes written.
	Write(report *model.ScanReport) (int, error)
}

// MultiWriter writes each report to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write stops at the first error and returns the bytes written so far.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// Unverified is shown next to scores computed from parser counts alone.
const Unverified = "unverified"

// statusText is the one-line state of a report.
func statusText(r *model.ScanReport) string {
	switch {
	case r.TimedOut:
		return "timed out during " + r.FailureStage
	case r.Failed():
		return "failed at " + r.FailureStage
	case r.Verified():
		return "scored (verified)"
	default:
		return "scored (" + Unverified + ")"
	}
}

var titleCaser = cases.Title(language.English)

// Label turns a criterion name such as "cutFluff" into "Cut Fluff".
func Label(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return titleCaser.String(b.String())
}

// GroupTitle returns the display name of a rubric.
func GroupTitle(g scoring.Group) string {
	switch g {
	case scoring.GroupGRAAF:
		return "GRAAF"
	case scoring.GroupCRAFT:
		return "CRAFT"
	case scoring.GroupTechnical:
		return "Technical SEO"
	default:
		return string(g)
	}
}

// groupPoints returns the points a report earned in g.
func groupPoints(b *model.ScoreBreakdown, g scoring.Group) int {
	switch g {
	case scoring.GroupGRAAF:
		return b.GRAAF.Total
	case scoring.GroupCRAFT:
		return b.CRAFT.Total
	case scoring.GroupTechnical:
		return b.Technical.Total
	default:
		return 0
	}
}

var groups = []scoring.Group{scoring.GroupGRAAF, scoring.GroupCRAFT, scoring.GroupTechnical}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
