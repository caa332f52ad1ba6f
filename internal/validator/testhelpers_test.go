package validator

import (
	"fmt"
	"time"

	"github.com/nao1215/contentscale/internal/model"
)

// sampleOutput returns a parser output with one to five items per category.
func sampleOutput() *model.ParserOutput {
	out := &model.ParserOutput{
		Success:  true,
		URL:      "https://example.com/guide",
		Snippets: model.NewSnippets(),
		Metadata: model.Metadata{Title: "A guide", ParsedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	for i := 0; i < 2; i++ {
		out.Snippets.ExpertQuotes = append(out.Snippets.ExpertQuotes, model.Quote{
			Text: fmt.Sprintf("Quote number %d from an expert.", i), Attribution: "Jane Roe", Rule: "blockquote-cite",
		})
	}
	for i := 0; i < 5; i++ {
		out.Snippets.Statistics = append(out.Snippets.Statistics, model.Statistic{
			Value: fmt.Sprintf("%d%%", 10+i), Context: "a survey found this", HasSource: true,
		})
	}
	out.Snippets.SourceCitations = append(out.Snippets.SourceCitations, model.Citation{URL: "https://research.example.org/a", Text: "Annual report"})
	out.Snippets.CaseStudies = append(out.Snippets.CaseStudies, model.CaseStudy{Text: "Acme increased signups by 40% after the redesign."})
	out.Snippets.FAQs = append(out.Snippets.FAQs, model.FAQ{Question: "How long does it take?", Answer: "About a week.", AnswerWords: 3})

	out.Counts.ExpertQuotes = len(out.Snippets.ExpertQuotes)
	out.Counts.Statistics = len(out.Snippets.Statistics)
	out.Counts.SourceCitations = len(out.Snippets.SourceCitations)
	out.Counts.CaseStudies = len(out.Snippets.CaseStudies)
	out.Counts.FAQCount = len(out.Snippets.FAQs)
	return out
}

// twoOfFiveStatistics accepts everything except three of the five statistics.
const twoOfFiveStatistics = `{
  "expertQuotes": {"validated": 2, "rejected": []},
  "statistics": {"validated": 2, "rejected": [
    {"index": 0, "reason": "no source"},
    {"index": 2, "reason": "a date, not a statistic"},
    {"index": 4, "reason": "marketing claim"}
  ]},
  "sources": {"validated": 1, "rejected": []},
  "caseStudies": {"validated": 1, "rejected": []},
  "faqs": {"validated": 0, "rejected": [{"index": 0, "reason": "answer too short"}]}
}`
