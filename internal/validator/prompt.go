package validator

import (
	"fmt"
	"strings"

	"github.com/nao1215/contentscale/internal/model"
)

const promptIntro = `You are a content quality validator for an SEO scoring system.
Review the elements a parser detected on one web page. You may only REJECT elements
that fail the criteria below. You cannot add elements.
Items are numbered from 0. Only the listed items can be rejected; detected items
beyond the listed ones are accepted.`

const promptCriteria = `# VALIDATION CRITERIA

## expertQuotes
Accept only a direct quote attributed to a specific, named person (first and last
name, or a recognizable public figure) with a title, role or organization.
Reject generic attributions ("experts say"), paraphrases and unnamed sources.

## statistics
Accept only a specific number or percentage with a clear source (organization,
publication or study) and enough context to be meaningful.
Reject figures without a source, marketing fluff, dates, prices and version numbers.

## sources
Accept only links to a specific external resource that supports a claim in the text
(research, official data, documentation, reputable publications).
Reject navigation, social profiles, advertising, affiliate and sign-up links.

## caseStudies
Accept only a concrete account of a named (or explicitly anonymized) client or company
with measurable results and a before/after or specific outcome.
Reject hypothetical scenarios, generic examples and testimonials without metrics.

## faqs
Accept only a real question with a substantial answer that directly answers it and
is relevant to the page topic.
Reject short, evasive or off-topic answers.`

const promptFormat = `# RESPONSE FORMAT
Return ONLY a JSON object, with no markdown and no explanation, in exactly this shape:

{
  "expertQuotes": {"validated": <number>, "rejected": [{"index": <number>, "reason": "<brief reason>"}]},
  "statistics":   {"validated": <number>, "rejected": [...]},
  "sources":      {"validated": <number>, "rejected": [...]},
  "caseStudies":  {"validated": <number>, "rejected": [...]},
  "faqs":         {"validated": <number>, "rejected": [...]}
}

Rules:
- Include all five categories, even when nothing was detected.
- For every category, validated + number of rejected items must equal the detected count.
- Each index refers to a listed item and appears at most once.
- Use brief, specific rejection reasons.`

// BuildPrompt renders the validation request for a parser output.
func BuildPrompt(out *model.ParserOutput) string {
	var b strings.Builder
	b.WriteString(promptIntro)
	b.WriteString("\n\n# PARSER DETECTED\n")

	if out.Metadata.Title != "" {
		fmt.Fprintf(&b, "\nPage title: %s\n", out.Metadata.Title)
	}
	if out.URL != "" {
		fmt.Fprintf(&b, "Page URL: %s\n", out.URL)
	}

	s := out.Snippets
	section(&b, model.CategoryExpertQuotes, out.Counts.ExpertQuotes, len(s.ExpertQuotes), func(i int) string {
		q := s.ExpertQuotes[i]
		if q.Attribution == "" {
			return q.Text
		}
		return fmt.Sprintf("%s (attributed to: %s)", q.Text, q.Attribution)
	})
	section(&b, model.CategoryStatistics, out.Counts.Statistics, len(s.Statistics), func(i int) string {
		st := s.Statistics[i]
		return fmt.Sprintf("%s | context: %s", st.Value, st.Context)
	})
	section(&b, model.CategorySources, out.Counts.SourceCitations, len(s.SourceCitations), func(i int) string {
		c := s.SourceCitations[i]
		return fmt.Sprintf("%s -> %s", c.Text, c.URL)
	})
	section(&b, model.CategoryCaseStudies, out.Counts.CaseStudies, len(s.CaseStudies), func(i int) string {
		return s.CaseStudies[i].Text
	})
	section(&b, model.CategoryFAQs, out.Counts.FAQCount, len(s.FAQs), func(i int) string {
		f := s.FAQs[i]
		return fmt.Sprintf("Q: %s\n   A: %s (%d words)", f.Question, f.Answer, f.AnswerWords)
	})

	b.WriteString("\n")
	b.WriteString(promptCriteria)
	b.WriteString("\n\n")
	b.WriteString(promptFormat)
	b.WriteString("\n")
	return b.String()
}

func section(b *strings.Builder, c model.Category, detected, shown int, item func(int) string) {
	fmt.Fprintf(b, "\n## %s (%d detected, %d listed)\n", c, detected, shown)
	if shown == 0 {
		b.WriteString("(none)\n")
		return
	}
	for i := 0; i < shown; i++ {
		fmt.Fprintf(b, "%d. %s\n", i, item(i))
	}
}
