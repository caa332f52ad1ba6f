package parser

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/contentscale/internal/model"
)

const (
	// minFAQAnswerWords is the answer length an FAQ item needs to count.
	minFAQAnswerWords = 20

	// minQuestionLength filters headings such as "Why?".
	minQuestionLength = 10

	maxQuestionLength = 200
)

// FAQ rule names.
const (
	RuleFAQContainer   = "faq-container"
	RuleFAQSubheadings = "faq-subheadings"
)

var interrogativePattern = regexp.MustCompile(`(?i)^(?:what|how|why|when|where|who|whom|whose|which|can|could|does|do|did|is|are|was|were|should|will|would|may|might|has|have)\b`)

const (
	containerQuestionSelector = "h2, h3, h4, h5, h6, dt, summary, [itemprop='name']"
	subheadingSelector        = "h2, h3, h4, h5, h6, dt"
)

// faqRules are tried in order; the first rule that yields items wins.
func faqRules() []Rule[model.FAQ] {
	return []Rule[model.FAQ]{
		newRule(RuleFAQContainer, extractContainerFAQs),
		newRule(RuleFAQSubheadings, extractSubheadingFAQs),
	}
}

func faqKey(f model.FAQ) string {
	return prefixKey(f.Question, maxQuestionLength)
}

// extractFAQs prefers an explicit FAQ container and falls back to the subheading scan.
// Only items whose answer has at least minFAQAnswerWords words are returned.
func extractFAQs(doc *Document, logger *slog.Logger) []model.FAQ {
	for _, rule := range faqRules() {
		if items := collect(doc, []Rule[model.FAQ]{rule}, faqKey, logger); len(items) > 0 {
			return items
		}
	}
	return []model.FAQ{}
}

// faqContainers returns elements marked as FAQ sections by id, class or
// FAQPage microdata. Page-level elements and wrappers of the main content are
// never containers, since themes put flags such as "has-faq-widget" on them.
func faqContainers(doc *Document) *goquery.Selection {
	return doc.Find("[id], [class], [itemtype]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		switch goquery.NodeName(s) {
		case "html", "body", "main":
			return false
		}
		if s.Find("main, article, [role='main']").Length() > 0 {
			return false
		}
		if strings.Contains(strings.ToLower(attr(s, "id")), "faq") ||
			strings.Contains(strings.ToLower(attr(s, "class")), "faq") {
			return true
		}
		return strings.Contains(strings.ToLower(attr(s, "itemtype")), "faqpage")
	})
}

func extractContainerFAQs(doc *Document) []model.FAQ {
	var out []model.FAQ
	faqContainers(doc).Each(func(_ int, container *goquery.Selection) {
		container.Find(containerQuestionSelector).Each(func(_ int, q *goquery.Selection) {
			question := textOf(q)
			if !validQuestionLength(question) {
				return
			}
			if isHeading(q) && !isQuestion(question) {
				return
			}
			if item, ok := newFAQ(question, containerAnswer(q)); ok {
				out = append(out, item)
			}
		})
	})
	return out
}

// isHeading reports whether q is an h2-h6 heading. Definition terms, summaries
// and microdata names are questions by markup and need no question wording.
func isHeading(q *goquery.Selection) bool {
	if attr(q, "itemprop") == "name" {
		return false
	}
	switch goquery.NodeName(q) {
	case "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

func extractSubheadingFAQs(doc *Document) []model.FAQ {
	var out []model.FAQ
	doc.Find(subheadingSelector).Each(func(_ int, q *goquery.Selection) {
		question := textOf(q)
		if !validQuestionLength(question) || !isQuestion(question) {
			return
		}
		if item, ok := newFAQ(question, siblingAnswer(q)); ok {
			out = append(out, item)
		}
	})
	return out
}

func isQuestion(s string) bool {
	return strings.Contains(s, "?") || interrogativePattern.MatchString(s)
}

func validQuestionLength(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > minQuestionLength && n <= maxQuestionLength
}

// containerAnswer finds the answer belonging to a question element inside an FAQ container.
func containerAnswer(q *goquery.Selection) string {
	switch goquery.NodeName(q) {
	case "dt":
		return textOf(q.NextFiltered("dd"))
	case "summary":
		details := q.Closest("details").Clone()
		details.Find("summary").Remove()
		return textOf(details)
	}

	if attr(q, "itemprop") == "name" {
		if answer := textOf(q.Closest("[itemtype*='Question']").Find("[itemprop='acceptedAnswer']").First()); answer != "" {
			return answer
		}
	}
	return siblingAnswer(q)
}

// siblingAnswer returns the text of the next sibling block. Accordion markup
// often wraps the question in its own element, so the parent's sibling is
// tried when the question has none.
func siblingAnswer(q *goquery.Selection) string {
	if next := q.Next(); next.Length() > 0 {
		return textOf(next)
	}
	return textOf(q.Parent().Next())
}

func newFAQ(question, answer string) (model.FAQ, bool) {
	words := countWords(answer)
	if words < minFAQAnswerWords {
		return model.FAQ{}, false
	}
	return model.FAQ{
		Question:    truncate(question, model.MaxSnippetLength),
		Answer:      truncate(answer, model.MaxSnippetLength),
		AnswerWords: words,
	}, true
}

func averageAnswerWords(faqs []model.FAQ) float64 {
	if len(faqs) == 0 {
		return 0
	}
	total := 0
	for _, f := range faqs {
		total += f.AnswerWords
	}
	return float64(total) / float64(len(faqs))
}
