package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/contentscale/internal/model"
)

const (
	minQuoteLength       = 20
	minStyledQuoteLength = 30
	maxAttributionLength = 120
)

// Quote rule names.
const (
	RuleBlockquoteCite        = "blockquote-cite"
	RuleInlineDashAttribution = "inline-dash-attribution"
	RuleParagraphAttribution  = "paragraph-attribution"
	RuleTestimonialStyled     = "testimonial-styled"
)

var (
	// "Quote of at least 30 characters" ... - Firstname Lastname
	inlineQuotePattern = regexp.MustCompile(`["“]([^"“”]{30,})["”][\s\S]{0,150}?[-–—]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)

	quotedSpanPattern = regexp.MustCompile(`["“]([^"“”]{20,})["”]`)

	attributionPattern = regexp.MustCompile(`^[-–—~]?\s*([A-Z][\p{L}'.\-]+(?:\s+[A-Z][\p{L}'.\-]+)+)`)
)

const (
	citationSelector    = "cite, footer, figcaption, .attribution, .author, [class*='attribution']"
	styledQuoteSelector = "[class*='testimonial'], [class*='pullquote'], [class*='quote'], [role='blockquote']"
	styledNameSelector  = "cite, .author, .name, [class*='author'], [class*='name']"
)

func quoteRules() []Rule[model.Quote] {
	return []Rule[model.Quote]{
		newRule(RuleBlockquoteCite, extractBlockquoteQuotes),
		newRule(RuleInlineDashAttribution, extractInlineQuotes),
		newRule(RuleParagraphAttribution, extractParagraphQuotes),
		newRule(RuleTestimonialStyled, extractStyledQuotes),
	}
}

func quoteKey(q model.Quote) string {
	return prefixKey(q.Text, dedupPrefixLength)
}

// extractBlockquoteQuotes finds <blockquote> elements with attached citation text.
func extractBlockquoteQuotes(doc *Document) []model.Quote {
	var quotes []model.Quote
	doc.Find("blockquote").Each(func(_ int, s *goquery.Selection) {
		attribution := blockquoteAttribution(s)
		if attribution == "" {
			return
		}

		body := s.Clone()
		body.Find(citationSelector).Remove()
		text := cleanQuote(textOf(body))
		if utf8.RuneCountInString(text) < minQuoteLength {
			return
		}

		quotes = append(quotes, model.Quote{
			Text:        truncate(text, model.MaxSnippetLength),
			Attribution: truncate(attribution, maxAttributionLength),
			Rule:        RuleBlockquoteCite,
		})
	})
	return quotes
}

func blockquoteAttribution(s *goquery.Selection) string {
	if cite := cleanAttribution(textOf(s.Find(citationSelector).First())); cite != "" {
		return cite
	}
	if caption := cleanAttribution(textOf(s.Closest("figure").Find("figcaption").First())); caption != "" {
		return caption
	}
	return attr(s, "cite")
}

// extractInlineQuotes matches "quoted text" followed by a dash and a capitalized name.
func extractInlineQuotes(doc *Document) []model.Quote {
	var quotes []model.Quote
	for _, m := range inlineQuotePattern.FindAllStringSubmatch(doc.Text(), -1) {
		quotes = append(quotes, model.Quote{
			Text:        truncate(strings.TrimSpace(m[1]), model.MaxSnippetLength),
			Attribution: m[2],
			Rule:        RuleInlineDashAttribution,
		})
	}
	return quotes
}

// extractParagraphQuotes finds paragraphs holding a quoted span whose next
// sibling element is a short capitalized attribution line.
func extractParagraphQuotes(doc *Document) []model.Quote {
	var quotes []model.Quote
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		m := quotedSpanPattern.FindStringSubmatch(textOf(s))
		if m == nil {
			return
		}

		next := textOf(s.Next())
		if next == "" || utf8.RuneCountInString(next) > maxAttributionLength {
			return
		}
		am := attributionPattern.FindStringSubmatch(next)
		if am == nil {
			return
		}

		quotes = append(quotes, model.Quote{
			Text:        truncate(strings.TrimSpace(m[1]), model.MaxSnippetLength),
			Attribution: cleanAttribution(next),
			Rule:        RuleParagraphAttribution,
		})
	})
	return quotes
}

// extractStyledQuotes finds elements styled as testimonials or quotes.
// Wrappers that contain other styled quotes are skipped in favour of the inner ones.
func extractStyledQuotes(doc *Document) []model.Quote {
	var quotes []model.Quote
	doc.Find(styledQuoteSelector).Each(func(_ int, s *goquery.Selection) {
		if s.Find(styledQuoteSelector).Length() > 0 {
			return
		}

		attribution := cleanAttribution(textOf(s.Find(styledNameSelector).First()))
		body := s.Clone()
		body.Find(styledNameSelector).Remove()
		text := cleanQuote(textOf(body))
		if utf8.RuneCountInString(text) < minStyledQuoteLength {
			return
		}

		quotes = append(quotes, model.Quote{
			Text:        truncate(text, model.MaxSnippetLength),
			Attribution: truncate(attribution, maxAttributionLength),
			Rule:        RuleTestimonialStyled,
		})
	})
	return quotes
}

func cleanQuote(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\"“”'‘’ "))
}

func cleanAttribution(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-–—~ ")
	return strings.TrimSpace(s)
}
