package parser

import (
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/contentscale/internal/model"
)

// Anchor text bounds for a link to count as a source citation.
const (
	minCitationTextLength = 5
	maxCitationTextLength = 200
)

// RuleExternalAnchor is the source citation rule name.
const RuleExternalAnchor = "external-anchor"

// linkCounts classifies every anchor with a resolvable href.
type linkCounts struct {
	internal int
	external int
}

func countLinks(doc *Document) linkCounts {
	var lc linkCounts
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		u := doc.resolve(attr(s, "href"))
		if u == nil {
			return
		}
		if doc.isInternal(u) {
			lc.internal++
		} else {
			lc.external++
		}
	})
	return lc
}

func citationRules() []Rule[model.Citation] {
	return []Rule[model.Citation]{
		newRule(RuleExternalAnchor, extractExternalCitations),
	}
}

func citationKey(c model.Citation) string {
	return c.URL
}

// extractExternalCitations returns outbound http(s) links with descriptive anchor text.
func extractExternalCitations(doc *Document) []model.Citation {
	var out []model.Citation
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		u := doc.resolve(attr(s, "href"))
		if u == nil || doc.isInternal(u) || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}

		text := textOf(s)
		n := utf8.RuneCountInString(text)
		if n <= minCitationTextLength || n >= maxCitationTextLength {
			return
		}

		u.Fragment = ""
		u.RawFragment = ""
		out = append(out, model.Citation{URL: u.String(), Text: text})
	})
	return out
}
