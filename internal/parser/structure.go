package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/contentscale/internal/model"
)

// longParagraphWords is the length above which a paragraph counts as long.
const longParagraphWords = 150

var comparisonPattern = regexp.MustCompile(`(?i)\b(?:vs|versus|compare|comparison)\b`)

type structureStats struct {
	headings           [6]int
	lists              int
	paragraphs         int
	avgParagraphLength float64
	longParagraphs     int
	tables             int
	comparisonTables   int
	mobileResponsive   bool
}

func (s structureStats) hierarchy() bool {
	return s.headings[0] == 1 && s.headings[1] > 0
}

func measureStructure(doc *Document) structureStats {
	var st structureStats

	for level := 1; level <= 6; level++ {
		st.headings[level-1] = doc.Find("h" + strconv.Itoa(level)).Length()
	}

	st.lists = doc.Find("ul, ol").Length()

	totalWords := 0
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		n := countWords(textOf(s))
		if n == 0 {
			return
		}
		st.paragraphs++
		totalWords += n
		if n > longParagraphWords {
			st.longParagraphs++
		}
	})
	if st.paragraphs > 0 {
		st.avgParagraphLength = round1(float64(totalWords) / float64(st.paragraphs))
	}

	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		if s.Find("th, thead").Length() > 0 {
			st.tables++
		}
		if comparisonPattern.MatchString(textOf(s)) {
			st.comparisonTables++
		}
	})

	st.mobileResponsive = hasDeviceWidthViewport(doc)
	return st
}

func hasDeviceWidthViewport(doc *Document) bool {
	found := false
	metaNamed(doc, "viewport").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content := strings.ToLower(strings.ReplaceAll(attr(s, "content"), " ", ""))
		found = strings.Contains(content, "width=device-width")
		return !found
	})
	return found
}

// metaNamed selects <meta name=...> elements, matching the name case-insensitively.
func metaNamed(doc *Document, name string) *goquery.Selection {
	return doc.Find("meta[name]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(attr(s, "name"), name)
	})
}

// metaProperty selects <meta property=...> elements, matching case-insensitively.
func metaProperty(doc *Document, property string) *goquery.Selection {
	return doc.Find("meta[property]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(attr(s, "property"), property)
	})
}

// extractMetadata reads the head tags and the first h1.
func extractMetadata(doc *Document, st structureStats) model.Metadata {
	title := doc.Find("head title").First()
	if title.Length() == 0 {
		title = doc.Find("title").First()
	}

	md := model.Metadata{
		Title:            collapseWhitespace(title.Text()),
		Description:      collapseWhitespace(attr(metaNamed(doc, "description").First(), "content")),
		H1Text:           textOf(doc.Find("h1").First()),
		HeadingHierarchy: st.hierarchy(),
		MobileResponsive: st.mobileResponsive,
		OGTitle:          collapseWhitespace(attr(metaProperty(doc, "og:title").First(), "content")),
		OGDescription:    collapseWhitespace(attr(metaProperty(doc, "og:description").First(), "content")),
		TwitterCard:      attr(metaNamed(doc, "twitter:card").First(), "content"),
	}

	canonical := doc.Find("link[rel][href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(attr(s, "rel"), "canonical")
	}).First()
	if u := doc.resolve(attr(canonical, "href")); u != nil {
		md.CanonicalURL = u.String()
		md.HasCanonical = true
	}
	return md
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
