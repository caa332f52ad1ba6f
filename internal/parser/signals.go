package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/contentscale/internal/model"
)

// recentYears is how many calendar years, counting the current one, are "recent".
const recentYears = 3

var (
	examplePattern       = regexp.MustCompile(`(?i)(?:for example|for instance|such as|e\.g\.|like this|here's an example)[^.]{10,200}`)
	stepPattern          = regexp.MustCompile(`(?i)step\s*\d|^\d+\.|\bfirst\b|\bsecond\b|\bthird\b|\bfinally\b`)
	ctaPattern           = regexp.MustCompile(`(?i)click here|download|get started|sign up|try now|learn more|contact us|buy now`)
	dataCitationPattern  = regexp.MustCompile(`(?i)\(([^)]+(?:20\d{2}|study|research|source))\)`)
	factSourcePattern    = regexp.MustCompile(`(?i)\.gov|\.edu|research|study|journal`)
	authorityLinkPattern = regexp.MustCompile(`(?i)\.gov|\.edu|\.org|research|institute|university`)
	credentialPattern    = regexp.MustCompile(`(?i)\b(?:certified|phd|mba|master|bachelor|degree|expert|specialist|consultant)\b`)
)

var trendingTerms = []string{"AI", "ChatGPT", "machine learning", "automation", "cloud", "sustainability"}

var lsiTerms = []string{"SEO", "optimization", "ranking", "content", "keywords", "traffic", "search engine", "Google", "website", "page"}

var (
	trendingPatterns = termPatterns(trendingTerms)
	lsiPatterns      = termPatterns(lsiTerms)
)

const (
	ctaSelector             = "button, a.button, .cta, [class*='cta']"
	toolLinkSelector        = "a[href*='tool'], a[href*='resource'], a[href*='download']"
	testimonialSelector     = ".testimonial, .review, [class*='testimonial'], [class*='review']"
	videoSelector           = "video, iframe[src*='youtube'], iframe[src*='vimeo']"
	publicationDateSelector = "time[datetime], .published, .date, [class*='date'], meta[property='article:published_time']"
	lastModifiedSelector    = "meta[property='article:modified_time'], .updated, .modified"
	authorBioSelector       = ".author-bio, .author, [class*='author'], [rel='author']"
	tocSelector             = "[class*='toc'], [id*='toc'], .table-of-contents, #table-of-contents"
)

// minAuthorBioLength is the text length an author block needs to count as a bio.
const minAuthorBioLength = 50

func termPatterns(terms []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(t)+`\b`))
	}
	return out
}

// measureSignals fills the supplemental counters. They are reported but not scored.
func measureSignals(doc *Document, year int, c *model.Counts) {
	text := doc.Text()

	c.Examples = len(examplePattern.FindAllString(text, -1))

	doc.Find("ol li, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if stepPattern.MatchString(textOf(s)) {
			c.StepByStep++
		}
	})

	c.CTAs = countCTAs(doc, text)
	c.ToolsResources = doc.Find(toolLinkSelector).Length()
	c.DataCitations = len(dataCitationPattern.FindAllString(text, -1))
	c.FactSources = countLinksMatching(doc, factSourcePattern)
	c.AuthorityLinks = countLinksMatching(doc, authorityLinkPattern)
	c.Testimonials = doc.Find(testimonialSelector).Length()
	c.Credentials = countDistinct(credentialPattern.FindAllString(text, -1))

	years := yearPattern(year)
	c.YearMentions = len(years.FindAllString(text, -1))
	c.DataRecency = len(dataRecencyPattern(year).FindAllString(text, -1))

	c.TrendingTopics = countTerms(text, trendingPatterns)
	c.LSIKeywords = countTerms(text, lsiPatterns)
	c.Videos = doc.Find(videoSelector).Length()

	c.PublicationDate = doc.Find(publicationDateSelector).Length() > 0
	c.LastModified = doc.Find(lastModifiedSelector).Length() > 0
	c.TableOfContents = doc.Find(tocSelector).Length() > 0

	doc.Find(authorBioSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		c.AuthorBio = runeLen(textOf(s)) > minAuthorBioLength
		return !c.AuthorBio
	})
}

// countCTAs counts distinct calls to action from buttons and body text.
func countCTAs(doc *Document, text string) int {
	var found []string
	doc.Find(ctaSelector).Each(func(_ int, s *goquery.Selection) {
		if t := textOf(s); t != "" {
			found = append(found, t)
		}
	})
	found = append(found, ctaPattern.FindAllString(text, -1)...)
	return countDistinct(found)
}

func countLinksMatching(doc *Document, pattern *regexp.Regexp) int {
	n := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if pattern.MatchString(attr(s, "href")) {
			n++
		}
	})
	return n
}

func countTerms(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

func countDistinct(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}
	delete(seen, "")
	return len(seen)
}

// recentYearAlternation returns "2024|2025|2026" for year 2026.
func recentYearAlternation(year int) string {
	parts := make([]string, 0, recentYears)
	for y := year - recentYears + 1; y <= year; y++ {
		parts = append(parts, fmt.Sprintf("%d", y))
	}
	return strings.Join(parts, "|")
}

func yearPattern(year int) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + recentYearAlternation(year) + `)\b`)
}

func dataRecencyPattern(year int) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + recentYearAlternation(year) + `)\b[^.]{0,100}(?:data|study|research|report)`)
}
