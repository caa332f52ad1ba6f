package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// minAltLength is the alt text length an image must exceed to count as described.
const minAltLength = 5

// lazySourceAttributes are checked in order before src.
var lazySourceAttributes = []string{
	"data-src",
	"data-lazy-src",
	"data-original",
	"data-srcset",
	"src",
}

var placeholderPattern = regexp.MustCompile(`(?i)placeholder|spacer\.(?:gif|png)|blank\.(?:gif|png)|transparent\.(?:gif|png)|pixel\.(?:gif|png)|1x1\.(?:gif|png)`)

type imageCounts struct {
	total   int
	withAlt int
}

func countImages(doc *Document) imageCounts {
	var ic imageCounts
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if effectiveSource(s) == "" {
			return
		}
		ic.total++
		if utf8.RuneCountInString(attr(s, "alt")) > minAltLength {
			ic.withAlt++
		}
	})
	return ic
}

// effectiveSource returns the first usable image URL, skipping inline data
// URIs and placeholder images.
func effectiveSource(s *goquery.Selection) string {
	for _, name := range lazySourceAttributes {
		v := attr(s, name)
		if name == "data-srcset" {
			v = firstSrcsetURL(v)
		}
		if v == "" || isPlaceholderSource(v) {
			continue
		}
		return v
	}
	return ""
}

func isPlaceholderSource(src string) bool {
	return strings.HasPrefix(strings.ToLower(src), "data:") || placeholderPattern.MatchString(src)
}

func firstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
