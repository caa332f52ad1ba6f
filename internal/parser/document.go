package parser

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed page shared by all extraction rules of one Parse call.
// Rules must treat it as read-only.
type Document struct {
	dom  *goquery.Document
	base *url.URL
	host string
	text string
}

// skippedTextElements never contribute to visible text.
var skippedTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// inlineElements do not separate words in visible text.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "i": true, "kbd": true,
	"mark": true, "q": true, "s": true, "samp": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true, "var": true,
}

func newDocument(rawHTML, pageURL string) (*Document, error) {
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	doc := &Document{dom: dom}
	if u, err := url.Parse(strings.TrimSpace(pageURL)); err == nil && u.Host != "" {
		doc.base = u
		doc.host = normalizeHost(u.Hostname())
	}

	body := dom.Find("body")
	if body.Length() == 0 {
		body = dom.Selection
	}
	doc.text = textOf(body)
	return doc, nil
}

// Find runs a CSS selector against the whole document.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.dom.Find(selector)
}

// Text returns the visible body text with whitespace collapsed.
func (d *Document) Text() string {
	return d.text
}

// resolve resolves href against the page URL.
// It returns nil for hrefs that cannot be resolved to an absolute URL.
func (d *Document) resolve(href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") {
		return nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if d.base != nil {
		u = d.base.ResolveReference(u)
	}
	if u.Host == "" {
		return nil
	}
	return u
}

// isInternal reports whether u points at the page's own host.
func (d *Document) isInternal(u *url.URL) bool {
	return d.host != "" && normalizeHost(u.Hostname()) == d.host
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// textOf returns the visible text of a selection. Block elements separate
// words; whitespace runs collapse to a single space.
func textOf(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		writeText(&b, n)
	}
	return collapseWhitespace(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedTextElements[n.Data] {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	block := n.Type == html.ElementNode && !inlineElements[n.Data]
	if block {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	if block {
		b.WriteByte(' ')
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// head returns the first n runes of s without copying the rest.
func head(s string, n int) string {
	i := 0
	for count := 0; i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// runeWindow returns text[start:end] widened by up to radius runes on each side.
func runeWindow(text string, start, end, radius int) string {
	for i := 0; i < radius && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	for i := 0; i < radius && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return strings.TrimSpace(text[start:end])
}

// attr returns the trimmed value of an attribute, or "".
func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

// capItems returns at most n items. The result is never nil.
func capItems[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
