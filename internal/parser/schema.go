package parser

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const faqPageType = "FAQPage"

// schemaInfo is what the JSON-LD blocks of a page declare.
type schemaInfo struct {
	types   []string // sorted distinct @type values
	blocks  int      // blocks that decoded
	skipped int      // blocks that failed to decode
}

func (s schemaInfo) hasType(name string) bool {
	for _, t := range s.types {
		if t == name {
			return true
		}
	}
	return false
}

// extractSchema decodes each application/ld+json block on its own. A block
// that fails to decode is skipped without affecting the others.
func extractSchema(doc *Document, logger *slog.Logger) schemaInfo {
	var info schemaInfo
	seen := make(map[string]bool)

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if !strings.EqualFold(attr(s, "type"), "application/ld+json") {
			return
		}

		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			info.skipped++
			logger.Debug("skipping malformed JSON-LD block", "error", err)
			return
		}
		info.blocks++

		for _, t := range schemaTypes(v) {
			if !seen[t] {
				seen[t] = true
				info.types = append(info.types, t)
			}
		}
	})

	sort.Strings(info.types)
	if info.types == nil {
		info.types = []string{}
	}
	return info
}

// schemaTypes returns the @type values of a decoded block: the top-level
// object (or each element of a top-level array) and every @graph item.
func schemaTypes(v any) []string {
	var out []string
	switch node := v.(type) {
	case []any:
		for _, item := range node {
			out = append(out, schemaTypes(item)...)
		}
	case map[string]any:
		out = append(out, typeValues(node["@type"])...)
		if graph, ok := node["@graph"].([]any); ok {
			for _, item := range graph {
				out = append(out, schemaTypes(item)...)
			}
		}
	}
	return out
}

func typeValues(v any) []string {
	switch t := v.(type) {
	case string:
		if name := normalizeSchemaType(t); name != "" {
			return []string{name}
		}
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				if name := normalizeSchemaType(s); name != "" {
					out = append(out, name)
				}
			}
		}
		return out
	}
	return nil
}

// normalizeSchemaType strips a vocabulary prefix such as "https://schema.org/".
func normalizeSchemaType(t string) string {
	t = strings.TrimSpace(t)
	if i := strings.LastIndexAny(t, "/:#"); i >= 0 {
		t = t[i+1:]
	}
	return t
}
