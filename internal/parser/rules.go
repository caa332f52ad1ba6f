package parser

import (
	"fmt"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// dedupPrefixLength is the number of runes compared when deduplicating quotes,
// statistics and case studies.
const dedupPrefixLength = 50

// Rule is one named extraction rule of a family.
// Extract must only read the document.
type Rule[T any] interface {
	Name() string
	Extract(doc *Document) []T
}

type ruleFunc[T any] struct {
	name string
	fn   func(doc *Document) []T
}

func newRule[T any](name string, fn func(doc *Document) []T) Rule[T] {
	return ruleFunc[T]{name: name, fn: fn}
}

func (r ruleFunc[T]) Name() string { return r.name }

func (r ruleFunc[T]) Extract(doc *Document) []T { return r.fn(doc) }

// collect runs the rules in order and keeps the first item for each dedup key.
// A rule that panics contributes nothing; the other rules still run.
// Items with an empty key are dropped.
func collect[T any](doc *Document, rules []Rule[T], key func(T) string, logger *slog.Logger) []T {
	seen := make(map[string]bool)
	out := make([]T, 0)

	for _, rule := range rules {
		items, err := safeExtract(doc, rule)
		if err != nil {
			logger.Debug("extraction rule failed", "rule", rule.Name(), "error", err)
			continue
		}
		for _, item := range items {
			k := key(item)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, item)
		}
	}
	return out
}

func safeExtract[T any](doc *Document, rule Rule[T]) (items []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("rule %s panicked: %v", rule.Name(), r)
		}
	}()
	return rule.Extract(doc), nil
}

// prefixKey normalizes s (NFKC, case folded, whitespace collapsed) and returns
// its first n runes.
func prefixKey(s string, n int) string {
	s = head(s, 4*n)
	s = collapseWhitespace(norm.NFKC.String(s))
	s = cases.Fold().String(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
