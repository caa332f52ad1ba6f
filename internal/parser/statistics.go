package parser

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/nao1215/contentscale/internal/model"
)

// statisticContextRadius is how many runes of context are kept on each side of a figure.
const statisticContextRadius = 100

// Statistic rule names.
const (
	RulePercentage     = "percentage"
	RuleLargeNumber    = "large-number"
	RuleCitationPhrase = "citation-phrase"
)

var (
	percentagePattern  = regexp.MustCompile(`(?i)\b\d+(?:,\d{3})*(?:\.\d+)?\s?(?:%|percent\b)`)
	largeNumberPattern = regexp.MustCompile(`(?i)\b\d{1,3}(?:,\d{3})+\b|\b\d+(?:\.\d+)?\s*(?:million|billion|thousand)\b`)
	citationPattern    = regexp.MustCompile(`(?i)\b(?:according to|source:|stud(?:y|ies)\b|research(?:ers?)?\b|surveys?\b)`)
	figurePattern      = regexp.MustCompile(`\b\d+(?:[.,]\d+)*`)
	bareYearPattern    = regexp.MustCompile(`^(?:19|20)\d{2}$`)
)

// citationLookahead and citationLookbehind bound the search for a figure around a citation phrase.
const (
	citationLookahead  = 150
	citationLookbehind = 100
)

// statCandidate carries the byte offset of the figure so candidates from
// different rules can be ordered by position in the text.
type statCandidate struct {
	stat   model.Statistic
	offset int
	key    string
}

func statisticRules() []Rule[statCandidate] {
	return []Rule[statCandidate]{
		newRule(RulePercentage, func(doc *Document) []statCandidate {
			return matchFigures(doc.Text(), percentagePattern)
		}),
		newRule(RuleLargeNumber, func(doc *Document) []statCandidate {
			return matchFigures(doc.Text(), largeNumberPattern)
		}),
		newRule(RuleCitationPhrase, extractCitedFigures),
	}
}

func statisticKey(c statCandidate) string {
	return c.key
}

// extractStatistics runs the statistic rules and orders the result by position.
func extractStatistics(doc *Document, logger *slog.Logger) []model.Statistic {
	candidates := collect(doc, statisticRules(), statisticKey, logger)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].offset < candidates[j].offset
	})

	stats := make([]model.Statistic, 0, len(candidates))
	for _, c := range candidates {
		stats = append(stats, c.stat)
	}
	return stats
}

func matchFigures(text string, pattern *regexp.Regexp) []statCandidate {
	var out []statCandidate
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		out = append(out, newStatCandidate(text, loc[0], loc[1]))
	}
	return out
}

// extractCitedFigures finds citation phrases and the figure they cite: the
// first citable figure after the phrase, or failing that the last one before it.
func extractCitedFigures(doc *Document) []statCandidate {
	text := doc.Text()
	var out []statCandidate
	for _, loc := range citationPattern.FindAllStringIndex(text, -1) {
		after := loc[1]
		end := min(len(text), after+citationLookahead)
		if m := citableFigures(text[after:end]); len(m) > 0 {
			out = append(out, newStatCandidate(text, after+m[0][0], after+m[0][1]))
			continue
		}

		start := max(0, loc[0]-citationLookbehind)
		matches := citableFigures(text[start:loc[0]])
		if len(matches) == 0 {
			continue
		}
		m := matches[len(matches)-1]
		out = append(out, newStatCandidate(text, start+m[0], start+m[1]))
	}
	return out
}

// citableFigures returns the figures in s that can be a statistic. Small
// integers such as step numbers and bare years are not.
func citableFigures(s string) [][]int {
	var out [][]int
	for _, m := range figurePattern.FindAllStringIndex(s, -1) {
		if isCitableFigure(s[m[0]:m[1]]) {
			out = append(out, m)
		}
	}
	return out
}

func isCitableFigure(v string) bool {
	if strings.ContainsAny(v, ".,") {
		return true
	}
	return len(v) > 2 && !bareYearPattern.MatchString(v)
}

func newStatCandidate(text string, start, end int) statCandidate {
	context := truncate(runeWindow(text, start, end, statisticContextRadius), model.MaxSnippetLength)
	return statCandidate{
		stat: model.Statistic{
			Value:     text[start:end],
			Context:   context,
			HasSource: citationPattern.MatchString(context),
		},
		offset: start,
		key:    prefixKey(text[start:], dedupPrefixLength),
	}
}
