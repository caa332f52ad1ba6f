package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/contentscale/internal/model"
)

// minCaseStudyLength filters trivial mentions such as a bare "case study" link.
const minCaseStudyLength = 50

// Case study rule names.
const (
	RuleCaseStudyPhrase  = "case-study-phrase"
	RuleQuantifiedResult = "quantified-result"
)

var (
	caseStudyPhrasePattern = regexp.MustCompile(`(?i)\b(?:case stud(?:y|ies)|client success|customer stor(?:y|ies)|success stor(?:y|ies))\b[^.!?]{50,300}`)

	quantifiedResultPattern = regexp.MustCompile(`(?i)\b(?:increas(?:e|ed|es|ing)|grew|growth|boost(?:ed)?|reduc(?:ed|tion)|improv(?:ed|ement)|saved|cut|doubled|tripled|roi|revenue|conversions?)\b[^.!?]{0,100}?(?:\b\d+(?:\.\d+)?\s?%|\b\d+(?:\.\d+)?x\b|\b\d+(?:\.\d+)?\s?times\b)`)
)

func caseStudyRules() []Rule[model.CaseStudy] {
	return []Rule[model.CaseStudy]{
		newRule(RuleCaseStudyPhrase, extractCaseStudyPhrases),
		newRule(RuleQuantifiedResult, extractQuantifiedResults),
	}
}

func caseStudyKey(c model.CaseStudy) string {
	return prefixKey(c.Text, dedupPrefixLength)
}

func extractCaseStudyPhrases(doc *Document) []model.CaseStudy {
	var out []model.CaseStudy
	for _, m := range caseStudyPhrasePattern.FindAllString(doc.Text(), -1) {
		text := strings.TrimSpace(m)
		if utf8.RuneCountInString(text) < minCaseStudyLength {
			continue
		}
		out = append(out, model.CaseStudy{Text: truncate(text, model.MaxSnippetLength)})
	}
	return out
}

// extractQuantifiedResults keeps the sentence around each results phrase that
// has a percentage or multiplier nearby.
func extractQuantifiedResults(doc *Document) []model.CaseStudy {
	text := doc.Text()
	var out []model.CaseStudy
	for _, loc := range quantifiedResultPattern.FindAllStringIndex(text, -1) {
		sentence := enclosingSentence(text, loc[0], loc[1])
		if utf8.RuneCountInString(sentence) < minCaseStudyLength {
			continue
		}
		out = append(out, model.CaseStudy{Text: truncate(sentence, model.MaxSnippetLength)})
	}
	return out
}

// enclosingSentence widens text[start:end] to the surrounding sentence terminators.
func enclosingSentence(text string, start, end int) string {
	from := strings.LastIndexAny(text[:start], ".!?")
	if from < 0 {
		from = 0
	} else {
		from++
	}

	to := strings.IndexAny(text[end:], ".!?")
	if to < 0 {
		to = len(text)
	} else {
		to = end + to + 1
	}
	return strings.TrimSpace(text[from:to])
}
