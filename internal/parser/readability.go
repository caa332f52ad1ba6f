package parser

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// longSentenceWords is the length above which a sentence counts as long.
const longSentenceWords = 25

var (
	sentenceSplitPattern = regexp.MustCompile(`[.!?]+`)
	silentSuffixPattern  = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	vowelGroupPattern    = regexp.MustCompile(`[aeiouy]{1,2}`)
)

type readabilityStats struct {
	flesch            float64
	sentences         int
	avgSentenceLength float64
	longSentences     int
}

// measureReadability computes Flesch reading ease, clamped to [0,100], and
// sentence statistics. Text without words scores 0.
func measureReadability(text string) readabilityStats {
	var rs readabilityStats

	words := strings.Fields(text)
	if len(words) == 0 {
		return rs
	}

	sentenceWords := 0
	for _, fragment := range sentenceSplitPattern.Split(text, -1) {
		n := countWords(fragment)
		if n == 0 {
			continue
		}
		rs.sentences++
		sentenceWords += n
		if n > longSentenceWords {
			rs.longSentences++
		}
	}
	if rs.sentences > 0 {
		rs.avgSentenceLength = round1(float64(sentenceWords) / float64(rs.sentences))
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	score := 206.835 -
		1.015*(float64(len(words))/float64(max(rs.sentences, 1))) -
		84.6*(float64(syllables)/float64(len(words)))
	rs.flesch = round1(clamp(score, 0, 100))
	return rs
}

// countSyllables estimates syllables by counting vowel groups after
// stripping common silent endings.
func countSyllables(word string) int {
	word = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)

	if len([]rune(word)) <= 3 {
		return 1
	}

	word = silentSuffixPattern.ReplaceAllString(word, "")
	word = strings.TrimPrefix(word, "y")

	if n := len(vowelGroupPattern.FindAllString(word, -1)); n > 0 {
		return n
	}
	return 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
