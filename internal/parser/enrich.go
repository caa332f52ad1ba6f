package parser

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/nao1215/contentscale/internal/model"
)

// languageSampleRunes bounds the text handed to the language detector.
const languageSampleRunes = 2000

// detectableLanguages are the languages the detector distinguishes between.
var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Japanese,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithLowAccuracyMode().
			Build()
	})
	return detector
}

// detectLanguage returns the ISO 639-1 code of the text's language, or "".
func detectLanguage(text string) string {
	sample := head(text, languageSampleRunes)
	if strings.TrimSpace(sample) == "" {
		return ""
	}
	lang, ok := languageDetector().DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// enrichFromArticle fills byline, site name, excerpt and published time from
// the main-article extraction. Extraction failures leave md unchanged.
func enrichFromArticle(rawHTML, pageURL string, md *model.Metadata) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return err
	}

	rp := readability.NewParser()
	article, err := rp.Parse(strings.NewReader(rawHTML), u)
	if err != nil {
		return err
	}

	md.Author = collapseWhitespace(article.Byline)
	md.SiteName = collapseWhitespace(article.SiteName)
	md.Excerpt = truncate(collapseWhitespace(article.Excerpt), model.MaxSnippetLength)
	if article.PublishedTime != nil {
		t := article.PublishedTime.UTC()
		md.PublishedTime = &t
	}
	return nil
}
