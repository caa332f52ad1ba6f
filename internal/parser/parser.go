package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/contentscale/internal/model"
)

// Parser extracts counts, snippets and metadata from rendered HTML.
// A Parser holds only configuration and is safe for concurrent use.
type Parser struct {
	logger         *slog.Logger
	now            func() time.Time
	detectLanguage bool
	extractArticle bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for skipped rules and blocks.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithClock sets the clock used for the parse timestamp and the recent-year window.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		p.now = now
	}
}

// WithLanguageDetection enables detection of the body text language.
func WithLanguageDetection(enabled bool) Option {
	return func(p *Parser) {
		p.detectLanguage = enabled
	}
}

// WithArticleExtraction enables byline, site name and publish date extraction.
func WithArticleExtraction(enabled bool) Option {
	return func(p *Parser) {
		p.extractArticle = enabled
	}
}

// New creates a Parser. Article extraction is on and language detection off by default.
func New(opts ...Option) *Parser {
	p := &Parser{
		logger:         slog.Default(),
		now:            time.Now,
		extractArticle: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Parse parses html with a default Parser.
func Parse(html, url string) *model.ParserOutput {
	return defaultParser.Parse(html, url)
}

// Parse extracts counts, snippets and metadata from html. url is used to
// resolve and classify links. Parse never panics: empty input and markup that
// cannot be processed yield a zeroed output with Success false.
//
// The output depends only on html, url and the parser clock. The clock's year
// sets the recent-year window behind YearMentions and DataRecency, so the same
// page can count differently once the year changes; pin it with WithClock.
func (p *Parser) Parse(html, url string) (out *model.ParserOutput) {
	now := p.now()
	parsedAt := now.UTC()

	if strings.TrimSpace(html) == "" {
		return model.NewFailedOutput(url, ErrEmptyDocument.Error(), parsedAt)
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("parse failed", "url", url, "panic", r)
			out = model.NewFailedOutput(url, fmt.Sprintf("%s: %v", ErrUnparsable, r), parsedAt)
		}
	}()

	doc, err := newDocument(html, url)
	if err != nil {
		p.logger.Warn("parse failed", "url", url, "error", err)
		return model.NewFailedOutput(url, fmt.Sprintf("%s: %v", ErrUnparsable, err), parsedAt)
	}

	out = &model.ParserOutput{
		Success: true,
		URL:     url,
	}
	p.fill(doc, now.Year(), out)

	out.Metadata = p.metadata(doc, html, url, out.Metadata)
	out.Metadata.ParsedAt = parsedAt
	return out
}

func (p *Parser) fill(doc *Document, year int, out *model.ParserOutput) {
	c := &out.Counts
	text := doc.Text()

	c.WordCount = countWords(text)

	rs := measureReadability(text)
	c.FleschScore = rs.flesch
	c.SentenceCount = rs.sentences
	c.AvgSentenceLength = rs.avgSentenceLength
	c.LongSentences = rs.longSentences

	st := measureStructure(doc)
	c.H1Count, c.H2Count, c.H3Count = st.headings[0], st.headings[1], st.headings[2]
	c.H4Count, c.H5Count, c.H6Count = st.headings[3], st.headings[4], st.headings[5]
	c.HeadingHierarchy = st.hierarchy()
	c.ListCount = st.lists
	c.ParagraphCount = st.paragraphs
	c.AvgParagraphLength = st.avgParagraphLength
	c.LongParagraphs = st.longParagraphs
	c.Tables = st.tables
	c.ComparisonTables = st.comparisonTables
	c.MobileResponsive = st.mobileResponsive

	ic := countImages(doc)
	c.Images = ic.total
	c.ImagesWithAlt = ic.withAlt

	lc := countLinks(doc)
	c.InternalLinks = lc.internal
	c.ExternalLinks = lc.external

	schema := extractSchema(doc, p.logger)
	c.SchemaTypes = len(schema.types)
	c.HasSchema = len(schema.types) > 0
	c.FAQSchema = schema.hasType(faqPageType)

	quotes := collect(doc, quoteRules(), quoteKey, p.logger)
	stats := extractStatistics(doc, p.logger)
	caseStudies := collect(doc, caseStudyRules(), caseStudyKey, p.logger)
	faqs := extractFAQs(doc, p.logger)
	citations := collect(doc, citationRules(), citationKey, p.logger)

	c.ExpertQuotes = len(quotes)
	c.Statistics = len(stats)
	c.CaseStudies = len(caseStudies)
	c.FAQCount = len(faqs)
	c.FAQAvgWords = round1(averageAnswerWords(faqs))
	c.SourceCitations = len(citations)

	measureSignals(doc, year, c)

	out.Snippets = model.Snippets{
		ExpertQuotes:    capItems(quotes, model.MaxExpertQuoteSnippets),
		Statistics:      capItems(stats, model.MaxStatisticSnippets),
		CaseStudies:     capItems(caseStudies, model.MaxCaseStudySnippets),
		FAQs:            capItems(faqs, model.MaxFAQSnippets),
		SourceCitations: capItems(citations, model.MaxSourceCitationSnippets),
	}

	out.Metadata = extractMetadata(doc, st)
	out.Metadata.SchemaTypeNames = schema.types
	c.MetaTitleLength = runeLen(out.Metadata.Title)
	c.MetaDescLength = runeLen(out.Metadata.Description)
}

// metadata applies the optional enrichment steps. Each tolerates failure.
func (p *Parser) metadata(doc *Document, html, url string, md model.Metadata) model.Metadata {
	if p.detectLanguage {
		md.Language = detectLanguage(doc.Text())
	}
	if p.extractArticle && doc.base != nil {
		if err := safeEnrich(html, url, &md); err != nil {
			p.logger.Debug("article extraction skipped", "url", url, "error", err)
		}
	}
	return md
}

func safeEnrich(html, url string, md *model.Metadata) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("article extraction panicked: %v", r)
		}
	}()
	return enrichFromArticle(html, url, md)
}
