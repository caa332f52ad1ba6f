package model

import "time"

// Snippet caps. Counts may exceed these; snippets are a bounded sample.
const (
	MaxExpertQuoteSnippets    = 10
	MaxStatisticSnippets      = 15
	MaxCaseStudySnippets      = 5
	MaxFAQSnippets            = 10
	MaxSourceCitationSnippets = 25

	// MaxSnippetLength is the maximum length of any snippet text, in runes.
	MaxSnippetLength = 300
)

// ParserOutput is the result of parsing one rendered page.
// It is created once per scan and never mutated afterwards.
type ParserOutput struct {
	// Success is false for empty input or a parse-wide failure.
	// Counts are zero and snippet slices empty in that case.
	Success bool `json:"success"`

	// URL is the source URL the page was parsed against.
	URL string `json:"url"`

	// Error describes why Success is false. Empty on success.
	Error string `json:"error,omitempty"`

	Counts   Counts   `json:"counts"`
	Snippets Snippets `json:"snippets"`
	Metadata Metadata `json:"metadata"`
}

// NewFailedOutput returns the zeroed output used for empty or unparsable input.
func NewFailedOutput(url, reason string, parsedAt time.Time) *ParserOutput {
	return &ParserOutput{
		Success:  false,
		URL:      url,
		Error:    reason,
		Snippets: NewSnippets(),
		Metadata: Metadata{
			SchemaTypeNames: []string{},
			ParsedAt:        parsedAt,
		},
	}
}

// Counts holds every metric the parser measures. Missing metrics are zero.
type Counts struct {
	// Text
	WordCount          int     `json:"wordCount"`
	SentenceCount      int     `json:"sentenceCount"`
	AvgSentenceLength  float64 `json:"avgSentenceLength"`
	LongSentences      int     `json:"longSentences"`
	ParagraphCount     int     `json:"paragraphCount"`
	AvgParagraphLength float64 `json:"avgParagraphLength"`
	LongParagraphs     int     `json:"longParagraphs"`
	FleschScore        float64 `json:"fleschScore"`

	// Headings
	H1Count          int  `json:"h1Count"`
	H2Count          int  `json:"h2Count"`
	H3Count          int  `json:"h3Count"`
	H4Count          int  `json:"h4Count"`
	H5Count          int  `json:"h5Count"`
	H6Count          int  `json:"h6Count"`
	HeadingHierarchy bool `json:"headingHierarchy"`

	// Lists and tables
	ListCount        int `json:"listCount"`
	Tables           int `json:"tables"`
	ComparisonTables int `json:"comparisonTables"`

	// Images
	Images        int `json:"images"`
	ImagesWithAlt int `json:"imagesWithAlt"`

	// Links
	InternalLinks int `json:"internalLinks"`
	ExternalLinks int `json:"externalLinks"`

	// Structured data
	SchemaTypes int  `json:"schemaTypes"`
	HasSchema   bool `json:"hasSchema"`
	FAQSchema   bool `json:"faqSchema"`

	// Meta
	MetaTitleLength  int  `json:"metaTitleLength"`
	MetaDescLength   int  `json:"metaDescLength"`
	MobileResponsive bool `json:"mobileResponsive"`

	// Categories subject to validation
	ExpertQuotes    int     `json:"expertQuotes"`
	Statistics      int     `json:"statistics"`
	SourceCitations int     `json:"sourceCitations"`
	CaseStudies     int     `json:"caseStudies"`
	FAQCount        int     `json:"faqCount"`
	FAQAvgWords     float64 `json:"faqAvgWords"`

	// Supplemental signals. Reported, not scored.
	Examples        int  `json:"examples"`
	StepByStep      int  `json:"stepByStep"`
	CTAs            int  `json:"ctas"`
	ToolsResources  int  `json:"toolsResources"`
	DataCitations   int  `json:"dataCitations"`
	FactSources     int  `json:"factSources"`
	AuthorityLinks  int  `json:"authorityLinks"`
	Testimonials    int  `json:"testimonials"`
	Credentials     int  `json:"credentials"`
	YearMentions    int  `json:"yearMentions"`
	DataRecency     int  `json:"dataRecency"`
	TrendingTopics  int  `json:"trendingTopics"`
	LSIKeywords     int  `json:"lsiKeywords"`
	Videos          int  `json:"videos"`
	PublicationDate bool `json:"publicationDate"`
	LastModified    bool `json:"lastModified"`
	AuthorBio       bool `json:"authorBio"`
	TableOfContents bool `json:"tableOfContents"`
}

// AltCoverage returns imagesWithAlt / images, or 0 when the page has no images.
func (c Counts) AltCoverage() float64 {
	if c.Images <= 0 {
		return 0
	}
	ratio := float64(c.ImagesWithAlt) / float64(c.Images)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Detected returns the parser count for a validated category.
func (c Counts) Detected(category Category) int {
	switch category {
	case CategoryExpertQuotes:
		return c.ExpertQuotes
	case CategoryStatistics:
		return c.Statistics
	case CategorySources:
		return c.SourceCitations
	case CategoryCaseStudies:
		return c.CaseStudies
	case CategoryFAQs:
		return c.FAQCount
	default:
		return 0
	}
}

// Snippets holds the bounded samples per category.
// Slices are never nil so callers can range without checks.
type Snippets struct {
	ExpertQuotes    []Quote     `json:"expertQuotes"`
	Statistics      []Statistic `json:"statistics"`
	CaseStudies     []CaseStudy `json:"caseStudies"`
	FAQs            []FAQ       `json:"faqs"`
	SourceCitations []Citation  `json:"sourceCitations"`
}

// NewSnippets returns Snippets with every category empty and non-nil.
func NewSnippets() Snippets {
	return Snippets{
		ExpertQuotes:    []Quote{},
		Statistics:      []Statistic{},
		CaseStudies:     []CaseStudy{},
		FAQs:            []FAQ{},
		SourceCitations: []Citation{},
	}
}

// Len returns the number of snippets kept for a validated category.
func (s Snippets) Len(category Category) int {
	switch category {
	case CategoryExpertQuotes:
		return len(s.ExpertQuotes)
	case CategoryStatistics:
		return len(s.Statistics)
	case CategorySources:
		return len(s.SourceCitations)
	case CategoryCaseStudies:
		return len(s.CaseStudies)
	case CategoryFAQs:
		return len(s.FAQs)
	default:
		return 0
	}
}

// Quote is an attributed expert quotation.
type Quote struct {
	Text        string `json:"text"`
	Attribution string `json:"attribution,omitempty"`
	// Rule names the extraction rule that found the quote.
	Rule string `json:"rule"`
}

// Statistic is a figure with its surrounding context.
type Statistic struct {
	Value     string `json:"value"`
	Context   string `json:"context"`
	HasSource bool   `json:"hasSource"`
}

// CaseStudy is a case-study or quantified-result passage.
type CaseStudy struct {
	Text string `json:"text"`
}

// FAQ is a question with its answer.
type FAQ struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	AnswerWords int    `json:"answerWords"`
}

// Citation is an outbound link used as a source.
type Citation struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Metadata describes the page as a whole.
type Metadata struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	H1Text           string     `json:"h1Text"`
	CanonicalURL     string     `json:"canonicalUrl,omitempty"`
	HasCanonical     bool       `json:"hasCanonical"`
	HeadingHierarchy bool       `json:"headingHierarchy"`
	MobileResponsive bool       `json:"mobileResponsive"`
	OGTitle          string     `json:"ogTitle,omitempty"`
	OGDescription    string     `json:"ogDescription,omitempty"`
	TwitterCard      string     `json:"twitterCard,omitempty"`
	SchemaTypeNames  []string   `json:"schemaTypeNames"`
	Language         string     `json:"language,omitempty"`
	Author           string     `json:"author,omitempty"`
	SiteName         string     `json:"siteName,omitempty"`
	Excerpt          string     `json:"excerpt,omitempty"`
	PublishedTime    *time.Time `json:"publishedTime,omitempty"`
	ParsedAt         time.Time  `json:"parsedAt"`
}
