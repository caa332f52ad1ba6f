package model

// Category is one of the parser categories subject to external validation.
type Category string

const (
	CategoryExpertQuotes Category = "expertQuotes"
	CategoryStatistics   Category = "statistics"
	CategorySources      Category = "sources"
	CategoryCaseStudies  Category = "caseStudies"
	CategoryFAQs         Category = "faqs"
)

// ValidatedCategories returns the validated categories in a fixed order.
func ValidatedCategories() []Category {
	return []Category{
		CategoryExpertQuotes,
		CategoryStatistics,
		CategorySources,
		CategoryCaseStudies,
		CategoryFAQs,
	}
}

// Rejection is one item the validator did not accept.
type Rejection struct {
	// Index is the 0-based position of the item in the snippets sent for validation.
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ValidatedCounts narrows the parser counts of the validated categories.
// Each validated count is at most the detected count, and
// validated + len(rejections) equals the detected count.
type ValidatedCounts struct {
	ExpertQuotes int `json:"expertQuotes"`
	Statistics   int `json:"statistics"`
	Sources      int `json:"sources"`
	CaseStudies  int `json:"caseStudies"`
	FAQs         int `json:"faqs"`

	Rejections map[Category][]Rejection `json:"rejections"`

	// Fallback is true when validation did not run and parser counts were used verbatim.
	Fallback bool `json:"fallback"`

	// FallbackReason explains a fallback. Empty otherwise.
	FallbackReason string `json:"fallbackReason,omitempty"`

	// Model is the validator model that produced the verdicts.
	Model string `json:"model,omitempty"`
}

// NewFallbackValidation echoes the detected counts with no rejections.
func NewFallbackValidation(counts Counts, reason string) *ValidatedCounts {
	v := &ValidatedCounts{
		Rejections:     NewRejections(),
		Fallback:       true,
		FallbackReason: reason,
	}
	for _, c := range ValidatedCategories() {
		v.Set(c, counts.Detected(c))
	}
	return v
}

// Get returns the validated count of a category.
func (v *ValidatedCounts) Get(category Category) int {
	if v == nil {
		return 0
	}
	switch category {
	case CategoryExpertQuotes:
		return v.ExpertQuotes
	case CategoryStatistics:
		return v.Statistics
	case CategorySources:
		return v.Sources
	case CategoryCaseStudies:
		return v.CaseStudies
	case CategoryFAQs:
		return v.FAQs
	default:
		return 0
	}
}

// Set stores the validated count of a category. Negative values are stored as zero.
func (v *ValidatedCounts) Set(category Category, n int) {
	if n < 0 {
		n = 0
	}
	switch category {
	case CategoryExpertQuotes:
		v.ExpertQuotes = n
	case CategoryStatistics:
		v.Statistics = n
	case CategorySources:
		v.Sources = n
	case CategoryCaseStudies:
		v.CaseStudies = n
	case CategoryFAQs:
		v.FAQs = n
	}
}

// TotalRejected returns the number of rejections across all categories.
func (v *ValidatedCounts) TotalRejected() int {
	if v == nil {
		return 0
	}
	total := 0
	for _, list := range v.Rejections {
		total += len(list)
	}
	return total
}

// NewRejections returns a rejection map with an empty list for every category.
func NewRejections() map[Category][]Rejection {
	m := make(map[Category][]Rejection, len(ValidatedCategories()))
	for _, c := range ValidatedCategories() {
		m[c] = []Rejection{}
	}
	return m
}
