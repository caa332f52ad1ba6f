package scoring

import (
	"reflect"
	"testing"

	"github.com/nao1215/contentscale/internal/model"
)

// validatedFrom returns a non-fallback validation that accepted every detected item.
func validatedFrom(c model.Counts) *model.ValidatedCounts {
	v := &model.ValidatedCounts{Rejections: model.NewRejections()}
	for _, cat := range model.ValidatedCategories() {
		v.Set(cat, c.Detected(cat))
	}
	return v
}

// richCounts describes a long, well structured page.
func richCounts() model.Counts {
	return model.Counts{
		WordCount:          2600,
		ParagraphCount:     25,
		AvgParagraphLength: 80,
		H1Count:            1,
		H2Count:            6,
		ListCount:          6,
		Tables:             3,
		ComparisonTables:   1,
		Images:             10,
		ImagesWithAlt:      10,
		InternalLinks:      35,
		ExternalLinks:      8,
		SchemaTypes:        3,
		HasSchema:          true,
		FAQSchema:          true,
		MetaTitleLength:    55,
		MetaDescLength:     150,
		MobileResponsive:   true,
		ExpertQuotes:       9,
		Statistics:         12,
		SourceCitations:    6,
		CaseStudies:        3,
		FAQCount:           9,
		FAQAvgWords:        90,
	}
}

// TestScoreBounds tests that every criterion and group stays within its budget.
func TestScoreBounds(t *testing.T) {
	t.Parallel()

	inputs := map[string]model.Counts{
		"zero counts": {},
		"rich page":   richCounts(),
		"huge values": {
			WordCount: 1 << 20, ParagraphCount: 1 << 20, AvgParagraphLength: 1e9,
			H1Count: 50, H2Count: 50, ListCount: 1 << 20, Tables: 1 << 20, ComparisonTables: 1 << 20,
			Images: 1 << 20, ImagesWithAlt: 1 << 21, InternalLinks: 1 << 20, ExternalLinks: 1 << 20,
			SchemaTypes: 1 << 20, HasSchema: true, FAQSchema: true,
			MetaTitleLength: 1 << 20, MetaDescLength: 1 << 20,
			ExpertQuotes: 1 << 20, Statistics: 1 << 20, SourceCitations: 1 << 20,
			CaseStudies: 1 << 20, FAQCount: 1 << 20, FAQAvgWords: 1e9,
		},
		"negative values": {
			WordCount: -5, Images: -1, ImagesWithAlt: -3, ExpertQuotes: -2, InternalLinks: -7,
		},
	}

	for name, counts := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			b := Score(validatedFrom(counts), counts)

			for _, c := range Criteria() {
				if v := c.Value(b); v < 0 || v > c.Max {
					t.Errorf("%s.%s = %d, expected 0..%d", c.Group, c.Name, v, c.Max)
				}
			}
			if b.GRAAF.Total < 0 || b.GRAAF.Total > model.GRAAFMax {
				t.Errorf("graaf total %d out of range", b.GRAAF.Total)
			}
			if b.CRAFT.Total < 0 || b.CRAFT.Total > model.CRAFTMax {
				t.Errorf("craft total %d out of range", b.CRAFT.Total)
			}
			if b.Technical.Total < 0 || b.Technical.Total > model.TechnicalMax {
				t.Errorf("technical total %d out of range", b.Technical.Total)
			}
			if b.Total != b.GRAAF.Total+b.CRAFT.Total+b.Technical.Total {
				t.Errorf("total %d is not the sum of its groups", b.Total)
			}
			if b.Total < 0 || b.Total > model.TotalMax {
				t.Errorf("total %d out of range", b.Total)
			}
		})
	}
}

// TestScoreRichPageIsPerfect tests that a page meeting every top tier scores 100.
func TestScoreRichPageIsPerfect(t *testing.T) {
	t.Parallel()

	counts := richCounts()
	b := Score(validatedFrom(counts), counts)
	if b.Total != model.TotalMax {
		t.Errorf("got total %d, expected %d; opportunities: %+v", b.Total, model.TotalMax, Opportunities(b))
	}
	if got := Opportunities(b); len(got) != 0 {
		t.Errorf("expected no opportunities, got %+v", got)
	}
}

// TestScoreIsDeterministic tests that identical inputs give identical breakdowns.
func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	counts := richCounts()
	counts.Images, counts.ImagesWithAlt = 3, 2
	v := validatedFrom(counts)
	v.Statistics = 4

	first := Score(v, counts)
	for i := 0; i < 5; i++ {
		if got := Score(v, counts); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

// TestScoreIsMonotonic tests that raising a validated count never lowers the total.
func TestScoreIsMonotonic(t *testing.T) {
	t.Parallel()

	base := model.Counts{WordCount: 900, ParagraphCount: 9, AvgParagraphLength: 60, H1Count: 1, H2Count: 3, ExternalLinks: 3}

	for _, cat := range model.ValidatedCategories() {
		t.Run(string(cat), func(t *testing.T) {
			t.Parallel()
			previous := -1
			for n := 0; n <= 15; n++ {
				v := validatedFrom(base)
				v.Set(cat, n)
				total := Score(v, base).Total
				if total < previous {
					t.Fatalf("%s=%d lowered the total from %d to %d", cat, n, previous, total)
				}
				previous = total
			}
		})
	}
}

// TestScoreAttributedPage tests credibility for a page with three cited quotes,
// two sourced statistics and no source links.
func TestScoreAttributedPage(t *testing.T) {
	t.Parallel()

	counts := model.Counts{
		ExpertQuotes:     3,
		Statistics:       2,
		MobileResponsive: true,
		FAQSchema:        true,
		HasSchema:        true,
		SchemaTypes:      1,
	}
	b := Score(validatedFrom(counts), counts)

	if b.GRAAF.Credibility != 4+1+0 {
		t.Errorf("got credibility %d, expected 5", b.GRAAF.Credibility)
	}
	if b.CRAFT.FAQIntegration != 1 {
		t.Errorf("got faqIntegration %d, expected 1", b.CRAFT.FAQIntegration)
	}
	if b.Technical.SchemaMarkup != 2 {
		t.Errorf("got schemaMarkup %d, expected 2", b.Technical.SchemaMarkup)
	}
}

// TestScoreUsesValidatedCounts tests that rejected items do not earn points.
func TestScoreUsesValidatedCounts(t *testing.T) {
	t.Parallel()

	counts := model.Counts{Statistics: 5}
	v := validatedFrom(counts)
	v.Statistics = 2
	v.Rejections[model.CategoryStatistics] = []model.Rejection{
		{Index: 0, Reason: "no figure"},
		{Index: 3, Reason: "date, not a statistic"},
		{Index: 4, Reason: "duplicate"},
	}

	b := Score(v, counts)
	if b.GRAAF.Credibility != 1 {
		t.Errorf("got credibility %d, expected 1 from two validated statistics", b.GRAAF.Credibility)
	}
	if b.GRAAF.Accuracy != 1 {
		t.Errorf("got accuracy %d, expected 1", b.GRAAF.Accuracy)
	}

	unvalidated := Score(validatedFrom(counts), counts)
	if unvalidated.GRAAF.Credibility != 2 || unvalidated.GRAAF.Accuracy != 3 {
		t.Errorf("got credibility %d accuracy %d with all five accepted",
			unvalidated.GRAAF.Credibility, unvalidated.GRAAF.Accuracy)
	}
}

// TestScoreWithoutImages tests that a page with no images earns no image points.
func TestScoreWithoutImages(t *testing.T) {
	t.Parallel()

	counts := richCounts()
	counts.Images, counts.ImagesWithAlt = 0, 0
	b := Score(validatedFrom(counts), counts)

	if b.GRAAF.Freshness != 3+1 {
		t.Errorf("got freshness %d, expected 4", b.GRAAF.Freshness)
	}
	if b.CRAFT.AddVisuals != 2 {
		t.Errorf("got addVisuals %d, expected 2 from tables only", b.CRAFT.AddVisuals)
	}
	if b.Technical.MobileOptimization != 2 {
		t.Errorf("got mobileOptimization %d, expected 2", b.Technical.MobileOptimization)
	}
}

// TestScoreNilValidationFallsBack tests that nil validated counts score like a fallback.
func TestScoreNilValidationFallsBack(t *testing.T) {
	t.Parallel()

	counts := richCounts()
	counts.ExpertQuotes = 2
	got := Score(nil, counts)
	want := Score(model.NewFallbackValidation(counts, "validator disabled"), counts)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, expected %+v", got, want)
	}
}

// TestCriterionBands tests band edges of the length based criteria.
func TestCriterionBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    model.Counts
		check func(model.ScoreBreakdown) int
		want  int
	}{
		{"title at the lower edge of the best band", model.Counts{MetaTitleLength: 50}, func(b model.ScoreBreakdown) int { return b.Technical.MetaOptimization }, 2},
		{"title just above the best band", model.Counts{MetaTitleLength: 61}, func(b model.ScoreBreakdown) int { return b.Technical.MetaOptimization }, 1},
		{"title far too long", model.Counts{MetaTitleLength: 90}, func(b model.ScoreBreakdown) int { return b.Technical.MetaOptimization }, 0},
		{"long title still earns relevance", model.Counts{MetaTitleLength: 90}, func(b model.ScoreBreakdown) int { return b.GRAAF.Relevance }, 1},
		{"description in the best band", model.Counts{MetaDescLength: 160}, func(b model.ScoreBreakdown) int { return b.CRAFT.ReviewOptimize }, 3},
		{"words beyond the best relevance band", model.Counts{WordCount: 3001}, func(b model.ScoreBreakdown) int { return b.GRAAF.Relevance }, 2},
		{"words beyond every fluff band", model.Counts{WordCount: 6000}, func(b model.ScoreBreakdown) int { return b.CRAFT.CutFluff }, 1},
		{"two h1 headings", model.Counts{H1Count: 2, H2Count: 3}, func(b model.ScoreBreakdown) int { return b.Technical.HeadingHierarchy }, 2},
		{"no paragraphs earn no mobile credit", model.Counts{}, func(b model.ScoreBreakdown) int { return b.Technical.MobileOptimization }, 0},
		{"short paragraphs earn mobile credit", model.Counts{ParagraphCount: 4, AvgParagraphLength: 120}, func(b model.ScoreBreakdown) int { return b.Technical.MobileOptimization }, 2},
		{"long paragraphs lose mobile credit", model.Counts{ParagraphCount: 4, AvgParagraphLength: 121}, func(b model.ScoreBreakdown) int { return b.Technical.MobileOptimization }, 0},
		{"internal link tiers", model.Counts{InternalLinks: 19}, func(b model.ScoreBreakdown) int { return b.Technical.InternalLinking }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.check(Score(nil, tt.in)); got != tt.want {
				t.Errorf("got %d, expected %d", got, tt.want)
			}
		})
	}
}
