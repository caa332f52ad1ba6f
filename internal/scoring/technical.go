package scoring

import "github.com/nao1215/contentscale/internal/model"

func scoreTechnical(in input) model.TechnicalScore {
	s := model.TechnicalScore{
		MetaOptimization:   metaOptimization(in),
		SchemaMarkup:       schemaMarkup(in),
		InternalLinking:    internalLinking(in),
		HeadingHierarchy:   headingHierarchy(in),
		MobileOptimization: mobileOptimization(in),
	}
	s.Total = s.MetaOptimization + s.SchemaMarkup + s.InternalLinking + s.HeadingHierarchy + s.MobileOptimization
	return s
}

func metaOptimization(in input) int {
	c := in.counts
	points := within(f(c.MetaTitleLength), band{50, 60, 2}, band{40, 70, 1}) +
		within(f(c.MetaDescLength), band{140, 160, 2}, band{120, 180, 1})
	return capAt(points, technicalCriterionMax)
}

func schemaMarkup(in input) int {
	return capAt(atLeast(f(in.counts.SchemaTypes), tier{3, 4}, tier{2, 3}, tier{1, 2}), technicalCriterionMax)
}

func internalLinking(in input) int {
	points := atLeast(f(in.counts.InternalLinks), tier{30, 4}, tier{20, 3}, tier{10, 2}, tier{5, 1})
	return capAt(points, technicalCriterionMax)
}

func headingHierarchy(in input) int {
	c := in.counts
	points := atLeast(f(c.H2Count), tier{5, 2}, tier{3, 1})
	switch {
	case c.H1Count == 1:
		points += 2
	case c.H1Count > 0:
		points++
	}
	return capAt(points, technicalCriterionMax)
}

// mobileOptimization credits described images and readable paragraphs. A page
// without images or paragraphs earns nothing for that half.
func mobileOptimization(in input) int {
	c := in.counts
	points := bonus(c.Images > 0 && c.AltCoverage() >= 0.7, 2) +
		bonus(c.ParagraphCount > 0 && c.AvgParagraphLength <= 120, 2)
	return capAt(points, technicalCriterionMax)
}
