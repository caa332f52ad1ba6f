package scoring

import "github.com/nao1215/contentscale/internal/model"

func scoreCRAFT(in input) model.CRAFTScore {
	s := model.CRAFTScore{
		CutFluff:       cutFluff(in),
		ReviewOptimize: reviewOptimize(in),
		AddVisuals:     addVisuals(in),
		FAQIntegration: faqIntegration(in),
		TrustBuilding:  trustBuilding(in),
	}
	s.Total = s.CutFluff + s.ReviewOptimize + s.AddVisuals + s.FAQIntegration + s.TrustBuilding
	return s
}

func cutFluff(in input) int {
	c := in.counts
	points := within(f(c.WordCount), band{1500, 3500, 3}, band{800, 5000, 2}, band{500, unbounded, 1}) +
		within(c.AvgParagraphLength, band{40, 100, 2}, band{30, 150, 1}) +
		atLeast(f(c.ParagraphCount), tier{15, 2}, tier{8, 1})
	return capAt(points, cutFluffMax)
}

func reviewOptimize(in input) int {
	c := in.counts
	points := titleBands(c.MetaTitleLength) +
		descriptionBands(c.MetaDescLength) +
		bonus(c.H1Count == 1, 1) +
		bonus(c.H2Count >= 5, 1)
	return capAt(points, reviewOptimizeMax)
}

func addVisuals(in input) int {
	c := in.counts
	points := atLeast(f(c.Images), tier{8, 2}, tier{4, 1}) +
		atLeast(c.AltCoverage(), tier{0.8, 2}, tier{0.5, 1}) +
		bonus(c.Tables >= 1, 1) +
		bonus(c.ComparisonTables >= 1, 1)
	return capAt(points, addVisualsMax)
}

func faqIntegration(in input) int {
	c, v := in.counts, in.validated
	points := atLeast(f(v.FAQs), tier{8, 3}, tier{5, 2}, tier{3, 1}) +
		bonus(c.FAQAvgWords >= 80, 1) +
		bonus(c.FAQSchema, 1)
	return capAt(points, faqIntegrationMax)
}

func trustBuilding(in input) int {
	c, v := in.counts, in.validated
	points := atLeast(f(v.ExpertQuotes), tier{8, 2}, tier{4, 1}) +
		bonus(v.CaseStudies >= 1, 1) +
		bonus(c.ExternalLinks >= 3, 1)
	return capAt(points, trustBuildingMax)
}
