package scoring

import "github.com/nao1215/contentscale/internal/model"

func scoreGRAAF(in input) model.GRAAFScore {
	s := model.GRAAFScore{
		Credibility:   credibility(in),
		Relevance:     relevance(in),
		Actionability: actionability(in),
		Accuracy:      accuracy(in),
		Freshness:     freshness(in),
	}
	s.Total = s.Credibility + s.Relevance + s.Actionability + s.Accuracy + s.Freshness
	return s
}

func credibility(in input) int {
	v := in.validated
	points := atLeast(f(v.ExpertQuotes), tier{3, 4}, tier{2, 3}, tier{1, 2}) +
		atLeast(f(v.Statistics), tier{10, 3}, tier{5, 2}, tier{1, 1}) +
		atLeast(f(v.Sources), tier{5, 3}, tier{3, 2}, tier{1, 1})
	return capAt(points, graafCriterionMax)
}

func relevance(in input) int {
	c := in.counts
	points := titleBands(c.MetaTitleLength) +
		descriptionBands(c.MetaDescLength) +
		within(f(c.WordCount), band{1500, 3000, 3}, band{800, unbounded, 2}, band{500, unbounded, 1}) +
		bonus(c.H2Count >= 5, 1)
	return capAt(points, graafCriterionMax)
}

func actionability(in input) int {
	c := in.counts
	points := atLeast(f(c.ListCount), tier{5, 3}, tier{3, 2}, tier{1, 1}) +
		atLeast(f(c.ParagraphCount), tier{20, 3}, tier{10, 2}, tier{5, 1}) +
		atLeast(f(c.Tables), tier{3, 3}, tier{1, 2}) +
		bonus(c.ComparisonTables >= 1, 1)
	return capAt(points, graafCriterionMax)
}

func accuracy(in input) int {
	c, v := in.counts, in.validated
	points := atLeast(f(v.Statistics), tier{5, 3}, tier{3, 2}, tier{1, 1}) +
		atLeast(f(v.CaseStudies), tier{2, 3}, tier{1, 2}) +
		atLeast(f(v.Sources), tier{3, 2}, tier{1, 1}) +
		atLeast(f(c.ExternalLinks), tier{5, 2}, tier{2, 1})
	return capAt(points, graafCriterionMax)
}

func freshness(in input) int {
	c := in.counts
	points := atLeast(f(c.WordCount), tier{2500, 3}, tier{1500, 2}, tier{800, 1}) +
		atLeast(f(c.Images), tier{8, 3}, tier{5, 2}, tier{2, 1}) +
		bonus(c.HasSchema || c.SchemaTypes > 0, 1)
	if c.Images > 0 {
		points += atLeast(c.AltCoverage(), tier{0.9, 3}, tier{0.7, 2}, tier{0.5, 1})
	}
	return capAt(points, graafCriterionMax)
}
