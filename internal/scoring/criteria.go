package scoring

import (
	"sort"

	"github.com/nao1215/contentscale/internal/model"
)

// Group names a rubric. Values match the JSON keys of model.ScoreBreakdown.
type Group string

const (
	GroupGRAAF     Group = "graaf"
	GroupCRAFT     Group = "craft"
	GroupTechnical Group = "technical"
)

// Max returns the point budget of the group.
func (g Group) Max() int {
	switch g {
	case GroupGRAAF:
		return model.GRAAFMax
	case GroupCRAFT:
		return model.CRAFTMax
	case GroupTechnical:
		return model.TechnicalMax
	default:
		return 0
	}
}

// Criterion describes one scored criterion.
type Criterion struct {
	Group Group
	Name  string
	Max   int
	value func(model.ScoreBreakdown) int
}

// Value returns the points the criterion earned in b.
func (c Criterion) Value(b model.ScoreBreakdown) int {
	return c.value(b)
}

var criteria = []Criterion{
	{GroupGRAAF, "credibility", graafCriterionMax, func(b model.ScoreBreakdown) int { return b.GRAAF.Credibility }},
	{GroupGRAAF, "relevance", graafCriterionMax, func(b model.ScoreBreakdown) int { return b.GRAAF.Relevance }},
	{GroupGRAAF, "actionability", graafCriterionMax, func(b model.ScoreBreakdown) int { return b.GRAAF.Actionability }},
	{GroupGRAAF, "accuracy", graafCriterionMax, func(b model.ScoreBreakdown) int { return b.GRAAF.Accuracy }},
	{GroupGRAAF, "freshness", graafCriterionMax, func(b model.ScoreBreakdown) int { return b.GRAAF.Freshness }},

	{GroupCRAFT, "cutFluff", cutFluffMax, func(b model.ScoreBreakdown) int { return b.CRAFT.CutFluff }},
	{GroupCRAFT, "reviewOptimize", reviewOptimizeMax, func(b model.ScoreBreakdown) int { return b.CRAFT.ReviewOptimize }},
	{GroupCRAFT, "addVisuals", addVisualsMax, func(b model.ScoreBreakdown) int { return b.CRAFT.AddVisuals }},
	{GroupCRAFT, "faqIntegration", faqIntegrationMax, func(b model.ScoreBreakdown) int { return b.CRAFT.FAQIntegration }},
	{GroupCRAFT, "trustBuilding", trustBuildingMax, func(b model.ScoreBreakdown) int { return b.CRAFT.TrustBuilding }},

	{GroupTechnical, "metaOptimization", technicalCriterionMax, func(b model.ScoreBreakdown) int { return b.Technical.MetaOptimization }},
	{GroupTechnical, "schemaMarkup", technicalCriterionMax, func(b model.ScoreBreakdown) int { return b.Technical.SchemaMarkup }},
	{GroupTechnical, "internalLinking", technicalCriterionMax, func(b model.ScoreBreakdown) int { return b.Technical.InternalLinking }},
	{GroupTechnical, "headingHierarchy", technicalCriterionMax, func(b model.ScoreBreakdown) int { return b.Technical.HeadingHierarchy }},
	{GroupTechnical, "mobileOptimization", technicalCriterionMax, func(b model.ScoreBreakdown) int { return b.Technical.MobileOptimization }},
}

// Criteria returns every criterion in display order.
func Criteria() []Criterion {
	out := make([]Criterion, len(criteria))
	copy(out, criteria)
	return out
}

// Opportunity is a criterion that did not earn its maximum.
type Opportunity struct {
	Group   Group  `json:"group"`
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Max     int    `json:"max"`
	Missing int    `json:"missing"`
}

// Opportunities lists the criteria below their maximum, largest gap first.
// Ties keep display order.
func Opportunities(b model.ScoreBreakdown) []Opportunity {
	out := make([]Opportunity, 0, len(criteria))
	for _, c := range criteria {
		points := c.Value(b)
		if points >= c.Max {
			continue
		}
		out = append(out, Opportunity{
			Group:   c.Group,
			Name:    c.Name,
			Points:  points,
			Max:     c.Max,
			Missing: c.Max - points,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Missing > out[j].Missing
	})
	return out
}
