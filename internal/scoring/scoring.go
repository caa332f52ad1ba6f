package scoring

import "github.com/nao1215/contentscale/internal/model"

// Per-criterion maxima.
const (
	graafCriterionMax = 10

	cutFluffMax       = 7
	reviewOptimizeMax = 8
	addVisualsMax     = 6
	faqIntegrationMax = 5
	trustBuildingMax  = 4

	technicalCriterionMax = 4
)

// fallbackReason is recorded when Score is called without validated counts.
const fallbackReason = "validation not run"

// input is what every criterion reads from.
type input struct {
	counts    model.Counts
	validated *model.ValidatedCounts
}

// Score computes the score breakdown. A nil validated scores as if validation
// fell back to the parser counts. Score is pure and deterministic.
func Score(validated *model.ValidatedCounts, counts model.Counts) model.ScoreBreakdown {
	if validated == nil {
		validated = model.NewFallbackValidation(counts, fallbackReason)
	}
	in := input{counts: counts, validated: validated}

	b := model.ScoreBreakdown{
		GRAAF:     scoreGRAAF(in),
		CRAFT:     scoreCRAFT(in),
		Technical: scoreTechnical(in),
	}
	b.Total = b.GRAAF.Total + b.CRAFT.Total + b.Technical.Total
	return b
}

// titleBands and descriptionBands are shared by relevance and reviewOptimize.
func titleBands(length int) int {
	return within(f(length),
		band{50, 60, 3},
		band{40, 70, 2},
		band{30, unbounded, 1},
	)
}

func descriptionBands(length int) int {
	return within(f(length),
		band{140, 160, 3},
		band{120, 180, 2},
		band{100, unbounded, 1},
	)
}
