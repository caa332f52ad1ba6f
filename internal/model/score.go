package model

// Point budgets of the three rubric groups.
const (
	GRAAFMax     = 50
	CRAFTMax     = 30
	TechnicalMax = 20
	TotalMax     = GRAAFMax + CRAFTMax + TechnicalMax
)

// ScoreBreakdown is the score of one scan. It is terminal and never mutated.
type ScoreBreakdown struct {
	Total     int            `json:"total"`
	GRAAF     GRAAFScore     `json:"graaf"`
	CRAFT     CRAFTScore     `json:"craft"`
	Technical TechnicalScore `json:"technical"`
}

// GRAAFScore is rubric A: credibility, relevance, actionability, accuracy and
// freshness, 10 points each.
type GRAAFScore struct {
	Total         int `json:"total"`
	Credibility   int `json:"credibility"`
	Relevance     int `json:"relevance"`
	Actionability int `json:"actionability"`
	Accuracy      int `json:"accuracy"`
	Freshness     int `json:"freshness"`
}

// CRAFTScore is rubric B: editorial craft.
type CRAFTScore struct {
	Total          int `json:"total"`
	CutFluff       int `json:"cutFluff"`
	ReviewOptimize int `json:"reviewOptimize"`
	AddVisuals     int `json:"addVisuals"`
	FAQIntegration int `json:"faqIntegration"`
	TrustBuilding  int `json:"trustBuilding"`
}

// TechnicalScore is rubric C: technical markup, up to 4 points per criterion.
type TechnicalScore struct {
	Total              int `json:"total"`
	MetaOptimization   int `json:"metaOptimization"`
	SchemaMarkup       int `json:"schemaMarkup"`
	InternalLinking    int `json:"internalLinking"`
	HeadingHierarchy   int `json:"headingHierarchy"`
	MobileOptimization int `json:"mobileOptimization"`
}
