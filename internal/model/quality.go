package model

// Quality is a human-readable label for a total score.
type Quality string

const (
	QualityExcellent        Quality = "excellent"
	QualityGood             Quality = "good"
	QualityFair             Quality = "fair"
	QualityAverage          Quality = "average"
	QualityNeedsImprovement Quality = "needs-improvement"
)

// QualityFor returns the label of a total score.
func QualityFor(total int) Quality {
	switch {
	case total >= 90:
		return QualityExcellent
	case total >= 80:
		return QualityGood
	case total >= 70:
		return QualityFair
	case total >= 60:
		return QualityAverage
	default:
		return QualityNeedsImprovement
	}
}

// String returns the label text.
func (q Quality) String() string {
	return string(q)
}

// Rank orders labels from worst (0) to best (4). Unknown labels rank -1.
func (q Quality) Rank() int {
	switch q {
	case QualityNeedsImprovement:
		return 0
	case QualityAverage:
		return 1
	case QualityFair:
		return 2
	case QualityGood:
		return 3
	case QualityExcellent:
		return 4
	default:
		return -1
	}
}

// Description is a one-line summary for reports.
func (q Quality) Description() string {
	switch q {
	case QualityExcellent:
		return "Publish-ready content with strong evidence and clean markup."
	case QualityGood:
		return "Solid content with a few gaps worth closing."
	case QualityFair:
		return "Usable content that lacks evidence or structure in places."
	case QualityAverage:
		return "Thin evidence or weak structure holds this page back."
	case QualityNeedsImprovement:
		return "Substantial rework is needed before this page can compete."
	default:
		return ""
	}
}
