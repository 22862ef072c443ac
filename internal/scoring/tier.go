package scoring

import "github.com/pdiddy/nos-assess/pkg/types"

// QualityTier is the Good/Fair/Poor classification of a study.
type QualityTier string

const (
	TierGood QualityTier = "good"
	TierFair QualityTier = "fair"
	TierPoor QualityTier = "poor"
)

// Tiers lists the tiers from best to worst.
var Tiers = []QualityTier{TierGood, TierFair, TierPoor}

func (q QualityTier) Valid() bool {
	switch q {
	case TierGood, TierFair, TierPoor:
		return true
	}
	return false
}

// Label returns the reviewer-facing label, e.g. "Good Quality".
func (q QualityTier) Label() string {
	switch q {
	case TierGood:
		return "Good Quality"
	case TierFair:
		return "Fair Quality"
	case TierPoor:
		return "Poor Quality"
	}
	return string(q)
}

// Color returns the hex display colour of the tier.
func (q QualityTier) Color() string {
	switch q {
	case TierGood:
		return "#28a745"
	case TierFair:
		return "#ffc107"
	case TierPoor:
		return "#dc3545"
	}
	return "#6c757d"
}

// thresholds are inclusive lower bounds on total stars.
type thresholds struct {
	good int
	fair int
}

func thresholdsFor(t types.StudyType) thresholds {
	if t == types.StudyCrossSectional {
		return thresholds{good: 6, fair: 4}
	}
	return thresholds{good: 7, fair: 5}
}
