// Package scorer classifies location scores into qualitative tiers and
// orders locations by viability.
package scorer

import "github.com/sells-group/sitepicker/internal/model"

// Tier thresholds. Sub-scores compare as 0-1 fractions; the overall score
// is already on a 0-100 scale and compares against the percentage form.
const (
	greenFraction  = 0.75
	yellowFraction = 0.50
	amberFraction  = 0.25

	greenOverall  = 75
	yellowOverall = 50
	amberOverall  = 25
)

// ColorFromScore maps a 0-1 sub-score to a tier. Boundaries belong to the
// better tier. A nil score yields TierNone.
func ColorFromScore(score *float64) model.Tier {
	if score == nil {
		return model.TierNone
	}
	return classify(*score, greenFraction, yellowFraction, amberFraction)
}

// ColorFromOverall maps a 0-100 overall score to a tier.
func ColorFromOverall(score *float64) model.Tier {
	if score == nil {
		return model.TierNone
	}
	return classify(*score, greenOverall, yellowOverall, amberOverall)
}

func classify(s, green, yellow, amber float64) model.Tier {
	switch {
	case s >= green:
		return model.TierGreen
	case s >= yellow:
		return model.TierYellow
	case s >= amber:
		return model.TierAmber
	default:
		return model.TierRed
	}
}

// Rank orders tiers worst to best: RED 0, AMBER 1, YELLOW 2, GREEN 3.
// Unknown or absent tiers rank -1.
func Rank(t model.Tier) int {
	switch t {
	case model.TierRed:
		return 0
	case model.TierAmber:
		return 1
	case model.TierYellow:
		return 2
	case model.TierGreen:
		return 3
	default:
		return -1
	}
}
