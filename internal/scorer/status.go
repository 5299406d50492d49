package scorer

import (
	"strings"

	"github.com/sells-group/sitepicker/internal/model"
)

// Badge is the short status label shown for a location's overall tier.
type Badge struct {
	Label string `json:"label"`
	Tier  string `json:"tier"`
}

// StatusBadge returns the badge for an overall tier, or nil when the tier is
// absent or unrecognized.
func StatusBadge(overall model.Tier) *Badge {
	switch overall {
	case model.TierGreen:
		return &Badge{Label: "Promising", Tier: "green"}
	case model.TierYellow, model.TierAmber:
		return &Badge{Label: "Viable", Tier: "amber"}
	case model.TierRed:
		return &Badge{Label: "Concerning", Tier: "red"}
	}
	return nil
}

var sizeTiers = map[string]string{
	"micro":  "Micro (25 students)",
	"small":  "Small (50 students)",
	"medium": "Medium (100 students)",
	"large":  "Large (200 students)",
}

// SizeTierLabel expands a size classification into a display label. Unknown
// classifications are returned verbatim; an empty classification yields "".
func SizeTierLabel(classification string) string {
	if classification == "" {
		return ""
	}
	if label, ok := sizeTiers[strings.ToLower(classification)]; ok {
		return label
	}
	return classification
}
