package scorer

import "github.com/sells-group/sitepicker/internal/model"

// MapScores builds LocationScores from an upstream score row. An explicit
// color supplied upstream wins; otherwise the color is derived from the
// numeric score. A nil row, or a row without an overall score, maps to an
// unscored (all-null) result.
func MapScores(row *model.ScoreRow) model.LocationScores {
	if row == nil || row.OverallScore == nil {
		return model.LocationScores{}
	}

	overall := *row.OverallScore
	return model.LocationScores{
		Overall:            &overall,
		OverallColor:       resolveColor(row.OverallColor, ColorFromOverall(row.OverallScore)),
		OverallDetailsURL:  nonEmpty(row.OverallDetailsURL),
		Demographics:       subScore(row.DemographicsScore, row.DemographicsColor, row.DemographicsDetailsURL),
		Price:              subScore(row.PriceScore, row.PriceColor, row.PriceDetailsURL),
		Zoning:             subScore(row.ZoningScore, row.ZoningColor, row.ZoningDetailsURL),
		Neighborhood:       subScore(row.NeighborhoodScore, row.NeighborhoodColor, row.NeighborhoodDetailsURL),
		Building:           subScore(row.BuildingScore, row.BuildingColor, row.BuildingDetailsURL),
		SizeClassification: nonEmpty(row.SizeClassification),
	}
}

func subScore(score *float64, color, detailsURL *string) model.SubScore {
	return model.SubScore{
		Score:      score,
		Color:      resolveColor(color, ColorFromScore(score)),
		DetailsURL: nonEmpty(detailsURL),
	}
}

// resolveColor returns the explicit color verbatim when one was supplied.
// Unrecognized explicit values are kept; comparisons treat them as no match.
func resolveColor(explicit *string, derived model.Tier) model.Tier {
	if explicit != nil && *explicit != "" {
		return model.Tier(*explicit)
	}
	return derived
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
