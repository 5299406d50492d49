package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitepicker/internal/model"
)

func TestMapScores_NilRow(t *testing.T) {
	got := MapScores(nil)
	assert.Equal(t, model.LocationScores{}, got)
}

func TestMapScores_NoOverall(t *testing.T) {
	got := MapScores(&model.ScoreRow{ZoningScore: ptrFloat64(0.1)})
	assert.Nil(t, got.Overall)
	assert.Equal(t, model.TierNone, got.Zoning.Color)
}

func TestMapScores_DerivesColors(t *testing.T) {
	row := &model.ScoreRow{
		OverallScore:      ptrFloat64(62),
		DemographicsScore: ptrFloat64(0.8),
		PriceScore:        ptrFloat64(0.1),
		ZoningScore:       ptrFloat64(0.3),
		BuildingScore:     ptrFloat64(0.5),
	}

	got := MapScores(row)
	require.NotNil(t, got.Overall)
	assert.InDelta(t, 62, *got.Overall, 0.001)
	assert.Equal(t, model.TierYellow, got.OverallColor)
	assert.Equal(t, model.TierGreen, got.Demographics.Color)
	assert.Equal(t, model.TierRed, got.Price.Color)
	assert.Equal(t, model.TierAmber, got.Zoning.Color)
	assert.Equal(t, model.TierYellow, got.Building.Color)
	assert.Equal(t, model.TierNone, got.Neighborhood.Color)
}

func TestMapScores_ExplicitColorWins(t *testing.T) {
	row := &model.ScoreRow{
		OverallScore:      ptrFloat64(90),
		OverallColor:      ptrString("RED"),
		ZoningScore:       ptrFloat64(0.95),
		ZoningColor:       ptrString("RED"),
		PriceScore:        ptrFloat64(0.1),
		PriceColor:        ptrString(""),
		NeighborhoodScore: ptrFloat64(0.9),
		NeighborhoodColor: ptrString("PURPLE"),
	}

	got := MapScores(row)
	assert.Equal(t, model.TierRed, got.OverallColor)
	assert.Equal(t, model.TierRed, got.Zoning.Color)
	// Empty explicit color falls back to the derived one.
	assert.Equal(t, model.TierRed, got.Price.Color)
	// Unrecognized explicit values pass through untouched.
	assert.Equal(t, model.Tier("PURPLE"), got.Neighborhood.Color)
	assert.False(t, got.Neighborhood.Color.Valid())
}

func TestMapScores_DetailsURLs(t *testing.T) {
	row := &model.ScoreRow{
		OverallScore:       ptrFloat64(40),
		OverallDetailsURL:  ptrString("https://scores.example.com/1"),
		PriceDetailsURL:    ptrString(""),
		SizeClassification: ptrString("micro"),
	}

	got := MapScores(row)
	require.NotNil(t, got.OverallDetailsURL)
	assert.Equal(t, "https://scores.example.com/1", *got.OverallDetailsURL)
	assert.Nil(t, got.Price.DetailsURL)
	require.NotNil(t, got.SizeClassification)
	assert.Equal(t, "micro", *got.SizeClassification)
}
