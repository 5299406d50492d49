package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitepicker/internal/model"
)

func allRed() model.LocationScores {
	red := model.SubScore{Score: model.Float(0.1), Color: model.TierRed}
	return model.LocationScores{
		Overall:      model.Float(10),
		OverallColor: model.TierRed,
		Demographics: red,
		Price:        red,
		Zoning:       red,
		Neighborhood: red,
		Building:     red,
	}
}

func TestGenerate_Empty(t *testing.T) {
	got := Generate(model.LocationScores{}, model.UpstreamMetrics{}, model.MetroInfo{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerate_Order(t *testing.T) {
	metrics := demoMetrics(3000, 1, 3000, 1)
	metrics.RentPerSfYear = model.Float(20)
	metrics.SpaceSizeAvailable = model.Float(2000)
	metrics.ZoningCode = model.String("R-1")

	got := Generate(allRed(), metrics, existingMarket)
	require.Len(t, got, 3)
	assert.Equal(t, model.TodoZoning, got[0].Type)
	assert.Equal(t, model.TodoDemographics, got[1].Type)
	assert.Equal(t, model.TodoPricing, got[2].Type)
	assert.Equal(t, []string{"Z1", "M1", "P1/P2"}, []string{got[0].Scenario, got[1].Scenario, got[2].Scenario})
}

func TestGenerate_OnlyRedCategories(t *testing.T) {
	scores := allRed()
	scores.Zoning.Color = model.TierGreen
	scores.Demographics.Color = model.TierYellow

	got := Generate(scores, model.UpstreamMetrics{}, newMarket)
	require.Len(t, got, 1)
	assert.Equal(t, "P-generic", got[0].Scenario)
}

func TestGenerate_PricingSuppressedForCheapNewMarket(t *testing.T) {
	got := Generate(allRed(), lease(20, 2000), newMarket)
	require.Len(t, got, 2)
	assert.Equal(t, "Z1", got[0].Scenario)
	assert.Equal(t, "M-generic", got[1].Scenario)
}

func TestGenerate_Idempotent(t *testing.T) {
	metrics := demoMetrics(300, 0.5, 200, 0.25)
	metrics.RentPerSfYear = model.Float(120)
	metrics.SpaceSizeAvailable = model.Float(5000)
	metrics.LotZoning = model.String("AG")

	first := Generate(allRed(), metrics, newMarket)
	second := Generate(allRed(), metrics, newMarket)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "P3b", first[2].Scenario)
}
