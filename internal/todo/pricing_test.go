package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitepicker/internal/model"
)

func redPrice() model.LocationScores {
	return model.LocationScores{Price: model.SubScore{Score: model.Float(0.05), Color: model.TierRed}}
}

func lease(rent, space float64) model.UpstreamMetrics {
	return model.UpstreamMetrics{RentPerSfYear: model.Float(rent), SpaceSizeAvailable: model.Float(space)}
}

var (
	existingMarket = model.MetroInfo{HasExistingAlpha: true, GreenThreshold: 10000, RedThreshold: 15000}
	newMarket      = model.MetroInfo{HasExistingAlpha: false, GreenThreshold: 10000, RedThreshold: 15000}
)

func TestPricing_NotRed(t *testing.T) {
	for _, c := range []model.Tier{model.TierGreen, model.TierYellow, model.TierAmber, model.TierNone} {
		scores := model.LocationScores{Price: model.SubScore{Color: c}}
		assert.Nil(t, Pricing(scores, lease(200, 5000), existingMarket), c)
		assert.Nil(t, Pricing(scores, lease(200, 5000), newMarket), c)
	}
}

func TestPricing_Generic(t *testing.T) {
	tests := []struct {
		name    string
		metrics model.UpstreamMetrics
	}{
		{"no rent", model.UpstreamMetrics{SpaceSizeAvailable: model.Float(2000)}},
		{"no space", model.UpstreamMetrics{RentPerSfYear: model.Float(20)}},
		{"zero space", lease(20, 0)},
		{"negative space", lease(20, -5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, metro := range []model.MetroInfo{existingMarket, newMarket} {
				got := Pricing(redPrice(), tt.metrics, metro)
				require.NotNil(t, got)
				assert.Equal(t, "P-generic", got.Scenario)
				assert.Equal(t, "Pricing: Too Expensive", got.Title)
				assert.Equal(t,
					"This location is too expensive at the current asking price. "+
						"If you can negotiate a lower rent with the landlord, or subsidize "+
						"the difference, we can make it work. Contact us with the best rent "+
						"you can negotiate.",
					got.Message)
				assert.Nil(t, got.DataTable)
			}
		})
	}
}

func TestPricing_ExistingMarketNegativeGap(t *testing.T) {
	got := Pricing(redPrice(), lease(20, 2000), existingMarket)
	require.NotNil(t, got)
	assert.Equal(t, model.TodoPricing, got.Type)
	assert.Equal(t, "P1/P2", got.Scenario)
	assert.Equal(t, "Pricing: Rent Too High", got.Title)
	assert.Equal(t,
		"This location is too expensive at the current asking price. "+
			"Option 1: Negotiate the rent down. Option 2: Subsidize the gap until enrollment grows. "+
			"These can be combined — negotiate a partial rent reduction AND subsidize the remaining gap.",
		got.Message)
	assert.Equal(t, []model.DataRow{
		{Label: "Rent", Current: "$20.00/SF/year", Needed: "$100.00/SF/year", Gap: gap("$-80.00/SF/year")},
		{Label: "Annual cost", Current: "$40,000", Needed: "$200,000", Gap: gap("$-160,000")},
		{Label: "Monthly cost", Current: "$3,333", Needed: "$16,667", Gap: gap("$-13,333")},
		{Label: "Student capacity", Current: "20 students", Needed: ""},
	}, got.DataTable)
}

func TestPricing_ExistingMarketPositiveGap(t *testing.T) {
	got := Pricing(redPrice(), lease(150, 1250), existingMarket)
	require.NotNil(t, got)
	assert.Equal(t, []model.DataRow{
		{Label: "Rent", Current: "$150.00/SF/year", Needed: "$100.00/SF/year", Gap: gap("$50.00/SF/year")},
		{Label: "Annual cost", Current: "$187,500", Needed: "$125,000", Gap: gap("$62,500")},
		{Label: "Monthly cost", Current: "$15,625", Needed: "$10,417", Gap: gap("$5,208")},
		{Label: "Student capacity", Current: "13 students", Needed: ""},
	}, got.DataTable)
}

func TestPricing_NewMarketBelowRedThreshold(t *testing.T) {
	// 40,000 / 25 students = 1,600 per student, well under the red threshold.
	assert.Nil(t, Pricing(redPrice(), lease(20, 2000), newMarket))
	assert.Nil(t, ClassifyPricing(redPrice(), lease(20, 2000), newMarket))

	// Just under: 374,975 / 25 = 14,999.
	assert.Nil(t, Pricing(redPrice(), lease(74.995, 5000), newMarket))
}

func TestPricing_LaunchSubsidy(t *testing.T) {
	got := Pricing(redPrice(), lease(80, 5000), newMarket)
	require.NotNil(t, got)
	assert.Equal(t, "P3a", got.Scenario)
	assert.Equal(t, "Pricing: New Market Launch Subsidy", got.Title)
	assert.Equal(t,
		"This is a new market for Alpha. We start new markets with 25 students. "+
			"At this rent, you'll need to subsidize the gap until enrollment grows. "+
			"Subsidy decreases as enrollment grows and ends at 40 students "+
			"(building capacity: 50).",
		got.Message)
	assert.Equal(t, []model.DataRow{
		{Label: "Rent", Current: "$80.00/SF/year", Needed: "(unchanged)", Gap: gap("")},
		{Label: "Annual cost", Current: "$400,000", Needed: "$250,000", Gap: gap("$150,000")},
		{Label: "Monthly cost", Current: "$33,333", Needed: "$20,833", Gap: gap("$12,500")},
		{Label: "Break-even enrollment", Current: "25 students", Needed: "40 students"},
		{Label: "Building capacity", Current: "50 students", Needed: ""},
	}, got.DataTable)
}

func TestClassifyPricing_CapacityBoundaryIsInclusive(t *testing.T) {
	// 500,000 annual over 50 students is exactly the green threshold.
	s := ClassifyPricing(redPrice(), lease(100, 5000), newMarket)
	v, ok := s.(LaunchSubsidy)
	require.True(t, ok, "got %T", s)
	assert.Equal(t, 50.0, v.Capacity)
	assert.Equal(t, 50.0, v.BreakEven)

	s = ClassifyPricing(redPrice(), lease(100.01, 5000), newMarket)
	_, ok = s.(OverCapacity)
	assert.True(t, ok, "got %T", s)
}

func TestPricing_OverCapacity(t *testing.T) {
	got := Pricing(redPrice(), lease(120, 5000), newMarket)
	require.NotNil(t, got)
	assert.Equal(t, "P3b", got.Scenario)
	assert.Equal(t, "Pricing: Too Expensive Even at Capacity", got.Title)
	assert.Equal(t,
		"This is a new market for Alpha. Even at full capacity (50 students), "+
			"the rent is too high. You'll need to negotiate the rent down "+
			"or subsidize the gap permanently. We also start new markets with 25 students, "+
			"so even at the lower rent you'll need a launch subsidy of "+
			"$20,833/month that decreases as enrollment grows to 50.",
		got.Message)
	assert.Equal(t, []model.DataRow{
		{Label: "Rent", Current: "$120.00/SF/year", Needed: "$100.00/SF/year", Gap: gap("$20.00/SF/year")},
		{Label: "Annual cost", Current: "$600,000", Needed: "$500,000", Gap: gap("$100,000")},
		{Label: "Monthly cost", Current: "$50,000", Needed: "$41,667", Gap: gap("$8,333")},
		{Label: "Building capacity", Current: "50 students", Needed: ""},
		{Label: "Launch subsidy (at target rent)", Current: "$20,833/month", Needed: "Ends at 50 students"},
	}, got.DataTable)
}

func TestPricing_SpaceBelowOneStudent(t *testing.T) {
	// Capacity floors to zero, so cost at capacity is infinite.
	got := Pricing(redPrice(), lease(10000, 50), newMarket)
	require.NotNil(t, got)
	assert.Equal(t, "P3b", got.Scenario)
	assert.Contains(t, got.Message, "Even at full capacity (0 students)")
	assert.Contains(t, got.Message, "launch subsidy of $-20,833/month")
	assert.Equal(t, "$0.00/SF/year", got.DataTable[0].Needed)
}

func TestPricing_Idempotent(t *testing.T) {
	inputs := []struct {
		metrics model.UpstreamMetrics
		metro   model.MetroInfo
	}{
		{lease(20, 2000), existingMarket},
		{lease(80, 5000), newMarket},
		{lease(120, 5000), newMarket},
		{model.UpstreamMetrics{}, newMarket},
	}
	for _, in := range inputs {
		assert.Equal(t, Pricing(redPrice(), in.metrics, in.metro), Pricing(redPrice(), in.metrics, in.metro))
	}
}
