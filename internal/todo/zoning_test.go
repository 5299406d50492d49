package todo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/sitepicker/internal/model"
)

func zoningColor(c model.Tier) model.LocationScores {
	return model.LocationScores{Zoning: model.SubScore{Score: model.Float(0.1), Color: c}}
}

func TestZoning_NotRed(t *testing.T) {
	for _, c := range []model.Tier{model.TierGreen, model.TierYellow, model.TierAmber, model.TierNone, "red", "PURPLE"} {
		t.Run(string(c), func(t *testing.T) {
			assert.Nil(t, Zoning(zoningColor(c), model.UpstreamMetrics{ZoningCode: model.String("R-1")}))
			assert.Nil(t, ClassifyZoning(zoningColor(c), model.UpstreamMetrics{}))
		})
	}
}

func TestZoning_NamesZoneCode(t *testing.T) {
	got := Zoning(zoningColor(model.TierRed), model.UpstreamMetrics{ZoningCode: model.String("R-1")})
	require.NotNil(t, got)
	assert.Equal(t, model.TodoZoning, got.Type)
	assert.Equal(t, "Z1", got.Scenario)
	assert.Equal(t, "Zoning: Schools Prohibited", got.Title)
	assert.Contains(t, got.Message, "(R-1)")
	assert.Equal(t,
		"Private schools are prohibited in this zone (R-1). "+
			"To proceed, you'll need to get a Conditional Use Permit (CUP) or get the property rezoned. "+
			"This typically takes months, so it likely won't work for this school year. "+
			"If you have contacts in local government who can expedite the process, that would help.",
		got.Message)
	assert.Nil(t, got.DataTable)
}

func TestZoning_CodeFallback(t *testing.T) {
	tests := []struct {
		name    string
		metrics model.UpstreamMetrics
		prefix  string
	}{
		{
			name:    "zoning code wins",
			metrics: model.UpstreamMetrics{ZoningCode: model.String("R-1"), LotZoning: model.String("C-2")},
			prefix:  "Private schools are prohibited in this zone (R-1). ",
		},
		{
			name:    "lot zoning when code missing",
			metrics: model.UpstreamMetrics{LotZoning: model.String("C-2")},
			prefix:  "Private schools are prohibited in this zone (C-2). ",
		},
		{
			name:    "lot zoning when code empty",
			metrics: model.UpstreamMetrics{ZoningCode: model.String(""), LotZoning: model.String("C-2")},
			prefix:  "Private schools are prohibited in this zone (C-2). ",
		},
		{
			name:    "no code at all",
			metrics: model.UpstreamMetrics{},
			prefix:  "Private schools are prohibited in this zone. ",
		},
		{
			name:    "empty lot zoning",
			metrics: model.UpstreamMetrics{LotZoning: model.String("")},
			prefix:  "Private schools are prohibited in this zone. ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Zoning(zoningColor(model.TierRed), tt.metrics)
			require.NotNil(t, got)
			assert.Equal(t, tt.prefix, got.Message[:len(tt.prefix)])
		})
	}
}
