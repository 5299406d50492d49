package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/sitepicker/internal/model"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }

func TestColorFromScore(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  model.Tier
	}{
		{"nil", nil, model.TierNone},
		{"perfect", ptrFloat64(1), model.TierGreen},
		{"green boundary", ptrFloat64(0.75), model.TierGreen},
		{"just below green", ptrFloat64(0.7499), model.TierYellow},
		{"yellow boundary", ptrFloat64(0.5), model.TierYellow},
		{"amber boundary", ptrFloat64(0.25), model.TierAmber},
		{"just below amber", ptrFloat64(0.2499), model.TierRed},
		{"zero", ptrFloat64(0), model.TierRed},
		{"negative", ptrFloat64(-0.3), model.TierRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorFromScore(tt.score))
		})
	}
}

func TestColorFromOverall(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  model.Tier
	}{
		{"nil", nil, model.TierNone},
		{"100", ptrFloat64(100), model.TierGreen},
		{"75", ptrFloat64(75), model.TierGreen},
		{"74.9", ptrFloat64(74.9), model.TierYellow},
		{"50", ptrFloat64(50), model.TierYellow},
		{"25", ptrFloat64(25), model.TierAmber},
		{"24", ptrFloat64(24), model.TierRed},
		// The overall scale is not normalized: a fraction-looking value is RED.
		{"0.9 is not 90", ptrFloat64(0.9), model.TierRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ColorFromOverall(tt.score))
		})
	}
}

func TestColorFromScore_Monotonic(t *testing.T) {
	prev := Rank(ColorFromScore(ptrFloat64(0)))
	for i := 1; i <= 1000; i++ {
		r := Rank(ColorFromScore(ptrFloat64(float64(i) / 1000)))
		assert.GreaterOrEqual(t, r, prev, "score %d/1000", i)
		prev = r
	}
}

func TestColorFromOverall_Monotonic(t *testing.T) {
	prev := Rank(ColorFromOverall(ptrFloat64(0)))
	for i := 1; i <= 1000; i++ {
		r := Rank(ColorFromOverall(ptrFloat64(float64(i) / 10)))
		assert.GreaterOrEqual(t, r, prev, "score %d/10", i)
		prev = r
	}
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(model.TierRed))
	assert.Equal(t, 1, Rank(model.TierAmber))
	assert.Equal(t, 2, Rank(model.TierYellow))
	assert.Equal(t, 3, Rank(model.TierGreen))
	assert.Equal(t, -1, Rank(model.TierNone))
	assert.Equal(t, -1, Rank(model.Tier("PURPLE")))
}
