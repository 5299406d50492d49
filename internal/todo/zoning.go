package todo

import (
	"github.com/sells-group/sitepicker/internal/model"
)

// Scenario codes emitted in LocationTodo.Scenario.
const (
	ScenarioZoningProhibited = "Z1"

	ScenarioDemographicsGeneric = "M-generic"
	ScenarioStrongMetro         = "M1"
	ScenarioWeakMetro           = "M2"
	ScenarioVeryWeakMetro       = "M3"

	ScenarioPricingGeneric = "P-generic"
	ScenarioRentTooHigh    = "P1/P2"
	ScenarioLaunchSubsidy  = "P3a"
	ScenarioOverCapacity   = "P3b"
)

// ZoningProhibited is the only zoning outcome: schools are not permitted in
// the zone. Code is the zone designation, empty when unknown.
type ZoningProhibited struct {
	Code string
}

// ClassifyZoning returns the zoning outcome for a location, or nil when
// zoning is not RED.
func ClassifyZoning(scores model.LocationScores, metrics model.UpstreamMetrics) *ZoningProhibited {
	if scores.Zoning.Color != model.TierRed {
		return nil
	}
	return &ZoningProhibited{Code: zoneCode(metrics)}
}

// Zoning returns the zoning TODO, or nil when zoning is not a blocker.
func Zoning(scores model.LocationScores, metrics model.UpstreamMetrics) *model.LocationTodo {
	z := ClassifyZoning(scores, metrics)
	if z == nil {
		return nil
	}
	return z.todo()
}

func (z ZoningProhibited) todo() *model.LocationTodo {
	zone := ""
	if z.Code != "" {
		zone = " (" + z.Code + ")"
	}
	return &model.LocationTodo{
		Type:     model.TodoZoning,
		Scenario: ScenarioZoningProhibited,
		Title:    "Zoning: Schools Prohibited",
		Message: "Private schools are prohibited in this zone" + zone + ". " +
			"To proceed, you'll need to get a Conditional Use Permit (CUP) or get the property rezoned. " +
			"This typically takes months, so it likely won't work for this school year. " +
			"If you have contacts in local government who can expedite the process, that would help.",
	}
}

// zoneCode prefers the parcel zoning code and falls back to lot zoning.
// Empty strings count as missing.
func zoneCode(m model.UpstreamMetrics) string {
	if m.ZoningCode != nil && *m.ZoningCode != "" {
		return *m.ZoningCode
	}
	if m.LotZoning != nil {
		return *m.LotZoning
	}
	return ""
}
