package todo

import (
	"math"

	"github.com/sells-group/sitepicker/internal/model"
)

const (
	// sqftPerStudent is the occupancy model used to size a building.
	sqftPerStudent = 100
	// launchStudents is the enrollment every new market opens with.
	launchStudents = 25
)

// PricingScenario is one branch of the pricing decision. The concrete types
// are PricingGeneric, RentTooHigh, LaunchSubsidy and OverCapacity.
type PricingScenario interface {
	pricingScenario()
}

// PricingGeneric applies when rent or available space is unknown.
type PricingGeneric struct{}

// Lease is the priced space and the market's green threshold.
type Lease struct {
	Rent           float64
	Space          float64
	GreenThreshold float64
}

// AnnualCost is the yearly rent for the whole space.
func (l Lease) AnnualCost() float64 { return l.Rent * l.Space }

// RentTooHigh: a school already operates in the market and the rent exceeds
// what its students support.
type RentTooHigh struct{ Lease }

// LaunchSubsidy: a new market that works at full capacity but needs a
// subsidy while it grows from 25 students.
type LaunchSubsidy struct {
	Lease
	Capacity  float64
	BreakEven float64
}

// OverCapacity: a new market that is too expensive even at full capacity.
type OverCapacity struct {
	Lease
	Capacity float64
}

func (PricingGeneric) pricingScenario() {}
func (RentTooHigh) pricingScenario()    {}
func (LaunchSubsidy) pricingScenario()  {}
func (OverCapacity) pricingScenario()   {}

// ClassifyPricing selects the pricing scenario. It returns nil when price is
// not RED, and also for a new market whose cost per launch student stays
// below the red threshold.
func ClassifyPricing(scores model.LocationScores, metrics model.UpstreamMetrics, metro model.MetroInfo) PricingScenario {
	if scores.Price.Color != model.TierRed {
		return nil
	}

	rent, space := metrics.RentPerSfYear, metrics.SpaceSizeAvailable
	if rent == nil || space == nil || *space <= 0 {
		return PricingGeneric{}
	}

	lease := Lease{Rent: *rent, Space: *space, GreenThreshold: metro.GreenThreshold}
	if metro.HasExistingAlpha {
		return RentTooHigh{lease}
	}

	annual := lease.AnnualCost()
	if annual/launchStudents < metro.RedThreshold {
		return nil
	}

	capacity := math.Floor(lease.Space / sqftPerStudent)
	if annual/capacity <= lease.GreenThreshold {
		return LaunchSubsidy{
			Lease:     lease,
			Capacity:  capacity,
			BreakEven: math.Ceil(annual / lease.GreenThreshold),
		}
	}
	return OverCapacity{Lease: lease, Capacity: capacity}
}

// Pricing returns the pricing TODO, or nil when no pricing action is needed.
func Pricing(scores model.LocationScores, metrics model.UpstreamMetrics, metro model.MetroInfo) *model.LocationTodo {
	switch s := ClassifyPricing(scores, metrics, metro).(type) {
	case PricingGeneric:
		return &model.LocationTodo{
			Type:     model.TodoPricing,
			Scenario: ScenarioPricingGeneric,
			Title:    "Pricing: Too Expensive",
			Message: "This location is too expensive at the current asking price. " +
				"If you can negotiate a lower rent with the landlord, or subsidize " +
				"the difference, we can make it work. Contact us with the best rent " +
				"you can negotiate.",
		}
	case RentTooHigh:
		return s.todo()
	case LaunchSubsidy:
		return s.todo()
	case OverCapacity:
		return s.todo()
	}
	return nil
}

func (s RentTooHigh) todo() *model.LocationTodo {
	annual := s.AnnualCost()
	students := s.Space / sqftPerStudent
	supportable := s.GreenThreshold * students
	gapAnnual := annual - supportable
	targetRent := supportable / s.Space

	return &model.LocationTodo{
		Type:     model.TodoPricing,
		Scenario: ScenarioRentTooHigh,
		Title:    "Pricing: Rent Too High",
		Message: "This location is too expensive at the current asking price. " +
			"Option 1: Negotiate the rent down. Option 2: Subsidize the gap until enrollment grows. " +
			"These can be combined — negotiate a partial rent reduction AND subsidize the remaining gap.",
		DataTable: []model.DataRow{
			rentRow(s.Rent, perSF(targetRent), gap(perSF(s.Rent-targetRent))),
			{Label: "Annual cost", Current: FmtDollars(annual), Needed: FmtDollars(supportable), Gap: gap(FmtDollars(gapAnnual))},
			{Label: "Monthly cost", Current: FmtDollars(annual / 12), Needed: FmtDollars(supportable / 12), Gap: gap(FmtDollars(gapAnnual / 12))},
			{Label: "Student capacity", Current: studentCount(students), Needed: ""},
		},
	}
}

func (s LaunchSubsidy) todo() *model.LocationTodo {
	annual := s.AnnualCost()
	supportable := s.GreenThreshold * launchStudents
	gapAnnual := annual - supportable

	return &model.LocationTodo{
		Type:     model.TodoPricing,
		Scenario: ScenarioLaunchSubsidy,
		Title:    "Pricing: New Market Launch Subsidy",
		Message: "This is a new market for Alpha. We start new markets with 25 students. " +
			"At this rent, you'll need to subsidize the gap until enrollment grows. " +
			"Subsidy decreases as enrollment grows and ends at " + Fmt(s.BreakEven) + " students " +
			"(building capacity: " + Fmt(s.Capacity) + ").",
		DataTable: []model.DataRow{
			rentRow(s.Rent, "(unchanged)", gap("")),
			{Label: "Annual cost", Current: FmtDollars(annual), Needed: FmtDollars(supportable), Gap: gap(FmtDollars(gapAnnual))},
			{Label: "Monthly cost", Current: FmtDollars(annual / 12), Needed: FmtDollars(supportable / 12), Gap: gap(FmtDollars(gapAnnual / 12))},
			{Label: "Break-even enrollment", Current: "25 students", Needed: studentCount(s.BreakEven)},
			{Label: "Building capacity", Current: studentCount(s.Capacity), Needed: ""},
		},
	}
}

func (s OverCapacity) todo() *model.LocationTodo {
	annual := s.AnnualCost()
	supportable := s.GreenThreshold * s.Capacity
	gapAnnual := annual - supportable
	targetRent := s.GreenThreshold * s.Capacity / s.Space
	launchGap := FmtDollars(round((supportable-s.GreenThreshold*launchStudents)/12)) + "/month"

	return &model.LocationTodo{
		Type:     model.TodoPricing,
		Scenario: ScenarioOverCapacity,
		Title:    "Pricing: Too Expensive Even at Capacity",
		Message: "This is a new market for Alpha. Even at full capacity (" + Fmt(s.Capacity) + " students), " +
			"the rent is too high. You'll need to negotiate the rent down " +
			"or subsidize the gap permanently. We also start new markets with 25 students, " +
			"so even at the lower rent you'll need a launch subsidy of " +
			launchGap + " that decreases as enrollment grows to " + Fmt(s.Capacity) + ".",
		DataTable: []model.DataRow{
			rentRow(s.Rent, perSF(targetRent), gap(perSF(s.Rent-targetRent))),
			{Label: "Annual cost", Current: FmtDollars(annual), Needed: FmtDollars(supportable), Gap: gap(FmtDollars(gapAnnual))},
			{Label: "Monthly cost", Current: FmtDollars(annual / 12), Needed: FmtDollars(supportable / 12), Gap: gap(FmtDollars(gapAnnual / 12))},
			{Label: "Building capacity", Current: studentCount(s.Capacity), Needed: ""},
			{Label: "Launch subsidy (at target rent)", Current: launchGap, Needed: "Ends at " + Fmt(s.Capacity) + " students"},
		},
	}
}

func rentRow(rent float64, needed string, g *string) model.DataRow {
	return model.DataRow{Label: "Rent", Current: perSF(rent), Needed: needed, Gap: g}
}

func perSF(rent float64) string { return FmtRent(rent) + "/SF/year" }

func studentCount(n float64) string { return Fmt(n) + " students" }

func gap(s string) *string { return &s }
