package todo

import (
	"github.com/sells-group/sitepicker/internal/model"
)

const (
	strongMetroScore = 2500
	viableMetroScore = 1000
)

// DemographicsScenario is one branch of the demographics decision. The
// concrete types are DemographicsGeneric, StrongMetro, WeakMetro and
// VeryWeakMetro.
type DemographicsScenario interface {
	demographicsScenario()
}

// DemographicsGeneric applies when raw demographic scores are missing.
type DemographicsGeneric struct{}

// DemographicFigures are a location's raw scores and the metro maxima
// derived from them.
type DemographicFigures struct {
	Enrollment         float64
	Wealth             float64
	MetroMaxEnrollment float64
	MetroMaxWealth     float64
}

// StrongMetro: both metro maxima reach 2,500; the submarket is weak.
type StrongMetro struct{ DemographicFigures }

// WeakMetro: either metro maximum reaches 1,000.
type WeakMetro struct{ DemographicFigures }

// VeryWeakMetro: the metro cannot support the minimum efficient size.
type VeryWeakMetro struct{ DemographicFigures }

func (DemographicsGeneric) demographicsScenario() {}
func (StrongMetro) demographicsScenario()         {}
func (WeakMetro) demographicsScenario()           {}
func (VeryWeakMetro) demographicsScenario()       {}

// ClassifyDemographics selects the demographics scenario, or returns nil
// when demographics is not RED.
func ClassifyDemographics(scores model.LocationScores, metrics model.UpstreamMetrics) DemographicsScenario {
	if scores.Demographics.Color != model.TierRed {
		return nil
	}

	es, ws := metrics.EnrollmentScore, metrics.WealthScore
	res, rws := metrics.RelativeEnrollmentScore, metrics.RelativeWealthScore
	if es == nil || ws == nil || res == nil || rws == nil {
		return DemographicsGeneric{}
	}

	f := DemographicFigures{
		Enrollment:         *es,
		Wealth:             *ws,
		MetroMaxEnrollment: metroMax(*es, *res),
		MetroMaxWealth:     metroMax(*ws, *rws),
	}
	switch {
	case f.MetroMaxEnrollment >= strongMetroScore && f.MetroMaxWealth >= strongMetroScore:
		return StrongMetro{f}
	case f.MetroMaxEnrollment >= viableMetroScore || f.MetroMaxWealth >= viableMetroScore:
		return WeakMetro{f}
	default:
		return VeryWeakMetro{f}
	}
}

// metroMax inverts the submarket normalization. Non-positive relative
// scores yield 0.
func metroMax(absolute, relative float64) float64 {
	if relative > 0 {
		return absolute / relative
	}
	return 0
}

// Demographics returns the demographics TODO, or nil when demographics is
// not a blocker.
func Demographics(scores model.LocationScores, metrics model.UpstreamMetrics) *model.LocationTodo {
	switch s := ClassifyDemographics(scores, metrics).(type) {
	case DemographicsGeneric:
		return &model.LocationTodo{
			Type:     model.TodoDemographics,
			Scenario: ScenarioDemographicsGeneric,
			Title:    "Demographics: Area Needs More Families",
			Message: "Our demographics analysis shows this area may not have enough affluent families " +
				"to support a school. If you can get 25 enrolled students (deposits paid) for this " +
				"location, we'll open it.",
		}
	case StrongMetro:
		return &model.LocationTodo{
			Type:     model.TodoDemographics,
			Scenario: ScenarioStrongMetro,
			Title:    "Demographics: Weak Submarket, Strong Metro",
			Message: "Our demographics show this isn't the strongest part of town, but we trust your recommendation. " +
				"If you can get 25 enrolled students (deposits paid) for this location, we'll open it.",
			DataTable: s.table("2,500+"),
		}
	case WeakMetro:
		return &model.LocationTodo{
			Type:     model.TodoDemographics,
			Scenario: ScenarioWeakMetro,
			Title:    "Demographics: Weak Metro",
			Message: "Our demographics show this metro can't support a 250-person Alpha long term, " +
				"but we trust your recommendation. If you can get 25 enrolled students " +
				"(deposits paid) for this location, we'll open it.",
			DataTable: s.table("2,500+"),
		}
	case VeryWeakMetro:
		return &model.LocationTodo{
			Type:     model.TodoDemographics,
			Scenario: ScenarioVeryWeakMetro,
			Title:    "Demographics: Very Weak Metro",
			Message: "Our demographics show this metro can't support a 250-student Alpha. " +
				"It can't even support our minimum efficient size (100 students). " +
				"We're happy to move forward, but this will require significant financial commitment from you. " +
				"If you can provide a space suitable for 50+ students (5,000+ SF) and get us started " +
				"with 25 enrolled students (deposits paid), we'll get this going. " +
				"We'll take the risk to get from 25 to 50. If we get demand beyond 50, " +
				"we can take the next step on our own.",
			DataTable: s.table("1,000+"),
		}
	}
	return nil
}

// table builds the four-row score comparison. metroTarget is the needed
// value shown on the metro max rows.
func (f DemographicFigures) table(metroTarget string) []model.DataRow {
	return []model.DataRow{
		{Label: "This location's enrollment score", Current: Fmt(round(f.Enrollment)), Needed: "2,500+"},
		{Label: "Metro max enrollment score", Current: Fmt(round(f.MetroMaxEnrollment)), Needed: metroTarget},
		{Label: "This location's wealth score", Current: Fmt(round(f.Wealth)), Needed: "2,500+"},
		{Label: "Metro max wealth score", Current: Fmt(round(f.MetroMaxWealth)), Needed: metroTarget},
	}
}
