package metro

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/sitepicker/internal/model"
)

var upper = cases.Upper(language.Und)

func normalizeState(s string) string {
	return upper.String(strings.TrimSpace(s))
}

// FacilitiesIn returns the facilities operating in a state, in directory
// order.
func (d *Directory) FacilitiesIn(state string) []Facility {
	st := normalizeState(state)
	if st == "" {
		return nil
	}
	var out []Facility
	for _, f := range d.Facilities {
		if normalizeState(f.State) == st {
			out = append(out, f)
		}
	}
	return out
}

// ThresholdsFor returns the thresholds of the smallest tier whose ceiling is
// at least tuition. Tuitions above every ceiling use the highest tier.
func (d *Directory) ThresholdsFor(tuition float64) Thresholds {
	tiers := d.tiersAscending()
	if len(tiers) == 0 {
		return d.Unknown
	}
	for _, t := range tiers {
		if tuition <= t.MaxTuition {
			return t.Thresholds
		}
	}
	return tiers[len(tiers)-1].Thresholds
}

// Resolve computes the MetroInfo for a location. Markets are matched by
// state only; city is accepted for callers but does not affect the result.
// The market label reads "<STATE> - <Market>", e.g. "TX - Austin".
func (d *Directory) Resolve(state, city string) model.MetroInfo {
	if normalizeState(state) == "" {
		return model.MetroInfo{
			GreenThreshold: d.Unknown.Green,
			RedThreshold:   d.Unknown.Red,
		}
	}

	info := model.MetroInfo{}
	tuition := d.DefaultTuition
	if matches := d.FacilitiesIn(state); len(matches) > 0 {
		first := matches[0]
		tuition = first.Tuition
		info.HasExistingAlpha = true
		if first.Market != "" {
			market := normalizeState(first.State) + " - " + first.Market
			info.Market = &market
		}
	}
	info.Tuition = &tuition

	th := d.ThresholdsFor(tuition)
	info.GreenThreshold = th.Green
	info.RedThreshold = th.Red
	return info
}
