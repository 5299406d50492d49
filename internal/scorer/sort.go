package scorer

import (
	"cmp"
	"slices"

	"github.com/sells-group/sitepicker/internal/model"
)

// unrankedOverall places locations without a recognized overall tier last.
const unrankedOverall = 99

// overallRank orders overall tiers best first: GREEN 0 ... RED 3.
func overallRank(t model.Tier) int {
	if r := Rank(t); r >= 0 {
		return 3 - r
	}
	return unrankedOverall
}

// GreenSubRank weights GREEN sub-scores so that zoning outranks
// neighborhood, which outranks building, which outranks price.
func GreenSubRank(s model.LocationScores) int {
	rank := 0
	if s.Price.Color == model.TierGreen {
		rank += 1
	}
	if s.Building.Color == model.TierGreen {
		rank += 2
	}
	if s.Neighborhood.Color == model.TierGreen {
		rank += 4
	}
	if s.Zoning.Color == model.TierGreen {
		rank += 8
	}
	return rank
}

// CompareViability orders a before b when a is more viable: proposed
// first, then overall tier, then green sub-scores, then votes.
func CompareViability(a, b model.Location) int {
	if c := compareProposed(a, b); c != 0 {
		return c
	}
	as, bs := MapScores(a.Scores), MapScores(b.Scores)
	if c := cmp.Compare(overallRank(as.OverallColor), overallRank(bs.OverallColor)); c != 0 {
		return c
	}
	if c := cmp.Compare(GreenSubRank(bs), GreenSubRank(as)); c != 0 {
		return c
	}
	return cmp.Compare(b.Votes, a.Votes)
}

// CompareSupport orders by votes first and falls back to viability.
func CompareSupport(a, b model.Location) int {
	if c := compareProposed(a, b); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
		return c
	}
	return CompareViability(a, b)
}

func compareProposed(a, b model.Location) int {
	switch {
	case a.Proposed && !b.Proposed:
		return -1
	case !a.Proposed && b.Proposed:
		return 1
	}
	return 0
}

// SortMostViable sorts locations in place, most viable first.
func SortMostViable(locs []model.Location) {
	slices.SortStableFunc(locs, CompareViability)
}

// SortMostSupport sorts locations in place, most voted first.
func SortMostSupport(locs []model.Location) {
	slices.SortStableFunc(locs, CompareSupport)
}
