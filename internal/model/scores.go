package model

// Tier is a qualitative rating derived from a score. The zero value means
// the dimension is unscored.
type Tier string

const (
	TierGreen  Tier = "GREEN"
	TierYellow Tier = "YELLOW"
	TierAmber  Tier = "AMBER"
	TierRed    Tier = "RED"
	TierNone   Tier = ""
)

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierGreen, TierYellow, TierAmber, TierRed:
		return true
	}
	return false
}

// SubScore is one scored dimension of a location. Score is a 0-1 fraction.
type SubScore struct {
	Score      *float64 `json:"score"`
	Color      Tier     `json:"color,omitempty"`
	DetailsURL *string  `json:"detailsUrl"`
}

// LocationScores aggregates the overall score (0-100 scale) and the five
// sub-scores of a location.
type LocationScores struct {
	Overall            *float64 `json:"overall"`
	OverallColor       Tier     `json:"overallColor,omitempty"`
	OverallDetailsURL  *string  `json:"overallDetailsUrl"`
	Demographics       SubScore `json:"demographics"`
	Price              SubScore `json:"price"`
	Zoning             SubScore `json:"zoning"`
	Neighborhood       SubScore `json:"neighborhood"`
	Building           SubScore `json:"building"`
	SizeClassification *string  `json:"sizeClassification"`
}

// ScoreRow is the raw score record as supplied by the upstream scoring
// system. Colors are authoritative when present.
type ScoreRow struct {
	OverallScore      *float64 `json:"overall_score" db:"overall_score"`
	OverallColor      *string  `json:"overall_color" db:"overall_color"`
	OverallDetailsURL *string  `json:"overall_details_url" db:"overall_details_url"`

	DemographicsScore      *float64 `json:"demographics_score" db:"demographics_score"`
	DemographicsColor      *string  `json:"demographics_color" db:"demographics_color"`
	DemographicsDetailsURL *string  `json:"demographics_details_url" db:"demographics_details_url"`

	PriceScore      *float64 `json:"price_score" db:"price_score"`
	PriceColor      *string  `json:"price_color" db:"price_color"`
	PriceDetailsURL *string  `json:"price_details_url" db:"price_details_url"`

	ZoningScore      *float64 `json:"zoning_score" db:"zoning_score"`
	ZoningColor      *string  `json:"zoning_color" db:"zoning_color"`
	ZoningDetailsURL *string  `json:"zoning_details_url" db:"zoning_details_url"`

	NeighborhoodScore      *float64 `json:"neighborhood_score" db:"neighborhood_score"`
	NeighborhoodColor      *string  `json:"neighborhood_color" db:"neighborhood_color"`
	NeighborhoodDetailsURL *string  `json:"neighborhood_details_url" db:"neighborhood_details_url"`

	BuildingScore      *float64 `json:"building_score" db:"building_score"`
	BuildingColor      *string  `json:"building_color" db:"building_color"`
	BuildingDetailsURL *string  `json:"building_details_url" db:"building_details_url"`

	SizeClassification *string `json:"size_classification" db:"size_classification"`
}

// UpstreamMetrics holds raw market and site facts for one location.
// Every field is optional; missing data is an expected state.
type UpstreamMetrics struct {
	EnrollmentScore         *float64 `json:"enrollmentScore"`
	WealthScore             *float64 `json:"wealthScore"`
	RelativeEnrollmentScore *float64 `json:"relativeEnrollmentScore"`
	RelativeWealthScore     *float64 `json:"relativeWealthScore"`
	RentPerSfYear           *float64 `json:"rentPerSfYear"`
	RentPeriod              *string  `json:"rentPeriod"`
	SpaceSizeAvailable      *float64 `json:"spaceSizeAvailable"`
	SizeClassification      *string  `json:"sizeClassification"`
	ZoningCode              *string  `json:"zoningCode"`
	LotZoning               *string  `json:"lotZoning"`
	County                  *string  `json:"county"`
	City                    *string  `json:"city"`
	State                   *string  `json:"state"`
}

// MetroInfo is the market context derived for a location's state.
type MetroInfo struct {
	Market           *string  `json:"market"`
	Tuition          *float64 `json:"tuition"`
	HasExistingAlpha bool     `json:"hasExistingAlpha"`
	GreenThreshold   float64  `json:"greenThreshold"`
	RedThreshold     float64  `json:"redThreshold"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }
