// Package metro resolves the market context of a location: whether a school
// already operates in its market and which cost-per-student thresholds apply.
package metro

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Facility is an operating school in a known market.
type Facility struct {
	Market  string  `yaml:"market" json:"market"`
	City    string  `yaml:"city" json:"city"`
	State   string  `yaml:"state" json:"state"`
	Tuition float64 `yaml:"tuition" json:"tuition"`
}

// Thresholds are annual cost-per-student dollar figures.
type Thresholds struct {
	Green float64 `yaml:"green" json:"green"`
	Red   float64 `yaml:"red" json:"red"`
}

// TuitionTier applies its thresholds to tuitions up to and including
// MaxTuition.
type TuitionTier struct {
	MaxTuition float64    `yaml:"max_tuition" json:"max_tuition"`
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
}

// Directory is the static reference data read by the resolver.
type Directory struct {
	Facilities []Facility    `yaml:"facilities"`
	Tiers      []TuitionTier `yaml:"tuition_tiers"`

	// DefaultTuition is assumed for states with no operating facility.
	DefaultTuition float64 `yaml:"default_tuition"`

	// Unknown applies when the location's state is not known at all.
	Unknown Thresholds `yaml:"unknown_market"`
}

// DefaultDirectory returns the built-in facility directory and tuition tiers.
func DefaultDirectory() *Directory {
	return &Directory{
		Facilities: []Facility{
			{Market: "Austin", City: "Austin", State: "TX", Tuition: 40000},
			{Market: "Brownsville", City: "Brownsville", State: "TX", Tuition: 10000},
			{Market: "Houston", City: "Houston", State: "TX", Tuition: 40000},
			{Market: "Miami", City: "Miami", State: "FL", Tuition: 50000},
			{Market: "Palm Beach", City: "West Palm Beach", State: "FL", Tuition: 50000},
			{Market: "Tampa", City: "Tampa", State: "FL", Tuition: 45000},
			{Market: "Scottsdale", City: "Scottsdale", State: "AZ", Tuition: 45000},
			{Market: "Santa Barbara", City: "Santa Barbara", State: "CA", Tuition: 50000},
			{Market: "San Francisco", City: "San Francisco", State: "CA", Tuition: 75000},
			{Market: "Charlotte", City: "Charlotte", State: "NC", Tuition: 40000},
			{Market: "Raleigh", City: "Raleigh", State: "NC", Tuition: 40000},
			{Market: "New York", City: "New York", State: "NY", Tuition: 65000},
		},
		Tiers: []TuitionTier{
			{MaxTuition: 40000, Thresholds: Thresholds{Green: 6000, Red: 10000}},
			{MaxTuition: 45000, Thresholds: Thresholds{Green: 8000, Red: 12000}},
			{MaxTuition: 50000, Thresholds: Thresholds{Green: 10000, Red: 15000}},
			{MaxTuition: 65000, Thresholds: Thresholds{Green: 15000, Red: 20000}},
			{MaxTuition: 75000, Thresholds: Thresholds{Green: 15000, Red: 20000}},
		},
		DefaultTuition: 50000,
		Unknown:        Thresholds{Green: 10000, Red: 15000},
	}
}

// LoadDirectory reads a directory from a YAML file. The file has a
// top-level "metro" key; fields it omits keep their built-in defaults.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "metro: read directory %s", path)
	}

	var wrapper struct {
		Metro *Directory `yaml:"metro"`
	}
	wrapper.Metro = DefaultDirectory()
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "metro: parse directory")
	}
	if wrapper.Metro == nil {
		return nil, eris.Errorf("metro: %s has no metro section", path)
	}

	if err := wrapper.Metro.Validate(); err != nil {
		return nil, err
	}
	return wrapper.Metro, nil
}

// Validate checks that the directory is internally consistent.
func (d *Directory) Validate() error {
	var errs []string

	if len(d.Tiers) == 0 {
		errs = append(errs, "at least one tuition tier is required")
	}
	seen := make(map[float64]bool, len(d.Tiers))
	for i, t := range d.Tiers {
		if t.MaxTuition <= 0 {
			errs = append(errs, fmt.Sprintf("tuition_tiers[%d].max_tuition must be > 0", i))
		}
		if seen[t.MaxTuition] {
			errs = append(errs, fmt.Sprintf("tuition_tiers[%d].max_tuition %.0f is duplicated", i, t.MaxTuition))
		}
		seen[t.MaxTuition] = true
		errs = append(errs, checkThresholds(fmt.Sprintf("tuition_tiers[%d]", i), t.Thresholds)...)
	}

	for i, f := range d.Facilities {
		if strings.TrimSpace(f.State) == "" {
			errs = append(errs, fmt.Sprintf("facilities[%d].state is required", i))
		}
		if f.Tuition <= 0 {
			errs = append(errs, fmt.Sprintf("facilities[%d].tuition must be > 0", i))
		}
	}

	if d.DefaultTuition <= 0 {
		errs = append(errs, "default_tuition must be > 0")
	}
	errs = append(errs, checkThresholds("unknown_market", d.Unknown)...)

	if len(errs) > 0 {
		return eris.Errorf("metro: directory validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func checkThresholds(name string, t Thresholds) []string {
	var errs []string
	if t.Green <= 0 {
		errs = append(errs, name+".green must be > 0")
	}
	if t.Red < t.Green {
		errs = append(errs, name+".red must be >= green")
	}
	return errs
}

// tiersAscending returns a copy of the tiers ordered by MaxTuition.
func (d *Directory) tiersAscending() []TuitionTier {
	tiers := append([]TuitionTier(nil), d.Tiers...)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MaxTuition < tiers[j].MaxTuition
	})
	return tiers
}
