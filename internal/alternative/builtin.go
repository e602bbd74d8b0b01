package alternative

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// Ability and capability tags used by the builtin mode specifications.
const (
	AbilityWalk  = "can_walk"
	AbilityCycle = "can_cycle"
	AbilityDrive = "can_drive"

	CapabilityBike          = "has_bike"
	CapabilityCar           = "has_car"
	CapabilityCarshare      = "carshare_member"
	AttributeCarshareTariff = "carshare_tariff_per_km"
)

// ModeSpec is a data-driven mode description that compiles into a
// Definition. Deployments can supply their own specs via a JSON catalog
// file instead of writing cost/time functions in code.
type ModeSpec struct {
	// Mode is the unique mode identifier.
	Mode string `json:"mode"`

	// SpeedKmh is the average door-to-door speed used for travel time.
	SpeedKmh float64 `json:"speedKmh"`

	// FlatFare is a fixed monetary cost per trip.
	FlatFare float64 `json:"flatFare"`

	// FarePerKm is a distance-proportional monetary cost.
	FarePerKm float64 `json:"farePerKm"`

	// FarePerKmAttribute, when set, names a persona attribute that
	// supplies the per-km rate instead of FarePerKm (e.g. a member's
	// car-share tariff). A persona missing the attribute fails the
	// evaluation rather than receiving a default rate.
	FarePerKmAttribute string `json:"farePerKmAttribute,omitempty"`

	// RequiredAbilities and RequiredCapabilities gate accessibility.
	RequiredAbilities    []string `json:"requiredAbilities,omitempty"`
	RequiredCapabilities []string `json:"requiredCapabilities,omitempty"`

	// EnergyPerKm is the final energy demand in kJ per kilometre.
	EnergyPerKm float64 `json:"energyPerKm,omitempty"`
}

// Compile turns the spec into an alternative definition.
func (s ModeSpec) Compile() (Definition, error) {
	if s.Mode == "" {
		return Definition{}, fmt.Errorf("%w: empty mode identifier", ErrInvalidSpec)
	}
	if s.SpeedKmh <= 0 {
		return Definition{}, fmt.Errorf("%w: mode %q: speed must be > 0", ErrInvalidSpec, s.Mode)
	}
	if s.FlatFare < 0 || s.FarePerKm < 0 {
		return Definition{}, fmt.Errorf("%w: mode %q: fares must be >= 0", ErrInvalidSpec, s.Mode)
	}

	spec := s // captured by the closures below

	cost := func(t *trip.Context, p *persona.Profile) (float64, error) {
		perKm := spec.FarePerKm
		if spec.FarePerKmAttribute != "" {
			rate, err := p.RequireAttribute(spec.FarePerKmAttribute)
			if err != nil {
				return 0, err
			}
			perKm = rate
		}
		return spec.FlatFare + perKm*t.DistanceKm, nil
	}

	tt := func(t *trip.Context, _ *persona.Profile) (time.Duration, error) {
		hours := t.DistanceKm / spec.SpeedKmh
		return time.Duration(hours * float64(time.Hour)), nil
	}

	return Definition{
		Mode:                 spec.Mode,
		Cost:                 cost,
		Time:                 tt,
		RequiredAbilities:    append([]string(nil), spec.RequiredAbilities...),
		RequiredCapabilities: append([]string(nil), spec.RequiredCapabilities...),
		EnergyPerKm:          spec.EnergyPerKm,
	}, nil
}

// DefaultSpecs returns the builtin mode specifications: walk, cycle, bus,
// car and car-share. Speeds and fares are door-to-door averages; energy
// figures are final energy demand per person-kilometre.
func DefaultSpecs() []ModeSpec {
	return []ModeSpec{
		{
			Mode:              "walk",
			SpeedKmh:          4,
			RequiredAbilities: []string{AbilityWalk},
			EnergyPerKm:       170, // metabolic
		},
		{
			Mode:                 "cycle",
			SpeedKmh:             15,
			RequiredAbilities:    []string{AbilityCycle},
			RequiredCapabilities: []string{CapabilityBike},
			EnergyPerKm:          110,
		},
		{
			Mode:        "bus",
			SpeedKmh:    20,
			FlatFare:    2,
			EnergyPerKm: 560,
		},
		{
			Mode:                 "car",
			SpeedKmh:             40,
			FarePerKm:            0.8,
			RequiredAbilities:    []string{AbilityDrive},
			RequiredCapabilities: []string{CapabilityCar},
			EnergyPerKm:          2100,
		},
		{
			Mode:                 "carshare",
			SpeedKmh:             40,
			FlatFare:             3,
			FarePerKmAttribute:   AttributeCarshareTariff,
			RequiredAbilities:    []string{AbilityDrive},
			RequiredCapabilities: []string{CapabilityCarshare},
			EnergyPerKm:          2100,
		},
	}
}

// NewCatalogFromSpecs compiles the specs and builds a catalog in spec order.
func NewCatalogFromSpecs(specs []ModeSpec) (*Catalog, error) {
	defs := make([]Definition, 0, len(specs))
	for _, s := range specs {
		d, err := s.Compile()
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return NewCatalog(defs...)
}

// DefaultCatalog builds a catalog from the builtin specs.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalogFromSpecs(DefaultSpecs())
}

// LoadSpecs reads mode specifications from a JSON catalog file.
func LoadSpecs(path string) ([]ModeSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var specs []ModeSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return specs, nil
}
