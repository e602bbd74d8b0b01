// Package alternative provides mobility alternative definitions and the
// catalog they are evaluated from.
package alternative

import (
	"errors"
	"time"

	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// Sentinel errors for catalog construction and lookup.
var (
	// ErrDuplicateMode indicates two catalog entries share a mode identifier.
	ErrDuplicateMode = errors.New("duplicate mode identifier in catalog")
	// ErrUnknownMode indicates a mode identifier not present in the catalog.
	ErrUnknownMode = errors.New("unknown mode identifier")
	// ErrInvalidSpec indicates a malformed mode specification.
	ErrInvalidSpec = errors.New("invalid mode specification")
)

// CostFunc maps a trip and a persona to the monetary cost of using an
// alternative. It must be pure and total over the documented domain; a
// missing required persona attribute is an error, never a default.
type CostFunc func(t *trip.Context, p *persona.Profile) (float64, error)

// TimeFunc maps a trip and a persona to the travel time of an alternative.
// Same purity and totality requirements as CostFunc.
type TimeFunc func(t *trip.Context, p *persona.Profile) (time.Duration, error)

// Definition describes one mobility alternative as pure functions over
// trip and persona inputs plus an accessibility requirement set.
type Definition struct {
	// Mode is the unique identifier of this alternative (e.g. "bus").
	Mode string

	// Cost computes the monetary cost of the trip with this mode.
	Cost CostFunc

	// Time computes the travel time of the trip with this mode.
	Time TimeFunc

	// RequiredAbilities are persona ability tags this mode demands
	// (e.g. "can_cycle").
	RequiredAbilities []string

	// RequiredCapabilities are ownership/access tags this mode demands
	// (e.g. "has_bike").
	RequiredCapabilities []string

	// EnergyPerKm is the final energy demand in kJ per kilometre.
	// Informational; not part of the decency test.
	EnergyPerKm float64
}

// Accessible reports whether the persona's ability and capability tags
// satisfy this mode's requirements.
func (d *Definition) Accessible(p *persona.Profile) bool {
	for _, tag := range d.RequiredAbilities {
		if !p.HasAbility(tag) {
			return false
		}
	}
	for _, tag := range d.RequiredCapabilities {
		if !p.HasCapability(tag) {
			return false
		}
	}
	return true
}
