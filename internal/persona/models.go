// Package persona provides persona profile management services.
package persona

import (
	"errors"
	"fmt"
	"time"
)

// Repository errors.
var (
	ErrProfileNotFound = errors.New("persona profile not found")
)

// ErrAttributeMissing indicates a persona lacks a numeric attribute that an
// alternative's cost or time function requires. It is never substituted with
// a default value.
var ErrAttributeMissing = errors.New("required persona attribute missing")

// Profile describes a decision-maker: budget, time tolerance, abilities,
// mode access and preferences. A Profile is immutable once constructed;
// the choice engine only ever reads it.
type Profile struct {
	ID   string
	Name string

	// Budget is the monetary budget per trip (currency-agnostic).
	Budget float64

	// MaxTravelTime is the maximum acceptable travel time per trip.
	MaxTravelTime time.Duration

	// Abilities are the ability tags the persona satisfies
	// (e.g. "can_walk", "can_cycle", "can_drive").
	Abilities []string

	// Capabilities are owned or accessible mode resources
	// (e.g. "has_bike", "has_car", "carshare_member").
	Capabilities []string

	// Preferences is the ordered mode preference list used for ranking
	// tie-breaks. Earlier entries win.
	Preferences []string

	// Attributes holds numeric persona attributes consumed by cost and
	// time functions (e.g. "carshare_tariff_per_km").
	Attributes map[string]float64

	// TripNeeds counts required trips per destination, used by the batch
	// driver to expand a persona's demand into evaluations.
	TripNeeds map[string]int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldError represents a validation error on a specific profile field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports malformed profile configuration. It is raised at
// construction time, before any evaluation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid persona profile: %s %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("invalid persona profile: %d field errors", len(e.Errors))
}

// NewProfile validates and constructs an immutable Profile. Slices and maps
// are copied so later mutation by the caller cannot leak into evaluations.
func NewProfile(p Profile) (*Profile, error) {
	var errs []FieldError

	if p.ID == "" {
		errs = append(errs, FieldError{Field: "id", Message: "is required"})
	}
	if p.Budget < 0 {
		errs = append(errs, FieldError{Field: "budget", Message: "must be >= 0"})
	}
	if p.MaxTravelTime <= 0 {
		errs = append(errs, FieldError{Field: "maxTravelTime", Message: "must be > 0"})
	}
	for destination, count := range p.TripNeeds {
		if count < 0 {
			errs = append(errs, FieldError{
				Field:   "tripNeeds." + destination,
				Message: "must be >= 0",
			})
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	cpy := p
	cpy.Abilities = append([]string(nil), p.Abilities...)
	cpy.Capabilities = append([]string(nil), p.Capabilities...)
	cpy.Preferences = append([]string(nil), p.Preferences...)
	if p.Attributes != nil {
		cpy.Attributes = make(map[string]float64, len(p.Attributes))
		for k, v := range p.Attributes {
			cpy.Attributes[k] = v
		}
	}
	if p.TripNeeds != nil {
		cpy.TripNeeds = make(map[string]int, len(p.TripNeeds))
		for k, v := range p.TripNeeds {
			cpy.TripNeeds[k] = v
		}
	}

	return &cpy, nil
}

// HasAbility reports whether the persona satisfies the given ability tag.
func (p *Profile) HasAbility(tag string) bool {
	return contains(p.Abilities, tag)
}

// HasCapability reports whether the persona owns or can access the given
// mode resource.
func (p *Profile) HasCapability(tag string) bool {
	return contains(p.Capabilities, tag)
}

// PreferenceIndex returns the position of mode in the persona's preference
// list, or len(Preferences) when the mode is not preferred at all.
func (p *Profile) PreferenceIndex(mode string) int {
	for i, m := range p.Preferences {
		if m == mode {
			return i
		}
	}
	return len(p.Preferences)
}

// RequireAttribute returns the named numeric attribute. A missing attribute
// is a configuration error (ErrAttributeMissing), never a silent default:
// defaulting here would corrupt the decency determination.
func (p *Profile) RequireAttribute(name string) (float64, error) {
	v, ok := p.Attributes[name]
	if !ok {
		return 0, fmt.Errorf("persona %q: attribute %q: %w", p.ID, name, ErrAttributeMissing)
	}
	return v, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
