// Package choice provides the decency evaluator and choice engine: the
// decision core that judges mobility alternatives against a persona's
// affordability, time and accessibility thresholds.
package choice

import (
	"errors"
	"fmt"
	"time"
)

// FailureReason identifies a decency criterion an alternative failed.
type FailureReason string

// Failure reasons, in their fixed diagnostic order.
const (
	ReasonAccessibility FailureReason = "accessibility"
	ReasonAffordability FailureReason = "affordability"
	ReasonTime          FailureReason = "time"
)

// ErrInvalidWeights indicates non-normalizable utility weights.
var ErrInvalidWeights = errors.New("invalid utility weights")

// Evaluation is the per-alternative result of one decency test. It is
// computed fresh per call and never persisted.
type Evaluation struct {
	// Mode is the alternative's identifier.
	Mode string

	// Cost is the monetary cost of the trip with this alternative. Zero
	// when the alternative was not accessible to the persona (the cost
	// function is not invoked in that case).
	Cost float64

	// TravelTime is the travel time with this alternative. Zero when not
	// accessible, as with Cost.
	TravelTime time.Duration

	// EnergyKJ is the final energy demand of the trip. Informational.
	EnergyKJ float64

	Accessible bool
	Affordable bool
	Timely     bool

	// Decent is true iff the alternative is accessible, affordable and
	// timely for this persona and trip.
	Decent bool

	// Score is the ranking score assigned by the engine. Only meaningful
	// for decent alternatives; higher is better.
	Score float64

	// Reasons lists the failed criteria in the fixed order
	// {accessibility, affordability, time}. Empty when decent.
	Reasons []FailureReason
}

// Decision is the outcome of one choice engine invocation: one evaluation
// per catalog entry, in catalog order, plus the chosen alternative when any
// is decent. A Decision is a pure value; repeated calls with identical
// inputs produce identical Decisions.
type Decision struct {
	PersonaID   string
	Origin      string
	Destination string

	// Chosen is the highest-ranked decent alternative's mode identifier,
	// empty when no alternative is decent.
	Chosen string

	// MobilityDeprived is true iff no alternative is decent for this
	// persona and trip. This is a primary analytical outcome, not an
	// error condition.
	MobilityDeprived bool

	Evaluations []Evaluation
}

// ComputationError indicates an alternative's cost or time function could
// not produce a value for the given persona and trip, e.g. a required
// persona attribute is absent. The engine never substitutes a default.
type ComputationError struct {
	Mode        string
	PersonaID   string
	Origin      string
	Destination string
	Err         error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("evaluating mode %q for persona %q (%s -> %s): %v",
		e.Mode, e.PersonaID, e.Origin, e.Destination, e.Err)
}

func (e *ComputationError) Unwrap() error {
	return e.Err
}
