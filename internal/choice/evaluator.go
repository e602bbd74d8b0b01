package choice

import (
	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// Evaluator applies the decency test to one (persona, trip, alternative)
// triple. It holds no state; the result depends only on its inputs.
type Evaluator struct{}

// NewEvaluator creates a decency evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate computes cost, time and the three decency criteria for the
// given alternative. A cost or time function failure is a configuration
// error and is returned as *ComputationError; it is never papered over
// with a default value.
func (e *Evaluator) Evaluate(p *persona.Profile, t *trip.Context, def *alternative.Definition) (Evaluation, error) {
	cost, err := def.Cost(t, p)
	if err != nil {
		return Evaluation{}, &ComputationError{
			Mode:        def.Mode,
			PersonaID:   p.ID,
			Origin:      t.Origin,
			Destination: t.Destination,
			Err:         err,
		}
	}

	travelTime, err := def.Time(t, p)
	if err != nil {
		return Evaluation{}, &ComputationError{
			Mode:        def.Mode,
			PersonaID:   p.ID,
			Origin:      t.Origin,
			Destination: t.Destination,
			Err:         err,
		}
	}

	ev := Evaluation{
		Mode:       def.Mode,
		Cost:       cost,
		TravelTime: travelTime,
		EnergyKJ:   def.EnergyPerKm * t.DistanceKm,
		Accessible: def.Accessible(p),
		Affordable: cost <= p.Budget,
		Timely:     travelTime <= p.MaxTravelTime,
	}
	ev.Decent = ev.Accessible && ev.Affordable && ev.Timely

	// Fixed reason order: accessibility, affordability, time.
	if !ev.Decent {
		if !ev.Accessible {
			ev.Reasons = append(ev.Reasons, ReasonAccessibility)
		}
		if !ev.Affordable {
			ev.Reasons = append(ev.Reasons, ReasonAffordability)
		}
		if !ev.Timely {
			ev.Reasons = append(ev.Reasons, ReasonTime)
		}
	}

	return ev, nil
}

// inaccessible builds the evaluation for an alternative the persona cannot
// use at all. Cost and time functions are not invoked, so an
// attribute-dependent function cannot fail for a mode the persona was
// never able to choose.
func inaccessible(mode string) Evaluation {
	return Evaluation{
		Mode:    mode,
		Reasons: []FailureReason{ReasonAccessibility},
	}
}
