package choice

import (
	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// Engine orchestrates one mobility decision: filter the catalog by
// availability, evaluate decency per alternative, rank the decent subset
// and select. Each call is an independent, stateless computation; engines
// are safe for concurrent use.
type Engine struct {
	config    Config
	evaluator *Evaluator
}

// NewEngine creates a choice engine with the given utility weights.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		config:    cfg,
		evaluator: NewEvaluator(),
	}, nil
}

// Option adjusts a single Choose invocation.
type Option func(*chooseOptions)

type chooseOptions struct {
	modesUnavailable map[string]struct{}
}

// WithModesUnavailable masks catalog modes for one invocation, e.g. for a
// car-free scenario run. Masked modes are reported as inaccessible.
func WithModesUnavailable(modes ...string) Option {
	return func(o *chooseOptions) {
		if o.modesUnavailable == nil {
			o.modesUnavailable = make(map[string]struct{}, len(modes))
		}
		for _, m := range modes {
			o.modesUnavailable[m] = struct{}{}
		}
	}
}

// Choose evaluates every catalog alternative for the persona and trip and
// returns the decision. The evaluation list carries one entry per catalog
// alternative in declaration order, so callers can distinguish "not
// available to this persona" from "available but not decent". An empty
// decent subset yields MobilityDeprived, which is a valid outcome, not an
// error.
func (e *Engine) Choose(p *persona.Profile, t *trip.Context, catalog *alternative.Catalog, opts ...Option) (*Decision, error) {
	var options chooseOptions
	for _, opt := range opts {
		opt(&options)
	}

	defs := catalog.Definitions()
	evals := make([]Evaluation, 0, len(defs))
	feasible := make([]int, 0, len(defs))

	for i := range defs {
		def := &defs[i]

		if _, masked := options.modesUnavailable[def.Mode]; masked || !def.Accessible(p) {
			evals = append(evals, inaccessible(def.Mode))
			continue
		}

		ev, err := e.evaluator.Evaluate(p, t, def)
		if err != nil {
			return nil, err
		}
		if ev.Decent {
			feasible = append(feasible, len(evals))
		}
		evals = append(evals, ev)
	}

	decision := &Decision{
		PersonaID:   p.ID,
		Origin:      t.Origin,
		Destination: t.Destination,
		Evaluations: evals,
	}

	if len(feasible) == 0 {
		decision.MobilityDeprived = true
		return decision, nil
	}

	e.scoreFeasible(evals, feasible)
	decision.Chosen = evals[e.pickBest(p, evals, feasible)].Mode
	return decision, nil
}

// scoreFeasible assigns ranking scores to the decent alternatives. Cost
// and time are normalized by the maximum value within the decent subset;
// a zero maximum contributes nothing rather than dividing by zero. Higher
// scores rank better.
func (e *Engine) scoreFeasible(evals []Evaluation, feasible []int) {
	var maxCost, maxTime float64
	for _, i := range feasible {
		if evals[i].Cost > maxCost {
			maxCost = evals[i].Cost
		}
		if mins := evals[i].TravelTime.Minutes(); mins > maxTime {
			maxTime = mins
		}
	}

	for _, i := range feasible {
		var costTerm, timeTerm float64
		if maxCost > 0 {
			costTerm = evals[i].Cost / maxCost
		}
		if maxTime > 0 {
			timeTerm = evals[i].TravelTime.Minutes() / maxTime
		}
		evals[i].Score = -(e.config.CostWeight*costTerm + e.config.TimeWeight*timeTerm)
	}
}

// pickBest returns the index of the highest-ranked decent alternative.
// Ties break by the persona's mode preference order, then by catalog
// declaration order, guaranteeing a deterministic total order.
func (e *Engine) pickBest(p *persona.Profile, evals []Evaluation, feasible []int) int {
	best := feasible[0]
	for _, i := range feasible[1:] {
		switch {
		case evals[i].Score > evals[best].Score:
			best = i
		case evals[i].Score == evals[best].Score &&
			p.PreferenceIndex(evals[i].Mode) < p.PreferenceIndex(evals[best].Mode):
			best = i
		}
	}
	return best
}
