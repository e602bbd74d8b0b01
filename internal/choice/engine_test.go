package choice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/choice"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// commuteCatalog mirrors the builtin walk/bus/car trio: walk free but slow,
// bus cheap and moderate, car fast but pricey and gated on driving.
func commuteCatalog(t *testing.T) *alternative.Catalog {
	t.Helper()

	walk := alternative.Definition{
		Mode: "walk",
		Cost: func(_ *trip.Context, _ *persona.Profile) (float64, error) { return 0, nil },
		Time: func(tc *trip.Context, _ *persona.Profile) (time.Duration, error) {
			return time.Duration(tc.DistanceKm / 4 * float64(time.Hour)), nil
		},
		RequiredAbilities: []string{"can_walk"},
	}
	bus := alternative.Definition{
		Mode: "bus",
		Cost: func(_ *trip.Context, _ *persona.Profile) (float64, error) { return 2, nil },
		Time: func(tc *trip.Context, _ *persona.Profile) (time.Duration, error) {
			return time.Duration(tc.DistanceKm / 20 * float64(time.Hour)), nil
		},
	}
	car := alternative.Definition{
		Mode: "car",
		Cost: func(tc *trip.Context, _ *persona.Profile) (float64, error) {
			return 0.8 * tc.DistanceKm, nil
		},
		Time: func(tc *trip.Context, _ *persona.Profile) (time.Duration, error) {
			return time.Duration(tc.DistanceKm / 40 * float64(time.Hour)), nil
		},
		RequiredAbilities:    []string{"can_drive"},
		RequiredCapabilities: []string{"has_car"},
	}

	catalog, err := alternative.NewCatalog(walk, bus, car)
	require.NoError(t, err)
	return catalog
}

func newEngine(t *testing.T) *choice.Engine {
	t.Helper()
	engine, err := choice.NewEngine(choice.DefaultConfig())
	require.NoError(t, err)
	return engine
}

func TestChooseSelectsOnlyDecentAlternative(t *testing.T) {
	// 10 km with budget 5 and 60 minutes: walking takes 150 minutes, the
	// car is inaccessible, the bus is the only decent alternative.
	engine := newEngine(t)
	catalog := commuteCatalog(t)

	p := mustProfile(t, persona.Profile{
		ID:            "commuter",
		Budget:        5,
		MaxTravelTime: 60 * time.Minute,
		Abilities:     []string{"can_walk"},
	})
	tc := mustTrip(t, trip.Context{Origin: "home", Destination: "work", DistanceKm: 10})

	decision, err := engine.Choose(p, tc, catalog)
	require.NoError(t, err)

	assert.False(t, decision.MobilityDeprived)
	assert.Equal(t, "bus", decision.Chosen)
	require.Len(t, decision.Evaluations, 3)

	walk, bus, car := decision.Evaluations[0], decision.Evaluations[1], decision.Evaluations[2]
	assert.Equal(t, []choice.FailureReason{choice.ReasonTime}, walk.Reasons)
	assert.True(t, bus.Decent)
	assert.Equal(t, []choice.FailureReason{choice.ReasonAccessibility}, car.Reasons)
}

func TestChooseMobilityDeprived(t *testing.T) {
	// Budget 1 makes the bus unaffordable too: no decent alternative.
	engine := newEngine(t)
	catalog := commuteCatalog(t)

	p := mustProfile(t, persona.Profile{
		ID:            "constrained",
		Budget:        1,
		MaxTravelTime: 60 * time.Minute,
		Abilities:     []string{"can_walk"},
	})
	tc := mustTrip(t, trip.Context{Origin: "home", Destination: "work", DistanceKm: 10})

	decision, err := engine.Choose(p, tc, catalog)
	require.NoError(t, err)

	assert.True(t, decision.MobilityDeprived)
	assert.Empty(t, decision.Chosen)
	assert.Len(t, decision.Evaluations, 3)
	for _, ev := range decision.Evaluations {
		assert.False(t, ev.Decent, "mode %s", ev.Mode)
	}
}

func TestChooseInaccessibleModeSkipsFunctions(t *testing.T) {
	// A cost function that would fail for this persona must not run when
	// the mode is already inaccessible.
	tariff := alternative.Definition{
		Mode: "carshare",
		Cost: func(_ *trip.Context, p *persona.Profile) (float64, error) {
			return p.RequireAttribute("carshare_tariff_per_km")
		},
		Time: func(_ *trip.Context, _ *persona.Profile) (time.Duration, error) {
			return 15 * time.Minute, nil
		},
		RequiredCapabilities: []string{"carshare_member"},
	}
	bus := alternative.Definition{
		Mode: "bus",
		Cost: func(_ *trip.Context, _ *persona.Profile) (float64, error) { return 2, nil },
		Time: func(_ *trip.Context, _ *persona.Profile) (time.Duration, error) {
			return 30 * time.Minute, nil
		},
	}
	catalog, err := alternative.NewCatalog(tariff, bus)
	require.NoError(t, err)

	p := mustProfile(t, persona.Profile{
		ID:            "p1",
		Budget:        5,
		MaxTravelTime: time.Hour,
	})
	tc := mustTrip(t, trip.Context{Origin: "a", Destination: "b", DistanceKm: 5})

	decision, err := newEngine(t).Choose(p, tc, catalog)
	require.NoError(t, err)

	assert.Equal(t, "bus", decision.Chosen)
	assert.Equal(t, []choice.FailureReason{choice.ReasonAccessibility}, decision.Evaluations[0].Reasons)
	assert.Zero(t, decision.Evaluations[0].Cost)
	assert.Zero(t, decision.Evaluations[0].TravelTime)
}

func TestChooseComputationErrorAborts(t *testing.T) {
	// A persona that IS a car-share member but lacks the tariff attribute
	// is a configuration error, not a silent default.
	tariff := alternative.Definition{
		Mode: "carshare",
		Cost: func(_ *trip.Context, p *persona.Profile) (float64, error) {
			return p.RequireAttribute("carshare_tariff_per_km")
		},
		Time: func(_ *trip.Context, _ *persona.Profile) (time.Duration, error) {
			return 15 * time.Minute, nil
		},
		RequiredCapabilities: []string{"carshare_member"},
	}
	catalog, err := alternative.NewCatalog(tariff)
	require.NoError(t, err)

	p := mustProfile(t, persona.Profile{
		ID:            "member",
		Budget:        5,
		MaxTravelTime: time.Hour,
		Capabilities:  []string{"carshare_member"},
	})
	tc := mustTrip(t, trip.Context{Origin: "a", Destination: "b", DistanceKm: 5})

	_, err = newEngine(t).Choose(p, tc, catalog)
	var compErr *choice.ComputationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "carshare", compErr.Mode)
}

func TestChooseWithModesUnavailable(t *testing.T) {
	// Time-dominant weighting so the fast-but-dear car wins when present.
	engine, err := choice.NewEngine(choice.Config{CostWeight: 0.1, TimeWeight: 0.9})
	require.NoError(t, err)
	catalog := commuteCatalog(t)

	p := mustProfile(t, persona.Profile{
		ID:            "driver",
		Budget:        12,
		MaxTravelTime: 45 * time.Minute,
		Abilities:     []string{"can_walk", "can_drive"},
		Capabilities:  []string{"has_car"},
	})
	tc := mustTrip(t, trip.Context{Origin: "home", Destination: "work", DistanceKm: 10})

	withCar, err := engine.Choose(p, tc, catalog)
	require.NoError(t, err)
	assert.Equal(t, "car", withCar.Chosen)

	carFree, err := engine.Choose(p, tc, catalog, choice.WithModesUnavailable("car"))
	require.NoError(t, err)
	assert.Equal(t, "bus", carFree.Chosen)

	carEval := carFree.Evaluations[2]
	assert.Equal(t, "car", carEval.Mode)
	assert.Equal(t, []choice.FailureReason{choice.ReasonAccessibility}, carEval.Reasons)
}

func TestChooseDeterministic(t *testing.T) {
	engine := newEngine(t)
	catalog := commuteCatalog(t)

	p := mustProfile(t, persona.Profile{
		ID:            "commuter",
		Budget:        12,
		MaxTravelTime: 60 * time.Minute,
		Abilities:     []string{"can_walk", "can_drive"},
		Capabilities:  []string{"has_car"},
	})
	tc := mustTrip(t, trip.Context{Origin: "home", Destination: "work", DistanceKm: 10})

	first, err := engine.Choose(p, tc, catalog)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := engine.Choose(p, tc, catalog)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestChooseTieBreakByPreference(t *testing.T) {
	// Two identical alternatives score equally; the persona's preference
	// order decides.
	a := fixedDef("tram", 2, 30*time.Minute)
	b := fixedDef("metro", 2, 30*time.Minute)
	catalog, err := alternative.NewCatalog(a, b)
	require.NoError(t, err)

	p := mustProfile(t, persona.Profile{
		ID:            "p1",
		Budget:        5,
		MaxTravelTime: time.Hour,
		Preferences:   []string{"metro"},
	})
	tc := mustTrip(t, trip.Context{Origin: "a", Destination: "b", DistanceKm: 5})

	decision, err := newEngine(t).Choose(p, tc, catalog)
	require.NoError(t, err)
	assert.Equal(t, "metro", decision.Chosen)
}

func TestChooseTieBreakByCatalogOrder(t *testing.T) {
	// No preference either way: the earlier catalog entry wins.
	a := fixedDef("tram", 2, 30*time.Minute)
	b := fixedDef("metro", 2, 30*time.Minute)
	catalog, err := alternative.NewCatalog(a, b)
	require.NoError(t, err)

	p := mustProfile(t, persona.Profile{
		ID:            "p1",
		Budget:        5,
		MaxTravelTime: time.Hour,
	})
	tc := mustTrip(t, trip.Context{Origin: "a", Destination: "b", DistanceKm: 5})

	decision, err := newEngine(t).Choose(p, tc, catalog)
	require.NoError(t, err)
	assert.Equal(t, "tram", decision.Chosen)
}

func TestChooseScoreMonotonicity(t *testing.T) {
	// With equal weights, a cheaper-and-faster alternative always ranks
	// above a costlier-and-slower one.
	good := fixedDef("good", 1, 20*time.Minute)
	bad := fixedDef("bad", 3, 40*time.Minute)
	catalog, err := alternative.NewCatalog(bad, good)
	require.NoError(t, err)

	p := mustProfile(t, persona.Profile{
		ID:            "p1",
		Budget:        5,
		MaxTravelTime: time.Hour,
	})
	tc := mustTrip(t, trip.Context{Origin: "a", Destination: "b", DistanceKm: 5})

	decision, err := newEngine(t).Choose(p, tc, catalog)
	require.NoError(t, err)
	assert.Equal(t, "good", decision.Chosen)
	assert.Greater(t, decision.Evaluations[1].Score, decision.Evaluations[0].Score)
}

func TestChooseZeroCostFeasibleSet(t *testing.T) {
	// All decent alternatives are free: the cost term must not divide by
	// zero, and the faster mode wins on the time term alone.
	walk := fixedDef("walk", 0, 50*time.Minute)
	cycle := fixedDef("cycle", 0, 20*time.Minute)
	catalog, err := alternative.NewCatalog(walk, cycle)
	require.NoError(t, err)

	p := mustProfile(t, persona.Profile{
		ID:            "p1",
		Budget:        0,
		MaxTravelTime: time.Hour,
	})
	tc := mustTrip(t, trip.Context{Origin: "a", Destination: "b", DistanceKm: 5})

	decision, err := newEngine(t).Choose(p, tc, catalog)
	require.NoError(t, err)
	assert.Equal(t, "cycle", decision.Chosen)
}

func TestChooseBudgetMonotonicity(t *testing.T) {
	// Raising the budget can only grow the decent set and can only clear
	// mobility deprivation, never cause it.
	engine := newEngine(t)
	catalog := commuteCatalog(t)
	tc := mustTrip(t, trip.Context{Origin: "home", Destination: "work", DistanceKm: 10})

	budgets := []float64{0, 0.5, 1, 2, 3, 5, 8, 12, 100}

	prevDecent := map[string]bool{}
	prevDeprived := true
	for _, budget := range budgets {
		p := mustProfile(t, persona.Profile{
			ID:            "p1",
			Budget:        budget,
			MaxTravelTime: 45 * time.Minute,
			Abilities:     []string{"can_walk", "can_drive"},
			Capabilities:  []string{"has_car"},
		})

		decision, err := engine.Choose(p, tc, catalog)
		require.NoError(t, err)

		decent := make(map[string]bool, len(decision.Evaluations))
		for _, ev := range decision.Evaluations {
			decent[ev.Mode] = ev.Decent
		}

		for mode, wasDecent := range prevDecent {
			if wasDecent {
				assert.True(t, decent[mode], "budget %v dropped decent mode %s", budget, mode)
			}
		}
		if !prevDeprived {
			assert.False(t, decision.MobilityDeprived, "budget %v reintroduced deprivation", budget)
		}

		prevDecent = decent
		prevDeprived = decision.MobilityDeprived
	}
}

func TestNewEngineRejectsInvalidWeights(t *testing.T) {
	cases := []struct {
		name string
		cfg  choice.Config
	}{
		{"both zero", choice.Config{}},
		{"negative cost weight", choice.Config{CostWeight: -1, TimeWeight: 1}},
		{"negative time weight", choice.Config{CostWeight: 1, TimeWeight: -1}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := choice.NewEngine(tt.cfg)
			assert.ErrorIs(t, err, choice.ErrInvalidWeights)
		})
	}
}

func TestChooseWeightSensitivity(t *testing.T) {
	// cheap-but-slow vs fast-but-dear: a pure cost weighting picks the
	// former, a pure time weighting the latter.
	cheap := fixedDef("cheap", 1, 50*time.Minute)
	fast := fixedDef("fast", 9, 10*time.Minute)
	catalog, err := alternative.NewCatalog(cheap, fast)
	require.NoError(t, err)

	p := mustProfile(t, persona.Profile{
		ID:            "p1",
		Budget:        10,
		MaxTravelTime: time.Hour,
	})
	tc := mustTrip(t, trip.Context{Origin: "a", Destination: "b", DistanceKm: 5})

	costEngine, err := choice.NewEngine(choice.Config{CostWeight: 1})
	require.NoError(t, err)
	decision, err := costEngine.Choose(p, tc, catalog)
	require.NoError(t, err)
	assert.Equal(t, "cheap", decision.Chosen)

	timeEngine, err := choice.NewEngine(choice.Config{TimeWeight: 1})
	require.NoError(t, err)
	decision, err = timeEngine.Choose(p, tc, catalog)
	require.NoError(t, err)
	assert.Equal(t, "fast", decision.Chosen)
}
