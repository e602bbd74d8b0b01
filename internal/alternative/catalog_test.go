package alternative_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

func noopDef(mode string) alternative.Definition {
	return alternative.Definition{
		Mode: mode,
		Cost: func(_ *trip.Context, _ *persona.Profile) (float64, error) { return 0, nil },
		Time: func(_ *trip.Context, _ *persona.Profile) (time.Duration, error) { return 0, nil },
	}
}

func TestNewCatalogPreservesOrder(t *testing.T) {
	catalog, err := alternative.NewCatalog(noopDef("walk"), noopDef("bus"), noopDef("car"))
	require.NoError(t, err)

	assert.Equal(t, 3, catalog.Len())
	assert.Equal(t, []string{"walk", "bus", "car"}, catalog.Modes())
}

func TestNewCatalogRejectsDuplicateMode(t *testing.T) {
	_, err := alternative.NewCatalog(noopDef("bus"), noopDef("bus"))
	assert.ErrorIs(t, err, alternative.ErrDuplicateMode)
}

func TestNewCatalogRejectsInvalidDefinitions(t *testing.T) {
	_, err := alternative.NewCatalog(noopDef(""))
	assert.ErrorIs(t, err, alternative.ErrInvalidSpec)

	missing := noopDef("bus")
	missing.Cost = nil
	_, err = alternative.NewCatalog(missing)
	assert.ErrorIs(t, err, alternative.ErrInvalidSpec)
}

func TestCatalogGet(t *testing.T) {
	catalog, err := alternative.NewCatalog(noopDef("walk"), noopDef("bus"))
	require.NoError(t, err)

	def, err := catalog.Get("bus")
	require.NoError(t, err)
	assert.Equal(t, "bus", def.Mode)

	_, err = catalog.Get("teleport")
	assert.ErrorIs(t, err, alternative.ErrUnknownMode)
}

func TestCatalogDefinitionsIsACopy(t *testing.T) {
	catalog, err := alternative.NewCatalog(noopDef("walk"), noopDef("bus"))
	require.NoError(t, err)

	defs := catalog.Definitions()
	defs[0].Mode = "mutated"

	assert.Equal(t, []string{"walk", "bus"}, catalog.Modes())
}

func TestAvailableFor(t *testing.T) {
	walk := noopDef("walk")
	walk.RequiredAbilities = []string{"can_walk"}

	car := noopDef("car")
	car.RequiredAbilities = []string{"can_drive"}
	car.RequiredCapabilities = []string{"has_car"}

	bus := noopDef("bus")

	catalog, err := alternative.NewCatalog(walk, car, bus)
	require.NoError(t, err)

	p, err := persona.NewProfile(persona.Profile{
		ID:            "p1",
		Budget:        5,
		MaxTravelTime: time.Hour,
		Abilities:     []string{"can_walk", "can_drive"},
	})
	require.NoError(t, err)

	// Driving ability without a car is not enough.
	available := catalog.AvailableFor(p)
	modes := make([]string, 0, len(available))
	for _, d := range available {
		modes = append(modes, d.Mode)
	}
	assert.Equal(t, []string{"walk", "bus"}, modes)
}
