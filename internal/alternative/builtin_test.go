package alternative_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

func TestModeSpecCompile(t *testing.T) {
	spec := alternative.ModeSpec{
		Mode:      "bus",
		SpeedKmh:  20,
		FlatFare:  2,
		FarePerKm: 0.1,
	}

	def, err := spec.Compile()
	require.NoError(t, err)

	p, err := persona.NewProfile(persona.Profile{
		ID:            "p1",
		Budget:        5,
		MaxTravelTime: time.Hour,
	})
	require.NoError(t, err)
	tc, err := trip.New(trip.Context{Origin: "a", Destination: "b", DistanceKm: 10})
	require.NoError(t, err)

	cost, err := def.Cost(tc, p)
	require.NoError(t, err)
	assert.Equal(t, 3.0, cost) // 2 flat + 0.1 * 10

	travelTime, err := def.Time(tc, p)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, travelTime) // 10 km at 20 km/h
}

func TestModeSpecCompileValidation(t *testing.T) {
	cases := []struct {
		name string
		spec alternative.ModeSpec
	}{
		{"empty mode", alternative.ModeSpec{SpeedKmh: 10}},
		{"zero speed", alternative.ModeSpec{Mode: "bus"}},
		{"negative speed", alternative.ModeSpec{Mode: "bus", SpeedKmh: -5}},
		{"negative fare", alternative.ModeSpec{Mode: "bus", SpeedKmh: 10, FlatFare: -1}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Compile()
			assert.ErrorIs(t, err, alternative.ErrInvalidSpec)
		})
	}
}

func TestModeSpecAttributeFare(t *testing.T) {
	spec := alternative.ModeSpec{
		Mode:               "carshare",
		SpeedKmh:           40,
		FlatFare:           3,
		FarePerKmAttribute: alternative.AttributeCarshareTariff,
	}
	def, err := spec.Compile()
	require.NoError(t, err)

	tc, err := trip.New(trip.Context{Origin: "a", Destination: "b", DistanceKm: 10})
	require.NoError(t, err)

	member, err := persona.NewProfile(persona.Profile{
		ID:            "member",
		Budget:        10,
		MaxTravelTime: time.Hour,
		Attributes:    map[string]float64{alternative.AttributeCarshareTariff: 0.3},
	})
	require.NoError(t, err)

	cost, err := def.Cost(tc, member)
	require.NoError(t, err)
	assert.Equal(t, 6.0, cost) // 3 flat + 0.3 * 10

	// Missing tariff attribute is an error, never a default rate.
	noTariff, err := persona.NewProfile(persona.Profile{
		ID:            "no-tariff",
		Budget:        10,
		MaxTravelTime: time.Hour,
	})
	require.NoError(t, err)

	_, err = def.Cost(tc, noTariff)
	assert.ErrorIs(t, err, persona.ErrAttributeMissing)
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := alternative.DefaultCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"walk", "cycle", "bus", "car", "carshare"}, catalog.Modes())
}

func TestLoadSpecs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	data := `[
		{"mode": "tram", "speedKmh": 25, "flatFare": 1.5},
		{"mode": "scooter", "speedKmh": 18, "farePerKm": 0.25, "requiredAbilities": ["can_cycle"]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	specs, err := alternative.LoadSpecs(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	catalog, err := alternative.NewCatalogFromSpecs(specs)
	require.NoError(t, err)
	assert.Equal(t, []string{"tram", "scooter"}, catalog.Modes())
}

func TestLoadSpecsErrors(t *testing.T) {
	_, err := alternative.LoadSpecs(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = alternative.LoadSpecs(path)
	assert.Error(t, err)
}
