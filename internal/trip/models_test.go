package trip_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlinarnz/decent-mobility/internal/trip"
)

func TestNew(t *testing.T) {
	tc, err := trip.New(trip.Context{
		Origin:        "home",
		Destination:   "work",
		DistanceKm:    10,
		ReferenceTime: 20 * time.Minute,
		Purpose:       "commute",
		TimeOfDay:     "08:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "home", tc.Origin)
	assert.Equal(t, 10.0, tc.DistanceKm)
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name string
		ctx  trip.Context
	}{
		{"missing origin", trip.Context{Destination: "work", DistanceKm: 10}},
		{"missing destination", trip.Context{Origin: "home", DistanceKm: 10}},
		{"negative distance", trip.Context{Origin: "home", Destination: "work", DistanceKm: -1}},
		{"negative reference time", trip.Context{Origin: "home", Destination: "work", ReferenceTime: -time.Minute}},
		{"bad time of day", trip.Context{Origin: "home", Destination: "work", TimeOfDay: "25:00"}},
		{"non-time time of day", trip.Context{Origin: "home", Destination: "work", TimeOfDay: "morning"}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := trip.New(tt.ctx)
			assert.ErrorIs(t, err, trip.ErrInvalidTrip)
		})
	}
}

func TestNewTimeOfDayFormats(t *testing.T) {
	for _, tod := range []string{"00:00", "8:05", "23:59", ""} {
		_, err := trip.New(trip.Context{Origin: "a", Destination: "b", TimeOfDay: tod})
		assert.NoError(t, err, "time of day %q", tod)
	}
}

func TestStaticComputer(t *testing.T) {
	computer, err := trip.NewStaticComputer(
		trip.Context{Origin: "home", Destination: "work", DistanceKm: 10},
		trip.Context{Origin: "home", Destination: "shop", DistanceKm: 2},
	)
	require.NoError(t, err)
	assert.Equal(t, "static", computer.Name())

	tc, err := computer.ComputeTrip(context.Background(), "home", "work")
	require.NoError(t, err)
	assert.Equal(t, 10.0, tc.DistanceKm)

	_, err = computer.ComputeTrip(context.Background(), "home", "nowhere")
	assert.ErrorIs(t, err, trip.ErrPairUnknown)
}

func TestStaticComputerRejectsInvalidTrips(t *testing.T) {
	_, err := trip.NewStaticComputer(trip.Context{Origin: "home", Destination: "work", DistanceKm: -1})
	assert.ErrorIs(t, err, trip.ErrInvalidTrip)
}
