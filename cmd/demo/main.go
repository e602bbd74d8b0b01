// Package main runs a small demonstration of the decision engine: a few
// personas evaluate the builtin mode catalog for one trip and the resulting
// decisions are printed.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/batch"
	"github.com/marlinarnz/decent-mobility/internal/choice"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger()

	catalog, err := alternative.DefaultCatalog()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build catalog")
	}

	engine, err := choice.NewEngine(choice.DefaultConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create engine")
	}

	commute, err := trip.New(trip.Context{
		Origin:      "home",
		Destination: "work",
		DistanceKm:  10,
		Purpose:     "commute",
		TimeOfDay:   "08:00",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid trip")
	}

	personas := demoPersonas(log)

	for _, p := range personas {
		decision, err := engine.Choose(p, commute, catalog)
		if err != nil {
			log.Error().Err(err).Str("persona", p.ID).Msg("decision failed")
			continue
		}
		printDecision(p, decision)
	}

	// The same personas and trip through the population run driver.
	driver := batch.NewDriver(batch.DriverConfig{
		Config:  batch.Config{Concurrency: 2},
		Engine:  engine,
		Catalog: catalog,
		Logger:  log,
	})

	result := driver.Run(context.Background(), personas, []*trip.Context{commute})
	fmt.Printf("\npopulation run: %d pairs, %d decided, %d deprived, %d failed (%.0fms)\n",
		result.TotalPairs, result.Decided, result.Deprived, result.Failed,
		float64(result.Duration)/float64(time.Millisecond))
	for mode, count := range result.ChosenByMode {
		fmt.Printf("  %-10s %d\n", mode, count)
	}
}

func demoPersonas(log zerolog.Logger) []*persona.Profile {
	inputs := []persona.Profile{
		{
			ID:            "commuter",
			Name:          "Commuter",
			Budget:        5,
			MaxTravelTime: 60 * time.Minute,
			Abilities:     []string{alternative.AbilityWalk},
		},
		{
			ID:            "driver",
			Name:          "Driver",
			Budget:        12,
			MaxTravelTime: 45 * time.Minute,
			Abilities:     []string{alternative.AbilityWalk, alternative.AbilityDrive},
			Capabilities:  []string{alternative.CapabilityCar},
			Preferences:   []string{"car", "bus"},
		},
		{
			ID:            "cyclist",
			Name:          "Cyclist",
			Budget:        3,
			MaxTravelTime: 50 * time.Minute,
			Abilities:     []string{alternative.AbilityWalk, alternative.AbilityCycle},
			Capabilities:  []string{alternative.CapabilityBike},
			Preferences:   []string{"cycle"},
		},
		{
			// Budget below the cheapest fare and the trip too long to
			// walk: mobility deprived.
			ID:            "constrained",
			Name:          "Constrained",
			Budget:        1,
			MaxTravelTime: 60 * time.Minute,
			Abilities:     []string{alternative.AbilityWalk},
		},
	}

	personas := make([]*persona.Profile, 0, len(inputs))
	for _, in := range inputs {
		p, err := persona.NewProfile(in)
		if err != nil {
			log.Fatal().Err(err).Str("persona", in.ID).Msg("invalid persona")
		}
		personas = append(personas, p)
	}
	return personas
}

func printDecision(p *persona.Profile, d *choice.Decision) {
	fmt.Printf("%s (%s -> %s): ", p.Name, d.Origin, d.Destination)
	if d.MobilityDeprived {
		fmt.Println("mobility deprived")
	} else {
		fmt.Printf("chooses %s\n", d.Chosen)
	}
	for _, ev := range d.Evaluations {
		status := "decent"
		if !ev.Decent {
			reasons := make([]string, 0, len(ev.Reasons))
			for _, r := range ev.Reasons {
				reasons = append(reasons, string(r))
			}
			status = fmt.Sprintf("failed: %v", reasons)
		}
		fmt.Printf("  %-10s cost=%6.2f time=%5.1fmin score=%6.3f  %s\n",
			ev.Mode, ev.Cost, ev.TravelTime.Minutes(), ev.Score, status)
	}
}
