// Package batch provides population-scale evaluation runs: many personas
// crossed with many trips, each pair decided independently by the choice
// engine.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/marlinarnz/decent-mobility/internal/alternative"
	"github.com/marlinarnz/decent-mobility/internal/choice"
	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// Config holds configuration for a population run.
type Config struct {
	// Concurrency is the number of concurrent evaluation workers.
	// Default: 4
	Concurrency int

	// Timeout bounds each pair's trip computation. The engine itself
	// cannot block, but fetching a trip through a collaborator can.
	// Default: 10 seconds
	Timeout time.Duration

	// ModesUnavailable masks catalog modes for the whole run
	// (scenario analysis, e.g. a car-free day).
	ModesUnavailable []string
}

// DriverConfig holds dependencies for creating a Driver.
type DriverConfig struct {
	Config  Config
	Engine  *choice.Engine
	Catalog *alternative.Catalog
	Logger  zerolog.Logger
}

// Driver executes population runs. Decisions are independent, so pairs are
// distributed across workers with no coordination beyond result collection.
type Driver struct {
	config  Config
	engine  *choice.Engine
	catalog *alternative.Catalog
	logger  zerolog.Logger
}

// NewDriver creates a population run driver.
func NewDriver(cfg DriverConfig) *Driver {
	config := cfg.Config
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Driver{
		config:  config,
		engine:  cfg.Engine,
		catalog: cfg.Catalog,
		logger:  cfg.Logger,
	}
}

// Pair is one (persona, trip) evaluation unit.
type Pair struct {
	Persona *persona.Profile
	Trip    *trip.Context
}

// Failure records an evaluation error against its pair. One pair's
// failure never aborts the rest of the run.
type Failure struct {
	PersonaID   string
	Origin      string
	Destination string
	Error       string
}

// Result aggregates one population run.
type Result struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	TotalPairs int
	Decided    int
	Deprived   int
	Failed     int

	// ChosenByMode counts decisions per chosen mode.
	ChosenByMode map[string]int

	Failures []Failure
}

// Run evaluates the cross product of personas and trips.
func (d *Driver) Run(ctx context.Context, personas []*persona.Profile, trips []*trip.Context) *Result {
	pairs := make([]Pair, 0, len(personas)*len(trips))
	for _, p := range personas {
		for _, t := range trips {
			pairs = append(pairs, Pair{Persona: p, Trip: t})
		}
	}
	return d.RunPairs(ctx, pairs)
}

// RunNeeds expands each persona's trip needs (destination -> count) into
// pairs, computing each trip from the given origin via the collaborator,
// then evaluates them. Each computation is bounded by Config.Timeout; trip
// computation failures are recorded like evaluation failures.
func (d *Driver) RunNeeds(ctx context.Context, personas []*persona.Profile, computer trip.Computer, origin string) *Result {
	var (
		pairs    []Pair
		failures []Failure
	)

	for _, p := range personas {
		for destination, count := range p.TripNeeds {
			pairCtx, cancel := context.WithTimeout(ctx, d.config.Timeout)
			t, err := computer.ComputeTrip(pairCtx, origin, destination)
			cancel()
			if err != nil {
				failures = append(failures, Failure{
					PersonaID:   p.ID,
					Origin:      origin,
					Destination: destination,
					Error:       err.Error(),
				})
				continue
			}
			for i := 0; i < count; i++ {
				pairs = append(pairs, Pair{Persona: p, Trip: t})
			}
		}
	}

	result := d.RunPairs(ctx, pairs)
	result.TotalPairs += len(failures)
	result.Failed += len(failures)
	result.Failures = append(result.Failures, failures...)
	return result
}

// RunPairs evaluates the given pairs over the worker pool.
func (d *Driver) RunPairs(ctx context.Context, pairs []Pair) *Result {
	startTime := time.Now()
	result := &Result{
		StartTime:    startTime,
		TotalPairs:   len(pairs),
		ChosenByMode: make(map[string]int),
	}

	d.logger.Info().
		Int("total_pairs", len(pairs)).
		Int("concurrency", d.config.Concurrency).
		Msg("starting population run")

	pairsChan := make(chan Pair, len(pairs))
	resultsChan := make(chan pairResult, len(pairs))

	var wg sync.WaitGroup
	for i := 0; i < d.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.evaluateWorker(ctx, pairsChan, resultsChan)
		}()
	}

	for _, p := range pairs {
		pairsChan <- p
	}
	close(pairsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for pr := range resultsChan {
		switch {
		case pr.failure != nil:
			result.Failed++
			result.Failures = append(result.Failures, *pr.failure)
		case pr.decision.MobilityDeprived:
			result.Deprived++
		default:
			result.Decided++
			result.ChosenByMode[pr.decision.Chosen]++
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	d.logger.Info().
		Dur("duration", result.Duration).
		Int("decided", result.Decided).
		Int("deprived", result.Deprived).
		Int("failed", result.Failed).
		Msg("population run completed")

	return result
}

type pairResult struct {
	decision *choice.Decision
	failure  *Failure
}

func (d *Driver) evaluateWorker(ctx context.Context, pairs <-chan Pair, results chan<- pairResult) {
	var opts []choice.Option
	if len(d.config.ModesUnavailable) > 0 {
		opts = append(opts, choice.WithModesUnavailable(d.config.ModesUnavailable...))
	}

	for pair := range pairs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		decision, err := d.engine.Choose(pair.Persona, pair.Trip, d.catalog, opts...)
		if err != nil {
			results <- pairResult{failure: &Failure{
				PersonaID:   pair.Persona.ID,
				Origin:      pair.Trip.Origin,
				Destination: pair.Trip.Destination,
				Error:       err.Error(),
			}}
			continue
		}
		results <- pairResult{decision: decision}
	}
}
