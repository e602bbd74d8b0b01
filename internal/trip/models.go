// Package trip provides trip context values and the routing collaborator
// boundary. The choice engine treats trip attributes as opaque inputs; it
// never derives distances itself.
package trip

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Sentinel errors for trip construction and computation.
var (
	// ErrInvalidTrip indicates malformed trip input.
	ErrInvalidTrip = errors.New("invalid trip context")
	// ErrComputerUnavailable indicates the origin-destination collaborator
	// is down or the circuit breaker is open.
	ErrComputerUnavailable = errors.New("trip computer unavailable")
	// ErrPairUnknown indicates the collaborator has no entry for the
	// requested origin-destination pair.
	ErrPairUnknown = errors.New("unknown origin-destination pair")
)

// timeOfDayRegex validates HH:mm format.
var timeOfDayRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// Context describes one journey a persona is evaluating alternatives for.
// Origin and destination are opaque identifiers; distance and reference
// duration come from the routing collaborator.
type Context struct {
	Origin      string
	Destination string

	// DistanceKm is the trip distance in kilometres.
	DistanceKm float64

	// ReferenceTime is the nominal duration by the reference mode, as
	// reported by the routing collaborator. Informational.
	ReferenceTime time.Duration

	// Purpose tags the trip (e.g. "work", "leisure").
	Purpose string

	// TimeOfDay is the departure time in HH:mm local format.
	TimeOfDay string
}

// New validates and returns a trip context.
func New(c Context) (*Context, error) {
	if c.Origin == "" {
		return nil, fmt.Errorf("%w: origin is required", ErrInvalidTrip)
	}
	if c.Destination == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrInvalidTrip)
	}
	if c.DistanceKm < 0 {
		return nil, fmt.Errorf("%w: distance must be >= 0, got %f", ErrInvalidTrip, c.DistanceKm)
	}
	if c.ReferenceTime < 0 {
		return nil, fmt.Errorf("%w: reference time must be >= 0", ErrInvalidTrip)
	}
	if c.TimeOfDay != "" && !timeOfDayRegex.MatchString(c.TimeOfDay) {
		return nil, fmt.Errorf("%w: time of day must be in HH:mm format, got %q", ErrInvalidTrip, c.TimeOfDay)
	}

	cpy := c
	return &cpy, nil
}

// Computer is the injected routing collaborator: it turns an
// origin-destination pair into a trip context. Implementations typically
// query an origin-destination table built from a geographic network.
type Computer interface {
	// ComputeTrip returns the trip context for the given pair.
	ComputeTrip(ctx context.Context, origin, destination string) (*Context, error)

	// Name returns the computer identifier for logging.
	Name() string
}
