package trip

import (
	"context"
	"fmt"
)

// StaticComputer is a Computer backed by a fixed in-memory
// origin-destination table. It backs tests and the demonstration driver,
// where trips come from a handful of known pairs rather than a routing
// service.
type StaticComputer struct {
	entries map[string]*Context
}

// NewStaticComputer builds a static computer from the given trips, keyed
// by their origin-destination pair.
func NewStaticComputer(trips ...Context) (*StaticComputer, error) {
	entries := make(map[string]*Context, len(trips))
	for _, t := range trips {
		validated, err := New(t)
		if err != nil {
			return nil, err
		}
		entries[t.Origin+"\x00"+t.Destination] = validated
	}
	return &StaticComputer{entries: entries}, nil
}

// ComputeTrip looks up the pair in the table.
func (c *StaticComputer) ComputeTrip(_ context.Context, origin, destination string) (*Context, error) {
	t, ok := c.entries[origin+"\x00"+destination]
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrPairUnknown, origin, destination)
	}
	cpy := *t
	return &cpy, nil
}

// Name returns the computer identifier.
func (c *StaticComputer) Name() string {
	return "static"
}

// Ensure StaticComputer implements Computer.
var _ Computer = (*StaticComputer)(nil)
