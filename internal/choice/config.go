package choice

import "fmt"

// Config holds the utility weights the engine ranks decent alternatives
// with. Weights must be >= 0 and not both zero.
type Config struct {
	// CostWeight weighs the normalized monetary cost term.
	CostWeight float64

	// TimeWeight weighs the normalized travel time term.
	TimeWeight float64
}

// DefaultConfig returns the documented default weights (0.5 / 0.5).
func DefaultConfig() Config {
	return Config{CostWeight: 0.5, TimeWeight: 0.5}
}

// Validate checks that the weights are normalizable.
func (c Config) Validate() error {
	if c.CostWeight < 0 {
		return fmt.Errorf("%w: cost weight must be >= 0, got %f", ErrInvalidWeights, c.CostWeight)
	}
	if c.TimeWeight < 0 {
		return fmt.Errorf("%w: time weight must be >= 0, got %f", ErrInvalidWeights, c.TimeWeight)
	}
	if c.CostWeight == 0 && c.TimeWeight == 0 {
		return fmt.Errorf("%w: cost and time weights must not both be zero", ErrInvalidWeights)
	}
	return nil
}
