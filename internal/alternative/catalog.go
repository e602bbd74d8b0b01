package alternative

import (
	"fmt"

	"github.com/marlinarnz/decent-mobility/internal/persona"
)

// Catalog is an ordered, immutable collection of alternative definitions.
// It is built once and shared read-only across evaluations; declaration
// order is preserved and used for deterministic tie-breaking.
type Catalog struct {
	defs []Definition
}

// NewCatalog validates the definitions and returns a catalog. Duplicate
// mode identifiers are a configuration error.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.Mode == "" {
			return nil, fmt.Errorf("%w: empty mode identifier", ErrInvalidSpec)
		}
		if d.Cost == nil || d.Time == nil {
			return nil, fmt.Errorf("%w: mode %q is missing a cost or time function", ErrInvalidSpec, d.Mode)
		}
		if _, ok := seen[d.Mode]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateMode, d.Mode)
		}
		seen[d.Mode] = struct{}{}
	}

	return &Catalog{defs: append([]Definition(nil), defs...)}, nil
}

// Len returns the number of alternatives in the catalog.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Definitions returns the alternatives in declaration order. The returned
// slice is a copy; the catalog itself stays immutable.
func (c *Catalog) Definitions() []Definition {
	return append([]Definition(nil), c.defs...)
}

// Get returns the definition for the given mode identifier.
func (c *Catalog) Get(mode string) (*Definition, error) {
	for i := range c.defs {
		if c.defs[i].Mode == mode {
			d := c.defs[i]
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

// Modes returns the mode identifiers in declaration order.
func (c *Catalog) Modes() []string {
	modes := make([]string, len(c.defs))
	for i, d := range c.defs {
		modes[i] = d.Mode
	}
	return modes
}

// AvailableFor returns the ordered subset of alternatives whose
// accessibility requirements the persona satisfies. Catalog order is
// preserved.
func (c *Catalog) AvailableFor(p *persona.Profile) []Definition {
	available := make([]Definition, 0, len(c.defs))
	for _, d := range c.defs {
		if d.Accessible(p) {
			available = append(available, d)
		}
	}
	return available
}
