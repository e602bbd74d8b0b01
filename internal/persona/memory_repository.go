package persona

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and the demonstration driver. Production
// should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewInMemoryRepository creates a new in-memory persona repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		profiles: make(map[string]*Profile),
	}
}

// Get retrieves a profile by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}

	cpy := *p
	return &cpy, nil
}

// List retrieves profiles ordered by ID with cursor pagination.
func (r *InMemoryRepository) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		if opts.Cursor == "" || id > opts.Cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{}
	for i, id := range ids {
		if i == limit {
			result.NextCursor = result.Items[limit-1].ID
			break
		}
		cpy := *r.profiles[id]
		result.Items = append(result.Items, &cpy)
	}

	return result, nil
}

// Create stores a new profile.
func (r *InMemoryRepository) Create(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *p
	r.profiles[p.ID] = &cpy
	return nil
}

// Update replaces an existing profile.
func (r *InMemoryRepository) Update(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.profiles[p.ID]; !ok {
		return ErrProfileNotFound
	}

	cpy := *p
	r.profiles[p.ID] = &cpy
	return nil
}

// Delete removes a profile by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.profiles, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
