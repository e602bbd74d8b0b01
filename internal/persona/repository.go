package persona

import "context"

// ListOptions contains options for listing profiles.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing profiles.
type ListResult struct {
	Items      []*Profile
	NextCursor string
}

// Repository defines the interface for persona profile persistence.
type Repository interface {
	// Get retrieves a profile by ID. Returns ErrProfileNotFound if absent.
	Get(ctx context.Context, id string) (*Profile, error)

	// List retrieves profiles ordered by ID with cursor pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Create stores a new profile.
	Create(ctx context.Context, profile *Profile) error

	// Update replaces an existing profile.
	Update(ctx context.Context, profile *Profile) error

	// Delete removes a profile by ID.
	Delete(ctx context.Context, id string) error
}
