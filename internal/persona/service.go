package persona

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Input is the caller-supplied profile data for create and update
// operations. The service assigns identity and timestamps.
type Input struct {
	Name          string
	Budget        float64
	MaxTravelTime time.Duration
	Abilities     []string
	Capabilities  []string
	Preferences   []string
	Attributes    map[string]float64
	TripNeeds     map[string]int
}

// Service provides validated persona profile operations.
type Service struct {
	repo Repository
}

// NewService creates a new persona service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a profile by ID.
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	return s.repo.Get(ctx, id)
}

// List retrieves profiles with cursor pagination.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	return s.repo.List(ctx, opts)
}

// Create validates the input and stores a new profile.
func (s *Service) Create(ctx context.Context, input Input) (*Profile, error) {
	now := time.Now()

	profile, err := NewProfile(Profile{
		ID:            "psn_" + uuid.New().String()[:22],
		Name:          input.Name,
		Budget:        input.Budget,
		MaxTravelTime: input.MaxTravelTime,
		Abilities:     input.Abilities,
		Capabilities:  input.Capabilities,
		Preferences:   input.Preferences,
		Attributes:    input.Attributes,
		TripNeeds:     input.TripNeeds,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Update validates the input and replaces an existing profile.
func (s *Service) Update(ctx context.Context, id string, input Input) (*Profile, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	profile, err := NewProfile(Profile{
		ID:            existing.ID,
		Name:          input.Name,
		Budget:        input.Budget,
		MaxTravelTime: input.MaxTravelTime,
		Abilities:     input.Abilities,
		Capabilities:  input.Capabilities,
		Preferences:   input.Preferences,
		Attributes:    input.Attributes,
		TripNeeds:     input.TripNeeds,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Delete removes a profile by ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	// Verify existence so callers get a clean not-found.
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}
