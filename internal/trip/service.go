package trip

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the trip service.
type ServiceConfig struct {
	// Computer is the origin-destination collaborator.
	Computer Computer

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache computed trips (default: 1 hour).
	// Origin-destination tables change rarely within a run.
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale trips on collaborator errors
	// (default: 24 hours).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries
	// (default: 1 hour).
	CleanupInterval time.Duration
}

// Service provides trip contexts with caching. Population runs evaluate
// the same origin-destination pairs across many personas, so computed
// trips are shared.
type Service struct {
	computer        Computer
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	mu          sync.RWMutex
	cache       map[string]*cachedTrip
	lastCleanup time.Time
}

type cachedTrip struct {
	trip       *Context
	computedAt time.Time
	expiresAt  time.Time
}

// NewService creates a new trip service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 1 * time.Hour
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 24 * time.Hour
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 1 * time.Hour
	}

	return &Service{
		computer:        cfg.Computer,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedTrip),
	}
}

// ComputeTrip returns the trip context for the given pair, cached when
// available and not expired. The returned context is the caller's own copy;
// annotating it leaves the cache untouched.
func (s *Service) ComputeTrip(ctx context.Context, origin, destination string) (*Context, error) {
	key := origin + "\x00" + destination

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		s.logger.Debug().
			Str("origin", origin).
			Str("destination", destination).
			Msg("cache hit for trip")
		cpy := *cached.trip
		return &cpy, nil
	}
	s.mu.RUnlock()

	return s.computeTrip(ctx, origin, destination, key)
}

// Name returns the underlying computer identifier.
func (s *Service) Name() string {
	return s.computer.Name()
}

// computeTrip fetches the trip from the collaborator and updates the cache.
func (s *Service) computeTrip(ctx context.Context, origin, destination, key string) (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check cache (prevents thundering herd)
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		cpy := *cached.trip
		return &cpy, nil
	}

	s.logger.Debug().
		Str("origin", origin).
		Str("destination", destination).
		Str("computer", s.computer.Name()).
		Msg("computing trip from collaborator")

	t, err := s.computer.ComputeTrip(ctx, origin, destination)
	if err != nil {
		s.logger.Error().Err(err).
			Str("origin", origin).
			Str("destination", destination).
			Msg("failed to compute trip")

		// Check for stale data (stale-if-error pattern)
		if cached, ok := s.cache[key]; ok {
			if time.Now().Before(cached.computedAt.Add(s.staleIfErrorTTL)) {
				s.logger.Warn().
					Time("computed_at", cached.computedAt).
					Str("origin", origin).
					Str("destination", destination).
					Msg("serving stale trip due to collaborator error")
				cpy := *cached.trip
				return &cpy, nil
			}
		}

		return nil, err
	}

	now := time.Now()
	s.cache[key] = &cachedTrip{
		trip:       t,
		computedAt: now,
		expiresAt:  now.Add(s.cacheTTL),
	}

	s.cleanupIfNeeded()

	cpy := *t
	return &cpy, nil
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		// Remove entries that are past the stale-if-error window
		if now.After(cached.computedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired trip cache entries")
	}
}

// InvalidateCache clears all cached trips.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedTrip)
}

// Ensure Service implements Computer; callers can layer it transparently.
var _ Computer = (*Service)(nil)
