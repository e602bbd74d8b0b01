// Package odtable provides an HTTP client for an external
// origin-destination table service, the routing collaborator that turns
// node pairs into trip distances and reference durations.
package odtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// ClientConfig holds configuration for the OD-table client.
type ClientConfig struct {
	// BaseURL is the OD-table service base URL.
	BaseURL string

	// Timeout is the request timeout for individual HTTP calls.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 100ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 5 seconds
	MaxInterval time.Duration
}

// Client queries an origin-destination table service over HTTP with retry
// and circuit breaker protection. Transient failures (5xx, network errors)
// are retried with exponential backoff; repeated failures open the breaker
// and fail fast with ErrComputerUnavailable.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*odEntry]
	config         ClientConfig
}

// odEntry is the wire format of one table entry.
type odEntry struct {
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	DistanceKm      float64 `json:"distanceKm"`
	DurationMinutes float64 `json:"durationMinutes"`
}

// serverError marks a 5xx response so it trips the circuit breaker.
type serverError struct {
	statusCode int
}

func (e *serverError) Error() string {
	return "od-table server error: " + http.StatusText(e.statusCode)
}

// NewClient creates a new OD-table client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*odEntry](gobreaker.Settings{
		Name:        "odtable",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: cb,
		config:         cfg,
	}
}

// ComputeTrip fetches the table entry for the pair and converts it to a
// trip context.
func (c *Client) ComputeTrip(ctx context.Context, origin, destination string) (*trip.Context, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var entry *odEntry

	operation := func() error {
		result, err := c.circuitBreaker.Execute(func() (*odEntry, error) {
			return c.fetchEntry(ctx, origin, destination)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(trip.ErrComputerUnavailable)
			}
			if errors.Is(err, trip.ErrPairUnknown) {
				return backoff.Permanent(err)
			}
			// Network and server errors are retryable
			return err
		}

		entry = result
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return trip.New(trip.Context{
		Origin:        entry.Origin,
		Destination:   entry.Destination,
		DistanceKm:    entry.DistanceKm,
		ReferenceTime: time.Duration(entry.DurationMinutes * float64(time.Minute)),
	})
}

// Name returns the computer identifier.
func (c *Client) Name() string {
	return "odtable"
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

func (c *Client) fetchEntry(ctx context.Context, origin, destination string) (*odEntry, error) {
	endpoint := fmt.Sprintf("%s/v1/od?origin=%s&destination=%s",
		c.baseURL, url.QueryEscape(origin), url.QueryEscape(destination))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building od-table request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying od-table: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s -> %s", trip.ErrPairUnknown, origin, destination)
	case resp.StatusCode >= 500:
		return nil, &serverError{statusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("od-table returned status %d", resp.StatusCode)
	}

	var entry odEntry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("decoding od-table response: %w", err)
	}

	return &entry, nil
}

// Ensure Client implements the routing collaborator boundary.
var _ trip.Computer = (*Client)(nil)
