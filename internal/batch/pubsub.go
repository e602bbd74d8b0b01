package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/marlinarnz/decent-mobility/internal/persona"
	"github.com/marlinarnz/decent-mobility/internal/trip"
)

// PubSubHandler consumes population run jobs from a Pub/Sub subscription.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	driver           *Driver
	personas         *persona.Service
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Driver           *Driver
	Personas         *persona.Service
	Logger           zerolog.Logger
}

// TripInput is one trip in a run message.
type TripInput struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	DistanceKm  float64 `json:"distanceKm"`
	Purpose     string  `json:"purpose,omitempty"`
	TimeOfDay   string  `json:"timeOfDay,omitempty"`
}

// RunMessage represents a population run job message.
type RunMessage struct {
	JobType string `json:"job_type"`

	// Scenario labels the run in logs.
	Scenario string `json:"scenario,omitempty"`

	// Trips to evaluate against every stored persona.
	Trips []TripInput `json:"trips,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Population runs can take a while on large populations.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 30 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		driver:           cfg.Driver,
		personas:         cfg.Personas,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	startTime := time.Now()

	logger := h.logger.With().
		Str("message_id", msg.ID).
		Logger()

	var runMsg RunMessage
	if err := json.Unmarshal(msg.Data, &runMsg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		msg.Nack()
		return
	}

	switch runMsg.JobType {
	case "population_run":
		if err := h.handlePopulationRun(ctx, runMsg); err != nil {
			logger.Error().Err(err).Msg("population run failed")
			msg.Nack()
			return
		}
	default:
		logger.Warn().Str("job_type", runMsg.JobType).Msg("unknown job type")
		msg.Ack() // Ack unknown messages to prevent redelivery
		return
	}

	logger.Info().
		Str("job_type", runMsg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")

	msg.Ack()
}

func (h *PubSubHandler) handlePopulationRun(ctx context.Context, msg RunMessage) error {
	trips := make([]*trip.Context, 0, len(msg.Trips))
	for _, in := range msg.Trips {
		t, err := trip.New(trip.Context{
			Origin:      in.Origin,
			Destination: in.Destination,
			DistanceKm:  in.DistanceKm,
			Purpose:     in.Purpose,
			TimeOfDay:   in.TimeOfDay,
		})
		if err != nil {
			return fmt.Errorf("run message trip %s -> %s: %w", in.Origin, in.Destination, err)
		}
		trips = append(trips, t)
	}

	personas, err := h.loadAllPersonas(ctx)
	if err != nil {
		return err
	}

	h.logger.Info().
		Str("scenario", msg.Scenario).
		Int("personas", len(personas)).
		Int("trips", len(trips)).
		Msg("starting population run")

	result := h.driver.Run(ctx, personas, trips)

	h.logger.Info().
		Str("scenario", msg.Scenario).
		Int("decided", result.Decided).
		Int("deprived", result.Deprived).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("population run summary")

	// The run succeeded as a job even when individual pairs failed; those
	// are recorded in the result, not retried via redelivery.
	return nil
}

func (h *PubSubHandler) loadAllPersonas(ctx context.Context) ([]*persona.Profile, error) {
	var (
		personas []*persona.Profile
		cursor   string
	)

	for {
		page, err := h.personas.List(ctx, persona.ListOptions{Limit: 200, Cursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("loading personas: %w", err)
		}
		personas = append(personas, page.Items...)
		if page.NextCursor == "" {
			return personas, nil
		}
		cursor = page.NextCursor
	}
}
