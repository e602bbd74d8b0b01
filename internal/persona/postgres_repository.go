package persona

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL persona repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const profileColumns = `
	id, name, budget, max_travel_time_seconds,
	abilities, capabilities, preferences,
	attributes, trip_needs,
	created_at, updated_at
`

// Get retrieves a profile by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM personas WHERE id = $1`
	return r.scanProfile(r.pool.QueryRow(ctx, query, id))
}

// List retrieves profiles ordered by ID with cursor pagination.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + profileColumns + `
		FROM personas
		WHERE ($1 = '' OR id > $1)
		ORDER BY id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, opts.Cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("listing personas: %w", err)
	}
	defer rows.Close()

	result := &ListResult{}
	for rows.Next() {
		p, err := r.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing personas: %w", err)
	}

	if len(result.Items) > limit {
		result.Items = result.Items[:limit]
		result.NextCursor = result.Items[limit-1].ID
	}

	return result, nil
}

// Create stores a new profile.
func (r *PostgresRepository) Create(ctx context.Context, p *Profile) error {
	attributes, tripNeeds, err := marshalProfileJSON(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO personas (
			id, name, budget, max_travel_time_seconds,
			abilities, capabilities, preferences,
			attributes, trip_needs,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Budget, int64(p.MaxTravelTime/time.Second),
		p.Abilities, p.Capabilities, p.Preferences,
		attributes, tripNeeds,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating persona %s: %w", p.ID, err)
	}
	return nil
}

// Update replaces an existing profile.
func (r *PostgresRepository) Update(ctx context.Context, p *Profile) error {
	attributes, tripNeeds, err := marshalProfileJSON(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE personas SET
			name = $2, budget = $3, max_travel_time_seconds = $4,
			abilities = $5, capabilities = $6, preferences = $7,
			attributes = $8, trip_needs = $9,
			updated_at = $10
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Budget, int64(p.MaxTravelTime/time.Second),
		p.Abilities, p.Capabilities, p.Preferences,
		attributes, tripNeeds,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("updating persona %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Delete removes a profile by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM personas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting persona %s: %w", id, err)
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanProfile(row rowScanner) (*Profile, error) {
	var (
		p              Profile
		maxTravelSecs  int64
		attributesJSON []byte
		tripNeedsJSON  []byte
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Budget, &maxTravelSecs,
		&p.Abilities, &p.Capabilities, &p.Preferences,
		&attributesJSON, &tripNeedsJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("scanning persona: %w", err)
	}

	p.MaxTravelTime = time.Duration(maxTravelSecs) * time.Second

	if len(attributesJSON) > 0 {
		if err := json.Unmarshal(attributesJSON, &p.Attributes); err != nil {
			return nil, fmt.Errorf("decoding persona %s attributes: %w", p.ID, err)
		}
	}
	if len(tripNeedsJSON) > 0 {
		if err := json.Unmarshal(tripNeedsJSON, &p.TripNeeds); err != nil {
			return nil, fmt.Errorf("decoding persona %s trip needs: %w", p.ID, err)
		}
	}

	return &p, nil
}

func marshalProfileJSON(p *Profile) (attributes, tripNeeds []byte, err error) {
	attributes, err = json.Marshal(p.Attributes)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding persona %s attributes: %w", p.ID, err)
	}
	tripNeeds, err = json.Marshal(p.TripNeeds)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding persona %s trip needs: %w", p.ID, err)
	}
	return attributes, tripNeeds, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
