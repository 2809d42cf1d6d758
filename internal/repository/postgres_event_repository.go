package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/pkg/telemetry"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `
	id, slug, host_id, name, description, timezone, starts_at, ends_at,
	cocktail_capacity, dinner_enabled, dinner_start_time, dinner_end_time,
	dinner_seating_interval_hours, dinner_max_seats_per_slot,
	waitlist_enabled, max_plus_ones_per_guest, created_at, updated_at
`

// Create inserts a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("slug", event.Slug),
	)

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := queryFrom(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.Slug,
		event.HostID,
		event.Name,
		event.Description,
		event.Timezone,
		event.StartsAt,
		event.EndsAt,
		event.CocktailCapacity,
		event.DinnerEnabled,
		event.DinnerStartTime,
		event.DinnerEndTime,
		event.DinnerSeatingIntervalHours,
		event.DinnerMaxSeatsPerSlot,
		event.WaitlistEnabled,
		event.MaxPlusOnesPerGuest,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update rewrites the mutable configuration of an event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID))

	query := `
		UPDATE events SET
			name = $2, description = $3, timezone = $4, starts_at = $5, ends_at = $6,
			cocktail_capacity = $7, dinner_enabled = $8, dinner_start_time = $9,
			dinner_end_time = $10, dinner_seating_interval_hours = $11,
			dinner_max_seats_per_slot = $12, waitlist_enabled = $13,
			max_plus_ones_per_guest = $14, updated_at = $15
		WHERE id = $1
	`

	tag, err := queryFrom(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Timezone,
		event.StartsAt,
		event.EndsAt,
		event.CocktailCapacity,
		event.DinnerEnabled,
		event.DinnerStartTime,
		event.DinnerEndTime,
		event.DinnerSeatingIntervalHours,
		event.DinnerMaxSeatsPerSlot,
		event.WaitlistEnabled,
		event.MaxPlusOnesPerGuest,
		event.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by id
func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id))
	return r.getBy(ctx, `WHERE id = $1`, id)
}

// GetBySlug retrieves an event by its unique slug
func (r *PostgresEventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_slug")
	defer span.End()

	span.SetAttributes(attribute.String("slug", slug))
	return r.getBy(ctx, `WHERE slug = $1`, slug)
}

func (r *PostgresEventRepository) getBy(ctx context.Context, where string, arg any) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ` + where

	event := &domain.Event{}
	err := queryFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&event.ID,
		&event.Slug,
		&event.HostID,
		&event.Name,
		&event.Description,
		&event.Timezone,
		&event.StartsAt,
		&event.EndsAt,
		&event.CocktailCapacity,
		&event.DinnerEnabled,
		&event.DinnerStartTime,
		&event.DinnerEndTime,
		&event.DinnerSeatingIntervalHours,
		&event.DinnerMaxSeatsPerSlot,
		&event.WaitlistEnabled,
		&event.MaxPlusOnesPerGuest,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}
