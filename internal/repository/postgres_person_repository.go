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

// PostgresPersonRepository implements PersonRepository using PostgreSQL
type PostgresPersonRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPersonRepository creates a new PostgresPersonRepository
func NewPostgresPersonRepository(pool *pgxpool.Pool) *PostgresPersonRepository {
	return &PostgresPersonRepository{pool: pool}
}

// Create inserts a new person. Email must already be normalized.
func (r *PostgresPersonRepository) Create(ctx context.Context, person *domain.Person) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.person.create")
	defer span.End()

	span.SetAttributes(attribute.String("person_id", person.ID))

	query := `
		INSERT INTO people (id, email, name, phone, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := queryFrom(ctx, r.pool).Exec(ctx, query,
		person.ID,
		person.Email,
		person.Name,
		person.Phone,
		person.Notes,
		person.CreatedAt,
		person.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create person: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update rewrites a person's contact fields
func (r *PostgresPersonRepository) Update(ctx context.Context, person *domain.Person) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.person.update")
	defer span.End()

	span.SetAttributes(attribute.String("person_id", person.ID))

	query := `
		UPDATE people SET email = $2, name = $3, phone = $4, notes = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := queryFrom(ctx, r.pool).Exec(ctx, query,
		person.ID,
		person.Email,
		person.Name,
		person.Phone,
		person.Notes,
		person.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrPersonNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a person by id
func (r *PostgresPersonRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.person.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("person_id", id))
	return r.getBy(ctx, `WHERE id = $1`, id)
}

// GetByEmail retrieves a person by normalized email
func (r *PostgresPersonRepository) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.person.get_by_email")
	defer span.End()

	return r.getBy(ctx, `WHERE email = $1`, domain.NormalizeEmail(email))
}

func (r *PostgresPersonRepository) getBy(ctx context.Context, where string, arg any) (*domain.Person, error) {
	query := `SELECT id, email, name, phone, notes, created_at, updated_at FROM people ` + where

	person := &domain.Person{}
	err := queryFrom(ctx, r.pool).QueryRow(ctx, query, arg).Scan(
		&person.ID,
		&person.Email,
		&person.Name,
		&person.Phone,
		&person.Notes,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return person, nil
}
