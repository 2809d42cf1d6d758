package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/pkg/telemetry"
)

// PostgresReservationRepository implements ReservationRepository using PostgreSQL
type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository
func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

const reservationColumns = `
	id, event_id, person_id, status, plus_ones,
	dinner_party_size, dinner_slot_time, dinner_status,
	party_size, total_guests,
	dinner_pull_up_count, cocktail_only_pull_up_count,
	payment_id, payment_status, created_at, updated_at
`

// Create inserts a new reservation
func (r *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", reservation.ID),
		attribute.String("event_id", reservation.EventID),
		attribute.String("person_id", reservation.PersonID),
	)

	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	dinnerPartySize, dinnerSlotTime, dinnerStatus := dinnerFields(reservation)

	_, err := queryFrom(ctx, r.pool).Exec(ctx, query,
		reservation.ID,
		reservation.EventID,
		reservation.PersonID,
		reservation.Status.String(),
		reservation.PlusOnes,
		dinnerPartySize,
		dinnerSlotTime,
		dinnerStatus,
		reservation.PartySize,
		reservation.TotalGuests,
		reservation.DinnerPullUpCount,
		reservation.CocktailOnlyPullUpCount,
		nullString(reservation.PaymentID),
		nullString(string(reservation.PaymentStatus)),
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Update rewrites a reservation in full
func (r *PostgresReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.update")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", reservation.ID))

	query := `
		UPDATE reservations SET
			person_id = $2, status = $3, plus_ones = $4,
			dinner_party_size = $5, dinner_slot_time = $6, dinner_status = $7,
			party_size = $8, total_guests = $9,
			dinner_pull_up_count = $10, cocktail_only_pull_up_count = $11,
			payment_id = $12, payment_status = $13, updated_at = $14
		WHERE id = $1
	`

	dinnerPartySize, dinnerSlotTime, dinnerStatus := dinnerFields(reservation)

	tag, err := queryFrom(ctx, r.pool).Exec(ctx, query,
		reservation.ID,
		reservation.PersonID,
		reservation.Status.String(),
		reservation.PlusOnes,
		dinnerPartySize,
		dinnerSlotTime,
		dinnerStatus,
		reservation.PartySize,
		reservation.TotalGuests,
		reservation.DinnerPullUpCount,
		reservation.CocktailOnlyPullUpCount,
		nullString(reservation.PaymentID),
		nullString(string(reservation.PaymentStatus)),
		reservation.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrReservationNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a reservation by id
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id))

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return scanReservation(queryFrom(ctx, r.pool).QueryRow(ctx, query, id))
}

// GetByEventAndPerson retrieves the reservation for a (person, event) pair
func (r *PostgresReservationRepository) GetByEventAndPerson(ctx context.Context, eventID, personID string) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.get_by_event_and_person")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("person_id", personID),
	)

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE event_id = $1 AND person_id = $2`
	return scanReservation(queryFrom(ctx, r.pool).QueryRow(ctx, query, eventID, personID))
}

// ListByEvent returns every non-cancelled reservation for the event
func (r *PostgresReservationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.list_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE event_id = $1 AND status != 'cancelled'
		ORDER BY created_at
	`

	rows, err := queryFrom(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reservations: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return reservations, nil
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	reservation := &domain.Reservation{}
	var (
		status          string
		dinnerPartySize *int
		dinnerSlotTime  *time.Time
		dinnerStatus    *string
		paymentID       *string
		paymentStatus   *string
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.EventID,
		&reservation.PersonID,
		&status,
		&reservation.PlusOnes,
		&dinnerPartySize,
		&dinnerSlotTime,
		&dinnerStatus,
		&reservation.PartySize,
		&reservation.TotalGuests,
		&reservation.DinnerPullUpCount,
		&reservation.CocktailOnlyPullUpCount,
		&paymentID,
		&paymentStatus,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to scan reservation: %w", err)
	}

	reservation.Status = domain.BookingStatus(status)
	if dinnerPartySize != nil && dinnerSlotTime != nil && dinnerStatus != nil {
		reservation.Dinner = &domain.DinnerBooking{
			PartySize: *dinnerPartySize,
			SlotTime:  dinnerSlotTime.UTC(),
			Status:    domain.BookingStatus(*dinnerStatus),
		}
	}
	if paymentID != nil {
		reservation.PaymentID = *paymentID
	}
	if paymentStatus != nil {
		reservation.PaymentStatus = domain.PaymentStatus(*paymentStatus)
	}
	return reservation, nil
}

func dinnerFields(r *domain.Reservation) (*int, *time.Time, *string) {
	if r.Dinner == nil {
		return nil, nil, nil
	}
	slot := r.Dinner.SlotTime.UTC()
	status := r.Dinner.Status.String()
	return &r.Dinner.PartySize, &slot, &status
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
