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

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(pool *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

// Upsert records a payment, updating status on replayed events. The insert
// is idempotent on payment id so webhook redelivery cannot duplicate rows.
func (r *PostgresPaymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.upsert")
	defer span.End()

	span.SetAttributes(
		attribute.String("payment_id", payment.ID),
		attribute.String("status", string(payment.Status)),
	)

	query := `
		INSERT INTO payments (id, reservation_id, amount, currency, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`

	_, err := queryFrom(ctx, r.pool).Exec(ctx, query,
		payment.ID,
		nullString(payment.ReservationID),
		payment.Amount,
		payment.Currency,
		string(payment.Status),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a payment by id
func (r *PostgresPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.payment.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("payment_id", id))

	query := `
		SELECT id, reservation_id, amount, currency, status, created_at, updated_at
		FROM payments WHERE id = $1
	`

	payment := &domain.Payment{}
	var reservationID *string
	var status string

	err := queryFrom(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&payment.ID,
		&reservationID,
		&payment.Amount,
		&payment.Currency,
		&status,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	payment.Status = domain.PaymentState(status)
	if reservationID != nil {
		payment.ReservationID = *reservationID
	}
	return payment, nil
}
