package domain

import "time"

// PaymentState is the provider-side state of a payment
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStateSucceeded PaymentState = "succeeded"
	PaymentStateFailed    PaymentState = "failed"
	PaymentStateRefunded  PaymentState = "refunded"
	PaymentStateCanceled  PaymentState = "canceled"
)

// Payment records money movement optionally linked to a reservation.
// A transition to succeeded on a payment linked to a waitlisted reservation
// is the one path allowed to bypass capacity checks: the seat was purchased
// out-of-band, so the allocation engine force-confirms.
type Payment struct {
	ID            string       `json:"id"`
	ReservationID string       `json:"reservation_id,omitempty"`
	Amount        int64        `json:"amount"` // minor units
	Currency      string       `json:"currency"`
	Status        PaymentState `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
