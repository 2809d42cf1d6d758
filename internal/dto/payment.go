package dto

import "time"

// Payment event types carried on the broker
const (
	PaymentEventSucceeded = "payment.succeeded"
	PaymentEventFailed    = "payment.failed"
	PaymentEventRefunded  = "payment.refunded"
)

// PaymentEvent is emitted by the payment subsystem when a payment changes
// state. Only its effect on allocation state is handled here; provider
// integration lives elsewhere.
type PaymentEvent struct {
	EventType     string    `json:"event_type"`
	PaymentID     string    `json:"payment_id"`
	ReservationID string    `json:"reservation_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Timestamp     time.Time `json:"timestamp"`
}
