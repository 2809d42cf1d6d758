package domain

import (
	"time"
)

// BookingStatus is the admission state of a reservation or of its dinner
// sub-booking. One canonical representation; no legacy dual fields.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusWaitlist  BookingStatus = "waitlist"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// String returns the string representation of the status
func (s BookingStatus) String() string {
	return string(s)
}

// PaymentStatus is the bookkeeping state of a reservation's payment linkage
type PaymentStatus string

const (
	PaymentStatusNone     PaymentStatus = ""
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// DinnerBooking is the nested sub-reservation for a specific dinner slot.
// PartySize includes the booking person. Status is confirmed or waitlist;
// cancellation happens only at the reservation level.
type DinnerBooking struct {
	PartySize int           `json:"party_size"`
	SlotTime  time.Time     `json:"slot_time"`
	Status    BookingStatus `json:"status"`
}

// Reservation is one person's RSVP to one event. At most one reservation
// exists per (person, event) pair; duplicate attempts are rejected.
type Reservation struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	PersonID string `json:"person_id"`

	Status   BookingStatus  `json:"status"`
	PlusOnes int            `json:"plus_ones"`
	Dinner   *DinnerBooking `json:"dinner,omitempty"`

	// PartySize is derived from the composition rules at every write.
	// TotalGuests is persisted separately for stable external reporting
	// even as derivation logic evolves.
	PartySize   int `json:"party_size"`
	TotalGuests int `json:"total_guests"`

	// Check-in counters. Forced to zero whenever Status != confirmed.
	DinnerPullUpCount       int `json:"dinner_pull_up_count"`
	CocktailOnlyPullUpCount int `json:"cocktail_only_pull_up_count"`

	PaymentID     string        `json:"payment_id,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsConfirmed reports whether the reservation is confirmed at event level
func (r *Reservation) IsConfirmed() bool {
	return r.Status == BookingStatusConfirmed
}

// IsWaitlisted reports whether the reservation is waitlisted at event level
func (r *Reservation) IsWaitlisted() bool {
	return r.Status == BookingStatusWaitlist
}

// IsCancelled reports whether the reservation has been cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == BookingStatusCancelled
}

// WantsDinner reports whether the reservation carries a dinner sub-booking
func (r *Reservation) WantsDinner() bool {
	return r.Dinner != nil
}

// DinnerConfirmed reports whether the dinner sub-booking is confirmed
func (r *Reservation) DinnerConfirmed() bool {
	return r.Dinner != nil && r.Dinner.Status == BookingStatusConfirmed
}

// GuestCount returns the number of guests this reservation admits, falling
// back for records written before TotalGuests existed.
func (r *Reservation) GuestCount() int {
	if r.TotalGuests > 0 {
		return r.TotalGuests
	}
	if r.PartySize > 0 {
		return r.PartySize
	}
	return 1
}

// CocktailsOnly returns the sub-count of this party not occupying a dinner
// seat, per the composition rules.
func (r *Reservation) CocktailsOnly() int {
	if r.WantsDinner() {
		return CocktailsOnlyCount(true, r.GuestCount(), r.PlusOnes)
	}
	return CocktailsOnlyCount(false, r.GuestCount(), r.PlusOnes)
}

// DinnerSeatBound returns the upper bound for dinner check-ins
func (r *Reservation) DinnerSeatBound() int {
	if !r.DinnerConfirmed() {
		return 0
	}
	if r.Dinner.PartySize < r.GuestCount() {
		return r.Dinner.PartySize
	}
	return r.GuestCount()
}

// CocktailSeatBound returns the upper bound for cocktails-only check-ins
func (r *Reservation) CocktailSeatBound() int {
	if r.DinnerConfirmed() {
		return r.GuestCount() - r.DinnerSeatBound()
	}
	return r.GuestCount()
}
