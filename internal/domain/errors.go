package domain

import "errors"

// Domain errors
var (
	// Not-found errors
	ErrEventNotFound       = errors.New("event not found")
	ErrPersonNotFound      = errors.New("person not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrPaymentNotFound     = errors.New("payment not found")

	// Validation errors
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidSlot      = errors.New("requested dinner slot does not exist")
	ErrInvalidPartySize = errors.New("party size must be at least one")
	ErrInvalidEventID   = errors.New("invalid event id")

	// Admission errors
	ErrEventFull = errors.New("event is at capacity and waitlist is disabled")

	// Conflict errors
	ErrDuplicateReservation = errors.New("reservation already exists for this guest and event")
	ErrAlreadyCancelled     = errors.New("reservation already cancelled")
	ErrNotConfirmed         = errors.New("reservation is not confirmed")
	ErrDinnerNotConfirmed   = errors.New("dinner booking is not confirmed")
	ErrCheckinExceedsParty  = errors.New("check-in count exceeds party size")
	ErrStaleReference       = errors.New("reservation references a missing event or person")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrPersonNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrInvalidSlot) ||
		errors.Is(err, ErrInvalidPartySize) ||
		errors.Is(err, ErrInvalidEventID)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateReservation) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrNotConfirmed) ||
		errors.Is(err, ErrDinnerNotConfirmed) ||
		errors.Is(err, ErrCheckinExceedsParty) ||
		errors.Is(err, ErrStaleReference) ||
		errors.Is(err, ErrEventFull)
}
