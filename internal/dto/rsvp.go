package dto

import (
	"time"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
)

// CreateRSVPRequest represents a guest's RSVP submission
type CreateRSVPRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name,omitempty"`

	PlusOnes int `json:"plus_ones"`

	WantsDinner     bool       `json:"wants_dinner"`
	DinnerPartySize int        `json:"dinner_party_size,omitempty"`
	DinnerSlotTime  *time.Time `json:"dinner_slot_time,omitempty"`
}

// UpdateRSVPRequest represents a guest or host edit to an existing RSVP.
// Nil fields keep their current values.
type UpdateRSVPRequest struct {
	Email *string `json:"email,omitempty"`
	Name  *string `json:"name,omitempty"`

	PlusOnes *int `json:"plus_ones,omitempty"`

	WantsDinner     *bool      `json:"wants_dinner,omitempty"`
	DinnerPartySize *int       `json:"dinner_party_size,omitempty"`
	DinnerSlotTime  *time.Time `json:"dinner_slot_time,omitempty"`

	// Host override: setting check-in counts together with an edit keeps
	// them even when the edit lands the booking off the confirmed state.
	DinnerPullUpCount       *int `json:"dinner_pull_up_count,omitempty"`
	CocktailOnlyPullUpCount *int `json:"cocktail_only_pull_up_count,omitempty"`
}

// CheckinRequest sets check-in (pull-up) counts for a confirmed reservation
type CheckinRequest struct {
	DinnerPullUpCount       *int `json:"dinner_pull_up_count,omitempty"`
	CocktailOnlyPullUpCount *int `json:"cocktail_only_pull_up_count,omitempty"`
}

// DinnerResponse is the dinner sub-booking in API responses
type DinnerResponse struct {
	PartySize int       `json:"party_size"`
	SlotTime  time.Time `json:"slot_time"`
	Status    string    `json:"status"`
}

// RSVPResponse represents a reservation in API responses
type RSVPResponse struct {
	ID       string `json:"id"`
	EventID  string `json:"event_id"`
	PersonID string `json:"person_id"`

	Status   string          `json:"status"`
	PlusOnes int             `json:"plus_ones"`
	Dinner   *DinnerResponse `json:"dinner,omitempty"`

	PartySize   int `json:"party_size"`
	TotalGuests int `json:"total_guests"`

	DinnerPullUpCount       int `json:"dinner_pull_up_count"`
	CocktailOnlyPullUpCount int `json:"cocktail_only_pull_up_count"`

	PaymentID     string `json:"payment_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromReservation converts a domain reservation to its API shape
func FromReservation(r *domain.Reservation) *RSVPResponse {
	resp := &RSVPResponse{
		ID:                      r.ID,
		EventID:                 r.EventID,
		PersonID:                r.PersonID,
		Status:                  r.Status.String(),
		PlusOnes:                r.PlusOnes,
		PartySize:               r.PartySize,
		TotalGuests:             r.TotalGuests,
		DinnerPullUpCount:       r.DinnerPullUpCount,
		CocktailOnlyPullUpCount: r.CocktailOnlyPullUpCount,
		PaymentID:               r.PaymentID,
		PaymentStatus:           string(r.PaymentStatus),
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
	if r.Dinner != nil {
		resp.Dinner = &DinnerResponse{
			PartySize: r.Dinner.PartySize,
			SlotTime:  r.Dinner.SlotTime,
			Status:    r.Dinner.Status.String(),
		}
	}
	return resp
}
