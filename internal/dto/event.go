package dto

import (
	"time"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
)

// CreateEventRequest publishes a new event
type CreateEventRequest struct {
	Slug        string     `json:"slug" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description,omitempty"`
	Timezone    string     `json:"timezone,omitempty"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`

	CocktailCapacity *int `json:"cocktail_capacity,omitempty"`

	DinnerEnabled              bool       `json:"dinner_enabled"`
	DinnerStartTime            *time.Time `json:"dinner_start_time,omitempty"`
	DinnerEndTime              *time.Time `json:"dinner_end_time,omitempty"`
	DinnerSeatingIntervalHours float64    `json:"dinner_seating_interval_hours,omitempty"`
	DinnerMaxSeatsPerSlot      *int       `json:"dinner_max_seats_per_slot,omitempty"`

	WaitlistEnabled     bool `json:"waitlist_enabled"`
	MaxPlusOnesPerGuest int  `json:"max_plus_ones_per_guest" binding:"min=0,max=5"`
}

// UpdateEventRequest edits capacity configuration after publishing.
// Nil fields keep their current values; identity fields cannot change.
type UpdateEventRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Timezone    *string    `json:"timezone,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`

	CocktailCapacity           *int       `json:"cocktail_capacity,omitempty"`
	ClearCocktailCap           bool       `json:"clear_cocktail_capacity,omitempty"`
	DinnerEnabled              *bool      `json:"dinner_enabled,omitempty"`
	DinnerStartTime            *time.Time `json:"dinner_start_time,omitempty"`
	DinnerEndTime              *time.Time `json:"dinner_end_time,omitempty"`
	DinnerSeatingIntervalHours *float64   `json:"dinner_seating_interval_hours,omitempty"`
	DinnerMaxSeatsPerSlot      *int       `json:"dinner_max_seats_per_slot,omitempty"`
	ClearDinnerSeatCap         bool       `json:"clear_dinner_max_seats_per_slot,omitempty"`

	WaitlistEnabled     *bool `json:"waitlist_enabled,omitempty"`
	MaxPlusOnesPerGuest *int  `json:"max_plus_ones_per_guest,omitempty"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	HostID      string     `json:"host_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Timezone    string     `json:"timezone,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`

	CocktailCapacity *int `json:"cocktail_capacity,omitempty"`

	DinnerEnabled              bool        `json:"dinner_enabled"`
	DinnerStartTime            *time.Time  `json:"dinner_start_time,omitempty"`
	DinnerEndTime              *time.Time  `json:"dinner_end_time,omitempty"`
	DinnerSeatingIntervalHours float64     `json:"dinner_seating_interval_hours,omitempty"`
	DinnerMaxSeatsPerSlot      *int        `json:"dinner_max_seats_per_slot,omitempty"`
	DinnerSlots                []time.Time `json:"dinner_slots,omitempty"`

	WaitlistEnabled     bool `json:"waitlist_enabled"`
	MaxPlusOnesPerGuest int  `json:"max_plus_ones_per_guest"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromEvent converts a domain event to its API shape
func FromEvent(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:                         e.ID,
		Slug:                       e.Slug,
		HostID:                     e.HostID,
		Name:                       e.Name,
		Description:                e.Description,
		Timezone:                   e.Timezone,
		StartsAt:                   e.StartsAt,
		EndsAt:                     e.EndsAt,
		CocktailCapacity:           e.CocktailCapacity,
		DinnerEnabled:              e.DinnerEnabled,
		DinnerStartTime:            e.DinnerStartTime,
		DinnerEndTime:              e.DinnerEndTime,
		DinnerSeatingIntervalHours: e.DinnerSeatingIntervalHours,
		DinnerMaxSeatsPerSlot:      e.DinnerMaxSeatsPerSlot,
		DinnerSlots:                e.DinnerSlots(),
		WaitlistEnabled:            e.WaitlistEnabled,
		MaxPlusOnesPerGuest:        e.MaxPlusOnesPerGuest,
		CreatedAt:                  e.CreatedAt,
		UpdatedAt:                  e.UpdatedAt,
	}
}

// SlotAvailability is one dinner slot with its current counts
type SlotAvailability struct {
	SlotTime       time.Time `json:"slot_time"`
	ConfirmedSeats int       `json:"confirmed_seats"`
	WaitlistSeats  int       `json:"waitlist_seats"`
	// RemainingSeats is nil when the event has no per-slot seat cap
	RemainingSeats *int `json:"remaining_seats,omitempty"`
}

// AvailabilityResponse is the display-path occupancy view for an event.
// Served from cache when warm; not used for admission decisions.
type AvailabilityResponse struct {
	EventID            string `json:"event_id"`
	CocktailCapacity   *int   `json:"cocktail_capacity,omitempty"`
	ConfirmedTotal     int    `json:"confirmed_total"`
	WaitlistTotal      int    `json:"waitlist_total"`
	CocktailsOnlyTotal int    `json:"cocktails_only_total"`
	// RemainingCocktail is nil when cocktail capacity is unlimited
	RemainingCocktail *int               `json:"remaining_cocktail,omitempty"`
	Slots             []SlotAvailability `json:"slots,omitempty"`
}
