package domain

import (
	"time"
)

// Event represents a host-published event with capacity configuration.
// Identity (ID, Slug, HostID) is immutable; capacity fields may be edited
// after publishing, and such edits never rewrite slot or party data already
// recorded on reservations.
type Event struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	HostID      string     `json:"host_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Timezone    string     `json:"timezone"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`

	// CocktailCapacity bounds cocktails-only guests across the event.
	// nil means unlimited.
	CocktailCapacity *int `json:"cocktail_capacity,omitempty"`

	// Dinner seating configuration. Slots are derived, never stored.
	DinnerEnabled              bool       `json:"dinner_enabled"`
	DinnerStartTime            *time.Time `json:"dinner_start_time,omitempty"`
	DinnerEndTime              *time.Time `json:"dinner_end_time,omitempty"`
	DinnerSeatingIntervalHours float64    `json:"dinner_seating_interval_hours"`
	// DinnerMaxSeatsPerSlot bounds confirmed dinner guests per slot.
	// nil means unlimited per slot.
	DinnerMaxSeatsPerSlot *int `json:"dinner_max_seats_per_slot,omitempty"`

	WaitlistEnabled     bool `json:"waitlist_enabled"`
	MaxPlusOnesPerGuest int  `json:"max_plus_ones_per_guest"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaxPlusOnesCeiling is the hard bound on per-event plus-one configuration.
const MaxPlusOnesCeiling = 5

// ClampPlusOnes bounds a requested plus-one count to [0, MaxPlusOnesPerGuest]
func (e *Event) ClampPlusOnes(n int) int {
	if n < 0 {
		return 0
	}
	if n > e.MaxPlusOnesPerGuest {
		return e.MaxPlusOnesPerGuest
	}
	return n
}

// HasCocktailCapacity reports whether the event caps cocktails-only guests
func (e *Event) HasCocktailCapacity() bool {
	return e.CocktailCapacity != nil
}

// HasDinnerSeatCap reports whether dinner slots have a per-slot seat bound
func (e *Event) HasDinnerSeatCap() bool {
	return e.DinnerMaxSeatsPerSlot != nil
}
