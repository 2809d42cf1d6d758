package allocation

import (
	"time"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
)

// Occupancy computes aggregate guest counts over the full reservation
// collection of one event. It is a query-only view: callers load the
// reservations (under the event lock when deciding admission) and read
// whatever counts they need. Cancelled reservations never count.
type Occupancy struct {
	reservations []*domain.Reservation
	excludeID    string
}

// NewOccupancy builds an occupancy view over an event's reservations
func NewOccupancy(reservations []*domain.Reservation) *Occupancy {
	return &Occupancy{reservations: reservations}
}

// Excluding returns a view that ignores the given reservation, required when
// re-evaluating capacity for an edit: the reservation being edited must not
// count against itself.
func (o *Occupancy) Excluding(reservationID string) *Occupancy {
	return &Occupancy{reservations: o.reservations, excludeID: reservationID}
}

func (o *Occupancy) visible(r *domain.Reservation) bool {
	return r.ID != o.excludeID && !r.IsCancelled()
}

// ConfirmedTotal sums guests over confirmed reservations
func (o *Occupancy) ConfirmedTotal() int {
	total := 0
	for _, r := range o.reservations {
		if o.visible(r) && r.IsConfirmed() {
			total += r.GuestCount()
		}
	}
	return total
}

// WaitlistTotal sums guests over waitlisted reservations
func (o *Occupancy) WaitlistTotal() int {
	total := 0
	for _, r := range o.reservations {
		if o.visible(r) && r.IsWaitlisted() {
			total += r.GuestCount()
		}
	}
	return total
}

// CocktailsOnlyTotal sums, over confirmed reservations, the guests not
// occupying a dinner seat. This is the quantity the event-level cocktail
// capacity bounds.
func (o *Occupancy) CocktailsOnlyTotal() int {
	total := 0
	for _, r := range o.reservations {
		if o.visible(r) && r.IsConfirmed() {
			total += r.CocktailsOnly()
		}
	}
	return total
}

// SlotConfirmed sums confirmed dinner guests seated in the given slot
func (o *Occupancy) SlotConfirmed(slot time.Time) int {
	return o.slotTotal(slot, domain.BookingStatusConfirmed)
}

// SlotWaitlisted sums waitlisted dinner guests for the given slot
func (o *Occupancy) SlotWaitlisted(slot time.Time) int {
	return o.slotTotal(slot, domain.BookingStatusWaitlist)
}

func (o *Occupancy) slotTotal(slot time.Time, status domain.BookingStatus) int {
	want := slot.UTC()
	total := 0
	for _, r := range o.reservations {
		if !o.visible(r) || r.Dinner == nil {
			continue
		}
		if r.Dinner.Status == status && r.Dinner.SlotTime.UTC().Equal(want) {
			total += r.Dinner.PartySize
		}
	}
	return total
}
