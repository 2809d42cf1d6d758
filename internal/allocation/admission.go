package allocation

import (
	"time"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
)

// Proposal describes the party an RSVP wants to bring. PlusOnes must
// already be clamped to the event's configuration by the caller.
type Proposal struct {
	WantsDinner     bool
	DinnerPartySize int
	// SlotTime, when set, must identify a generated slot exactly; a
	// non-matching time is a hard error. Nil defaults to the first slot
	// with room for the party.
	SlotTime *time.Time
	PlusOnes int
}

// Decision is the outcome of admitting a proposal. Admission is
// all-or-nothing at both levels: the whole party is confirmed or the whole
// party is waitlisted, never split.
type Decision struct {
	Status        domain.BookingStatus
	Dinner        *domain.DinnerBooking
	PartySize     int
	TotalGuests   int
	CocktailsOnly int
}

// Decide runs the admission state machine for one proposal against the
// current occupancy of the event. occ must exclude the reservation being
// edited, if any. Decide itself reads no stores and takes no locks; the
// caller holds the per-event critical section across load, Decide and
// write.
func Decide(event *domain.Event, occ *Occupancy, p Proposal) (*Decision, error) {
	slots := event.DinnerSlots()

	wantsDinner := p.WantsDinner
	var slot time.Time

	if wantsDinner {
		if p.SlotTime != nil {
			// A supplied time must be one of the generated slots; a miss
			// distinguishes "asked for dinner with a bad slot" from "no
			// slot requested".
			matched, ok := domain.MatchSlot(slots, *p.SlotTime)
			if !ok {
				return nil, domain.ErrInvalidSlot
			}
			slot = matched
		} else if len(slots) == 0 {
			// No slots to seat in: dinner silently drops away.
			wantsDinner = false
		}
	}

	dinnerPartySize := domain.ClampDinnerPartySize(wantsDinner, p.DinnerPartySize)

	if wantsDinner && p.SlotTime == nil {
		slot = defaultSlot(event, occ, slots, dinnerPartySize)
	}

	total := domain.TotalPartySize(wantsDinner, dinnerPartySize, p.PlusOnes)
	cocktailsOnly := domain.CocktailsOnlyCount(wantsDinner, total, p.PlusOnes)

	// Event-level admission: would this party's cocktails-only guests push
	// the event past its cocktail capacity? All-or-nothing: a party that
	// only partially fits is wholly waitlisted.
	status := domain.BookingStatusConfirmed
	if event.HasCocktailCapacity() {
		if occ.CocktailsOnlyTotal()+cocktailsOnly > *event.CocktailCapacity {
			if !event.WaitlistEnabled {
				return nil, domain.ErrEventFull
			}
			status = domain.BookingStatusWaitlist
		}
	}

	decision := &Decision{
		PartySize:     total,
		TotalGuests:   total,
		CocktailsOnly: cocktailsOnly,
	}

	if wantsDinner {
		dinnerStatus := status
		if event.HasDinnerSeatCap() {
			available := *event.DinnerMaxSeatsPerSlot - occ.SlotConfirmed(slot)
			if dinnerPartySize > available {
				// Dinner capacity overrides cocktail-level confirmation:
				// dinner was the differentiating ask, so the whole booking
				// waitlists with it.
				if !event.WaitlistEnabled {
					return nil, domain.ErrEventFull
				}
				dinnerStatus = domain.BookingStatusWaitlist
				status = domain.BookingStatusWaitlist
			}
		}
		decision.Dinner = &domain.DinnerBooking{
			PartySize: dinnerPartySize,
			SlotTime:  slot,
			Status:    dinnerStatus,
		}
	}

	decision.Status = status
	return decision, nil
}

// defaultSlot picks the first slot with room for the party; when every slot
// is full (or there is no seat cap) it falls back to the first slot.
func defaultSlot(event *domain.Event, occ *Occupancy, slots []time.Time, partySize int) time.Time {
	if !event.HasDinnerSeatCap() {
		return slots[0]
	}
	for _, s := range slots {
		if *event.DinnerMaxSeatsPerSlot-occ.SlotConfirmed(s) >= partySize {
			return s
		}
	}
	return slots[0]
}
