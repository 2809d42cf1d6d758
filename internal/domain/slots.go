package domain

import "time"

// DinnerSlots derives the ordered sequence of dinner seating times for the
// event. Both the start time and an end time that lands exactly on a step
// are included. The sequence is computed from the event fields alone, so
// regenerating it for an unchanged event always reproduces identical
// timestamps; stored reservations reference slots by value and must remain
// matchable across regenerations.
//
// Dinner disabled, a missing start or end, or a non-positive interval all
// yield an empty sequence, never an error.
func (e *Event) DinnerSlots() []time.Time {
	if !e.DinnerEnabled || e.DinnerStartTime == nil || e.DinnerEndTime == nil {
		return nil
	}

	step := time.Duration(e.DinnerSeatingIntervalHours * float64(time.Hour))
	if step <= 0 {
		return nil
	}

	start := e.DinnerStartTime.UTC()
	end := e.DinnerEndTime.UTC()

	var slots []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		slots = append(slots, t)
	}
	return slots
}

// MatchSlot reports whether want identifies one of the generated slots.
// Comparison is by instant after UTC normalization, so callers may supply
// the timestamp in any zone.
func MatchSlot(slots []time.Time, want time.Time) (time.Time, bool) {
	w := want.UTC()
	for _, s := range slots {
		if s.Equal(w) {
			return s, true
		}
	}
	return time.Time{}, false
}
