package domain

// Party composition rules. When dinner is requested the booking person is
// counted once, inside the dinner party; plus-ones are always additional
// cocktails-only attendance. Every path that creates or edits a reservation
// (and all capacity math) goes through these two functions, so a dinner
// party of N bringing M cocktail-only companions totals N+M with the booker
// never double-counted.

// TotalPartySize returns the total unique guests covered by a reservation.
// dinnerPartySize includes the booking person and must be >= 1 when dinner
// is requested (callers clamp before calling).
func TotalPartySize(wantsDinner bool, dinnerPartySize, plusOnes int) int {
	if wantsDinner {
		return dinnerPartySize + plusOnes
	}
	return 1 + plusOnes
}

// CocktailsOnlyCount returns the sub-count of guests attending the event
// without occupying a dinner seat.
func CocktailsOnlyCount(wantsDinner bool, totalPartySize, plusOnes int) int {
	if wantsDinner {
		return plusOnes
	}
	return totalPartySize
}

// ClampDinnerPartySize forces the dinner party to at least the booking
// person when dinner is requested, and to zero otherwise.
func ClampDinnerPartySize(wantsDinner bool, dinnerPartySize int) int {
	if !wantsDinner {
		return 0
	}
	if dinnerPartySize < 1 {
		return 1
	}
	return dinnerPartySize
}
