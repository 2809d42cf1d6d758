package domain

import "testing"

func TestTotalPartySize(t *testing.T) {
	tests := []struct {
		name            string
		wantsDinner     bool
		dinnerPartySize int
		plusOnes        int
		want            int
	}{
		{"solo cocktails", false, 0, 0, 1},
		{"cocktails with plus-ones", false, 0, 3, 4},
		{"solo dinner", true, 1, 0, 1},
		{"dinner party of four", true, 4, 0, 4},
		{"dinner party plus cocktail companions", true, 4, 2, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalPartySize(tt.wantsDinner, tt.dinnerPartySize, tt.plusOnes)
			if got != tt.want {
				t.Errorf("TotalPartySize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCocktailsOnlyCount(t *testing.T) {
	tests := []struct {
		name        string
		wantsDinner bool
		total       int
		plusOnes    int
		want        int
	}{
		{"no dinner counts whole party", false, 4, 3, 4},
		{"dinner counts only plus-ones", true, 6, 2, 2},
		{"dinner with no plus-ones", true, 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CocktailsOnlyCount(tt.wantsDinner, tt.total, tt.plusOnes)
			if got != tt.want {
				t.Errorf("CocktailsOnlyCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

// The composition identity: dinner seats plus cocktails-only guests always
// equals the total party, with the booker counted exactly once.
func TestPartyCompositionIdentity(t *testing.T) {
	for dinnerParty := 1; dinnerParty <= 6; dinnerParty++ {
		for plusOnes := 0; plusOnes <= 5; plusOnes++ {
			total := TotalPartySize(true, dinnerParty, plusOnes)
			cocktailsOnly := CocktailsOnlyCount(true, total, plusOnes)
			if dinnerParty+cocktailsOnly != total {
				t.Errorf("dinnerParty=%d plusOnes=%d: %d + %d != %d",
					dinnerParty, plusOnes, dinnerParty, cocktailsOnly, total)
			}
		}
	}
}

func TestClampDinnerPartySize(t *testing.T) {
	if got := ClampDinnerPartySize(false, 4); got != 0 {
		t.Errorf("no dinner: got %d, want 0", got)
	}
	if got := ClampDinnerPartySize(true, 0); got != 1 {
		t.Errorf("zero with dinner: got %d, want 1", got)
	}
	if got := ClampDinnerPartySize(true, -2); got != 1 {
		t.Errorf("negative with dinner: got %d, want 1", got)
	}
	if got := ClampDinnerPartySize(true, 3); got != 3 {
		t.Errorf("valid size: got %d, want 3", got)
	}
}

func TestClampPlusOnes(t *testing.T) {
	event := &Event{MaxPlusOnesPerGuest: 3}

	tests := []struct {
		in, want int
	}{
		{-1, 0},
		{0, 0},
		{2, 2},
		{3, 3},
		{7, 3},
	}
	for _, tt := range tests {
		if got := event.ClampPlusOnes(tt.in); got != tt.want {
			t.Errorf("ClampPlusOnes(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAndValidateEmail(t *testing.T) {
	if got := NormalizeEmail("  Guest@Example.COM "); got != "guest@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}

	valid := []string{"guest@example.com", " Guest@Example.com "}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = false, want true", e)
		}
	}
	invalid := []string{"", "not-an-email", "a@", "Guest Name <guest@example.com>"}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Errorf("ValidEmail(%q) = true, want false", e)
		}
	}
}
