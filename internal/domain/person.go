package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Person is a deduplicated contact, identified by normalized email, unique
// across the system. Created on first RSVP or explicit CRM entry; updated on
// repeat contact; never deleted by the booking flow.
type Person struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases and trims an email address. All lookups and
// stored values use the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the address is syntactically valid
func ValidEmail(email string) bool {
	email = NormalizeEmail(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
