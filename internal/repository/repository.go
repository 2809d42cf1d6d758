package repository

import (
	"context"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
)

// TxManager runs a function inside the per-event critical section. The
// admission decision reads occupancy and then writes a reservation; between
// those two steps no concurrent request for the same event may observe
// stale occupancy, or two borderline bookings could both be admitted when
// only one seat remains. The postgres implementation opens a transaction
// and locks the event row FOR UPDATE for the duration of fn; repositories
// called with the returned context operate inside that transaction.
type TxManager interface {
	WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context) error) error
}

// EventRepository is the event store
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Event, error)
}

// PersonRepository is the deduplicated contact store
type PersonRepository interface {
	Create(ctx context.Context, person *domain.Person) error
	Update(ctx context.Context, person *domain.Person) error
	GetByID(ctx context.Context, id string) (*domain.Person, error)
	// GetByEmail looks up by normalized email
	GetByEmail(ctx context.Context, email string) (*domain.Person, error)
}

// ReservationRepository is the reservation store
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	Update(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	GetByEventAndPerson(ctx context.Context, eventID, personID string) (*domain.Reservation, error)
	// ListByEvent returns every non-cancelled reservation for the event,
	// the collection the occupancy counters run over
	ListByEvent(ctx context.Context, eventID string) ([]*domain.Reservation, error)
}

// PaymentRepository is the payment store
type PaymentRepository interface {
	Upsert(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
}

// OccupancyCache is the display-path aggregate counter cache. Admission
// never reads it; it is invalidated on every reservation write for the
// event, so display reads are at worst briefly stale.
type OccupancyCache interface {
	Get(ctx context.Context, eventID string) (*CachedOccupancy, error)
	Set(ctx context.Context, eventID string, counts *CachedOccupancy) error
	Invalidate(ctx context.Context, eventID string) error
}

// CachedOccupancy holds the aggregate counts served on display paths
type CachedOccupancy struct {
	ConfirmedTotal     int            `json:"confirmed_total"`
	WaitlistTotal      int            `json:"waitlist_total"`
	CocktailsOnlyTotal int            `json:"cocktails_only_total"`
	SlotConfirmed      map[string]int `json:"slot_confirmed,omitempty"`
	SlotWaitlisted     map[string]int `json:"slot_waitlisted,omitempty"`
}
