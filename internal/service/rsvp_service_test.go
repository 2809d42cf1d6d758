package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/internal/dto"
	"github.com/gatherly-app/backend-rsvp/internal/repository"
)

// MockTxManager runs the critical section inline
type MockTxManager struct {
	WithEventLockFunc func(ctx context.Context, eventID string, fn func(ctx context.Context) error) error
	LockCalls         int
}

func (m *MockTxManager) WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context) error) error {
	m.LockCalls++
	if m.WithEventLockFunc != nil {
		return m.WithEventLockFunc(ctx, eventID, fn)
	}
	return fn(ctx)
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc    func(ctx context.Context, event *domain.Event) error
	UpdateFunc    func(ctx context.Context, event *domain.Event) error
	GetByIDFunc   func(ctx context.Context, id string) (*domain.Event, error)
	GetBySlugFunc func(ctx context.Context, slug string) (*domain.Event, error)
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrEventNotFound
}

func (m *MockEventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, domain.ErrEventNotFound
}

// MockPersonRepository is a mock implementation of PersonRepository
type MockPersonRepository struct {
	CreateFunc     func(ctx context.Context, person *domain.Person) error
	UpdateFunc     func(ctx context.Context, person *domain.Person) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.Person, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.Person, error)
}

func (m *MockPersonRepository) Create(ctx context.Context, person *domain.Person) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, person)
	}
	return nil
}

func (m *MockPersonRepository) Update(ctx context.Context, person *domain.Person) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, person)
	}
	return nil
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrPersonNotFound
}

func (m *MockPersonRepository) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrPersonNotFound
}

// MockReservationRepository is a mock implementation of ReservationRepository
type MockReservationRepository struct {
	CreateFunc              func(ctx context.Context, reservation *domain.Reservation) error
	UpdateFunc              func(ctx context.Context, reservation *domain.Reservation) error
	GetByIDFunc             func(ctx context.Context, id string) (*domain.Reservation, error)
	GetByEventAndPersonFunc func(ctx context.Context, eventID, personID string) (*domain.Reservation, error)
	ListByEventFunc         func(ctx context.Context, eventID string) ([]*domain.Reservation, error)
}

func (m *MockReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reservation)
	}
	return nil
}

func (m *MockReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, reservation)
	}
	return nil
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrReservationNotFound
}

func (m *MockReservationRepository) GetByEventAndPerson(ctx context.Context, eventID, personID string) (*domain.Reservation, error) {
	if m.GetByEventAndPersonFunc != nil {
		return m.GetByEventAndPersonFunc(ctx, eventID, personID)
	}
	return nil, domain.ErrReservationNotFound
}

func (m *MockReservationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Reservation, error) {
	if m.ListByEventFunc != nil {
		return m.ListByEventFunc(ctx, eventID)
	}
	return []*domain.Reservation{}, nil
}

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	UpsertFunc  func(ctx context.Context, payment *domain.Payment) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Payment, error)
}

func (m *MockPaymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, payment)
	}
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrPaymentNotFound
}

// MockOccupancyCache records invalidations
type MockOccupancyCache struct {
	Invalidated []string
}

func (m *MockOccupancyCache) Get(ctx context.Context, eventID string) (*repository.CachedOccupancy, error) {
	return nil, repository.ErrCacheMiss
}

func (m *MockOccupancyCache) Set(ctx context.Context, eventID string, counts *repository.CachedOccupancy) error {
	return nil
}

func (m *MockOccupancyCache) Invalidate(ctx context.Context, eventID string) error {
	m.Invalidated = append(m.Invalidated, eventID)
	return nil
}

func intPtr(n int) *int { return &n }

func testEvent() *domain.Event {
	start := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	return &domain.Event{
		ID:                         "event-001",
		Slug:                       "garden-party",
		HostID:                     "host-001",
		CocktailCapacity:           intPtr(10),
		DinnerEnabled:              true,
		DinnerStartTime:            &start,
		DinnerEndTime:              &end,
		DinnerSeatingIntervalHours: 2,
		DinnerMaxSeatsPerSlot:      intPtr(2),
		WaitlistEnabled:            true,
		MaxPlusOnesPerGuest:        3,
	}
}

type rsvpFixture struct {
	tx       *MockTxManager
	events   *MockEventRepository
	people   *MockPersonRepository
	resv     *MockReservationRepository
	payments *MockPaymentRepository
	cache    *MockOccupancyCache
	svc      RSVPService
}

func newRSVPFixture() *rsvpFixture {
	f := &rsvpFixture{
		tx:       &MockTxManager{},
		events:   &MockEventRepository{},
		people:   &MockPersonRepository{},
		resv:     &MockReservationRepository{},
		payments: &MockPaymentRepository{},
		cache:    &MockOccupancyCache{},
	}
	f.svc = NewRSVPService(f.tx, f.events, f.people, f.resv, f.payments, f.cache, NewNoOpEventPublisher())
	return f
}

func TestRSVPService_CreateRSVP(t *testing.T) {
	event := testEvent()

	t.Run("confirms a new guest under capacity", func(t *testing.T) {
		f := newRSVPFixture()
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}

		var created *domain.Reservation
		f.resv.CreateFunc = func(ctx context.Context, r *domain.Reservation) error {
			created = r
			return nil
		}

		result, err := f.svc.CreateRSVP(context.Background(), event.ID, &dto.CreateRSVPRequest{
			Email:    "guest@example.com",
			Name:     "Guest",
			PlusOnes: 2,
		})
		if err != nil {
			t.Fatalf("CreateRSVP() error = %v", err)
		}
		if result.Status != "confirmed" {
			t.Errorf("Status = %s, want confirmed", result.Status)
		}
		if result.TotalGuests != 3 {
			t.Errorf("TotalGuests = %d, want 3", result.TotalGuests)
		}
		if created == nil {
			t.Fatal("reservation was never persisted")
		}
		if f.tx.LockCalls != 1 {
			t.Errorf("admission ran outside the event lock (%d calls)", f.tx.LockCalls)
		}
		if len(f.cache.Invalidated) != 1 || f.cache.Invalidated[0] != event.ID {
			t.Errorf("cache invalidations = %v", f.cache.Invalidated)
		}
	})

	t.Run("resolves event by slug", func(t *testing.T) {
		f := newRSVPFixture()
		f.events.GetBySlugFunc = func(ctx context.Context, slug string) (*domain.Event, error) {
			if slug != "garden-party" {
				t.Errorf("slug = %s", slug)
			}
			return event, nil
		}

		_, err := f.svc.CreateRSVP(context.Background(), "garden-party", &dto.CreateRSVPRequest{
			Email: "guest@example.com",
		})
		if err != nil {
			t.Fatalf("CreateRSVP() error = %v", err)
		}
	})

	t.Run("clamps plus-ones to event configuration", func(t *testing.T) {
		f := newRSVPFixture()
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}

		result, err := f.svc.CreateRSVP(context.Background(), event.ID, &dto.CreateRSVPRequest{
			Email:    "guest@example.com",
			PlusOnes: 9,
		})
		if err != nil {
			t.Fatalf("CreateRSVP() error = %v", err)
		}
		if result.PlusOnes != 3 {
			t.Errorf("PlusOnes = %d, want 3", result.PlusOnes)
		}
		if result.TotalGuests != 4 {
			t.Errorf("TotalGuests = %d, want 4", result.TotalGuests)
		}
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		f := newRSVPFixture()
		_, err := f.svc.CreateRSVP(context.Background(), event.ID, &dto.CreateRSVPRequest{
			Email: "not-an-email",
		})
		if !errors.Is(err, domain.ErrInvalidEmail) {
			t.Fatalf("err = %v, want ErrInvalidEmail", err)
		}
	})

	t.Run("duplicate returns existing reservation with conflict", func(t *testing.T) {
		f := newRSVPFixture()
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.people.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Person, error) {
			return &domain.Person{ID: "person-001", Email: email}, nil
		}
		f.resv.GetByEventAndPersonFunc = func(ctx context.Context, eventID, personID string) (*domain.Reservation, error) {
			return &domain.Reservation{
				ID:          "resv-001",
				EventID:     eventID,
				PersonID:    personID,
				Status:      domain.BookingStatusConfirmed,
				TotalGuests: 2,
			}, nil
		}

		result, err := f.svc.CreateRSVP(context.Background(), event.ID, &dto.CreateRSVPRequest{
			Email: "guest@example.com",
		})
		if !errors.Is(err, domain.ErrDuplicateReservation) {
			t.Fatalf("err = %v, want ErrDuplicateReservation", err)
		}
		if result == nil || result.ID != "resv-001" {
			t.Fatalf("existing reservation not returned: %+v", result)
		}
	})

	t.Run("cancelled prior reservation is re-admitted in place", func(t *testing.T) {
		f := newRSVPFixture()
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.people.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Person, error) {
			return &domain.Person{ID: "person-001", Email: email}, nil
		}
		prior := &domain.Reservation{
			ID:       "resv-001",
			EventID:  event.ID,
			PersonID: "person-001",
			Status:   domain.BookingStatusCancelled,
		}
		f.resv.GetByEventAndPersonFunc = func(ctx context.Context, eventID, personID string) (*domain.Reservation, error) {
			return prior, nil
		}

		var updated, created bool
		f.resv.UpdateFunc = func(ctx context.Context, r *domain.Reservation) error {
			updated = true
			return nil
		}
		f.resv.CreateFunc = func(ctx context.Context, r *domain.Reservation) error {
			created = true
			return nil
		}

		result, err := f.svc.CreateRSVP(context.Background(), event.ID, &dto.CreateRSVPRequest{
			Email: "guest@example.com",
		})
		if err != nil {
			t.Fatalf("CreateRSVP() error = %v", err)
		}
		if !updated || created {
			t.Errorf("updated=%v created=%v, want row reuse", updated, created)
		}
		if result.ID != "resv-001" || result.Status != "confirmed" {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("waitlists when cocktail capacity is exceeded", func(t *testing.T) {
		f := newRSVPFixture()
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.resv.ListByEventFunc = func(ctx context.Context, eventID string) ([]*domain.Reservation, error) {
			return []*domain.Reservation{
				{ID: "r1", Status: domain.BookingStatusConfirmed, PlusOnes: 7, TotalGuests: 8},
			}, nil
		}

		result, err := f.svc.CreateRSVP(context.Background(), event.ID, &dto.CreateRSVPRequest{
			Email:    "late@example.com",
			PlusOnes: 3,
		})
		if err != nil {
			t.Fatalf("CreateRSVP() error = %v", err)
		}
		if result.Status != "waitlist" {
			t.Errorf("Status = %s, want waitlist", result.Status)
		}
	})
}

func TestRSVPService_UpdateRSVP(t *testing.T) {
	event := testEvent()
	slots := event.DinnerSlots()

	newReservation := func() *domain.Reservation {
		return &domain.Reservation{
			ID:          "resv-001",
			EventID:     event.ID,
			PersonID:    "person-001",
			Status:      domain.BookingStatusConfirmed,
			PlusOnes:    1,
			PartySize:   2,
			TotalGuests: 2,
		}
	}

	t.Run("re-runs admission excluding itself", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.resv.ListByEventFunc = func(ctx context.Context, eventID string) ([]*domain.Reservation, error) {
			// The event is otherwise at capacity only if the edited
			// reservation double-counts itself.
			return []*domain.Reservation{
				current,
				{ID: "r2", Status: domain.BookingStatusConfirmed, PlusOnes: 7, TotalGuests: 8},
			}, nil
		}

		result, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			PlusOnes: intPtr(1),
		})
		if err != nil {
			t.Fatalf("UpdateRSVP() error = %v", err)
		}
		if result.Status != "confirmed" {
			t.Errorf("Status = %s, want confirmed", result.Status)
		}
	})

	t.Run("adding dinner moves booking to a slot", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}

		wantsDinner := true
		result, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			WantsDinner:     &wantsDinner,
			DinnerPartySize: intPtr(2),
			DinnerSlotTime:  &slots[1],
		})
		if err != nil {
			t.Fatalf("UpdateRSVP() error = %v", err)
		}
		if result.Dinner == nil {
			t.Fatal("dinner booking missing")
		}
		if !result.Dinner.SlotTime.Equal(slots[1]) {
			t.Errorf("SlotTime = %v, want %v", result.Dinner.SlotTime, slots[1])
		}
		// Dinner party of 2 plus the existing plus-one.
		if result.TotalGuests != 3 {
			t.Errorf("TotalGuests = %d, want 3", result.TotalGuests)
		}
	})

	t.Run("waitlisting an edit zeroes check-in counts", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		current.DinnerPullUpCount = 0
		current.CocktailOnlyPullUpCount = 2
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.resv.ListByEventFunc = func(ctx context.Context, eventID string) ([]*domain.Reservation, error) {
			return []*domain.Reservation{
				{ID: "r2", Status: domain.BookingStatusConfirmed, PlusOnes: 9, TotalGuests: 10},
			}, nil
		}

		result, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			PlusOnes: intPtr(3),
		})
		if err != nil {
			t.Fatalf("UpdateRSVP() error = %v", err)
		}
		if result.Status != "waitlist" {
			t.Fatalf("Status = %s, want waitlist", result.Status)
		}
		if result.CocktailOnlyPullUpCount != 0 {
			t.Errorf("CocktailOnlyPullUpCount = %d, want 0", result.CocktailOnlyPullUpCount)
		}
	})

	t.Run("host override keeps counts through a waitlisting edit", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.resv.ListByEventFunc = func(ctx context.Context, eventID string) ([]*domain.Reservation, error) {
			return []*domain.Reservation{
				{ID: "r2", Status: domain.BookingStatusConfirmed, PlusOnes: 9, TotalGuests: 10},
			}, nil
		}

		result, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			PlusOnes:                intPtr(3),
			CocktailOnlyPullUpCount: intPtr(2),
		})
		if err != nil {
			t.Fatalf("UpdateRSVP() error = %v", err)
		}
		if result.Status != "waitlist" {
			t.Fatalf("Status = %s, want waitlist", result.Status)
		}
		if result.CocktailOnlyPullUpCount != 2 {
			t.Errorf("CocktailOnlyPullUpCount = %d, want 2", result.CocktailOnlyPullUpCount)
		}
	})

	t.Run("host override cannot exceed the seat bounds", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		var updated bool
		f.resv.UpdateFunc = func(ctx context.Context, r *domain.Reservation) error {
			updated = true
			return nil
		}

		_, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			CocktailOnlyPullUpCount: intPtr(50),
		})
		if !errors.Is(err, domain.ErrCheckinExceedsParty) {
			t.Fatalf("err = %v, want ErrCheckinExceedsParty", err)
		}
		if updated {
			t.Error("out-of-bounds override must not be persisted")
		}
	})

	t.Run("host override rejects negative counts", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}

		_, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			CocktailOnlyPullUpCount: intPtr(-7),
		})
		if !errors.Is(err, domain.ErrCheckinExceedsParty) {
			t.Fatalf("err = %v, want ErrCheckinExceedsParty", err)
		}
	})

	t.Run("host override of dinner count needs a confirmed dinner", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}

		_, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			DinnerPullUpCount: intPtr(1),
		})
		if !errors.Is(err, domain.ErrDinnerNotConfirmed) {
			t.Fatalf("err = %v, want ErrDinnerNotConfirmed", err)
		}
	})

	t.Run("email change to another guest's reservation conflicts", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.people.GetByEmailFunc = func(ctx context.Context, email string) (*domain.Person, error) {
			return &domain.Person{ID: "person-002", Email: email}, nil
		}
		f.resv.GetByEventAndPersonFunc = func(ctx context.Context, eventID, personID string) (*domain.Reservation, error) {
			return &domain.Reservation{ID: "resv-002", Status: domain.BookingStatusConfirmed}, nil
		}

		email := "other@example.com"
		_, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{
			Email: &email,
		})
		if !errors.Is(err, domain.ErrDuplicateReservation) {
			t.Fatalf("err = %v, want ErrDuplicateReservation", err)
		}
	})

	t.Run("cancelled reservation cannot be edited", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		current.Status = domain.BookingStatusCancelled
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}

		_, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{})
		if !errors.Is(err, domain.ErrAlreadyCancelled) {
			t.Fatalf("err = %v, want ErrAlreadyCancelled", err)
		}
	})

	t.Run("missing event surfaces as an integrity conflict", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return nil, domain.ErrEventNotFound
		}

		_, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{})
		if !errors.Is(err, domain.ErrStaleReference) {
			t.Fatalf("err = %v, want ErrStaleReference", err)
		}
		if !domain.IsConflictError(err) {
			t.Error("stale reference must classify as a conflict")
		}
	})

	t.Run("missing contact on a name change surfaces as an integrity conflict", func(t *testing.T) {
		f := newRSVPFixture()
		current := newReservation()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		f.events.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
			return event, nil
		}
		f.people.GetByIDFunc = func(ctx context.Context, id string) (*domain.Person, error) {
			return nil, domain.ErrPersonNotFound
		}

		name := "New Name"
		_, err := f.svc.UpdateRSVP(context.Background(), "resv-001", &dto.UpdateRSVPRequest{Name: &name})
		if !errors.Is(err, domain.ErrStaleReference) {
			t.Fatalf("err = %v, want ErrStaleReference", err)
		}
	})
}

func TestRSVPService_CancelRSVP(t *testing.T) {
	f := newRSVPFixture()
	current := &domain.Reservation{
		ID:                      "resv-001",
		EventID:                 "event-001",
		Status:                  domain.BookingStatusConfirmed,
		TotalGuests:             3,
		CocktailOnlyPullUpCount: 2,
	}
	f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
		return current, nil
	}

	result, err := f.svc.CancelRSVP(context.Background(), "resv-001")
	if err != nil {
		t.Fatalf("CancelRSVP() error = %v", err)
	}
	if result.Status != "cancelled" {
		t.Errorf("Status = %s, want cancelled", result.Status)
	}
	if result.CocktailOnlyPullUpCount != 0 {
		t.Errorf("CocktailOnlyPullUpCount = %d, want 0", result.CocktailOnlyPullUpCount)
	}
	if len(f.cache.Invalidated) != 1 {
		t.Errorf("cache invalidations = %v", f.cache.Invalidated)
	}

	// Cancelling twice is a conflict.
	_, err = f.svc.CancelRSVP(context.Background(), "resv-001")
	if !errors.Is(err, domain.ErrAlreadyCancelled) {
		t.Fatalf("second cancel err = %v, want ErrAlreadyCancelled", err)
	}
}

func TestRSVPService_CheckIn(t *testing.T) {
	slot := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)

	newConfirmed := func() *domain.Reservation {
		return &domain.Reservation{
			ID:          "resv-001",
			EventID:     "event-001",
			Status:      domain.BookingStatusConfirmed,
			PlusOnes:    2,
			PartySize:   5,
			TotalGuests: 5,
			Dinner: &domain.DinnerBooking{
				PartySize: 3,
				SlotTime:  slot,
				Status:    domain.BookingStatusConfirmed,
			},
		}
	}

	t.Run("records counts within bounds", func(t *testing.T) {
		f := newRSVPFixture()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return newConfirmed(), nil
		}

		result, err := f.svc.CheckIn(context.Background(), "resv-001", &dto.CheckinRequest{
			DinnerPullUpCount:       intPtr(3),
			CocktailOnlyPullUpCount: intPtr(2),
		})
		if err != nil {
			t.Fatalf("CheckIn() error = %v", err)
		}
		if result.DinnerPullUpCount != 3 || result.CocktailOnlyPullUpCount != 2 {
			t.Errorf("counts = %d/%d, want 3/2", result.DinnerPullUpCount, result.CocktailOnlyPullUpCount)
		}
	})

	t.Run("dinner count above seat bound rejects", func(t *testing.T) {
		f := newRSVPFixture()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return newConfirmed(), nil
		}

		_, err := f.svc.CheckIn(context.Background(), "resv-001", &dto.CheckinRequest{
			DinnerPullUpCount: intPtr(4),
		})
		if !errors.Is(err, domain.ErrCheckinExceedsParty) {
			t.Fatalf("err = %v, want ErrCheckinExceedsParty", err)
		}
	})

	t.Run("negative count rejects", func(t *testing.T) {
		f := newRSVPFixture()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return newConfirmed(), nil
		}

		_, err := f.svc.CheckIn(context.Background(), "resv-001", &dto.CheckinRequest{
			CocktailOnlyPullUpCount: intPtr(-1),
		})
		if !errors.Is(err, domain.ErrCheckinExceedsParty) {
			t.Fatalf("err = %v, want ErrCheckinExceedsParty", err)
		}
	})

	t.Run("waitlisted reservation cannot check in", func(t *testing.T) {
		f := newRSVPFixture()
		r := newConfirmed()
		r.Status = domain.BookingStatusWaitlist
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return r, nil
		}

		_, err := f.svc.CheckIn(context.Background(), "resv-001", &dto.CheckinRequest{
			CocktailOnlyPullUpCount: intPtr(1),
		})
		if !errors.Is(err, domain.ErrNotConfirmed) {
			t.Fatalf("err = %v, want ErrNotConfirmed", err)
		}
	})

	t.Run("dinner count requires a confirmed dinner booking", func(t *testing.T) {
		f := newRSVPFixture()
		r := newConfirmed()
		r.Dinner.Status = domain.BookingStatusWaitlist
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return r, nil
		}

		_, err := f.svc.CheckIn(context.Background(), "resv-001", &dto.CheckinRequest{
			DinnerPullUpCount: intPtr(1),
		})
		if !errors.Is(err, domain.ErrDinnerNotConfirmed) {
			t.Fatalf("err = %v, want ErrDinnerNotConfirmed", err)
		}
	})
}

func TestRSVPService_ForceConfirm(t *testing.T) {
	slot := time.Date(2026, 6, 20, 18, 0, 0, 0, time.UTC)

	t.Run("promotes both levels past capacity", func(t *testing.T) {
		f := newRSVPFixture()
		current := &domain.Reservation{
			ID:      "resv-001",
			EventID: "event-001",
			Status:  domain.BookingStatusWaitlist,
			Dinner: &domain.DinnerBooking{
				PartySize: 2,
				SlotTime:  slot,
				Status:    domain.BookingStatusWaitlist,
			},
		}
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		var updates int
		f.resv.UpdateFunc = func(ctx context.Context, r *domain.Reservation) error {
			updates++
			return nil
		}

		result, err := f.svc.ForceConfirm(context.Background(), "resv-001")
		if err != nil {
			t.Fatalf("ForceConfirm() error = %v", err)
		}
		if result.Status != "confirmed" {
			t.Errorf("Status = %s, want confirmed", result.Status)
		}
		if result.Dinner == nil || result.Dinner.Status != "confirmed" {
			t.Errorf("Dinner = %+v, want confirmed", result.Dinner)
		}
		if updates != 1 {
			t.Errorf("updates = %d, want 1", updates)
		}

		// Idempotent: a second call changes nothing.
		result, err = f.svc.ForceConfirm(context.Background(), "resv-001")
		if err != nil {
			t.Fatalf("second ForceConfirm() error = %v", err)
		}
		if result.Status != "confirmed" {
			t.Errorf("Status = %s, want confirmed", result.Status)
		}
		if updates != 1 {
			t.Errorf("idempotent call persisted again (updates = %d)", updates)
		}
	})

	t.Run("cancelled reservation cannot be force-confirmed", func(t *testing.T) {
		f := newRSVPFixture()
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return &domain.Reservation{ID: id, Status: domain.BookingStatusCancelled}, nil
		}

		_, err := f.svc.ForceConfirm(context.Background(), "resv-001")
		if !errors.Is(err, domain.ErrAlreadyCancelled) {
			t.Fatalf("err = %v, want ErrAlreadyCancelled", err)
		}
	})
}

func TestRSVPService_ApplyPayment(t *testing.T) {
	t.Run("success on waitlisted reservation promotes", func(t *testing.T) {
		f := newRSVPFixture()
		current := &domain.Reservation{
			ID:      "resv-001",
			EventID: "event-001",
			Status:  domain.BookingStatusWaitlist,
		}
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}
		var upserted *domain.Payment
		f.payments.UpsertFunc = func(ctx context.Context, p *domain.Payment) error {
			upserted = p
			return nil
		}

		err := f.svc.ApplyPayment(context.Background(), &dto.PaymentEvent{
			EventType:     dto.PaymentEventSucceeded,
			PaymentID:     "pay-001",
			ReservationID: "resv-001",
			Amount:        5000,
			Currency:      "USD",
		})
		if err != nil {
			t.Fatalf("ApplyPayment() error = %v", err)
		}
		if upserted == nil || upserted.Status != domain.PaymentStateSucceeded {
			t.Errorf("payment upsert = %+v", upserted)
		}
		if current.Status != domain.BookingStatusConfirmed {
			t.Errorf("Status = %s, want confirmed", current.Status)
		}
		if current.PaymentStatus != domain.PaymentStatusPaid {
			t.Errorf("PaymentStatus = %s, want paid", current.PaymentStatus)
		}
		if current.PaymentID != "pay-001" {
			t.Errorf("PaymentID = %s, want pay-001", current.PaymentID)
		}
	})

	t.Run("failure is bookkeeping only", func(t *testing.T) {
		f := newRSVPFixture()
		current := &domain.Reservation{
			ID:      "resv-001",
			EventID: "event-001",
			Status:  domain.BookingStatusWaitlist,
		}
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}

		err := f.svc.ApplyPayment(context.Background(), &dto.PaymentEvent{
			EventType:     dto.PaymentEventFailed,
			PaymentID:     "pay-001",
			ReservationID: "resv-001",
		})
		if err != nil {
			t.Fatalf("ApplyPayment() error = %v", err)
		}
		if current.Status != domain.BookingStatusWaitlist {
			t.Errorf("Status = %s, want waitlist unchanged", current.Status)
		}
		if current.PaymentStatus != domain.PaymentStatusUnpaid {
			t.Errorf("PaymentStatus = %s, want unpaid", current.PaymentStatus)
		}
	})

	t.Run("refund never reverts a confirmed booking", func(t *testing.T) {
		f := newRSVPFixture()
		current := &domain.Reservation{
			ID:            "resv-001",
			EventID:       "event-001",
			Status:        domain.BookingStatusConfirmed,
			PaymentStatus: domain.PaymentStatusPaid,
		}
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			return current, nil
		}

		err := f.svc.ApplyPayment(context.Background(), &dto.PaymentEvent{
			EventType:     dto.PaymentEventRefunded,
			PaymentID:     "pay-001",
			ReservationID: "resv-001",
		})
		if err != nil {
			t.Fatalf("ApplyPayment() error = %v", err)
		}
		if current.Status != domain.BookingStatusConfirmed {
			t.Errorf("Status = %s, want confirmed unchanged", current.Status)
		}
		if current.PaymentStatus != domain.PaymentStatusRefunded {
			t.Errorf("PaymentStatus = %s, want refunded", current.PaymentStatus)
		}
	})

	t.Run("unlinked payment records without touching reservations", func(t *testing.T) {
		f := newRSVPFixture()
		var upserted bool
		f.payments.UpsertFunc = func(ctx context.Context, p *domain.Payment) error {
			upserted = true
			return nil
		}
		f.resv.GetByIDFunc = func(ctx context.Context, id string) (*domain.Reservation, error) {
			t.Fatal("reservation lookup for unlinked payment")
			return nil, nil
		}

		err := f.svc.ApplyPayment(context.Background(), &dto.PaymentEvent{
			EventType: dto.PaymentEventSucceeded,
			PaymentID: "pay-002",
		})
		if err != nil {
			t.Fatalf("ApplyPayment() error = %v", err)
		}
		if !upserted {
			t.Error("payment was not recorded")
		}
	})
}
