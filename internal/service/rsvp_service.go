package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gatherly-app/backend-rsvp/internal/allocation"
	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/internal/dto"
	"github.com/gatherly-app/backend-rsvp/internal/metrics"
	"github.com/gatherly-app/backend-rsvp/internal/repository"
	"github.com/gatherly-app/backend-rsvp/pkg/telemetry"
)

// RSVPService defines the interface for reservation lifecycle logic
type RSVPService interface {
	// CreateRSVP admits a new RSVP for the event identified by ID or slug.
	// On a duplicate (person, event) pair it returns the existing
	// reservation together with ErrDuplicateReservation.
	CreateRSVP(ctx context.Context, eventRef string, req *dto.CreateRSVPRequest) (*dto.RSVPResponse, error)

	// UpdateRSVP edits an existing reservation and re-runs admission
	UpdateRSVP(ctx context.Context, reservationID string, req *dto.UpdateRSVPRequest) (*dto.RSVPResponse, error)

	// CancelRSVP soft-cancels a reservation. Freed capacity is never
	// handed to waitlisted parties automatically.
	CancelRSVP(ctx context.Context, reservationID string) (*dto.RSVPResponse, error)

	// CheckIn records arrival counts against a confirmed reservation
	CheckIn(ctx context.Context, reservationID string, req *dto.CheckinRequest) (*dto.RSVPResponse, error)

	// ForceConfirm promotes a reservation past every capacity check.
	// Idempotent: confirming a confirmed reservation is a no-op.
	ForceConfirm(ctx context.Context, reservationID string) (*dto.RSVPResponse, error)

	// ApplyPayment folds a payment state change into allocation state
	ApplyPayment(ctx context.Context, evt *dto.PaymentEvent) error

	// GetRSVP retrieves a reservation by ID
	GetRSVP(ctx context.Context, reservationID string) (*dto.RSVPResponse, error)

	// ListEventRSVPs retrieves every active reservation for an event
	ListEventRSVPs(ctx context.Context, eventRef string) ([]*dto.RSVPResponse, error)
}

// rsvpService implements RSVPService
type rsvpService struct {
	txManager       repository.TxManager
	eventRepo       repository.EventRepository
	personRepo      repository.PersonRepository
	reservationRepo repository.ReservationRepository
	paymentRepo     repository.PaymentRepository
	occupancyCache  repository.OccupancyCache
	eventPublisher  EventPublisher
}

// NewRSVPService creates a new RSVP service
func NewRSVPService(
	txManager repository.TxManager,
	eventRepo repository.EventRepository,
	personRepo repository.PersonRepository,
	reservationRepo repository.ReservationRepository,
	paymentRepo repository.PaymentRepository,
	occupancyCache repository.OccupancyCache,
	eventPublisher EventPublisher,
) RSVPService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &rsvpService{
		txManager:       txManager,
		eventRepo:       eventRepo,
		personRepo:      personRepo,
		reservationRepo: reservationRepo,
		paymentRepo:     paymentRepo,
		occupancyCache:  occupancyCache,
		eventPublisher:  eventPublisher,
	}
}

// CreateRSVP admits a new RSVP for an event
func (s *rsvpService) CreateRSVP(ctx context.Context, eventRef string, req *dto.CreateRSVPRequest) (*dto.RSVPResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.create")
	defer span.End()

	if eventRef == "" {
		span.SetStatus(codes.Error, "invalid event ref")
		return nil, domain.ErrInvalidEventID
	}
	if req == nil || !domain.ValidEmail(req.Email) {
		span.SetStatus(codes.Error, "invalid email")
		return nil, domain.ErrInvalidEmail
	}

	event, err := s.resolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.Bool("wants_dinner", req.WantsDinner),
		attribute.Int("plus_ones", req.PlusOnes),
	)

	var reservation *domain.Reservation
	var existing *domain.Reservation

	admissionStart := time.Now()
	err = s.txManager.WithEventLock(ctx, event.ID, func(ctx context.Context) error {
		person, err := s.findOrCreatePerson(ctx, req.Email, req.Name)
		if err != nil {
			return err
		}

		prior, err := s.reservationRepo.GetByEventAndPerson(ctx, event.ID, person.ID)
		if err != nil && !domain.IsNotFoundError(err) {
			return err
		}
		if prior != nil && !prior.IsCancelled() {
			existing = prior
			return domain.ErrDuplicateReservation
		}

		all, err := s.reservationRepo.ListByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		occ := allocation.NewOccupancy(all)
		if prior != nil {
			// Re-admitting a cancelled reservation reuses its row; it must
			// not count against itself.
			occ = occ.Excluding(prior.ID)
		}

		decision, err := allocation.Decide(event, occ, allocation.Proposal{
			WantsDinner:     req.WantsDinner,
			DinnerPartySize: req.DinnerPartySize,
			SlotTime:        req.DinnerSlotTime,
			PlusOnes:        event.ClampPlusOnes(req.PlusOnes),
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if prior != nil {
			reservation = prior
			reservation.DinnerPullUpCount = 0
			reservation.CocktailOnlyPullUpCount = 0
			reservation.UpdatedAt = now
		} else {
			reservation = &domain.Reservation{
				ID:        uuid.New().String(),
				EventID:   event.ID,
				PersonID:  person.ID,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}
		reservation.Status = decision.Status
		reservation.PlusOnes = event.ClampPlusOnes(req.PlusOnes)
		reservation.Dinner = decision.Dinner
		reservation.PartySize = decision.PartySize
		reservation.TotalGuests = decision.TotalGuests

		if prior != nil {
			return s.reservationRepo.Update(ctx, reservation)
		}
		return s.reservationRepo.Create(ctx, reservation)
	})
	if err != nil {
		if existing != nil {
			// Surface the existing record alongside the conflict so callers
			// can show the guest what they already booked.
			return dto.FromReservation(existing), err
		}
		if err == domain.ErrEventFull {
			metrics.RecordRejection(ctx, event.ID)
		}
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	s.afterReservationWrite(ctx, event.ID)
	metrics.AdmissionDuration.Record(ctx, time.Since(admissionStart).Seconds(),
		attribute.String("event_id", event.ID))
	metrics.RecordAdmission(ctx, event.ID, reservation.Status.String(), reservation.GuestCount())

	if reservation.IsConfirmed() {
		_ = s.eventPublisher.PublishRSVPConfirmed(ctx, reservation)
	} else {
		_ = s.eventPublisher.PublishRSVPWaitlisted(ctx, reservation)
	}

	return dto.FromReservation(reservation), nil
}

// UpdateRSVP edits an existing reservation and re-runs admission against
// occupancy that excludes the reservation itself
func (s *rsvpService) UpdateRSVP(ctx context.Context, reservationID string, req *dto.UpdateRSVPRequest) (*dto.RSVPResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.update")
	defer span.End()

	if req == nil {
		return nil, domain.ErrReservationNotFound
	}

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.IsCancelled() {
		return nil, domain.ErrAlreadyCancelled
	}

	event, err := s.eventRepo.GetByID(ctx, reservation.EventID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			// An edit on a reservation whose event is gone is a data
			// integrity problem, not a lookup miss.
			return nil, domain.ErrStaleReference
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.String("event_id", event.ID),
		attribute.String("reservation_id", reservationID),
	)

	if err := s.applyContactChange(ctx, event.ID, reservation, req); err != nil {
		return nil, err
	}

	err = s.txManager.WithEventLock(ctx, event.ID, func(ctx context.Context) error {
		all, err := s.reservationRepo.ListByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		occ := allocation.NewOccupancy(all).Excluding(reservation.ID)

		proposal := proposalFromUpdate(event, reservation, req)
		decision, err := allocation.Decide(event, occ, proposal)
		if err != nil {
			return err
		}

		reservation.Status = decision.Status
		reservation.PlusOnes = proposal.PlusOnes
		reservation.Dinner = decision.Dinner
		reservation.PartySize = decision.PartySize
		reservation.TotalGuests = decision.TotalGuests
		reservation.UpdatedAt = time.Now().UTC()

		// Check-in counts survive an edit only while the booking stays
		// confirmed, unless the host pinned them explicitly. Pinned
		// counts obey the same seat bounds as a check-in.
		if req.DinnerPullUpCount != nil {
			n := *req.DinnerPullUpCount
			if n > 0 && !reservation.DinnerConfirmed() {
				return domain.ErrDinnerNotConfirmed
			}
			if n < 0 || n > reservation.DinnerSeatBound() {
				return domain.ErrCheckinExceedsParty
			}
			reservation.DinnerPullUpCount = n
		} else if !reservation.IsConfirmed() {
			reservation.DinnerPullUpCount = 0
		}
		if req.CocktailOnlyPullUpCount != nil {
			n := *req.CocktailOnlyPullUpCount
			if n < 0 || n > reservation.CocktailSeatBound() {
				return domain.ErrCheckinExceedsParty
			}
			reservation.CocktailOnlyPullUpCount = n
		} else if !reservation.IsConfirmed() {
			reservation.CocktailOnlyPullUpCount = 0
		}

		return s.reservationRepo.Update(ctx, reservation)
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	s.afterReservationWrite(ctx, event.ID)
	_ = s.eventPublisher.PublishRSVPUpdated(ctx, reservation)

	return dto.FromReservation(reservation), nil
}

// CancelRSVP soft-cancels a reservation, keeping the row for audit
func (s *rsvpService) CancelRSVP(ctx context.Context, reservationID string) (*dto.RSVPResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.cancel")
	defer span.End()

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.IsCancelled() {
		return nil, domain.ErrAlreadyCancelled
	}

	reservation.Status = domain.BookingStatusCancelled
	reservation.DinnerPullUpCount = 0
	reservation.CocktailOnlyPullUpCount = 0
	reservation.UpdatedAt = time.Now().UTC()

	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	s.afterReservationWrite(ctx, reservation.EventID)
	metrics.RecordCancellation(ctx, reservation.EventID)
	_ = s.eventPublisher.PublishRSVPCancelled(ctx, reservation)

	return dto.FromReservation(reservation), nil
}

// CheckIn records arrival counts within the bounds of the confirmed party
func (s *rsvpService) CheckIn(ctx context.Context, reservationID string, req *dto.CheckinRequest) (*dto.RSVPResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.checkin")
	defer span.End()

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.IsCancelled() {
		return nil, domain.ErrAlreadyCancelled
	}
	if !reservation.IsConfirmed() {
		return nil, domain.ErrNotConfirmed
	}
	if req == nil {
		return dto.FromReservation(reservation), nil
	}

	guests := 0
	if req.DinnerPullUpCount != nil {
		n := *req.DinnerPullUpCount
		if !reservation.DinnerConfirmed() && n > 0 {
			return nil, domain.ErrDinnerNotConfirmed
		}
		if n < 0 || n > reservation.DinnerSeatBound() {
			return nil, domain.ErrCheckinExceedsParty
		}
		reservation.DinnerPullUpCount = n
		guests += n
	}
	if req.CocktailOnlyPullUpCount != nil {
		n := *req.CocktailOnlyPullUpCount
		if n < 0 || n > reservation.CocktailSeatBound() {
			return nil, domain.ErrCheckinExceedsParty
		}
		reservation.CocktailOnlyPullUpCount = n
		guests += n
	}
	reservation.UpdatedAt = time.Now().UTC()

	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	metrics.RecordCheckin(ctx, reservation.EventID, guests)
	return dto.FromReservation(reservation), nil
}

// ForceConfirm promotes a reservation past every capacity check
func (s *rsvpService) ForceConfirm(ctx context.Context, reservationID string) (*dto.RSVPResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.force_confirm")
	defer span.End()

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.IsCancelled() {
		return nil, domain.ErrAlreadyCancelled
	}

	promoted, err := s.forceConfirm(ctx, reservation)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}
	if promoted {
		metrics.RecordPromotion(ctx, reservation.EventID)
		_ = s.eventPublisher.PublishRSVPPromoted(ctx, reservation)
	}
	return dto.FromReservation(reservation), nil
}

// ApplyPayment folds a payment state change into allocation state. Payment
// success on a waitlisted reservation is the single path that bypasses
// capacity; every other transition is bookkeeping only.
func (s *rsvpService) ApplyPayment(ctx context.Context, evt *dto.PaymentEvent) error {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.apply_payment")
	defer span.End()

	if evt == nil || evt.PaymentID == "" {
		return domain.ErrPaymentNotFound
	}

	span.SetAttributes(
		attribute.String("payment_id", evt.PaymentID),
		attribute.String("event_type", evt.EventType),
	)

	state := paymentState(evt.EventType)
	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:            evt.PaymentID,
		ReservationID: evt.ReservationID,
		Amount:        evt.Amount,
		Currency:      evt.Currency,
		Status:        state,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.paymentRepo.Upsert(ctx, payment); err != nil {
		telemetry.SetSpanError(ctx, err)
		return err
	}

	if evt.ReservationID == "" {
		return nil
	}

	reservation, err := s.reservationRepo.GetByID(ctx, evt.ReservationID)
	if err != nil {
		return err
	}

	switch state {
	case domain.PaymentStateSucceeded:
		reservation.PaymentID = evt.PaymentID
		reservation.PaymentStatus = domain.PaymentStatusPaid
	case domain.PaymentStateFailed:
		reservation.PaymentID = evt.PaymentID
		reservation.PaymentStatus = domain.PaymentStatusUnpaid
	case domain.PaymentStateRefunded:
		// A refund never reverts the booking: the guest keeps their seat
		// until the host cancels explicitly.
		reservation.PaymentStatus = domain.PaymentStatusRefunded
	default:
		return nil
	}
	reservation.UpdatedAt = time.Now().UTC()

	if state == domain.PaymentStateSucceeded && reservation.IsWaitlisted() {
		promoted, err := s.forceConfirm(ctx, reservation)
		if err != nil {
			return err
		}
		if promoted {
			metrics.RecordPromotion(ctx, reservation.EventID)
			_ = s.eventPublisher.PublishRSVPPromoted(ctx, reservation)
		}
		return nil
	}

	return s.reservationRepo.Update(ctx, reservation)
}

// GetRSVP retrieves a reservation by ID
func (s *rsvpService) GetRSVP(ctx context.Context, reservationID string) (*dto.RSVPResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.get")
	defer span.End()

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	return dto.FromReservation(reservation), nil
}

// ListEventRSVPs retrieves every active reservation for an event
func (s *rsvpService) ListEventRSVPs(ctx context.Context, eventRef string) ([]*dto.RSVPResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.rsvp.list")
	defer span.End()

	event, err := s.resolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservationRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.RSVPResponse, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, dto.FromReservation(r))
	}
	return out, nil
}

// forceConfirm flips both levels to confirmed under the event lock and
// persists. Returns whether any level actually changed.
func (s *rsvpService) forceConfirm(ctx context.Context, reservation *domain.Reservation) (bool, error) {
	changed := false
	err := s.txManager.WithEventLock(ctx, reservation.EventID, func(ctx context.Context) error {
		if !reservation.IsConfirmed() {
			reservation.Status = domain.BookingStatusConfirmed
			changed = true
		}
		if reservation.Dinner != nil && reservation.Dinner.Status != domain.BookingStatusConfirmed {
			reservation.Dinner.Status = domain.BookingStatusConfirmed
			changed = true
		}
		if !changed {
			return nil
		}
		reservation.UpdatedAt = time.Now().UTC()
		return s.reservationRepo.Update(ctx, reservation)
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.afterReservationWrite(ctx, reservation.EventID)
	}
	return changed, nil
}

// resolveEvent looks an event up by ID first, then by slug
func (s *rsvpService) resolveEvent(ctx context.Context, eventRef string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventRef)
	if err == nil {
		return event, nil
	}
	if !domain.IsNotFoundError(err) {
		return nil, err
	}
	return s.eventRepo.GetBySlug(ctx, eventRef)
}

// findOrCreatePerson resolves a person by normalized email, creating the
// contact on first sight and refreshing the name on repeat contact
func (s *rsvpService) findOrCreatePerson(ctx context.Context, email, name string) (*domain.Person, error) {
	normalized := domain.NormalizeEmail(email)

	person, err := s.personRepo.GetByEmail(ctx, normalized)
	if err == nil {
		if name != "" && name != person.Name {
			person.Name = name
			person.UpdatedAt = time.Now().UTC()
			if err := s.personRepo.Update(ctx, person); err != nil {
				return nil, err
			}
		}
		return person, nil
	}
	if !domain.IsNotFoundError(err) {
		return nil, err
	}

	now := time.Now().UTC()
	person = &domain.Person{
		ID:        uuid.New().String(),
		Email:     normalized,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.personRepo.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// applyContactChange handles email and name edits on an update. Moving the
// reservation to an email that already holds one for this event is a
// conflict.
func (s *rsvpService) applyContactChange(ctx context.Context, eventID string, reservation *domain.Reservation, req *dto.UpdateRSVPRequest) error {
	if req.Email == nil && req.Name == nil {
		return nil
	}

	if req.Email != nil {
		if !domain.ValidEmail(*req.Email) {
			return domain.ErrInvalidEmail
		}
		name := ""
		if req.Name != nil {
			name = *req.Name
		}
		person, err := s.findOrCreatePerson(ctx, *req.Email, name)
		if err != nil {
			return err
		}
		if person.ID != reservation.PersonID {
			other, err := s.reservationRepo.GetByEventAndPerson(ctx, eventID, person.ID)
			if err != nil && !domain.IsNotFoundError(err) {
				return err
			}
			if other != nil && !other.IsCancelled() {
				return domain.ErrDuplicateReservation
			}
			reservation.PersonID = person.ID
		}
		return nil
	}

	// Name-only change updates the existing contact.
	person, err := s.personRepo.GetByID(ctx, reservation.PersonID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			// A reservation pointing at a missing contact is a data
			// integrity problem, not a lookup miss.
			return domain.ErrStaleReference
		}
		return err
	}
	if *req.Name != person.Name {
		person.Name = *req.Name
		person.UpdatedAt = time.Now().UTC()
		return s.personRepo.Update(ctx, person)
	}
	return nil
}

// afterReservationWrite invalidates the display cache for the event
func (s *rsvpService) afterReservationWrite(ctx context.Context, eventID string) {
	if s.occupancyCache == nil {
		return
	}
	_ = s.occupancyCache.Invalidate(ctx, eventID)
}

// proposalFromUpdate merges an update request over the reservation's
// current shape into an admission proposal
func proposalFromUpdate(event *domain.Event, r *domain.Reservation, req *dto.UpdateRSVPRequest) allocation.Proposal {
	p := allocation.Proposal{
		WantsDinner: r.WantsDinner(),
		PlusOnes:    r.PlusOnes,
	}
	if r.Dinner != nil {
		p.DinnerPartySize = r.Dinner.PartySize
		slot := r.Dinner.SlotTime
		p.SlotTime = &slot
	}

	if req.WantsDinner != nil {
		p.WantsDinner = *req.WantsDinner
	}
	if req.DinnerPartySize != nil {
		p.DinnerPartySize = *req.DinnerPartySize
	}
	if req.DinnerSlotTime != nil {
		p.SlotTime = req.DinnerSlotTime
	}
	if req.PlusOnes != nil {
		p.PlusOnes = *req.PlusOnes
	}
	p.PlusOnes = event.ClampPlusOnes(p.PlusOnes)

	if !p.WantsDinner {
		p.DinnerPartySize = 0
		p.SlotTime = nil
	}
	return p
}

// paymentState maps a broker event type to a payment state
func paymentState(eventType string) domain.PaymentState {
	switch eventType {
	case dto.PaymentEventSucceeded:
		return domain.PaymentStateSucceeded
	case dto.PaymentEventFailed:
		return domain.PaymentStateFailed
	case dto.PaymentEventRefunded:
		return domain.PaymentStateRefunded
	default:
		return domain.PaymentStatePending
	}
}
