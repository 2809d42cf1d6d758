package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/gatherly-app/backend-rsvp/internal/allocation"
	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/internal/dto"
	"github.com/gatherly-app/backend-rsvp/internal/repository"
	"github.com/gatherly-app/backend-rsvp/pkg/logger"
	"github.com/gatherly-app/backend-rsvp/pkg/telemetry"
)

// EventService defines the interface for event configuration logic
type EventService interface {
	// CreateEvent publishes a new event for a host
	CreateEvent(ctx context.Context, hostID string, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// UpdateEvent edits capacity configuration. Edits never rewrite slot
	// or party data already recorded on reservations.
	UpdateEvent(ctx context.Context, eventRef string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event by ID or slug
	GetEvent(ctx context.Context, eventRef string) (*dto.EventResponse, error)

	// GetAvailability returns the display-path occupancy view
	GetAvailability(ctx context.Context, eventRef string) (*dto.AvailabilityResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo       repository.EventRepository
	reservationRepo repository.ReservationRepository
	occupancyCache  repository.OccupancyCache
	plusOnesCeiling int
}

// NewEventService creates a new event service. plusOnesCeiling bounds the
// per-event plus-one configuration; values below one fall back to the
// domain default.
func NewEventService(
	eventRepo repository.EventRepository,
	reservationRepo repository.ReservationRepository,
	occupancyCache repository.OccupancyCache,
	plusOnesCeiling int,
) EventService {
	if plusOnesCeiling < 1 {
		plusOnesCeiling = domain.MaxPlusOnesCeiling
	}
	return &eventService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		occupancyCache:  occupancyCache,
		plusOnesCeiling: plusOnesCeiling,
	}
}

// CreateEvent publishes a new event
func (s *eventService) CreateEvent(ctx context.Context, hostID string, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req == nil || req.Slug == "" || req.Name == "" {
		span.SetStatus(codes.Error, "invalid event")
		return nil, domain.ErrInvalidEventID
	}

	maxPlusOnes := req.MaxPlusOnesPerGuest
	if maxPlusOnes < 0 {
		maxPlusOnes = 0
	}
	if maxPlusOnes > s.plusOnesCeiling {
		maxPlusOnes = s.plusOnesCeiling
	}

	now := time.Now().UTC()
	event := &domain.Event{
		ID:                         uuid.New().String(),
		Slug:                       req.Slug,
		HostID:                     hostID,
		Name:                       req.Name,
		Description:                req.Description,
		Timezone:                   req.Timezone,
		StartsAt:                   req.StartsAt,
		EndsAt:                     req.EndsAt,
		CocktailCapacity:           req.CocktailCapacity,
		DinnerEnabled:              req.DinnerEnabled,
		DinnerStartTime:            req.DinnerStartTime,
		DinnerEndTime:              req.DinnerEndTime,
		DinnerSeatingIntervalHours: req.DinnerSeatingIntervalHours,
		DinnerMaxSeatsPerSlot:      req.DinnerMaxSeatsPerSlot,
		WaitlistEnabled:            req.WaitlistEnabled,
		MaxPlusOnesPerGuest:        maxPlusOnes,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	return dto.FromEvent(event), nil
}

// UpdateEvent edits capacity configuration after publishing
func (s *eventService) UpdateEvent(ctx context.Context, eventRef string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	if req == nil {
		return nil, domain.ErrInvalidEventID
	}

	event, err := s.resolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Timezone != nil {
		event.Timezone = *req.Timezone
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}

	if req.ClearCocktailCap {
		event.CocktailCapacity = nil
	} else if req.CocktailCapacity != nil {
		event.CocktailCapacity = req.CocktailCapacity
	}

	if req.DinnerEnabled != nil {
		event.DinnerEnabled = *req.DinnerEnabled
	}
	if req.DinnerStartTime != nil {
		event.DinnerStartTime = req.DinnerStartTime
	}
	if req.DinnerEndTime != nil {
		event.DinnerEndTime = req.DinnerEndTime
	}
	if req.DinnerSeatingIntervalHours != nil {
		event.DinnerSeatingIntervalHours = *req.DinnerSeatingIntervalHours
	}
	if req.ClearDinnerSeatCap {
		event.DinnerMaxSeatsPerSlot = nil
	} else if req.DinnerMaxSeatsPerSlot != nil {
		event.DinnerMaxSeatsPerSlot = req.DinnerMaxSeatsPerSlot
	}

	if req.WaitlistEnabled != nil {
		event.WaitlistEnabled = *req.WaitlistEnabled
	}
	if req.MaxPlusOnesPerGuest != nil {
		n := *req.MaxPlusOnesPerGuest
		if n < 0 {
			n = 0
		}
		if n > s.plusOnesCeiling {
			n = s.plusOnesCeiling
		}
		event.MaxPlusOnesPerGuest = n
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	// Capacity edits change what the availability view reports.
	if s.occupancyCache != nil {
		_ = s.occupancyCache.Invalidate(ctx, event.ID)
	}

	return dto.FromEvent(event), nil
}

// GetEvent retrieves an event by ID or slug
func (s *eventService) GetEvent(ctx context.Context, eventRef string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	event, err := s.resolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}
	return dto.FromEvent(event), nil
}

// GetAvailability returns the display-path occupancy view, served from the
// cache when warm and recomputed from the reservation collection otherwise
func (s *eventService) GetAvailability(ctx context.Context, eventRef string) (*dto.AvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.availability")
	defer span.End()

	event, err := s.resolveEvent(ctx, eventRef)
	if err != nil {
		return nil, err
	}

	counts, err := s.loadCounts(ctx, event)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return nil, err
	}

	resp := &dto.AvailabilityResponse{
		EventID:            event.ID,
		CocktailCapacity:   event.CocktailCapacity,
		ConfirmedTotal:     counts.ConfirmedTotal,
		WaitlistTotal:      counts.WaitlistTotal,
		CocktailsOnlyTotal: counts.CocktailsOnlyTotal,
	}
	if event.HasCocktailCapacity() {
		remaining := *event.CocktailCapacity - counts.CocktailsOnlyTotal
		if remaining < 0 {
			remaining = 0
		}
		resp.RemainingCocktail = &remaining
	}

	for _, slot := range event.DinnerSlots() {
		key := slot.Format(time.RFC3339)
		sa := dto.SlotAvailability{
			SlotTime:       slot,
			ConfirmedSeats: counts.SlotConfirmed[key],
			WaitlistSeats:  counts.SlotWaitlisted[key],
		}
		if event.HasDinnerSeatCap() {
			remaining := *event.DinnerMaxSeatsPerSlot - sa.ConfirmedSeats
			if remaining < 0 {
				remaining = 0
			}
			sa.RemainingSeats = &remaining
		}
		resp.Slots = append(resp.Slots, sa)
	}

	return resp, nil
}

// loadCounts reads the cached counts or recomputes and re-warms them
func (s *eventService) loadCounts(ctx context.Context, event *domain.Event) (*repository.CachedOccupancy, error) {
	if s.occupancyCache != nil {
		counts, err := s.occupancyCache.Get(ctx, event.ID)
		if err == nil {
			return counts, nil
		}
		if err != repository.ErrCacheMiss {
			// A broken cache must not take down the display path.
			logger.Get().Warn("occupancy cache read failed",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
		}
	}

	reservations, err := s.reservationRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	occ := allocation.NewOccupancy(reservations)

	counts := &repository.CachedOccupancy{
		ConfirmedTotal:     occ.ConfirmedTotal(),
		WaitlistTotal:      occ.WaitlistTotal(),
		CocktailsOnlyTotal: occ.CocktailsOnlyTotal(),
	}
	slots := event.DinnerSlots()
	if len(slots) > 0 {
		counts.SlotConfirmed = make(map[string]int, len(slots))
		counts.SlotWaitlisted = make(map[string]int, len(slots))
		for _, slot := range slots {
			key := slot.Format(time.RFC3339)
			counts.SlotConfirmed[key] = occ.SlotConfirmed(slot)
			counts.SlotWaitlisted[key] = occ.SlotWaitlisted(slot)
		}
	}

	if s.occupancyCache != nil {
		if err := s.occupancyCache.Set(ctx, event.ID, counts); err != nil {
			logger.Get().Warn("occupancy cache write failed",
				zap.String("event_id", event.ID),
				zap.Error(err),
			)
		}
	}
	return counts, nil
}

// resolveEvent looks an event up by ID first, then by slug
func (s *eventService) resolveEvent(ctx context.Context, eventRef string) (*domain.Event, error) {
	if eventRef == "" {
		return nil, domain.ErrInvalidEventID
	}
	event, err := s.eventRepo.GetByID(ctx, eventRef)
	if err == nil {
		return event, nil
	}
	if !domain.IsNotFoundError(err) {
		return nil, err
	}
	return s.eventRepo.GetBySlug(ctx, eventRef)
}
