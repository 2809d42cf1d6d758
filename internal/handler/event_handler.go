package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/gatherly-app/backend-rsvp/internal/domain"
	"github.com/gatherly-app/backend-rsvp/internal/dto"
	"github.com/gatherly-app/backend-rsvp/internal/service"
	"github.com/gatherly-app/backend-rsvp/pkg/response"
	"github.com/gatherly-app/backend-rsvp/pkg/telemetry"
)

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create handles POST /events (host only)
func (h *EventHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	hostID := c.GetString("host_id")
	if hostID == "" {
		span.SetStatus(codes.Error, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "host authentication required", "")
		return
	}

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	result, err := h.eventService.CreateEvent(ctx, hostID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", result.ID))
	response.Created(c, result)
}

// Get handles GET /events/:event
func (h *EventHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.eventService.GetEvent(ctx, c.Param("event"))
	if err != nil {
		span.RecordError(err)
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Update handles PATCH /events/:event (host only)
func (h *EventHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	result, err := h.eventService.UpdateEvent(ctx, c.Param("event"), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Availability handles GET /events/:event/availability
func (h *EventHandler) Availability(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.availability")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.eventService.GetAvailability(ctx, c.Param("event"))
	if err != nil {
		span.RecordError(err)
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *EventHandler) handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error(), "")
	case domain.IsValidationError(err):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), "")
	case errors.Is(err, domain.ErrEventFull) || domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error(), "")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
	}
}
