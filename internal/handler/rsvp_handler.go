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

// RSVPHandler handles reservation HTTP requests
type RSVPHandler struct {
	rsvpService service.RSVPService
}

// NewRSVPHandler creates a new RSVP handler
func NewRSVPHandler(rsvpService service.RSVPService) *RSVPHandler {
	return &RSVPHandler{rsvpService: rsvpService}
}

// Create handles POST /events/:event/rsvps
func (h *RSVPHandler) Create(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.rsvp.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventRef := c.Param("event")

	var req dto.CreateRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("event_ref", eventRef),
		attribute.Bool("wants_dinner", req.WantsDinner),
	)

	result, err := h.rsvpService.CreateRSVP(ctx, eventRef, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrDuplicateReservation) && result != nil {
			// The guest already holds a reservation; hand it back so the
			// client can render what they booked.
			response.ErrorWithData(c, http.StatusConflict, "DUPLICATE_RSVP", err.Error(), result)
			return
		}
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("reservation_id", result.ID))
	response.Created(c, result)
}

// Get handles GET /rsvps/:id
func (h *RSVPHandler) Get(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.rsvp.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.rsvpService.GetRSVP(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Update handles PATCH /rsvps/:id
func (h *RSVPHandler) Update(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.rsvp.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.UpdateRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	result, err := h.rsvpService.UpdateRSVP(ctx, c.Param("id"), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

// Cancel handles DELETE /rsvps/:id
func (h *RSVPHandler) Cancel(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.rsvp.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.rsvpService.CancelRSVP(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

// CheckIn handles POST /rsvps/:id/checkin
func (h *RSVPHandler) CheckIn(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.rsvp.checkin")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetStatus(codes.Error, "invalid request")
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", err.Error())
		return
	}

	result, err := h.rsvpService.CheckIn(ctx, c.Param("id"), &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

// ForceConfirm handles POST /rsvps/:id/confirm (host only)
func (h *RSVPHandler) ForceConfirm(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.rsvp.force_confirm")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	result, err := h.rsvpService.ForceConfirm(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}
	response.Success(c, result)
}

// ListByEvent handles GET /events/:event/rsvps (host only)
func (h *RSVPHandler) ListByEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.rsvp.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	results, err := h.rsvpService.ListEventRSVPs(ctx, c.Param("event"))
	if err != nil {
		span.RecordError(err)
		h.handleError(c, err)
		return
	}
	response.Success(c, results)
}

func (h *RSVPHandler) handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error(), "")
	case domain.IsValidationError(err):
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), "")
	case errors.Is(err, domain.ErrEventFull):
		response.Error(c, http.StatusConflict, "EVENT_FULL", err.Error(), "")
	case errors.Is(err, domain.ErrDuplicateReservation):
		response.Error(c, http.StatusConflict, "DUPLICATE_RSVP", err.Error(), "")
	case domain.IsConflictError(err):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error(), "")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
	}
}
