package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
)

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// BookRequest is the request body for POST /events/{eventID}/bookings.
// TicketsCount defaults to 1 when omitted.
type BookRequest struct {
	TicketsCount *int `json:"tickets_count"`
}

// Validate implements helpers.Validator.
func (b BookRequest) Validate() []string {
	if b.TicketsCount != nil && *b.TicketsCount < 1 {
		return []string{"tickets_count must be at least 1"}
	}
	return nil
}

// Book godoc
// @Summary Book tickets for an event
// @Description Reserves tickets_count tickets (default 1) on the event for the authenticated user. The reservation and the inventory decrement commit atomically; on conflict the remaining ticket count is reported.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body BookRequest true "Ticket count"
// @Success 201 {object} helpers.APIResponse "data contains booking_id and tickets_available"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already booked, or not enough tickets)"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state (event is in the past)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/bookings [post]
func (c *BookingController) Book(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req BookRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	ticketsCount := 1
	if req.TicketsCount != nil {
		ticketsCount = *req.TicketsCount
	}

	confirmation, err := c.Service.Book(r.Context(), eventID, userID, ticketsCount)
	if err != nil {
		var insufficient *domain.InsufficientTicketsError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrInvalidInput):
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "tickets_count must be at least 1")
		case errors.Is(err, domain.ErrPastEvent):
			h.WriteJSONError(w, http.StatusUnprocessableEntity, h.ErrCodeInvalidState, "cannot book tickets for past events")
		case errors.Is(err, domain.ErrAlreadyBooked):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, "you have already booked this event")
		case errors.As(err, &insufficient):
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeConflict, insufficient.Error())
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "booking failed, no tickets were reserved")
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, confirmation)
}

// Cancel godoc
// @Summary Cancel a booking
// @Description Deletes the authenticated user's booking and credits its tickets back to the event atomically. Bookings for past events cannot be cancelled.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (someone else's booking)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_state (event is in the past)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [delete]
func (c *BookingController) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if !uuidRegex.MatchString(bookingID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid bookingID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Cancel(r.Context(), bookingID, userID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "booking not found")
		case errors.Is(err, domain.ErrForbidden):
			h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
		case errors.Is(err, domain.ErrPastEvent):
			h.WriteJSONError(w, http.StatusUnprocessableEntity, h.ErrCodeInvalidState, "cannot cancel booking for past events")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to cancel booking")
		}
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "booking cancelled successfully"})
}

// ListMine godoc
// @Summary List the current user's bookings
// @Description Returns the authenticated user's bookings, newest first, each with a denormalized snapshot of its event.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of bookings with event snapshots"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [get]
func (c *BookingController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	bookings, err := c.Service.ListMyBookings(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []*domain.BookingWithEvent{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, bookings)
}
