package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Date             *time.Time `json:"date"`
	Location         string     `json:"location"`
	TicketsAvailable int        `json:"tickets_available"`
	ThumbnailURL     *string    `json:"thumbnail_url"`
	ImageURL         *string    `json:"image_url"`
}

// Validate implements helpers.Validator.
func (e CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, "title is required")
	}
	if e.TicketsAvailable < 0 {
		errs = append(errs, "tickets_available must not be negative")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// Absent fields are left unchanged.
type UpdateEventRequest struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Date             *time.Time `json:"date"`
	Location         *string    `json:"location"`
	TicketsAvailable *int       `json:"tickets_available"`
	ThumbnailURL     *string    `json:"thumbnail_url"`
	ImageURL         *string    `json:"image_url"`
}

// Validate implements helpers.Validator.
func (e UpdateEventRequest) Validate() []string {
	var errs []string
	if e.Title != nil && strings.TrimSpace(*e.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if e.TicketsAvailable != nil && *e.TicketsAvailable < 0 {
		errs = append(errs, "tickets_available must not be negative")
	}
	return errs
}

// EventListResponse is the success payload for GET /events.
type EventListResponse struct {
	Events     []EventListItem  `json:"events"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// List godoc
// @Summary List events
// @Description Lists events with optional filters. By default past events are hidden; pass show_past=true or status=past to see them. Events without a date count as upcoming.
// @Tags events
// @Produce json
// @Param q query string false "Title substring filter"
// @Param location query string false "Location substring filter"
// @Param status query string false "Status filter: upcoming or past"
// @Param show_past query bool false "Include past events in the default listing"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains events and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Query:    q.Get("q"),
		Location: q.Get("location"),
		ShowPast: strings.EqualFold(q.Get("show_past"), "true"),
	}
	switch strings.ToLower(q.Get("status")) {
	case "":
		filter.Status = domain.FilterStatusAny
	case "upcoming":
		filter.Status = domain.FilterStatusUpcoming
	case "past":
		filter.Status = domain.FilterStatusPast
	default:
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "status must be \"upcoming\" or \"past\"")
		return
	}
	params := h.ParsePagination(r)

	events, total, err := c.Service.ListEvents(r.Context(), filter, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to list events")
		return
	}

	now := c.Service.Now()
	items := make([]EventListItem, 0, len(events))
	for _, e := range events {
		items = append(items, NewEventListItem(e, now))
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     items,
		Pagination: h.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Get godoc
// @Summary Get one event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event read model"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid eventID")
		return
	}
	event, err := c.Service.GetEventByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to load event")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, NewEventResponse(event, c.Service.Now()))
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	event := domain.NewEvent(
		strings.TrimSpace(req.Title),
		req.Description,
		req.Date,
		strings.TrimSpace(req.Location),
		req.TicketsAvailable,
		time.Time{}, time.Time{}, // timestamps set by the service
	)
	event.ThumbnailURL = req.ThumbnailURL
	event.ImageURL = req.ImageURL

	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid event data")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to create event")
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, NewEventResponse(event, c.Service.Now()))
}

// Update godoc
// @Summary Update an event
// @Description Partially updates the event; absent fields keep their values.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid eventID")
		return
	}
	var req UpdateEventRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	upd := domain.EventUpdate{
		Title:            req.Title,
		Description:      req.Description,
		Date:             req.Date,
		Location:         req.Location,
		TicketsAvailable: req.TicketsAvailable,
		ThumbnailURL:     req.ThumbnailURL,
		ImageURL:         req.ImageURL,
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid event data")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to update event")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, NewEventResponse(event, c.Service.Now()))
}

// Delete godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid eventID")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "failed to delete event")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted"})
}
