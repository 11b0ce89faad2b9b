package controllers

import (
	"regexp"
	"time"

	"eventbooking/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Display labels for the event status enum. The enum itself never leaves the
// domain; clients only ever see these strings.
var statusLabels = map[domain.EventStatus]string{
	domain.StatusUnscheduled: "unscheduled",
	domain.StatusPast:        "past",
	domain.StatusToday:       "today",
	domain.StatusUpcoming:    "upcoming",
}

// EventResponse is the full event read model exposed over HTTP, including
// fields derived from the event date and the server's current time.
// swagger:model EventResponse
type EventResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Date             *time.Time `json:"date"`
	Location         string     `json:"location"`
	TicketsAvailable int        `json:"tickets_available"`
	ThumbnailURL     *string    `json:"thumbnail_url"`
	ImageURL         *string    `json:"image_url"`
	Status           string     `json:"status"`
	IsPast           bool       `json:"is_past"`
	IsUpcoming       bool       `json:"is_upcoming"`
	CanBook          bool       `json:"can_book"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewEventResponse builds the read model for one event at the given instant.
func NewEventResponse(e *domain.Event, now time.Time) EventResponse {
	status := e.Status(now)
	return EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Date:             e.Date,
		Location:         e.Location,
		TicketsAvailable: e.TicketsAvailable,
		ThumbnailURL:     e.ThumbnailURL,
		ImageURL:         e.ImageURL,
		Status:           statusLabels[status],
		IsPast:           status == domain.StatusPast,
		IsUpcoming:       status != domain.StatusPast,
		CanBook:          e.CanBook(now),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

// EventListItem is the slimmer event shape used in listings.
// swagger:model EventListItem
type EventListItem struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Date             *time.Time `json:"date"`
	Location         string     `json:"location"`
	ThumbnailURL     *string    `json:"thumbnail_url"`
	TicketsAvailable int        `json:"tickets_available"`
	Status           string     `json:"status"`
	IsPast           bool       `json:"is_past"`
	IsUpcoming       bool       `json:"is_upcoming"`
	CanBook          bool       `json:"can_book"`
}

// NewEventListItem builds the listing shape for one event at the given instant.
func NewEventListItem(e *domain.Event, now time.Time) EventListItem {
	status := e.Status(now)
	return EventListItem{
		ID:               e.ID,
		Title:            e.Title,
		Date:             e.Date,
		Location:         e.Location,
		ThumbnailURL:     e.ThumbnailURL,
		TicketsAvailable: e.TicketsAvailable,
		Status:           statusLabels[status],
		IsPast:           status == domain.StatusPast,
		IsUpcoming:       status != domain.StatusPast,
		CanBook:          e.CanBook(now),
	}
}
