package domain

import (
	"context"
	"time"
)

// EventStatus is the derived scheduling status of an event. It is a closed
// enum; the string form shown to API clients lives in the delivery layer.
type EventStatus int

const (
	StatusUnscheduled EventStatus = iota
	StatusPast
	StatusToday
	StatusUpcoming
)

// Event represents a bookable occasion with a finite ticket pool.
// TicketsAvailable is mutated only by the booking coordinator and never
// drops below zero.
// swagger:model Event
type Event struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Date             *time.Time `json:"date"`
	Location         string     `json:"location"`
	TicketsAvailable int        `json:"tickets_available"`
	ThumbnailURL     *string    `json:"thumbnail_url"`
	ImageURL         *string    `json:"image_url"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the repository on create.
func NewEvent(title, description string, date *time.Time, location string, ticketsAvailable int, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:            title,
		Description:      description,
		Date:             date,
		Location:         location,
		TicketsAvailable: ticketsAvailable,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}

// Status derives the scheduling status from the event date and the given
// current time. An event without a date is never past.
func (e *Event) Status(now time.Time) EventStatus {
	if e.Date == nil {
		return StatusUnscheduled
	}
	if e.Date.Before(now) {
		return StatusPast
	}
	y1, m1, d1 := e.Date.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return StatusToday
	}
	return StatusUpcoming
}

// IsPast reports whether the event date lies strictly before now.
func (e *Event) IsPast(now time.Time) bool {
	return e.Status(now) == StatusPast
}

// CanBook reports whether booking is permitted: the event is not past and
// tickets remain.
func (e *Event) CanBook(now time.Time) bool {
	return e.Status(now) != StatusPast && e.TicketsAvailable > 0
}

// EventStatusFilter narrows event listings by derived status.
type EventStatusFilter string

const (
	FilterStatusAny      EventStatusFilter = ""
	FilterStatusUpcoming EventStatusFilter = "upcoming"
	FilterStatusPast     EventStatusFilter = "past"
)

// EventFilter holds the listing/search parameters for events.
// Query and Location match as case-insensitive substrings. When Status is
// empty and ShowPast is false, only events dated now or later are returned
// (events without a date are always included).
type EventFilter struct {
	Query    string
	Location string
	Status   EventStatusFilter
	ShowPast bool
}

// EventUpdate carries the mutable event fields for a partial update.
// Nil fields are left unchanged. TicketsAvailable resets the pool and is
// intended for administrative corrections, not for booking flows.
type EventUpdate struct {
	Title            *string
	Description      *string
	Date             *time.Time
	Location         *string
	TicketsAvailable *int
	ThumbnailURL     *string
	ImageURL         *string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, now time.Time, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventCache is an optional read-model cache for single events. A miss is
// (nil, nil). Implementations must tolerate concurrent use; staleness is
// bounded by the TTL passed to SetEvent.
type EventCache interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	SetEvent(ctx context.Context, event *Event, ttl time.Duration) error
	InvalidateEvent(ctx context.Context, id string) error
}

// EventService defines the business logic for event management and listing.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	// Now exposes the service clock so the delivery layer derives status and
	// can_book from the same instant the service used.
	Now() time.Time
}
