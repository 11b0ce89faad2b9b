package domain

import (
	"context"
	"time"
)

// Booking is a user's claim on some number of tickets for one event.
// At most one booking exists per (user, event) pair; the database enforces
// this with a uniqueness constraint so concurrent duplicates are rejected
// by the constraint itself, not by a read-then-write check.
// swagger:model Booking
type Booking struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	TicketsCount int       `json:"tickets_count"`
	BookedAt     time.Time `json:"booked_at"`
}

// NewBooking returns a new Booking. ID is set by the repository on create.
func NewBooking(eventID, userID string, ticketsCount int, bookedAt time.Time) *Booking {
	return &Booking{
		EventID:      eventID,
		UserID:       userID,
		TicketsCount: ticketsCount,
		BookedAt:     bookedAt,
	}
}

// BookingWithEvent bundles a booking with a denormalized snapshot of its
// event, so listings render without a second lookup. EventIsPast is filled
// in by the service from its clock.
type BookingWithEvent struct {
	Booking
	EventTitle    string     `json:"event_title"`
	EventDate     *time.Time `json:"event_date"`
	EventLocation string     `json:"event_location"`
	EventImageURL *string    `json:"event_image"`
	EventIsPast   bool       `json:"event_is_past"`
}

// BookingConfirmation is the result of a successful book operation.
type BookingConfirmation struct {
	BookingID        string `json:"booking_id"`
	TicketsAvailable int    `json:"tickets_available"`
}

// BookingRepository is the storage half of the inventory transaction
// coordinator. Book and Cancel run as single database transactions: either
// every effect commits or none does, and the event row serializes
// concurrent inventory changes for the same event.
type BookingRepository interface {
	// Book inserts the booking and decrements the event's ticket pool
	// atomically. It returns the post-decrement count. Fails with
	// ErrAlreadyBooked (uniqueness constraint), *InsufficientTicketsError
	// (conditional decrement found too few tickets), or ErrNotFound (event
	// row missing).
	Book(ctx context.Context, booking *Booking) (remaining int, err error)
	// Cancel deletes the booking owned by userID and credits its tickets
	// back to the event atomically. ErrNotFound if no such booking exists
	// for that owner.
	Cancel(ctx context.Context, bookingID, userID string) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUserID(ctx context.Context, userID string) ([]*BookingWithEvent, error)
}

// BookingService defines the booking business logic: precondition checks,
// the coordinator calls, and error mapping.
type BookingService interface {
	Book(ctx context.Context, eventID, userID string, ticketsCount int) (*BookingConfirmation, error)
	Cancel(ctx context.Context, bookingID, userID string) error
	ListMyBookings(ctx context.Context, userID string) ([]*BookingWithEvent, error)
}
