package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventbooking/internal/clock"
	"eventbooking/internal/domain"
)

type bookingService struct {
	bookingRepo    domain.BookingRepository
	eventRepo      domain.EventRepository
	cache          domain.EventCache
	clk            clock.Clock
	contextTimeout time.Duration
}

// NewBookingService creates the booking coordinator service. cache may be
// nil; when set, successful book/cancel operations invalidate the event's
// cached read model.
func NewBookingService(bookingRepo domain.BookingRepository, eventRepo domain.EventRepository, cache domain.EventCache, clk clock.Clock, timeout time.Duration) domain.BookingService {
	return &bookingService{
		bookingRepo:    bookingRepo,
		eventRepo:      eventRepo,
		cache:          cache,
		clk:            clk,
		contextTimeout: timeout,
	}
}

// Book reserves ticketsCount tickets on the event for the user. The past-event
// check here is advisory; the decisive check-and-decrement happens atomically
// in the repository, so a stale read can only cause an early rejection, never
// an over-sell.
func (s *bookingService) Book(ctx context.Context, eventID, userID string, ticketsCount int) (*domain.BookingConfirmation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ticketsCount < 1 {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.IsPast(s.clk.Now()) {
		return nil, domain.ErrPastEvent
	}

	booking := domain.NewBooking(eventID, userID, ticketsCount, s.clk.Now())
	remaining, err := s.bookingRepo.Book(ctx, booking)
	if err != nil {
		var insufficient *domain.InsufficientTicketsError
		switch {
		case errors.Is(err, domain.ErrAlreadyBooked):
			return nil, domain.ErrAlreadyBooked
		case errors.As(err, &insufficient):
			return nil, insufficient
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("book tickets: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}
	return &domain.BookingConfirmation{
		BookingID:        booking.ID,
		TicketsAvailable: remaining,
	}, nil
}

// Cancel removes the user's booking and credits its tickets back. Bookings
// for events that already happened stay on record and cannot be cancelled.
func (s *bookingService) Cancel(ctx context.Context, bookingID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get booking: %w", err)
	}
	if booking.UserID != userID {
		return domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, booking.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.IsPast(s.clk.Now()) {
		return domain.ErrPastEvent
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost a race with another cancel of the same booking.
			return domain.ErrNotFound
		}
		return fmt.Errorf("cancel booking: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, booking.EventID)
	}
	return nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	bookings, err := s.bookingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []*domain.BookingWithEvent{}
	}
	now := s.clk.Now()
	for _, b := range bookings {
		b.EventIsPast = b.EventDate != nil && b.EventDate.Before(now)
	}
	return bookings, nil
}
