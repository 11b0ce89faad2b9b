package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"eventbooking/internal/clock"
	"eventbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInventory backs both the event and booking repository fakes with a
// single mutex-guarded ticket pool, mimicking the transactional repository.
type fakeInventory struct {
	mu       sync.Mutex
	events   map[string]*domain.Event
	bookings map[string]*domain.Booking
	nextID   int
}

func newFakeInventory(events ...*domain.Event) *fakeInventory {
	inv := &fakeInventory{
		events:   map[string]*domain.Event{},
		bookings: map[string]*domain.Booking{},
	}
	for _, e := range events {
		inv.events[e.ID] = e
	}
	return inv
}

type fakeEventRepo struct {
	inv *fakeInventory
}

func (f *fakeEventRepo) Create(_ context.Context, e *domain.Event) error {
	f.inv.mu.Lock()
	defer f.inv.mu.Unlock()
	f.inv.events[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*domain.Event, error) {
	f.inv.mu.Lock()
	defer f.inv.mu.Unlock()
	e, ok := f.inv.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEventRepo) List(_ context.Context, _ domain.EventFilter, _ time.Time, _ domain.PaginationParams) ([]*domain.Event, int, error) {
	return nil, 0, nil
}

func (f *fakeEventRepo) Update(_ context.Context, _ string, _ domain.EventUpdate) (*domain.Event, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Delete(_ context.Context, _ string) error { return nil }

type fakeBookingRepo struct {
	inv *fakeInventory
}

func (f *fakeBookingRepo) Book(_ context.Context, b *domain.Booking) (int, error) {
	f.inv.mu.Lock()
	defer f.inv.mu.Unlock()

	e, ok := f.inv.events[b.EventID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	for _, existing := range f.inv.bookings {
		if existing.UserID == b.UserID && existing.EventID == b.EventID {
			return 0, domain.ErrAlreadyBooked
		}
	}
	if e.TicketsAvailable < b.TicketsCount {
		return 0, &domain.InsufficientTicketsError{Available: e.TicketsAvailable}
	}
	e.TicketsAvailable -= b.TicketsCount
	f.inv.nextID++
	b.ID = fmt.Sprintf("booking-%d", f.inv.nextID)
	stored := *b
	f.inv.bookings[b.ID] = &stored
	return e.TicketsAvailable, nil
}

func (f *fakeBookingRepo) Cancel(_ context.Context, bookingID, userID string) error {
	f.inv.mu.Lock()
	defer f.inv.mu.Unlock()

	b, ok := f.inv.bookings[bookingID]
	if !ok || b.UserID != userID {
		return domain.ErrNotFound
	}
	delete(f.inv.bookings, bookingID)
	f.inv.events[b.EventID].TicketsAvailable += b.TicketsCount
	return nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	f.inv.mu.Lock()
	defer f.inv.mu.Unlock()
	b, ok := f.inv.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ListByUserID(_ context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	f.inv.mu.Lock()
	defer f.inv.mu.Unlock()
	out := []*domain.BookingWithEvent{}
	for _, b := range f.inv.bookings {
		if b.UserID != userID {
			continue
		}
		e := f.inv.events[b.EventID]
		out = append(out, &domain.BookingWithEvent{
			Booking:       *b,
			EventTitle:    e.Title,
			EventDate:     e.Date,
			EventLocation: e.Location,
		})
	}
	return out, nil
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeCache) GetEvent(_ context.Context, _ string) (*domain.Event, error) { return nil, nil }

func (f *fakeCache) SetEvent(_ context.Context, _ *domain.Event, _ time.Duration) error { return nil }

func (f *fakeCache) InvalidateEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, id)
	return nil
}

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func futureEvent(id string, tickets int) *domain.Event {
	date := testNow.Add(48 * time.Hour)
	return &domain.Event{ID: id, Title: "Spring Gala", Date: &date, Location: "Vienna", TicketsAvailable: tickets}
}

func pastEvent(id string, tickets int) *domain.Event {
	date := testNow.Add(-48 * time.Hour)
	return &domain.Event{ID: id, Title: "Old Show", Date: &date, Location: "Berlin", TicketsAvailable: tickets}
}

func newBookingService(inv *fakeInventory, cache domain.EventCache) domain.BookingService {
	return NewBookingService(
		&fakeBookingRepo{inv: inv},
		&fakeEventRepo{inv: inv},
		cache,
		clock.NewFixed(testNow),
		5*time.Second,
	)
}

func TestBookingService_Book(t *testing.T) {
	ctx := context.Background()

	t.Run("success decrements and returns confirmation", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 10))
		cache := &fakeCache{}
		svc := newBookingService(inv, cache)

		conf, err := svc.Book(ctx, "event-1", "user-1", 3)
		require.NoError(t, err)
		require.NotEmpty(t, conf.BookingID)
		assert.Equal(t, 7, conf.TicketsAvailable)
		assert.Equal(t, 7, inv.events["event-1"].TicketsAvailable)
		assert.Equal(t, []string{"event-1"}, cache.invalidated)
	})

	t.Run("zero or negative tickets is invalid input", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 10))
		svc := newBookingService(inv, nil)

		for _, count := range []int{0, -1} {
			_, err := svc.Book(ctx, "event-1", "user-1", count)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		}
		assert.Equal(t, 10, inv.events["event-1"].TicketsAvailable, "inventory untouched")
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := newBookingService(newFakeInventory(), nil)
		_, err := svc.Book(ctx, "ghost", "user-1", 1)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("past event is rejected", func(t *testing.T) {
		inv := newFakeInventory(pastEvent("event-1", 10))
		svc := newBookingService(inv, nil)

		_, err := svc.Book(ctx, "event-1", "user-1", 1)
		require.ErrorIs(t, err, domain.ErrPastEvent)
		assert.Equal(t, 10, inv.events["event-1"].TicketsAvailable)
	})

	t.Run("unscheduled event is bookable", func(t *testing.T) {
		inv := newFakeInventory(&domain.Event{ID: "event-1", Title: "Meetup", TicketsAvailable: 5})
		svc := newBookingService(inv, nil)

		conf, err := svc.Book(ctx, "event-1", "user-1", 1)
		require.NoError(t, err)
		assert.Equal(t, 4, conf.TicketsAvailable)
	})

	t.Run("insufficient tickets reports remainder and reserves nothing", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 2))
		svc := newBookingService(inv, nil)

		_, err := svc.Book(ctx, "event-1", "user-1", 5)
		var insufficient *domain.InsufficientTicketsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 2, insufficient.Available)
		assert.Equal(t, 2, inv.events["event-1"].TicketsAvailable)
		assert.Empty(t, inv.bookings)
	})

	t.Run("second booking by same user is rejected", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 10))
		svc := newBookingService(inv, nil)

		_, err := svc.Book(ctx, "event-1", "user-1", 2)
		require.NoError(t, err)
		_, err = svc.Book(ctx, "event-1", "user-1", 1)
		require.ErrorIs(t, err, domain.ErrAlreadyBooked)
		assert.Equal(t, 8, inv.events["event-1"].TicketsAvailable, "only the first booking holds tickets")
	})

	t.Run("concurrent bookings for the last ticket produce one winner", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 1))
		svc := newBookingService(inv, nil)

		const callers = 20
		var wg sync.WaitGroup
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Book(ctx, "event-1", fmt.Sprintf("user-%d", i), 1)
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
			} else {
				var insufficient *domain.InsufficientTicketsError
				require.ErrorAs(t, err, &insufficient)
				assert.Equal(t, 0, insufficient.Available)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 0, inv.events["event-1"].TicketsAvailable)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip restores inventory", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 10))
		cache := &fakeCache{}
		svc := newBookingService(inv, cache)

		conf, err := svc.Book(ctx, "event-1", "user-1", 4)
		require.NoError(t, err)
		require.Equal(t, 6, inv.events["event-1"].TicketsAvailable)

		require.NoError(t, svc.Cancel(ctx, conf.BookingID, "user-1"))
		assert.Equal(t, 10, inv.events["event-1"].TicketsAvailable)
		assert.Empty(t, inv.bookings)
		assert.Equal(t, []string{"event-1", "event-1"}, cache.invalidated)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc := newBookingService(newFakeInventory(futureEvent("event-1", 10)), nil)
		require.ErrorIs(t, svc.Cancel(ctx, "ghost", "user-1"), domain.ErrNotFound)
	})

	t.Run("cancelling someone else's booking is forbidden", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 10))
		svc := newBookingService(inv, nil)

		conf, err := svc.Book(ctx, "event-1", "user-1", 2)
		require.NoError(t, err)

		require.ErrorIs(t, svc.Cancel(ctx, conf.BookingID, "user-2"), domain.ErrForbidden)
		assert.Equal(t, 8, inv.events["event-1"].TicketsAvailable, "booking stays in place")
	})

	t.Run("booking for a past event cannot be cancelled", func(t *testing.T) {
		inv := newFakeInventory(futureEvent("event-1", 10))
		svc := newBookingService(inv, nil)

		conf, err := svc.Book(ctx, "event-1", "user-1", 2)
		require.NoError(t, err)

		// The event date slips into the past after booking.
		gone := testNow.Add(-time.Hour)
		inv.events["event-1"].Date = &gone

		require.ErrorIs(t, svc.Cancel(ctx, conf.BookingID, "user-1"), domain.ErrPastEvent)
	})
}

func TestBookingService_ListMyBookings(t *testing.T) {
	ctx := context.Background()

	inv := newFakeInventory(futureEvent("event-1", 10), pastEvent("event-2", 0))
	svc := newBookingService(inv, nil)

	_, err := svc.Book(ctx, "event-1", "user-1", 2)
	require.NoError(t, err)
	// A booking made before the event went past stays listed.
	inv.bookings["stale"] = &domain.Booking{
		ID: "stale", EventID: "event-2", UserID: "user-1", TicketsCount: 1, BookedAt: testNow.Add(-72 * time.Hour),
	}

	bookings, err := svc.ListMyBookings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	byEvent := map[string]*domain.BookingWithEvent{}
	for _, b := range bookings {
		byEvent[b.EventID] = b
	}
	assert.False(t, byEvent["event-1"].EventIsPast)
	assert.True(t, byEvent["event-2"].EventIsPast)

	t.Run("no bookings yields empty slice", func(t *testing.T) {
		got, err := svc.ListMyBookings(ctx, "user-noone")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	})
}
