package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventbooking/internal/clock"
	"eventbooking/internal/domain"
)

// eventCacheTTL bounds how stale a cached event read model may get.
const eventCacheTTL = 30 * time.Second

type eventService struct {
	eventRepo      domain.EventRepository
	cache          domain.EventCache
	clk            clock.Clock
	contextTimeout time.Duration
}

// NewEventService creates an EventService. cache may be nil, in which case
// every read goes to the repository.
func NewEventService(eventRepo domain.EventRepository, cache domain.EventCache, clk clock.Clock, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		cache:          cache,
		clk:            clk,
		contextTimeout: timeout,
	}
}

func (s *eventService) Now() time.Time {
	return s.clk.Now()
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(event.Title) == "" {
		return domain.ErrInvalidInput
	}
	if event.TicketsAvailable < 0 {
		return domain.ErrInvalidInput
	}

	now := s.clk.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if s.cache != nil {
		if cached, err := s.cache.GetEvent(ctx, eventID); err == nil && cached != nil {
			return cached, nil
		}
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if s.cache != nil {
		// Best effort; a failed cache write never fails the read.
		_ = s.cache.SetEvent(ctx, event, eventCacheTTL)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, filter, s.clk.Now(), params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if upd.TicketsAvailable != nil && *upd.TicketsAvailable < 0 {
		return nil, domain.ErrInvalidInput
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.InvalidateEvent(ctx, eventID)
	}
	return nil
}
