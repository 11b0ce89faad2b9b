package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventbooking/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `id, title, description, date, location, tickets_available, thumbnail_url, image_url, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var dateNull sql.NullTime
	var thumbNull, imageNull sql.NullString
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &dateNull, &e.Location, &e.TicketsAvailable,
		&thumbNull, &imageNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dateNull.Valid {
		e.Date = &dateNull.Time
	}
	if thumbNull.Valid {
		e.ThumbnailURL = &thumbNull.String
	}
	if imageNull.Valid {
		e.ImageURL = &imageNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, location, tickets_available, thumbnail_url, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.TicketsAvailable,
		e.ThumbnailURL, e.ImageURL, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// List returns one page of events matching the filter plus the total match
// count. Events without a date count as upcoming, so they are included
// unless the filter asks for past events only.
func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, now time.Time, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := []string{}
	args := []any{}
	n := 1

	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", n))
		args = append(args, q)
		n++
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		where = append(where, fmt.Sprintf("location ILIKE '%%' || $%d || '%%'", n))
		args = append(args, loc)
		n++
	}
	switch {
	case filter.Status == domain.FilterStatusUpcoming:
		where = append(where, fmt.Sprintf("(date IS NULL OR date >= $%d)", n))
		args = append(args, now)
		n++
	case filter.Status == domain.FilterStatusPast:
		where = append(where, fmt.Sprintf("date < $%d", n))
		args = append(args, now)
		n++
	case !filter.ShowPast:
		// Default listing hides past events.
		where = append(where, fmt.Sprintf("(date IS NULL OR date >= $%d)", n))
		args = append(args, now)
		n++
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT `+eventColumns+` FROM events%s ORDER BY date ASC NULLS LAST, created_at DESC LIMIT $%d OFFSET $%d`,
		clause, n, n+1,
	)
	args = append(args, params.Limit(), params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(col string, val any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, val)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.TicketsAvailable != nil {
		add("tickets_available", *upd.TicketsAvailable)
	}
	if upd.ThumbnailURL != nil {
		add("thumbnail_url", *upd.ThumbnailURL)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if n == 1 {
		// No fields to update; just fetch the current row.
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns+`
	`, strings.Join(setClauses, ", "), n)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return nil, domain.ErrInvalidInput
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
