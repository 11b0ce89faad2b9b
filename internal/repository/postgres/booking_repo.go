package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventbooking/internal/domain"
)

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) domain.BookingRepository {
	return &bookingRepository{
		DB: db,
	}
}

// Book creates the booking and decrements the event's ticket pool in one
// transaction. The uniqueness constraint on (user_id, event_id) rejects
// duplicate bookings, and the conditional UPDATE both takes the event row
// lock and refuses to commit a decrement below zero, so two callers racing
// for the last tickets serialize on the event row and at most one wins.
func (r *bookingRepository) Book(ctx context.Context, b *domain.Booking) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := `
		INSERT INTO bookings (user_id, event_id, tickets_count, booked_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, insert, b.UserID, b.EventID, b.TicketsCount, b.BookedAt).Scan(&b.ID); err != nil {
		switch {
		case isUniqueViolation(err):
			return 0, domain.ErrAlreadyBooked
		case isForeignKeyViolation(err), isInvalidUUID(err):
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("insert booking: %w", err)
	}

	decrement := `
		UPDATE events
		SET tickets_available = tickets_available - $1, updated_at = NOW()
		WHERE id = $2 AND tickets_available >= $1
		RETURNING tickets_available
	`
	var remaining int
	err = tx.QueryRowContext(ctx, decrement, b.TicketsCount, b.EventID).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		// Not enough tickets. Read the count inside the same transaction so
		// the caller can report the real remainder.
		var available int
		if err := tx.QueryRowContext(ctx, `SELECT tickets_available FROM events WHERE id = $1`, b.EventID).Scan(&available); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, domain.ErrNotFound
			}
			return 0, fmt.Errorf("read tickets_available: %w", err)
		}
		return 0, &domain.InsufficientTicketsError{Available: available}
	}
	if err != nil {
		return 0, fmt.Errorf("decrement tickets: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit booking tx: %w", err)
	}
	return remaining, nil
}

// Cancel deletes the booking owned by userID and credits its tickets back to
// the event in one transaction. A booking that does not exist or belongs to
// another user yields ErrNotFound without touching inventory.
func (r *bookingRepository) Cancel(ctx context.Context, bookingID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cancel tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del := `
		DELETE FROM bookings
		WHERE id = $1 AND user_id = $2
		RETURNING event_id, tickets_count
	`
	var eventID string
	var ticketsCount int
	if err := tx.QueryRowContext(ctx, del, bookingID, userID).Scan(&eventID, &ticketsCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete booking: %w", err)
	}

	refund := `
		UPDATE events
		SET tickets_available = tickets_available + $1, updated_at = NOW()
		WHERE id = $2
	`
	result, err := tx.ExecContext(ctx, refund, ticketsCount, eventID)
	if err != nil {
		return fmt.Errorf("refund tickets: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("refund tickets: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel tx: %w", err)
	}
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `
		SELECT id, event_id, user_id, tickets_count, booked_at
		FROM bookings
		WHERE id = $1
	`
	b := &domain.Booking{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&b.ID, &b.EventID, &b.UserID, &b.TicketsCount, &b.BookedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.BookingWithEvent, error) {
	query := `
		SELECT b.id, b.event_id, b.user_id, b.tickets_count, b.booked_at,
		       e.title, e.date, e.location, e.thumbnail_url
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.booked_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.BookingWithEvent, 0)
	for rows.Next() {
		b := &domain.BookingWithEvent{}
		var dateNull sql.NullTime
		var thumbNull sql.NullString
		if err := rows.Scan(
			&b.ID, &b.EventID, &b.UserID, &b.TicketsCount, &b.BookedAt,
			&b.EventTitle, &dateNull, &b.EventLocation, &thumbNull,
		); err != nil {
			return nil, err
		}
		if dateNull.Valid {
			b.EventDate = &dateNull.Time
		}
		if thumbNull.Valid {
			b.EventImageURL = &thumbNull.String
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
