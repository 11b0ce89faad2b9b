package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and repositories. Controllers map
// these to HTTP status codes; repositories translate driver errors into them
// so that no storage detail leaks upward.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPastEvent          = errors.New("event is in the past")
	ErrAlreadyBooked      = errors.New("already booked this event")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// InsufficientTicketsError is returned when a booking asks for more tickets
// than the event has left. Available carries the count observed inside the
// same transaction, so callers can report the real remainder.
type InsufficientTicketsError struct {
	Available int
}

func (e *InsufficientTicketsError) Error() string {
	return fmt.Sprintf("only %d tickets available", e.Available)
}
