package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes; services return them unwrapped (or wrapped with %w).
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// ErrAlreadyResponded is returned when a token-path RSVP already exists for
// the invitation. The existing response is returned alongside so callers can
// echo it back unchanged.
var ErrAlreadyResponded = errors.New("already responded")

// CapacityError is returned when admitting an RSVP would exceed the event
// capacity. RemainingSpots is floored at zero.
type CapacityError struct {
	RemainingSpots int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("event capacity exceeded: %d spots remaining", e.RemainingSpots)
}

// IsCapacityError reports whether err is a CapacityError and returns it.
func IsCapacityError(err error) (*CapacityError, bool) {
	var ce *CapacityError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
