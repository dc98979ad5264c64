package slotlock

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRange is returned when start_slot >= end_slot.
	ErrInvalidRange = errors.New("start slot must be before end slot")

	// ErrUnavailable is the uniform negative result for an acquire that
	// could not be satisfied: the range is booked, held by another lock,
	// or the lock store failed mid-operation. Callers cannot distinguish
	// the cases; the distinction is only in the logs.
	ErrUnavailable = errors.New("requested slots are not available")
)

// Lock is the ephemeral hold a user keeps on a slot range while filling
// out the booking form. It lives in the fast store and is bounded by TTL.
type Lock struct {
	Token       string `json:"-"`
	UserID      int64  `json:"user_id"`
	ResourceID  int64  `json:"resource_id"`
	BookingDate string `json:"booking_date"` // YYYY-MM-DD
	StartSlot   int    `json:"start_slot"`   // half-open range [StartSlot, EndSlot)
	EndSlot     int    `json:"end_slot"`
	CreatedAt   int64  `json:"created_at"` // unix seconds
}

// Date parses the lock's booking date. The zero time is returned for a
// malformed record.
func (l *Lock) Date() time.Time {
	t, _ := time.Parse(time.DateOnly, l.BookingDate)
	return t
}
