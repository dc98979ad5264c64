package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/campusbook/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "booking not found")
	ErrInvalidRange = apperror.New(http.StatusBadRequest, "start slot must be before end slot")

	// ErrSessionExpired covers every stale-token case: expired, unknown,
	// or held by a different user.
	ErrSessionExpired = apperror.New(http.StatusGone, "your booking session has expired, please select the time slots again")

	// ErrSlotConflict is the commit-time overlap rejection, after the
	// pessimistic lock serialized us behind a competing committer.
	ErrSlotConflict = apperror.New(http.StatusConflict, "the requested time slots are no longer available")

	// ErrSystemBusy maps deadlock/transient transaction failures. Safe to
	// retry: the transaction rolled back with no partial effect.
	ErrSystemBusy = apperror.New(http.StatusServiceUnavailable, "system busy, please retry")

	ErrResourceInactive = apperror.New(http.StatusUnprocessableEntity, "resource is not available for booking")
	ErrOutsideOperating = apperror.New(http.StatusUnprocessableEntity, "requested slots are outside the resource's operating hours")
	ErrTooFewSlots      = apperror.New(http.StatusUnprocessableEntity, "booking is shorter than the minimum allowed")
	ErrTooManySlots     = apperror.New(http.StatusUnprocessableEntity, "booking is longer than the maximum allowed")
	ErrDatePast         = apperror.New(http.StatusUnprocessableEntity, "booking date is in the past")
	ErrTooFarAhead      = apperror.New(http.StatusUnprocessableEntity, "booking date is beyond the advance booking window")

	ErrAlreadyDecided = apperror.New(http.StatusConflict, "booking has already been decided")
)

// Internal sentinels the repository maps Postgres failures onto.
var (
	errDeadlock = errors.New("booking: transaction deadlocked")
	errConflict = errors.New("booking: conflicting row rejected by constraint")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// activeStatuses are the statuses that still occupy their slot range.
var activeStatuses = []string{string(StatusPending), string(StatusConfirmed)}

// Booking is the durable record of a reservation. Rows are never deleted;
// status moves pending -> confirmed or pending -> rejected and is terminal
// after that.
type Booking struct {
	ID              int64
	UserID          int64
	ResourceID      int64
	BookingDate     time.Time // date only
	StartSlot       int       // half-open range [StartSlot, EndSlot)
	EndSlot         int
	Status          Status
	Purpose         string
	Notes           string
	RejectionReason string
	RespondedAt     *time.Time
	ApprovedByID    *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SlotRange is a half-open booked range, for availability display.
type SlotRange struct {
	StartSlot int `json:"start_slot"`
	EndSlot   int `json:"end_slot"`
}

// Result is the outcome of a commit attempt. Expected failures (conflict,
// expired session, busy) arrive here as values, not as raised errors.
type Result struct {
	Succeeded bool
	Booking   *Booking
	Error     *apperror.AppError
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID     int64
	ResourceID int64
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}
