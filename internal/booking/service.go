package booking

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/campusbook/booking-backend/internal/pkg/apperror"
	"github.com/campusbook/booking-backend/internal/resource"
)

// LockManager is the slice of the soft-lock manager the commit path needs.
type LockManager interface {
	Validate(ctx context.Context, token string, userID int64) bool
	Release(ctx context.Context, token string) bool
	LockedSlots(ctx context.Context, resourceID int64, date time.Time) []int
}

type CreateRequest struct {
	UserID     int64
	ResourceID int64
	Date       time.Time
	StartSlot  int
	EndSlot    int
	Purpose    string
	Notes      string
	LockToken  string
}

type DecideRequest struct {
	BookingID int64
	DeciderID int64
	Approve   bool
	Reason    string
}

// Availability is the read-side view of a resource/date: committed ranges
// from the durable store plus advisory holds from the lock store.
type Availability struct {
	ResourceID   int64
	Date         time.Time
	BookedRanges []SlotRange
	LockedSlots  []int
}

type Service interface {
	// Create commits a booking under a previously acquired soft lock. All
	// expected failures come back inside the Result; an error return means
	// the request never made sense (unknown resource).
	Create(ctx context.Context, req CreateRequest) Result

	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)

	// Decide moves a pending booking to confirmed or rejected.
	Decide(ctx context.Context, req DecideRequest) (*Booking, error)

	Availability(ctx context.Context, resourceID int64, date time.Time) (*Availability, error)
}

type service struct {
	repo      Repository
	resources resource.Service
	locks     LockManager
	logger    *zap.Logger
}

func NewService(repo Repository, resources resource.Service, locks LockManager, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		resources: resources,
		locks:     locks,
		logger:    logger,
	}
}

// failure wraps an error into a Result, preserving AppError status codes.
func failure(err error) Result {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return Result{Error: appErr}
	}
	return Result{Error: apperror.Wrap(err, http.StatusInternalServerError, "internal server error")}
}

func (s *service) Create(ctx context.Context, req CreateRequest) Result {
	// The token is the capability to commit; without a live, owned lock
	// the durable store is never touched.
	if req.LockToken == "" || !s.locks.Validate(ctx, req.LockToken, req.UserID) {
		return Result{Error: ErrSessionExpired}
	}

	res, err := s.resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		return failure(err)
	}
	if err := validateRequest(res, req, time.Now()); err != nil {
		return failure(err)
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		s.logger.Error("failed to begin booking transaction", zap.Error(err))
		return Result{Error: ErrSystemBusy}
	}
	defer tx.Rollback(ctx)

	// Pessimistic lock on every active row for this resource/date. This is
	// the authoritative defense: the soft lock cannot prevent two tokens
	// wrongly issued for overlapping ranges, or a hold that expired while
	// this commit was in flight.
	if err := tx.LockActive(ctx, req.ResourceID, req.Date); err != nil {
		return s.txFailure("lock active bookings", err)
	}

	overlap, err := tx.HasActiveOverlap(ctx, req.ResourceID, req.Date, req.StartSlot, req.EndSlot)
	if err != nil {
		return s.txFailure("re-check overlap", err)
	}
	if overlap {
		// The soft lock stays with the user and simply expires.
		return Result{Error: ErrSlotConflict}
	}

	b := &Booking{
		UserID:      req.UserID,
		ResourceID:  req.ResourceID,
		BookingDate: req.Date,
		StartSlot:   req.StartSlot,
		EndSlot:     req.EndSlot,
		Status:      StatusPending,
		Purpose:     req.Purpose,
		Notes:       req.Notes,
	}
	if err := tx.Insert(ctx, b); err != nil {
		if errors.Is(err, errConflict) {
			// A competing committer slipped a row in; the exclusion
			// constraint rejected ours.
			return Result{Error: ErrSlotConflict}
		}
		return s.txFailure("insert booking", err)
	}

	// Release the hold before commit, mirroring the lock's lifecycle being
	// superseded by the durable row. Release failure is tolerable: the
	// lock expires on its own and the committed row blocks the range.
	s.locks.Release(ctx, req.LockToken)

	if err := tx.Commit(ctx); err != nil {
		return s.txFailure("commit booking", err)
	}

	return Result{Succeeded: true, Booking: b}
}

func (s *service) txFailure(stage string, err error) Result {
	if errors.Is(err, errDeadlock) {
		return Result{Error: ErrSystemBusy}
	}
	s.logger.Error("booking transaction failed", zap.String("stage", stage), zap.Error(err))
	return Result{Error: ErrSystemBusy}
}

// validateRequest enforces the resource's booking limits against the
// requested range.
func validateRequest(res *resource.Resource, req CreateRequest, now time.Time) error {
	if req.StartSlot >= req.EndSlot {
		return ErrInvalidRange
	}
	if !res.IsActive {
		return ErrResourceInactive
	}
	if req.StartSlot < res.OperatingStartSlot || req.EndSlot > res.OperatingEndSlot {
		return ErrOutsideOperating
	}

	span := req.EndSlot - req.StartSlot
	if span < res.MinSlotsPerBooking {
		return ErrTooFewSlots
	}
	if res.MaxSlotsPerBooking > 0 && span > res.MaxSlotsPerBooking {
		return ErrTooManySlots
	}

	today := now.Truncate(24 * time.Hour)
	date := req.Date.Truncate(24 * time.Hour)
	if date.Before(today) {
		return ErrDatePast
	}
	if res.AdvanceBookingDays > 0 && date.After(today.AddDate(0, 0, res.AdvanceBookingDays)) {
		return ErrTooFarAhead
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Decide(ctx context.Context, req DecideRequest) (*Booking, error) {
	status := StatusConfirmed
	reason := ""
	if !req.Approve {
		status = StatusRejected
		reason = req.Reason
	}
	return s.repo.UpdateDecision(ctx, req.BookingID, status, req.DeciderID, reason)
}

func (s *service) Availability(ctx context.Context, resourceID int64, date time.Time) (*Availability, error) {
	if _, err := s.resources.GetByID(ctx, resourceID); err != nil {
		return nil, err
	}

	booked, err := s.repo.BookedRanges(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	locked := s.locks.LockedSlots(ctx, resourceID, date)

	return &Availability{
		ResourceID:   resourceID,
		Date:         date,
		BookedRanges: booked,
		LockedSlots:  locked,
	}, nil
}
