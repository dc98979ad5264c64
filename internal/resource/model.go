package resource

import (
	"net/http"
	"time"

	"github.com/campusbook/booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName    = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidSlots = apperror.New(http.StatusBadRequest, "operating start slot must be before operating end slot")
)

// Resource is a bookable unit (a room or a piece of equipment). Slots are
// discrete time units; the operating window and per-booking limits bound
// what a single booking may span.
type Resource struct {
	ID                 int64
	Name               string
	Description        string
	Building           string
	Capacity           int
	MinSlotsPerBooking int
	MaxSlotsPerBooking int // zero means unlimited
	AdvanceBookingDays int
	OperatingStartSlot int
	OperatingEndSlot   int
	IsActive           bool
	RequiresApproval   bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Filter defines parameters for listing resources.
type Filter struct {
	Building   string
	ActiveOnly bool
	Page       int
	PageSize   int
}
