package http

import (
	"time"

	"github.com/campusbook/booking-backend/internal/booking"
	"github.com/campusbook/booking-backend/internal/pkg/request"
)

type CreateBookingRequest struct {
	UserID     int64  `json:"user_id" binding:"required,min=1"`
	ResourceID int64  `json:"resource_id" binding:"required,min=1"`
	Date       string `json:"date" binding:"required"`
	StartSlot  int    `json:"start_slot" binding:"min=0"`
	EndSlot    int    `json:"end_slot" binding:"required,min=1"`
	Purpose    string `json:"purpose" binding:"required"`
	Notes      string `json:"notes"`
	LockToken  string `json:"lock_token" binding:"required"`
}

func (r *CreateBookingRequest) ParseDate() (time.Time, error) {
	return time.Parse(time.DateOnly, r.Date)
}

type DecideBookingRequest struct {
	DeciderID int64  `json:"decider_id" binding:"required,min=1"`
	Approve   *bool  `json:"approve" binding:"required"`
	Reason    string `json:"reason"`
}

type ListBookingsRequest struct {
	request.ListParams
	UserID     int64  `form:"user_id" binding:"omitempty,min=1"`
	ResourceID int64  `form:"resource_id" binding:"omitempty,min=1"`
	Status     string `form:"status" binding:"omitempty,oneof=pending confirmed rejected"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
}

type AvailabilityRequest struct {
	ResourceID int64  `form:"resource_id" binding:"required,min=1"`
	Date       string `form:"date" binding:"required"`
}

type CheckAvailabilityRequest struct {
	ResourceID int64  `form:"resource_id" binding:"required,min=1"`
	Date       string `form:"date" binding:"required"`
	StartSlot  int    `form:"start_slot" binding:"min=0"`
	EndSlot    int    `form:"end_slot" binding:"required,min=1"`
}

type BookingResponse struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	ResourceID      int64      `json:"resource_id"`
	Date            string     `json:"date"`
	StartSlot       int        `json:"start_slot"`
	EndSlot         int        `json:"end_slot"`
	Status          string     `json:"status"`
	Purpose         string     `json:"purpose"`
	Notes           string     `json:"notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	ApprovedByID    *int64     `json:"approved_by_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		UserID:          b.UserID,
		ResourceID:      b.ResourceID,
		Date:            b.BookingDate.Format(time.DateOnly),
		StartSlot:       b.StartSlot,
		EndSlot:         b.EndSlot,
		Status:          string(b.Status),
		Purpose:         b.Purpose,
		Notes:           b.Notes,
		RejectionReason: b.RejectionReason,
		RespondedAt:     b.RespondedAt,
		ApprovedByID:    b.ApprovedByID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

type AvailabilityResponse struct {
	ResourceID   int64               `json:"resource_id"`
	Date         string              `json:"date"`
	BookedRanges []booking.SlotRange `json:"booked_ranges"`
	LockedSlots  []int               `json:"locked_slots"`
}

type CheckAvailabilityResponse struct {
	Unavailable bool `json:"unavailable"`
}
