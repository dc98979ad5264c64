package http

import (
	"time"

	"github.com/campusbook/booking-backend/internal/pkg/request"
	"github.com/campusbook/booking-backend/internal/resource"
)

type CreateRequest struct {
	Name               string `json:"name" binding:"required"`
	Description        string `json:"description"`
	Building           string `json:"building"`
	Capacity           int    `json:"capacity" binding:"omitempty,min=0"`
	MinSlotsPerBooking int    `json:"min_slots_per_booking" binding:"omitempty,min=1"`
	MaxSlotsPerBooking int    `json:"max_slots_per_booking" binding:"omitempty,min=0"`
	AdvanceBookingDays int    `json:"advance_booking_days" binding:"omitempty,min=1"`
	OperatingStartSlot int    `json:"operating_start_slot" binding:"min=0"`
	OperatingEndSlot   int    `json:"operating_end_slot" binding:"required,min=1"`
	RequiresApproval   bool   `json:"requires_approval"`
}

type UpdateRequest struct {
	Name               *string `json:"name"`
	Description        *string `json:"description"`
	Building           *string `json:"building"`
	Capacity           *int    `json:"capacity"`
	MinSlotsPerBooking *int    `json:"min_slots_per_booking"`
	MaxSlotsPerBooking *int    `json:"max_slots_per_booking"`
	AdvanceBookingDays *int    `json:"advance_booking_days"`
	OperatingStartSlot *int    `json:"operating_start_slot"`
	OperatingEndSlot   *int    `json:"operating_end_slot"`
	IsActive           *bool   `json:"is_active"`
	RequiresApproval   *bool   `json:"requires_approval"`
}

type ListRequest struct {
	request.ListParams
	Building   string `form:"building"`
	ActiveOnly bool   `form:"active_only"`
}

type ResourceResponse struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Building           string    `json:"building,omitempty"`
	Capacity           int       `json:"capacity"`
	MinSlotsPerBooking int       `json:"min_slots_per_booking"`
	MaxSlotsPerBooking int       `json:"max_slots_per_booking"`
	AdvanceBookingDays int       `json:"advance_booking_days"`
	OperatingStartSlot int       `json:"operating_start_slot"`
	OperatingEndSlot   int       `json:"operating_end_slot"`
	IsActive           bool      `json:"is_active"`
	RequiresApproval   bool      `json:"requires_approval"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func NewResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		Building:           r.Building,
		Capacity:           r.Capacity,
		MinSlotsPerBooking: r.MinSlotsPerBooking,
		MaxSlotsPerBooking: r.MaxSlotsPerBooking,
		AdvanceBookingDays: r.AdvanceBookingDays,
		OperatingStartSlot: r.OperatingStartSlot,
		OperatingEndSlot:   r.OperatingEndSlot,
		IsActive:           r.IsActive,
		RequiresApproval:   r.RequiresApproval,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}
