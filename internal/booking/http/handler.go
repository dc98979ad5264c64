package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/booking-backend/internal/booking"
	"github.com/campusbook/booking-backend/internal/pkg/request"
	"github.com/campusbook/booking-backend/internal/pkg/response"
	"github.com/campusbook/booking-backend/internal/slotlock"
)

type Handler struct {
	service booking.Service
	locks   slotlock.Manager
}

func NewHandler(service booking.Service, locks slotlock.Manager) *Handler {
	return &Handler{service: service, locks: locks}
}

// Create commits a booking under a previously acquired lock token.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := req.ParseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	res := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		Date:       date,
		StartSlot:  req.StartSlot,
		EndSlot:    req.EndSlot,
		Purpose:    req.Purpose,
		Notes:      req.Notes,
		LockToken:  req.LockToken,
	})
	if !res.Succeeded {
		response.Error(c, res.Error)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(res.Booking))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := booking.Filter{
		UserID:     req.UserID,
		ResourceID: req.ResourceID,
		Status:     req.Status,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	if req.DateFrom != "" {
		t, err := time.Parse(time.DateOnly, req.DateFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
			return
		}
		filter.DateFrom = &t
	}
	if req.DateTo != "" {
		t, err := time.Parse(time.DateOnly, req.DateTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
			return
		}
		filter.DateTo = &t
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

// Decide approves or rejects a pending booking.
func (h *Handler) Decide(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body DecideBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.Decide(c.Request.Context(), booking.DecideRequest{
		BookingID: uri.ID,
		DeciderID: body.DeciderID,
		Approve:   *body.Approve,
		Reason:    body.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Availability returns booked ranges and currently held slots for a
// resource/date. The held slots are advisory; only the booked ranges are
// authoritative.
func (h *Handler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	av, err := h.service.Availability(c.Request.Context(), req.ResourceID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		ResourceID:   av.ResourceID,
		Date:         av.Date.Format(time.DateOnly),
		BookedRanges: av.BookedRanges,
		LockedSlots:  av.LockedSlots,
	})
}

// Check reports whether any slot in the range is booked or held.
func (h *Handler) Check(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	if req.StartSlot >= req.EndSlot {
		c.JSON(http.StatusBadRequest, gin.H{"error": booking.ErrInvalidRange.Message})
		return
	}

	unavailable := h.locks.SlotsUnavailable(c.Request.Context(), req.ResourceID, date, req.StartSlot, req.EndSlot)
	c.JSON(http.StatusOK, CheckAvailabilityResponse{Unavailable: unavailable})
}
