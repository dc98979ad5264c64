package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/booking-backend/internal/pkg/request"
	"github.com/campusbook/booking-backend/internal/pkg/response"
	"github.com/campusbook/booking-backend/internal/resource"
)

type Handler struct {
	service resource.Service
}

func NewHandler(service resource.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := resource.Filter{
		Building:   req.Building,
		ActiveOnly: req.ActiveOnly,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}

	resources, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ResourceResponse, len(resources))
	for i, r := range resources {
		items[i] = NewResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	r, err := h.service.Create(c.Request.Context(), resource.CreateRequest{
		Name:               body.Name,
		Description:        body.Description,
		Building:           body.Building,
		Capacity:           body.Capacity,
		MinSlotsPerBooking: body.MinSlotsPerBooking,
		MaxSlotsPerBooking: body.MaxSlotsPerBooking,
		AdvanceBookingDays: body.AdvanceBookingDays,
		OperatingStartSlot: body.OperatingStartSlot,
		OperatingEndSlot:   body.OperatingEndSlot,
		RequiresApproval:   body.RequiresApproval,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	r, err := h.service.Update(c.Request.Context(), uri.ID, resource.UpdateRequest{
		Name:               body.Name,
		Description:        body.Description,
		Building:           body.Building,
		Capacity:           body.Capacity,
		MinSlotsPerBooking: body.MinSlotsPerBooking,
		MaxSlotsPerBooking: body.MaxSlotsPerBooking,
		AdvanceBookingDays: body.AdvanceBookingDays,
		OperatingStartSlot: body.OperatingStartSlot,
		OperatingEndSlot:   body.OperatingEndSlot,
		IsActive:           body.IsActive,
		RequiresApproval:   body.RequiresApproval,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResponse(r))
}
