package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/booking-backend/internal/slotlock"
)

type Handler struct {
	manager slotlock.Manager
}

func NewHandler(manager slotlock.Manager) *Handler {
	return &Handler{manager: manager}
}

// Acquire tries to hold a slot range while the user fills out the booking
// form. Conflicts and store failures both come back as 409; the caller
// only needs to know the hold did not happen.
func (h *Handler) Acquire(c *gin.Context) {
	var req AcquireLockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, err := req.ParseDate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	token, err := h.manager.Acquire(c.Request.Context(), req.UserID, req.ResourceID, date, req.StartSlot, req.EndSlot)
	if err != nil {
		if errors.Is(err, slotlock.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	lock, ok := h.manager.Get(c.Request.Context(), token)
	if !ok {
		// Expired between acquire and readback; treat as not acquired.
		c.JSON(http.StatusConflict, gin.H{"error": slotlock.ErrUnavailable.Error()})
		return
	}

	c.JSON(http.StatusCreated, NewLockResponse(lock, h.manager.TimeRemaining(c.Request.Context(), token)))
}

func (h *Handler) Get(c *gin.Context) {
	var req ByTokenRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	lock, ok := h.manager.Get(c.Request.Context(), req.Token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "lock not found or expired"})
		return
	}

	c.JSON(http.StatusOK, NewLockResponse(lock, h.manager.TimeRemaining(c.Request.Context(), req.Token)))
}

func (h *Handler) Release(c *gin.Context) {
	var req ByTokenRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if !h.manager.Release(c.Request.Context(), req.Token) {
		c.JSON(http.StatusNotFound, gin.H{"error": "lock not found or expired"})
		return
	}

	c.Status(http.StatusNoContent)
}
