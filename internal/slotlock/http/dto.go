package http

import (
	"time"

	"github.com/campusbook/booking-backend/internal/slotlock"
)

// AcquireLockRequest asks to hold [StartSlot, EndSlot) on a resource/date.
type AcquireLockRequest struct {
	UserID     int64  `json:"user_id" binding:"required,min=1"`
	ResourceID int64  `json:"resource_id" binding:"required,min=1"`
	Date       string `json:"date" binding:"required"`
	StartSlot  int    `json:"start_slot" binding:"min=0"`
	EndSlot    int    `json:"end_slot" binding:"required,min=1"`
}

// ParseDate validates and parses the YYYY-MM-DD date field.
func (r *AcquireLockRequest) ParseDate() (time.Time, error) {
	return time.Parse(time.DateOnly, r.Date)
}

// ByTokenRequest binds lock endpoints addressed by token.
type ByTokenRequest struct {
	Token string `uri:"token" binding:"required"`
}

type LockResponse struct {
	LockToken        string `json:"lock_token"`
	UserID           int64  `json:"user_id"`
	ResourceID       int64  `json:"resource_id"`
	Date             string `json:"date"`
	StartSlot        int    `json:"start_slot"`
	EndSlot          int    `json:"end_slot"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

func NewLockResponse(l *slotlock.Lock, remaining time.Duration) LockResponse {
	return LockResponse{
		LockToken:        l.Token,
		UserID:           l.UserID,
		ResourceID:       l.ResourceID,
		Date:             l.BookingDate,
		StartSlot:        l.StartSlot,
		EndSlot:          l.EndSlot,
		ExpiresInSeconds: int(remaining.Seconds()),
	}
}
