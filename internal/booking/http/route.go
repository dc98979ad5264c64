package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking and availability routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	bookings := g.Group("/bookings")
	{
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.POST("", h.Create)
		bookings.POST("/:id/decision", h.Decide)
	}

	availability := g.Group("/availability")
	{
		availability.GET("", h.Availability)
		availability.GET("/check", h.Check)
	}
}
