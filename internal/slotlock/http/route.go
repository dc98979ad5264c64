package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers soft-lock routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/locks")
	{
		group.POST("", h.Acquire)          // Hold a slot range
		group.GET("/:token", h.Get)        // Inspect a hold / time remaining
		group.DELETE("/:token", h.Release) // Release a hold
	}
}
