package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campusbook/booking-backend/internal/booking"
	bookingHttp "github.com/campusbook/booking-backend/internal/booking/http"
	"github.com/campusbook/booking-backend/internal/resource"
	resHttp "github.com/campusbook/booking-backend/internal/resource/http"
	"github.com/campusbook/booking-backend/internal/slotlock"
	lockHttp "github.com/campusbook/booking-backend/internal/slotlock/http"
)

// Config holds the services the router wires into handlers.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	ResService     resource.Service
	BookingService booking.Service
	LockManager    slotlock.Manager
}

// NewRouter initializes the HTTP router engine: middleware (CORS, logger,
// recovery) plus the route registrations for every module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	resHandler := resHttp.NewHandler(cfg.ResService)
	lockHandler := lockHttp.NewHandler(cfg.LockManager)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.LockManager)

	v1 := r.Group("/v1")
	{
		resHttp.RegisterRoutes(v1, resHandler)
		lockHttp.RegisterRoutes(v1, lockHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler)
	}

	return r
}
