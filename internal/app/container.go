package app

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/campusbook/booking-backend/internal/api"
	"github.com/campusbook/booking-backend/internal/booking"
	"github.com/campusbook/booking-backend/internal/lockstore"
	"github.com/campusbook/booking-backend/internal/resource"
	"github.com/campusbook/booking-backend/internal/setting"
	"github.com/campusbook/booking-backend/internal/slotlock"
)

// Config holds the dependencies and settings required to start the
// application. Both store handles are constructed by the entry point and
// passed in; no module reaches for ambient state.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Redis        *redis.Client
	Logger       *zap.Logger
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router      *gin.Engine
	LockManager slotlock.Manager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Setting Module
	settingRepo := setting.NewPgxRepository(cfg.DBPool)
	settingService := setting.NewService(settingRepo, cfg.Logger)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo)

	// Booking repository doubles as the durable-side conflict checker for
	// the lock manager.
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)

	// Slot Lock Manager on the fast store
	store := lockstore.NewRedisStore(cfg.Redis)
	lockManager := slotlock.NewManager(store, bookingRepo, settingService, cfg.Logger)

	// Booking Commit Coordinator
	bookingService := booking.NewService(bookingRepo, resService, lockManager, cfg.Logger)

	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		ResService:     resService,
		BookingService: bookingService,
		LockManager:    lockManager,
	})

	return &Container{
		Router:      router,
		LockManager: lockManager,
	}
}
