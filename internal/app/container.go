package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/driverlink-backend/internal/api"
	"github.com/nekogravitycat/driverlink-backend/internal/auth"
	"github.com/nekogravitycat/driverlink-backend/internal/booking"
	"github.com/nekogravitycat/driverlink-backend/internal/notify"
	"github.com/nekogravitycat/driverlink-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction       bool
	ProdOrigins        string
	JWTSecret          string
	JWTTTL             time.Duration
	BcryptCost         int
	CommitDelay        time.Duration
	RateLimitPerMinute int
	Logger             *zap.Logger
	// RedisClient is optional; pool changes are published only when set.
	RedisClient *redis.Client
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
	Watcher        *notify.Watcher
	Hub            *notify.Hub
	// Publisher is nil unless a Redis client was configured. Its Run loop must
	// be started by the caller.
	Publisher *notify.RedisPublisher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewMemoryRepository()
	userService := user.NewService(userRepo, passwordHasher)

	// Notification Module
	watcher := notify.NewWatcher()
	hub := notify.NewHub(logger)
	listeners := []booking.Listener{watcher}

	var publisher *notify.RedisPublisher
	if cfg.RedisClient != nil {
		publisher = notify.NewRedisPublisher(cfg.RedisClient, logger)
		listeners = append(listeners, publisher)
	}

	// Booking Module
	bookingRepo := booking.NewMemoryRepository()
	bookingService := booking.NewService(bookingRepo, booking.Options{
		CommitDelay: cfg.CommitDelay,
		Logger:      logger,
		Listeners:   listeners,
	})

	// API Router Config
	routerParams := api.Config{
		IsProduction:       cfg.IsProduction,
		ProdOrigins:        cfg.ProdOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		UserService:        userService,
		BookingService:     bookingService,
		JWTManager:         jwtManager,
		Hub:                hub,
		Watcher:            watcher,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
		Watcher:        watcher,
		Hub:            hub,
		Publisher:      publisher,
	}
}
