package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/driverlink-backend/internal/auth"
	"github.com/nekogravitycat/driverlink-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/driverlink-backend/internal/booking/http"
	"github.com/nekogravitycat/driverlink-backend/internal/notify"
	notifyHttp "github.com/nekogravitycat/driverlink-backend/internal/notify/http"
	"github.com/nekogravitycat/driverlink-backend/internal/user"
	userHttp "github.com/nekogravitycat/driverlink-backend/internal/user/http"
)

// Config holds everything the router needs.
type Config struct {
	IsProduction       bool
	ProdOrigins        string
	RateLimitPerMinute int
	Logger             *zap.Logger

	UserService    user.Service
	BookingService booking.Service
	JWTManager     *auth.JWTManager
	Hub            *notify.Hub
	Watcher        *notify.Watcher
}

// NewRouter initializes the HTTP router engine.
// It assembles middleware (request logging, recovery, CORS, rate limiting) and registers routes for every module.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: one structured log line per request.
	// - Recovery: captures panics and returns a 500 error.
	r.Use(RequestLogger(logger.Named("http")), gin.Recovery())

	origins := allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	if cfg.RateLimitPerMinute > 0 {
		r.Use(RateLimit(cfg.RateLimitPerMinute, logger.Named("ratelimit")))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"busy":           cfg.BookingService.Busy(),
			"online_drivers": cfg.Hub.OnlineCount(),
		})
	})

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	notifyHandler := notifyHttp.NewHandler(cfg.Hub, cfg.Watcher, cfg.JWTManager, originChecker(cfg.IsProduction, origins), logger)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		notifyHttp.RegisterRoutes(v1, notifyHandler)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:8081",
		}
	}

	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		// cors.New panics without at least one origin.
		origins = []string{"https://localhost"}
	}
	return origins
}

// originChecker accepts any WebSocket origin in development and only the
// configured origins in production.
func originChecker(isProduction bool, origins []string) func(r *http.Request) bool {
	if !isProduction {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
