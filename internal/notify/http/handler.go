package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/nekogravitycat/driverlink-backend/internal/auth"
	"github.com/nekogravitycat/driverlink-backend/internal/booking"
	"github.com/nekogravitycat/driverlink-backend/internal/notify"
	"github.com/nekogravitycat/driverlink-backend/internal/pkg/request"
	"go.uber.org/zap"
)

type Handler struct {
	hub        *notify.Hub
	watcher    *notify.Watcher
	jwtManager *auth.JWTManager
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewHandler creates the pool stream handler. checkOrigin may be nil to accept
// any origin.
func NewHandler(
	hub *notify.Hub,
	watcher *notify.Watcher,
	jwtManager *auth.JWTManager,
	checkOrigin func(r *http.Request) bool,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		hub:        hub,
		watcher:    watcher,
		jwtManager: jwtManager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.Named("ws"),
	}
}

// Pool streams the driver's available-to-claim list.
//
// Endpoint: GET /ws/pool?token=JWT
//
// Browsers cannot set headers on a WebSocket handshake, so the access token
// travels in the query string.
func (h *Handler) Pool(c *gin.Context) {
	var query request.TokenQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	claims, err := h.jwtManager.ParseAndValidate(query.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	actorID := claims.UserID()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", zap.String("actor_id", actorID), zap.Error(err))
		return
	}

	client := notify.NewClient(actorID, conn)
	h.hub.Register(client)
	go client.WritePump()

	// Callbacks are serialized by the watcher, so prev needs no lock.
	var prev []booking.Booking
	first := true
	cancel := h.watcher.Subscribe(actorID, func(available []booking.Booking) {
		var added []string
		if !first {
			added = notify.NewEntries(prev, available)
		}
		first = false
		prev = available
		h.hub.Send(client, NewPoolUpdateMessage(available, added, actorID))
	})

	defer func() {
		cancel()
		h.hub.Unregister(client)
	}()

	if err := client.ReadPump(); err != nil {
		h.logger.Info("websocket closed unexpectedly", zap.String("actor_id", actorID), zap.Error(err))
	}
}
