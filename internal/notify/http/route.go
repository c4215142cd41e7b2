package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/ws")

	// Authenticated through the token query parameter.
	{
		group.GET("/pool", h.Pool)
	}
}
