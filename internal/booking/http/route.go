package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.Views)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
	}

	// === Lifecycle Transitions ===
	{
		group.POST("/:id/offer", h.Offer)
		group.POST("/:id/claim", h.Claim)
		group.POST("/:id/assign-to-self", h.AssignToSelf)
		group.POST("/:id/cancel-offer", h.CancelOffer)
		group.POST("/:id/confirm", h.ConfirmRide)
		group.POST("/:id/start", h.StartTrip)
		group.POST("/:id/end", h.EndTrip)
		group.POST("/:id/complete", h.CompleteRide)
		group.POST("/:id/cancel", h.Cancel)
	}
}
