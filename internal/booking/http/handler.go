package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/driverlink-backend/internal/auth"
	"github.com/nekogravitycat/driverlink-backend/internal/booking"
	"github.com/nekogravitycat/driverlink-backend/internal/pkg/request"
	"github.com/nekogravitycat/driverlink-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// Views returns every dashboard list derived for the current driver.
func (h *Handler) Views(c *gin.Context) {
	actorID := auth.GetUserID(c)

	views, err := h.service.Views(c.Request.Context(), actorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewViewsResponse(views, actorID, h.service.Busy()))
}

func (h *Handler) Get(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	actorID := auth.GetUserID(c)

	b, err := h.service.GetByID(c.Request.Context(), actorID, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b, actorID))
}

// Create stores a new personal booking for the current driver. The response is
// sent once the delayed commit has applied.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	actorID := auth.GetUserID(c)
	ctx := c.Request.Context()

	pending, err := h.service.Create(ctx, actorID, body.toServiceRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := pending.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away; the booking is still created.
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b, actorID))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	actorID := auth.GetUserID(c)
	ctx := c.Request.Context()

	pending, err := h.service.Update(ctx, actorID, uri.ID, body.toServiceRequest())
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := pending.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b, actorID))
}

func (h *Handler) Offer(c *gin.Context)        { h.transition(c, h.service.Offer) }
func (h *Handler) Claim(c *gin.Context)        { h.transition(c, h.service.Claim) }
func (h *Handler) AssignToSelf(c *gin.Context) { h.transition(c, h.service.AssignToSelf) }
func (h *Handler) CancelOffer(c *gin.Context)  { h.transition(c, h.service.CancelOffer) }
func (h *Handler) ConfirmRide(c *gin.Context)  { h.transition(c, h.service.ConfirmRide) }
func (h *Handler) StartTrip(c *gin.Context)    { h.transition(c, h.service.StartTrip) }
func (h *Handler) EndTrip(c *gin.Context)      { h.transition(c, h.service.EndTrip) }
func (h *Handler) CompleteRide(c *gin.Context) { h.transition(c, h.service.CompleteRide) }
func (h *Handler) Cancel(c *gin.Context)       { h.transition(c, h.service.Cancel) }

type transitionFunc func(ctx context.Context, actorID, id string) (*booking.Booking, error)

func (h *Handler) transition(c *gin.Context, op transitionFunc) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	actorID := auth.GetUserID(c)

	b, err := op(c.Request.Context(), actorID, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b, actorID))
}
