package http

import (
	"time"

	"github.com/nekogravitycat/driverlink-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/driverlink-backend/internal/booking/http"
)

const MessageTypePoolUpdated = "pool_updated"

// PoolUpdateMessage is pushed to a driver whenever their available-to-claim
// list changes.
type PoolUpdateMessage struct {
	Type          string                        `json:"type"`
	Bookings      []bookingHttp.BookingResponse `json:"bookings"`
	NewBookingIDs []string                      `json:"new_booking_ids"`
	SentAt        time.Time                     `json:"sent_at"`
}

func NewPoolUpdateMessage(available []booking.Booking, newIDs []string, actorID string) PoolUpdateMessage {
	items := make([]bookingHttp.BookingResponse, len(available))
	for i := range available {
		items[i] = bookingHttp.NewBookingResponse(&available[i], actorID)
	}
	if newIDs == nil {
		newIDs = []string{}
	}
	return PoolUpdateMessage{
		Type:          MessageTypePoolUpdated,
		Bookings:      items,
		NewBookingIDs: newIDs,
		SentAt:        time.Now().UTC(),
	}
}
