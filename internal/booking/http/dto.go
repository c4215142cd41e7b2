package http

import (
	"time"

	"github.com/nekogravitycat/driverlink-backend/internal/booking"
	"github.com/nekogravitycat/driverlink-backend/internal/pkg/response"
)

type BookingResponse struct {
	ID                 string    `json:"id"`
	ClientName         string    `json:"client_name"`
	PickupLocation     string    `json:"pickup_location"`
	DropoffLocation    string    `json:"dropoff_location,omitempty"`
	DateTime           time.Time `json:"date_time"`
	Notes              string    `json:"notes,omitempty"`
	TripType           string    `json:"trip_type"`
	WhenNeeded         string    `json:"when_needed,omitempty"`
	PackageHours       string    `json:"package_hours,omitempty"`
	OutstationTripType string    `json:"outstation_trip_type,omitempty"`
	EstimatedUsage     string    `json:"estimated_usage,omitempty"`
	CarTransmission    string    `json:"car_transmission,omitempty"`
	CarModelType       string    `json:"car_model_type,omitempty"`
	Status             string    `json:"status"`
	OriginalDriverID   string    `json:"original_driver_id"`
	ClaimedByDriverID  string    `json:"claimed_by_driver_id,omitempty"`
	AllowedActions     []string  `json:"allowed_actions"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewBookingResponse renders b as seen by actorID, including the actions that
// actor may perform next.
func NewBookingResponse(b *booking.Booking, actorID string) BookingResponse {
	actions := booking.AllowedActions(*b, actorID)
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}

	return BookingResponse{
		ID:                 b.ID,
		ClientName:         b.ClientName,
		PickupLocation:     b.PickupLocation,
		DropoffLocation:    b.DropoffLocation,
		DateTime:           b.DateTime,
		Notes:              b.Notes,
		TripType:           string(b.TripType),
		WhenNeeded:         string(b.WhenNeeded),
		PackageHours:       b.PackageHours,
		OutstationTripType: string(b.OutstationTripType),
		EstimatedUsage:     b.EstimatedUsage,
		CarTransmission:    string(b.CarTransmission),
		CarModelType:       string(b.CarModelType),
		Status:             string(b.Status),
		OriginalDriverID:   b.OriginalDriverID,
		ClaimedByDriverID:  b.ClaimedByDriverID,
		AllowedActions:     names,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
}

func newBookingList(list []booking.Booking, actorID string) response.ListResponse[BookingResponse] {
	items := make([]BookingResponse, len(list))
	for i := range list {
		items[i] = NewBookingResponse(&list[i], actorID)
	}
	return response.NewListResponse(items)
}

// ViewsResponse is the dashboard payload: every derived list for the current driver.
type ViewsResponse struct {
	Personal         response.ListResponse[BookingResponse] `json:"personal"`
	MyOffered        response.ListResponse[BookingResponse] `json:"my_offered"`
	AvailableToClaim response.ListResponse[BookingResponse] `json:"available_to_claim"`
	MyActiveRides    response.ListResponse[BookingResponse] `json:"my_active_rides"`
	MyHistory        response.ListResponse[BookingResponse] `json:"my_history"`
	Busy             bool                                   `json:"busy"`
}

func NewViewsResponse(v booking.Views, actorID string, busy bool) ViewsResponse {
	return ViewsResponse{
		Personal:         newBookingList(v.Personal, actorID),
		MyOffered:        newBookingList(v.MyOffered, actorID),
		AvailableToClaim: newBookingList(v.AvailableToClaim, actorID),
		MyActiveRides:    newBookingList(v.MyActiveRides, actorID),
		MyHistory:        newBookingList(v.MyHistory, actorID),
		Busy:             busy,
	}
}

type CreateBookingRequest struct {
	ClientName         string     `json:"client_name" binding:"required"`
	PickupLocation     string     `json:"pickup_location" binding:"required"`
	DropoffLocation    string     `json:"dropoff_location"`
	DateTime           *time.Time `json:"date_time"`
	Notes              string     `json:"notes"`
	TripType           string     `json:"trip_type" binding:"required,oneof=one_way round_trip outstation"`
	WhenNeeded         string     `json:"when_needed" binding:"omitempty,oneof=now later"`
	PackageHours       string     `json:"package_hours" binding:"omitempty,oneof=4hrs 6hrs 8hrs 10hrs 12hrs"`
	OutstationTripType string     `json:"outstation_trip_type" binding:"omitempty,oneof=one_way round_trip"`
	EstimatedUsage     string     `json:"estimated_usage"`
	CarTransmission    string     `json:"car_transmission" binding:"omitempty,oneof=manual auto any"`
	CarModelType       string     `json:"car_model_type" binding:"omitempty,oneof=hatchback sedan suv any"`
}

// Validate performs custom validation for CreateBookingRequest.
func (r *CreateBookingRequest) Validate() error {
	// A booking needed "later" must say when.
	if r.WhenNeeded == string(booking.WhenLater) && r.DateTime == nil {
		return booking.ErrInvalidInput
	}
	return nil
}

func (r *CreateBookingRequest) toServiceRequest() booking.CreateRequest {
	req := booking.CreateRequest{
		ClientName:         r.ClientName,
		PickupLocation:     r.PickupLocation,
		DropoffLocation:    r.DropoffLocation,
		Notes:              r.Notes,
		TripType:           booking.TripType(r.TripType),
		WhenNeeded:         booking.WhenNeeded(r.WhenNeeded),
		PackageHours:       r.PackageHours,
		OutstationTripType: booking.OutstationTripType(r.OutstationTripType),
		EstimatedUsage:     r.EstimatedUsage,
		CarTransmission:    booking.CarTransmission(r.CarTransmission),
		CarModelType:       booking.CarModelType(r.CarModelType),
	}
	if r.DateTime != nil {
		req.DateTime = r.DateTime.UTC()
	}
	return req
}

// UpdateBookingRequest defines the booking details editable via PATCH /bookings/:id.
// Use pointers to distinguish between "field not sent" and "field sent as empty".
type UpdateBookingRequest struct {
	ClientName         *string    `json:"client_name" binding:"omitempty,min=1"`
	PickupLocation     *string    `json:"pickup_location" binding:"omitempty,min=1"`
	DropoffLocation    *string    `json:"dropoff_location"`
	DateTime           *time.Time `json:"date_time"`
	Notes              *string    `json:"notes"`
	TripType           *string    `json:"trip_type" binding:"omitempty,oneof=one_way round_trip outstation"`
	WhenNeeded         *string    `json:"when_needed" binding:"omitempty,oneof=now later"`
	PackageHours       *string    `json:"package_hours" binding:"omitempty,oneof=4hrs 6hrs 8hrs 10hrs 12hrs"`
	OutstationTripType *string    `json:"outstation_trip_type" binding:"omitempty,oneof=one_way round_trip"`
	EstimatedUsage     *string    `json:"estimated_usage"`
	CarTransmission    *string    `json:"car_transmission" binding:"omitempty,oneof=manual auto any"`
	CarModelType       *string    `json:"car_model_type" binding:"omitempty,oneof=hatchback sedan suv any"`
}

// Validate performs custom validation for UpdateBookingRequest.
func (r *UpdateBookingRequest) Validate() error {
	return nil
}

func (r *UpdateBookingRequest) toServiceRequest() booking.UpdateRequest {
	req := booking.UpdateRequest{
		ClientName:      r.ClientName,
		PickupLocation:  r.PickupLocation,
		DropoffLocation: r.DropoffLocation,
		Notes:           r.Notes,
		PackageHours:    r.PackageHours,
		EstimatedUsage:  r.EstimatedUsage,
	}
	if r.DateTime != nil {
		t := r.DateTime.UTC()
		req.DateTime = &t
	}
	if r.TripType != nil {
		v := booking.TripType(*r.TripType)
		req.TripType = &v
	}
	if r.WhenNeeded != nil {
		v := booking.WhenNeeded(*r.WhenNeeded)
		req.WhenNeeded = &v
	}
	if r.OutstationTripType != nil {
		v := booking.OutstationTripType(*r.OutstationTripType)
		req.OutstationTripType = &v
	}
	if r.CarTransmission != nil {
		v := booking.CarTransmission(*r.CarTransmission)
		req.CarTransmission = &v
	}
	if r.CarModelType != nil {
		v := booking.CarModelType(*r.CarModelType)
		req.CarModelType = &v
	}
	return req
}
