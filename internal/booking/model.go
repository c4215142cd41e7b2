package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/driverlink-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "booking not found")
	ErrUnauthenticated      = apperror.New(http.StatusUnauthorized, "authentication required")
	ErrTransitionNotAllowed = apperror.New(http.StatusConflict, "operation not allowed in current booking state")
	ErrInvalidInput         = apperror.New(http.StatusBadRequest, "invalid input parameters")
	ErrClientNameRequired   = apperror.New(http.StatusBadRequest, "client name is required")
	ErrPickupRequired       = apperror.New(http.StatusBadRequest, "pickup location is required")
	ErrInvalidTripType      = apperror.New(http.StatusBadRequest, "invalid trip type")
)

type Status string

const (
	StatusPersonal     Status = "personal"
	StatusOffered      Status = "offered"
	StatusAssigned     Status = "assigned"
	StatusConfirmed    Status = "confirmed"
	StatusOnTrip       Status = "on_trip"
	StatusTripEnded    Status = "trip_ended"
	StatusCompleted    Status = "completed"
	StatusTakenByOther Status = "taken_by_other" // no operation produces it yet
	StatusCancelled    Status = "cancelled"
)

// Valid reports whether s is one of the nine booking statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPersonal, StatusOffered, StatusAssigned, StatusConfirmed, StatusOnTrip,
		StatusTripEnded, StatusCompleted, StatusTakenByOther, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle progress is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type TripType string

const (
	TripOneWay     TripType = "one_way"
	TripRoundTrip  TripType = "round_trip"
	TripOutstation TripType = "outstation"
)

func (t TripType) Valid() bool {
	return t == TripOneWay || t == TripRoundTrip || t == TripOutstation
}

type WhenNeeded string

const (
	WhenNow   WhenNeeded = "now"
	WhenLater WhenNeeded = "later"
)

type OutstationTripType string

const (
	OutstationOneWay    OutstationTripType = "one_way"
	OutstationRoundTrip OutstationTripType = "round_trip"
)

type CarTransmission string

const (
	TransmissionManual CarTransmission = "manual"
	TransmissionAuto   CarTransmission = "auto"
	TransmissionAny    CarTransmission = "any"
)

type CarModelType string

const (
	ModelHatchback CarModelType = "hatchback"
	ModelSedan     CarModelType = "sedan"
	ModelSUV       CarModelType = "suv"
	ModelAny       CarModelType = "any"
)

// PackageHoursOptions lists the round-trip packages offered by the booking form.
var PackageHoursOptions = []string{"4hrs", "6hrs", "8hrs", "10hrs", "12hrs"}

// Booking is a trip booking created by one driver and possibly executed by another.
// Optional string fields use "" for "not specified".
type Booking struct {
	ID                 string
	ClientName         string
	PickupLocation     string
	DropoffLocation    string
	DateTime           time.Time
	Notes              string
	TripType           TripType
	WhenNeeded         WhenNeeded
	PackageHours       string
	OutstationTripType OutstationTripType
	EstimatedUsage     string
	CarTransmission    CarTransmission
	CarModelType       CarModelType
	Status             Status
	OriginalDriverID   string
	ClaimedByDriverID  string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Snapshot is a point-in-time copy of the whole collection.
// Version increases by one with every committed mutation.
type Snapshot struct {
	Version  uint64
	Bookings []Booking
}
