package booking

import (
	"slices"
	"strings"
)

func (r CreateRequest) validate() error {
	if strings.TrimSpace(r.ClientName) == "" {
		return ErrClientNameRequired
	}
	if strings.TrimSpace(r.PickupLocation) == "" {
		return ErrPickupRequired
	}
	if !r.TripType.Valid() {
		return ErrInvalidTripType
	}
	return validateOptions(r.WhenNeeded, r.PackageHours, r.OutstationTripType, r.CarTransmission, r.CarModelType)
}

func (r UpdateRequest) validate() error {
	if r.ClientName != nil && strings.TrimSpace(*r.ClientName) == "" {
		return ErrClientNameRequired
	}
	if r.PickupLocation != nil && strings.TrimSpace(*r.PickupLocation) == "" {
		return ErrPickupRequired
	}
	if r.TripType != nil && !r.TripType.Valid() {
		return ErrInvalidTripType
	}
	return validateOptions(
		deref(r.WhenNeeded),
		deref(r.PackageHours),
		deref(r.OutstationTripType),
		deref(r.CarTransmission),
		deref(r.CarModelType),
	)
}

// validateOptions accepts "" for every option as "not specified".
func validateOptions(
	when WhenNeeded,
	packageHours string,
	outstation OutstationTripType,
	transmission CarTransmission,
	model CarModelType,
) error {
	switch when {
	case "", WhenNow, WhenLater:
	default:
		return ErrInvalidInput
	}
	if packageHours != "" && !slices.Contains(PackageHoursOptions, packageHours) {
		return ErrInvalidInput
	}
	switch outstation {
	case "", OutstationOneWay, OutstationRoundTrip:
	default:
		return ErrInvalidInput
	}
	switch transmission {
	case "", TransmissionManual, TransmissionAuto, TransmissionAny:
	default:
		return ErrInvalidInput
	}
	switch model {
	case "", ModelHatchback, ModelSedan, ModelSUV, ModelAny:
	default:
		return ErrInvalidInput
	}
	return nil
}

func (r UpdateRequest) merge(b *Booking) {
	if r.ClientName != nil {
		b.ClientName = strings.TrimSpace(*r.ClientName)
	}
	if r.PickupLocation != nil {
		b.PickupLocation = strings.TrimSpace(*r.PickupLocation)
	}
	if r.DropoffLocation != nil {
		b.DropoffLocation = strings.TrimSpace(*r.DropoffLocation)
	}
	if r.DateTime != nil {
		b.DateTime = *r.DateTime
	}
	if r.Notes != nil {
		b.Notes = *r.Notes
	}
	if r.TripType != nil {
		b.TripType = *r.TripType
	}
	if r.WhenNeeded != nil {
		b.WhenNeeded = *r.WhenNeeded
	}
	if r.PackageHours != nil {
		b.PackageHours = *r.PackageHours
	}
	if r.OutstationTripType != nil {
		b.OutstationTripType = *r.OutstationTripType
	}
	if r.EstimatedUsage != nil {
		b.EstimatedUsage = *r.EstimatedUsage
	}
	if r.CarTransmission != nil {
		b.CarTransmission = *r.CarTransmission
	}
	if r.CarModelType != nil {
		b.CarModelType = *r.CarModelType
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
