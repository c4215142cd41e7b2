package booking

// Views holds the role and status filtered lists derived for one actor.
type Views struct {
	Personal         []Booking
	MyOffered        []Booking
	AvailableToClaim []Booking
	MyActiveRides    []Booking
	MyHistory        []Booking
}

// Project derives all views from bookings for actorID. It is a pure function:
// bookings is not modified and every list keeps the collection order.
func Project(bookings []Booking, actorID string) Views {
	return Views{
		Personal:         Personal(bookings, actorID),
		MyOffered:        MyOffered(bookings, actorID),
		AvailableToClaim: AvailableToClaim(bookings, actorID),
		MyActiveRides:    MyActiveRides(bookings, actorID),
		MyHistory:        MyHistory(bookings, actorID),
	}
}

func Personal(bookings []Booking, actorID string) []Booking {
	return filter(bookings, func(b *Booking) bool {
		return actorID != "" && b.Status == StatusPersonal && b.OriginalDriverID == actorID
	})
}

func MyOffered(bookings []Booking, actorID string) []Booking {
	return filter(bookings, func(b *Booking) bool {
		return actorID != "" && b.OriginalDriverID == actorID &&
			(b.Status == StatusOffered || b.Status == StatusTakenByOther)
	})
}

// AvailableToClaim is the pool as seen by actorID: offered bookings created by
// someone else. An empty actorID sees the whole pool.
func AvailableToClaim(bookings []Booking, actorID string) []Booking {
	return filter(bookings, func(b *Booking) bool {
		return b.Status == StatusOffered && (actorID == "" || b.OriginalDriverID != actorID)
	})
}

func MyActiveRides(bookings []Booking, actorID string) []Booking {
	return filter(bookings, func(b *Booking) bool {
		if actorID == "" || b.ClaimedByDriverID != actorID {
			return false
		}
		switch b.Status {
		case StatusAssigned, StatusConfirmed, StatusOnTrip, StatusTripEnded:
			return true
		}
		return false
	})
}

func MyHistory(bookings []Booking, actorID string) []Booking {
	return filter(bookings, func(b *Booking) bool {
		if actorID == "" || (b.OriginalDriverID != actorID && b.ClaimedByDriverID != actorID) {
			return false
		}
		return b.Status.Terminal()
	})
}

func filter(bookings []Booking, keep func(b *Booking) bool) []Booking {
	out := make([]Booking, 0)
	for i := range bookings {
		if keep(&bookings[i]) {
			out = append(out, bookings[i])
		}
	}
	return out
}
