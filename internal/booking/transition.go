package booking

// Action names a lifecycle operation an actor can perform on an existing booking.
type Action string

const (
	ActionOffer        Action = "offer"
	ActionClaim        Action = "claim"
	ActionAssignToSelf Action = "assign_to_self"
	ActionCancelOffer  Action = "cancel_offer"
	ActionConfirmRide  Action = "confirm"
	ActionStartTrip    Action = "start_trip"
	ActionEndTrip      Action = "end_trip"
	ActionCompleteRide Action = "complete"
	ActionCancel       Action = "cancel"
)

type rule struct {
	allowed func(b *Booking, actorID string) bool
	apply   func(b *Booking, actorID string)
}

// actionOrder fixes the order AllowedActions reports in.
var actionOrder = []Action{
	ActionOffer,
	ActionClaim,
	ActionAssignToSelf,
	ActionCancelOffer,
	ActionConfirmRide,
	ActionStartTrip,
	ActionEndTrip,
	ActionCompleteRide,
	ActionCancel,
}

var rules = map[Action]rule{
	ActionOffer: {
		allowed: func(b *Booking, actorID string) bool {
			return b.Status == StatusPersonal && b.OriginalDriverID == actorID
		},
		apply: setStatus(StatusOffered),
	},
	ActionClaim: {
		allowed: func(b *Booking, actorID string) bool {
			return b.Status == StatusOffered
		},
		apply: func(b *Booking, actorID string) {
			b.Status = StatusAssigned
			b.ClaimedByDriverID = actorID
		},
	},
	ActionAssignToSelf: {
		allowed: func(b *Booking, actorID string) bool {
			return b.Status == StatusPersonal && b.OriginalDriverID == actorID
		},
		apply: func(b *Booking, actorID string) {
			b.Status = StatusAssigned
			b.ClaimedByDriverID = actorID
		},
	},
	ActionCancelOffer: {
		allowed: func(b *Booking, actorID string) bool {
			return b.Status == StatusOffered && b.OriginalDriverID == actorID
		},
		apply: setStatus(StatusPersonal),
	},
	ActionConfirmRide:  {allowed: isActiveClaimant, apply: setStatus(StatusConfirmed)},
	ActionStartTrip:    {allowed: isActiveClaimant, apply: setStatus(StatusOnTrip)},
	ActionEndTrip:      {allowed: isActiveClaimant, apply: setStatus(StatusTripEnded)},
	ActionCompleteRide: {allowed: isActiveClaimant, apply: setStatus(StatusCompleted)},
	ActionCancel: {
		allowed: func(b *Booking, actorID string) bool {
			isCreator := b.OriginalDriverID == actorID
			switch {
			case b.Status == StatusPersonal && isCreator:
				return true
			case b.Status == StatusOffered && isCreator:
				return true
			case b.ClaimedByDriverID == actorID:
				return b.Status == StatusAssigned || b.Status == StatusConfirmed
			}
			return false
		},
		apply: setStatus(StatusCancelled),
	},
}

// Ride progress is driven by the claimant only, and never leaves a terminal state.
func isActiveClaimant(b *Booking, actorID string) bool {
	return b.ClaimedByDriverID == actorID && !b.Status.Terminal()
}

func setStatus(s Status) func(b *Booking, actorID string) {
	return func(b *Booking, _ string) {
		b.Status = s
	}
}

// Allowed reports whether actorID may perform action on b right now.
func Allowed(b Booking, action Action, actorID string) bool {
	if actorID == "" {
		return false
	}
	r, ok := rules[action]
	if !ok {
		return false
	}
	return r.allowed(&b, actorID)
}

// AllowedActions lists every action actorID may currently perform on b.
func AllowedActions(b Booking, actorID string) []Action {
	actions := make([]Action, 0, len(actionOrder))
	for _, a := range actionOrder {
		if Allowed(b, a, actorID) {
			actions = append(actions, a)
		}
	}
	return actions
}

// Apply returns b with action performed by actorID.
// The input is never modified; on a failed precondition the error is
// ErrTransitionNotAllowed and the returned booking equals b.
func Apply(b Booking, action Action, actorID string) (Booking, error) {
	if actorID == "" {
		return b, ErrUnauthenticated
	}
	r, ok := rules[action]
	if !ok {
		return b, ErrInvalidInput
	}
	if !r.allowed(&b, actorID) {
		return b, ErrTransitionNotAllowed
	}
	next := b
	r.apply(&next, actorID)
	return next, nil
}
