package enums

import "fmt"

// BookingState tracks the lifecycle of a booking.
type BookingState string

const (
	BookingStateDraft     BookingState = "draft"
	BookingStatePending   BookingState = "pending"
	BookingStateConfirmed BookingState = "confirmed"
	BookingStateCancelled BookingState = "cancelled"
	BookingStateCompleted BookingState = "completed"
)

var validBookingStates = []BookingState{
	BookingStateDraft,
	BookingStatePending,
	BookingStateConfirmed,
	BookingStateCancelled,
	BookingStateCompleted,
}

// allowedBookingTransitions maps each state to the states it may move into.
// Cancelled and completed are terminal and have no outgoing edges.
var allowedBookingTransitions = map[BookingState][]BookingState{
	BookingStateDraft:     {BookingStatePending},
	BookingStatePending:   {BookingStateConfirmed, BookingStateCancelled},
	BookingStateConfirmed: {BookingStateCancelled, BookingStateCompleted},
	BookingStateCancelled: {},
	BookingStateCompleted: {},
}

var bookingStateLabels = map[BookingState]string{
	BookingStateDraft:     "Draft",
	BookingStatePending:   "Pending",
	BookingStateConfirmed: "Confirmed",
	BookingStateCancelled: "Cancelled",
	BookingStateCompleted: "Completed",
}

// ValidBookingStates returns every recognized booking state.
func ValidBookingStates() []BookingState {
	states := make([]BookingState, len(validBookingStates))
	copy(states, validBookingStates)
	return states
}

// AllowedBookingTransitions returns a copy of the transition table.
func AllowedBookingTransitions() map[BookingState][]BookingState {
	table := make(map[BookingState][]BookingState, len(allowedBookingTransitions))
	for from, targets := range allowedBookingTransitions {
		copied := make([]BookingState, len(targets))
		copy(copied, targets)
		table[from] = copied
	}
	return table
}

// String implements fmt.Stringer.
func (s BookingState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingState.
func (s BookingState) IsValid() bool {
	for _, candidate := range validBookingStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state has no outgoing transitions.
func (s BookingState) IsTerminal() bool {
	return s == BookingStateCancelled || s == BookingStateCompleted
}

// CanTransitionTo reports whether the transition table allows moving to the
// target state. Same-state moves are never allowed.
func (s BookingState) CanTransitionTo(target BookingState) bool {
	targets, ok := allowedBookingTransitions[s]
	if !ok {
		return false
	}
	for _, candidate := range targets {
		if candidate == target {
			return true
		}
	}
	return false
}

// Label returns the display label for the state.
func (s BookingState) Label() string {
	if label, ok := bookingStateLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseBookingState converts raw input into a BookingState.
func ParseBookingState(value string) (BookingState, error) {
	for _, candidate := range validBookingStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking state %q", value)
}
