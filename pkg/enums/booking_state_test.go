package enums

import "testing"

func TestBookingStateTransitionTableClosure(t *testing.T) {
	allowed := map[[2]BookingState]bool{
		{BookingStateDraft, BookingStatePending}:       true,
		{BookingStatePending, BookingStateConfirmed}:   true,
		{BookingStatePending, BookingStateCancelled}:   true,
		{BookingStateConfirmed, BookingStateCancelled}: true,
		{BookingStateConfirmed, BookingStateCompleted}: true,
	}

	for _, from := range ValidBookingStates() {
		for _, to := range ValidBookingStates() {
			want := allowed[[2]BookingState{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Fatalf("CanTransitionTo(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestBookingStateTerminalHasNoOutgoing(t *testing.T) {
	for _, from := range []BookingState{BookingStateCancelled, BookingStateCompleted} {
		if !from.IsTerminal() {
			t.Fatalf("expected %s to be terminal", from)
		}
		for _, to := range ValidBookingStates() {
			if from.CanTransitionTo(to) {
				t.Fatalf("terminal state %s allows transition to %s", from, to)
			}
		}
	}
	if BookingStateDraft.IsTerminal() || BookingStatePending.IsTerminal() || BookingStateConfirmed.IsTerminal() {
		t.Fatal("non-terminal state reported as terminal")
	}
}

func TestBookingStateSameStateNeverAllowed(t *testing.T) {
	for _, state := range ValidBookingStates() {
		if state.CanTransitionTo(state) {
			t.Fatalf("same-state transition allowed for %s", state)
		}
	}
}

func TestParseBookingState(t *testing.T) {
	state, err := ParseBookingState("pending")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state != BookingStatePending {
		t.Fatalf("expected pending, got %s", state)
	}

	if _, err := ParseBookingState("archived"); err == nil {
		t.Fatal("expected error for unknown state")
	}
	if BookingState("archived").IsValid() {
		t.Fatal("unknown state reported valid")
	}
}

func TestAllowedBookingTransitionsReturnsCopy(t *testing.T) {
	table := AllowedBookingTransitions()
	table[BookingStateCancelled] = append(table[BookingStateCancelled], BookingStateDraft)

	if BookingStateCancelled.CanTransitionTo(BookingStateDraft) {
		t.Fatal("mutating the returned table leaked into the transition table")
	}
}
