package ride

import (
	"errors"
	"strings"
)

// State is a ride lifecycle state as stored in the `rides` table.
type State string

const (
	StateDriverIncoming State = "DRIVER_INCOMING"
	StatePickupReady    State = "PICKUP_READY"
	StateOngoing        State = "ONGOING"
	StateFinished       State = "FINISHED"
	StateCancelled      State = "CANCELLED"
)

var ErrInvalidState = errors.New("invalid ride state")

// ParseState normalizes (uppercases+trims) and validates a state string.
func ParseState(in string) (State, error) {
	state := State(strings.ToUpper(strings.TrimSpace(in)))
	if state.Valid() {
		return state, nil
	}
	return "", ErrInvalidState
}

// Valid reports whether state is one of the allowed ride state constants.
func (state State) Valid() bool {
	switch state {
	case StateDriverIncoming, StatePickupReady, StateOngoing, StateFinished, StateCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the State.
func (state State) String() string {
	return string(state)
}

// Terminal indicates the ride is over and its record may be reused/archived.
func (state State) Terminal() bool {
	return state == StateFinished || state == StateCancelled
}

// CanTransitionTo specifies if the state can move to the next state.
// Per-leg transitions are monotonic; CANCELLED is reachable from any
// non-terminal state.
func (state State) CanTransitionTo(next State) bool {
	if next == StateCancelled {
		return !state.Terminal()
	}
	switch state {
	case StateDriverIncoming:
		return next == StatePickupReady
	case StatePickupReady:
		return next == StateOngoing
	case StateOngoing:
		return next == StateFinished
	default:
		return false
	}
}
