package ride

import (
	"errors"
	"strings"
)

// Leg is one directed travel segment of a ride: the driver approaching the
// customer (pickup) or the trip to the destination (drop).
type Leg string

const (
	LegPickup Leg = "PICKUP"
	LegDrop   Leg = "DROP"
)

var ErrInvalidLeg = errors.New("invalid ride leg")

// ParseLeg normalizes and validates a leg string.
func ParseLeg(in string) (Leg, error) {
	leg := Leg(strings.ToUpper(strings.TrimSpace(in)))
	if leg.Valid() {
		return leg, nil
	}
	return "", ErrInvalidLeg
}

// Valid reports whether leg is one of the allowed leg constants.
func (leg Leg) Valid() bool {
	return leg == LegPickup || leg == LegDrop
}

// String returns the string representation of the Leg.
func (leg Leg) String() string {
	return string(leg)
}

// InTransitState is the state tagged on progress events while this leg runs.
func (leg Leg) InTransitState() State {
	if leg == LegPickup {
		return StateDriverIncoming
	}
	return StateOngoing
}

// TerminalState is the state persisted when this leg's path end is reached.
func (leg Leg) TerminalState() State {
	if leg == LegPickup {
		return StatePickupReady
	}
	return StateFinished
}
