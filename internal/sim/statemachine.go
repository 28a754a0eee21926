package sim

import (
	"context"
	"errors"
	"fmt"

	"eoncab/internal/domain/ride"
	"eoncab/internal/general/logger"
	"eoncab/internal/ports"
)

// ErrBadTransition marks a state change the ride lifecycle does not allow.
var ErrBadTransition = errors.New("illegal ride state transition")

// StateMachine guards ride lifecycle transitions and persists them.
type StateMachine struct {
	store ports.RideStore
	log   *logger.Logger
}

func NewStateMachine(store ports.RideStore, log *logger.Logger) *StateMachine {
	return &StateMachine{store: store, log: log}
}

// Current returns the ride's persisted state. A ride the store does not know
// yet reads as DRIVER_INCOMING.
func (m *StateMachine) Current(ctx context.Context, rideID string) ride.State {
	st, err := m.store.GetState(ctx, rideID)
	if err != nil {
		if m.log != nil {
			m.log.Debug(ctx, "statemachine.current", "no persisted state, defaulting", map[string]any{
				"ride_id": rideID,
				"reason":  err.Error(),
			})
		}
		return ride.StateDriverIncoming
	}
	return st
}

// Transition moves the ride to next, validating against the current state.
// Moving to the state already held is a no-op.
func (m *StateMachine) Transition(ctx context.Context, rideID string, next ride.State) error {
	cur := m.Current(ctx, rideID)
	if cur == next {
		return nil
	}
	if !cur.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, cur, next)
	}

	if err := m.store.SetState(ctx, rideID, next); err != nil {
		return fmt.Errorf("persist state %s: %w", next, err)
	}

	if m.log != nil {
		m.log.Info(ctx, "statemachine.transition", "ride state changed", map[string]any{
			"ride_id": rideID,
			"from":    cur.String(),
			"to":      next.String(),
		})
	}
	return nil
}
