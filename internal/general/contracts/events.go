package contracts

import (
	"encoding/json"
	"errors"

	"eoncab/internal/domain/geo"
	"eoncab/internal/domain/ride"
)

// Inbound event discriminators as sent by clients in the "event" field.
const (
	EventDriverIncomingInitiate = "driver_incoming_initiate"
	EventDriverOngoingInitiate  = "driver_ongoing_initiate"
	EventBroadcastLiveLocation  = "broadcast_driver_live_location"
	EventCustomerPickedUp       = "customer_picked_up"
	EventDriverChangeSpeed      = "driver_change_speed"
)

// ErrUnknownEvent marks an unrecognized discriminator. Callers ignore it
// (no error is surfaced to the sender).
var ErrUnknownEvent = errors.New("unknown event")

// inboundMessage is the raw wire envelope:
// {"event": "...", "request": {"location": {...}, "new_speed": ..., "new_sleep": ..., "otp": "..."}}
type inboundMessage struct {
	Event   string `json:"event"`
	Request struct {
		Location *geo.Coordinate `json:"location,omitempty"`
		NewSpeed *float64        `json:"new_speed,omitempty"`
		NewSleep *float64        `json:"new_sleep,omitempty"`
		OTP      string          `json:"otp,omitempty"`
	} `json:"request"`
}

// Inbound is the closed set of decoded client commands. Handlers switch on
// the concrete type; the marker method keeps the set closed to this package.
type Inbound interface {
	inboundEvent()
}

// StartLegEvent requests a simulation run for one leg of the ride. Location
// is the optional explicit start coordinate; nil means "mock a start near the
// pickup point" for the pickup leg. OTP accompanies the drop-leg start when a
// pickup confirmation code was issued.
type StartLegEvent struct {
	Leg      ride.Leg
	Location *geo.Coordinate
	OTP      string
}

// LiveLocationEvent carries a driver's self-reported location. In a ride
// group it is relayed to the group; in the idle pool it upserts the pool entry.
type LiveLocationEvent struct {
	Location geo.Coordinate
}

// ConfirmPickupEvent signals the customer confirmed pickup; a one-time code
// is issued and broadcast to the ride group.
type ConfirmPickupEvent struct{}

// ChangeSpeedEvent mutates the active run's pace. NewMultiplier scales the
// per-tick advance (wire field "new_speed"); NewSleepSeconds replaces the
// wall-clock tick interval ("new_sleep").
type ChangeSpeedEvent struct {
	NewMultiplier   float64
	NewSleepSeconds float64
}

func (StartLegEvent) inboundEvent()      {}
func (LiveLocationEvent) inboundEvent()  {}
func (ConfirmPickupEvent) inboundEvent() {}
func (ChangeSpeedEvent) inboundEvent()   {}

// DecodeInbound parses a raw client frame into a typed event.
// Malformed JSON and unknown discriminators both return ErrUnknownEvent so
// read loops can drop them without surfacing anything to the sender.
func DecodeInbound(raw []byte) (Inbound, error) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, ErrUnknownEvent
	}

	switch msg.Event {
	case EventDriverIncomingInitiate:
		return StartLegEvent{Leg: ride.LegPickup, Location: msg.Request.Location}, nil

	case EventDriverOngoingInitiate:
		return StartLegEvent{Leg: ride.LegDrop, Location: msg.Request.Location, OTP: msg.Request.OTP}, nil

	case EventBroadcastLiveLocation:
		if msg.Request.Location == nil {
			return nil, ErrUnknownEvent
		}
		return LiveLocationEvent{Location: *msg.Request.Location}, nil

	case EventCustomerPickedUp:
		return ConfirmPickupEvent{}, nil

	case EventDriverChangeSpeed:
		if msg.Request.NewSpeed == nil || msg.Request.NewSleep == nil {
			return nil, ErrUnknownEvent
		}
		return ChangeSpeedEvent{
			NewMultiplier:   *msg.Request.NewSpeed,
			NewSleepSeconds: *msg.Request.NewSleep,
		}, nil

	default:
		return nil, ErrUnknownEvent
	}
}
