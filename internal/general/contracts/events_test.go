package contracts

import (
	"errors"
	"testing"

	"eoncab/internal/domain/ride"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Inbound
	}{
		{
			"pickup leg with location",
			`{"event":"driver_incoming_initiate","request":{"location":{"lat":43.2,"lng":76.9}}}`,
			StartLegEvent{Leg: ride.LegPickup, Location: nil}, // compared loosely below
		},
		{
			"pickup leg without location",
			`{"event":"driver_incoming_initiate","request":{}}`,
			StartLegEvent{Leg: ride.LegPickup},
		},
		{
			"drop leg carries otp",
			`{"event":"driver_ongoing_initiate","request":{"otp":"1234"}}`,
			StartLegEvent{Leg: ride.LegDrop, OTP: "1234"},
		},
		{
			"pickup confirmation",
			`{"event":"customer_picked_up","request":{}}`,
			ConfirmPickupEvent{},
		},
		{
			"speed change",
			`{"event":"driver_change_speed","request":{"new_speed":6,"new_sleep":0.25}}`,
			ChangeSpeedEvent{NewMultiplier: 6, NewSleepSeconds: 0.25},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeInbound: %v", err)
			}

			switch want := tt.want.(type) {
			case StartLegEvent:
				ev, ok := got.(StartLegEvent)
				if !ok {
					t.Fatalf("decoded %T, want StartLegEvent", got)
				}
				if ev.Leg != want.Leg || ev.OTP != want.OTP {
					t.Errorf("leg=%s otp=%q, want leg=%s otp=%q", ev.Leg, ev.OTP, want.Leg, want.OTP)
				}
			case ChangeSpeedEvent:
				ev, ok := got.(ChangeSpeedEvent)
				if !ok {
					t.Fatalf("decoded %T, want ChangeSpeedEvent", got)
				}
				if ev != want {
					t.Errorf("got %+v, want %+v", ev, want)
				}
			case ConfirmPickupEvent:
				if _, ok := got.(ConfirmPickupEvent); !ok {
					t.Fatalf("decoded %T, want ConfirmPickupEvent", got)
				}
			}
		})
	}
}

func TestDecodeInboundLocation(t *testing.T) {
	got, err := DecodeInbound([]byte(`{"event":"broadcast_driver_live_location","request":{"location":{"lat":43.2,"lng":76.9}}}`))
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	ev, ok := got.(LiveLocationEvent)
	if !ok {
		t.Fatalf("decoded %T, want LiveLocationEvent", got)
	}
	if ev.Location.Lat != 43.2 || ev.Location.Lng != 76.9 {
		t.Errorf("location = %+v", ev.Location)
	}
}

func TestDecodeInboundRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown event", `{"event":"teleport","request":{}}`},
		{"empty discriminator", `{"request":{}}`},
		{"malformed json", `{"event":`},
		{"location event without location", `{"event":"broadcast_driver_live_location","request":{}}`},
		{"speed change without knobs", `{"event":"driver_change_speed","request":{"new_speed":6}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeInbound([]byte(tt.raw)); !errors.Is(err, ErrUnknownEvent) {
				t.Fatalf("err = %v, want ErrUnknownEvent", err)
			}
		})
	}
}
