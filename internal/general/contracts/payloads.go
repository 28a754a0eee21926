package contracts

import (
	"eoncab/internal/domain/geo"
	"eoncab/internal/domain/ride"
)

// ConnectionAck is the first payload on a successful trip-group or idle-pool
// join, and also announces joins/leaves to the rest of the group.
type ConnectionAck struct {
	Type       string           `json:"type"` // "connection_ack"
	Message    string           `json:"message"`
	Connection bool             `json:"connection"`
	Route      []geo.Coordinate `json:"route,omitempty"` // ride-group joins get a route preview
	State      string           `json:"state,omitempty"` // current ride state, ride groups only
	Envelope
}

// AuthError is the single payload an unauthenticated joiner receives before
// being disconnected.
type AuthError struct {
	Type       string `json:"type"` // "auth_error"
	Message    string `json:"message"`
	Connection bool   `json:"connection"` // always false
	Error      string `json:"error,omitempty"`
	Envelope
}

// InitiateResult opens a simulation run: the (possibly mocked) driver start
// position, the full path for client-side preview, and the current ride state.
type InitiateResult struct {
	Type        string           `json:"type"` // "initiate"
	DriverLoc   geo.Coordinate   `json:"driver_loc"`
	CustomerLoc geo.Coordinate   `json:"customer_loc"`
	TotalCoords int              `json:"total_cords"`
	Route       []geo.Coordinate `json:"route"`
	State       string           `json:"state"`
	Envelope
}

// InProgressResult is emitted when the simulated vehicle crosses a segment
// boundary mid-leg.
type InProgressResult struct {
	Type      string         `json:"type"` // "in_progress"
	DriverLoc geo.Coordinate `json:"driver_loc"`
	State     string         `json:"state"`
	Envelope
}

// LegCompleteResult is emitted at the path end: "ready_to_pickup" for the
// pickup leg, "finished" for the drop leg.
type LegCompleteResult struct {
	Type      string         `json:"type"`
	DriverLoc geo.Coordinate `json:"driver_loc"`
	State     string         `json:"state"`
	Envelope
}

// RideCancelledResult terminates a run after an external cancellation signal.
type RideCancelledResult struct {
	Type    string `json:"type"` // "ride_cancelled"
	Message string `json:"message"`
	State   string `json:"state"`
	Envelope
}

// OTPIssuedResult broadcasts a freshly issued pickup-confirmation code to the
// ride group.
type OTPIssuedResult struct {
	Type string `json:"type"` // "otp_issued"
	OTP  string `json:"otp"`
	Envelope
}

// DriverLocationResult echoes a driver's broadcast location. In the idle pool
// it carries the enrichment fields; in a ride group they stay empty.
type DriverLocationResult struct {
	Type         string         `json:"type"` // "driver_location"
	Location     geo.Coordinate `json:"location"`
	DriverID     string         `json:"driver_id,omitempty"`
	VehicleType  *string        `json:"vehicle_type,omitempty"`
	VehicleNo    *string        `json:"vehicle_number,omitempty"`
	SeatCapacity *int           `json:"seat_capacity,omitempty"`
	Envelope
}

// DriverSelectedResult tells an idle driver they were picked for a ride;
// their pool membership ends and the connection is closed after this payload.
type DriverSelectedResult struct {
	Type   string `json:"type"` // "driver_selected"
	RideID string `json:"ride_id"`
	Envelope
}

// NewLegComplete builds the terminal payload for a leg.
func NewLegComplete(leg ride.Leg, at geo.Coordinate) LegCompleteResult {
	t := TypeFinished
	if leg == ride.LegPickup {
		t = TypeReadyToPickup
	}
	return LegCompleteResult{
		Type:      t,
		DriverLoc: at,
		State:     leg.TerminalState().String(),
	}
}
