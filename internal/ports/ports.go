package ports

import (
	"context"

	"eoncab/internal/domain/driver"
	"eoncab/internal/domain/geo"
	"eoncab/internal/domain/ride"
)

// RideStore is the narrow edge the trip core uses to read and transition the
// externally-owned ride record. SetState clears the record's user/driver
// association when the new state is terminal (FINISHED/CANCELLED).
type RideStore interface {
	GetState(ctx context.Context, rideID string) (ride.State, error)
	SetState(ctx context.Context, rideID string, state ride.State) error
	GetLocations(ctx context.Context, rideID string) (ride.Locations, error)
}

// DirectionsProvider computes a route between two points. An empty or failed
// response surfaces as directions.ErrRouteUnavailable; no simulation may
// start in that case.
type DirectionsProvider interface {
	Route(ctx context.Context, origin, destination geo.Coordinate) (*geo.Route, error)
}

// VehicleRepository looks up the vehicle on file for a driver. A nil vehicle
// with a nil error means the driver has none registered.
type VehicleRepository interface {
	GetByDriver(ctx context.Context, driverID string) (*driver.Vehicle, error)
}
