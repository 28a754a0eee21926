package contracts

import "time"

// AMQP topology names shared by the publisher, the consumer, and topology
// declaration.
const (
	ExchangeTripTopic = "trip_topic"

	QueueTripCancellations = "trip_cancellations"
	QueueDriverSelected    = "trip_driver_selected"

	RouteRideCancelledPrefix  = "ride.cancelled."
	RouteDriverSelectedPrefix = "driver.selected."
	RouteTripStatePrefix      = "trip.state."
)

// RideCancelledMessage is the broker payload that flags a ride for
// cancellation. The ride ID also rides in the routing key suffix; the body
// wins when both are present.
type RideCancelledMessage struct {
	RideID      string    `json:"ride_id"`
	CancelledBy string    `json:"cancelled_by,omitempty"` // "customer" | "driver" | "system"
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at,omitempty"`
}

// DriverSelectedMessage arrives when the ride CRUD service assigns a pooled
// driver to a ride. The driver gets one driver_selected payload and leaves
// the idle pool.
type DriverSelectedMessage struct {
	DriverID string `json:"driver_id"`
	RideID   string `json:"ride_id"`
}

// TripStateMessage is published to ExchangeTripTopic on every persisted ride
// state transition so downstream services can follow the lifecycle.
type TripStateMessage struct {
	RideID    string    `json:"ride_id"`
	State     string    `json:"state"`
	ChangedAt time.Time `json:"changed_at"`
}
