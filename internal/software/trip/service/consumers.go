package service

import (
	"context"
	"encoding/json"
	"strings"

	"eoncab/internal/general/contracts"
	"eoncab/internal/general/rabbitmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RunCancellationConsumer feeds broker cancellations into the cancel set
// until ctx ends. The active run (if any) observes the flag at its next tick.
func (s *Service) RunCancellationConsumer(ctx context.Context, client *rabbitmq.Client) error {
	return client.Consume(ctx, contracts.QueueTripCancellations, "trip-cancel", 8,
		func(hCtx context.Context, d amqp.Delivery) error {
			var msg contracts.RideCancelledMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				s.log.Error(hCtx, "trip.cancel_consumer", "undecodable cancellation dropped", err, nil)
				return nil // ack; redelivery cannot fix it
			}

			rideID := msg.RideID
			if rideID == "" {
				rideID = routingSuffix(d.RoutingKey, contracts.RouteRideCancelledPrefix)
			}
			if rideID == "" {
				s.log.Error(hCtx, "trip.cancel_consumer", "cancellation without ride id dropped", nil, map[string]any{
					"routing_key": d.RoutingKey,
				})
				return nil
			}

			s.cancels.Mark(rideID)
			s.log.Info(hCtx, "trip.cancel_consumer", "ride flagged for cancellation", map[string]any{
				"ride_id":      rideID,
				"cancelled_by": msg.CancelledBy,
				"run_active":   s.simulator.IsRunning(rideID),
			})
			return nil
		})
}

// RunDriverSelectedConsumer pulls drivers out of the idle pool when the ride
// service assigns them, sending one driver_selected payload before closing.
func (s *Service) RunDriverSelectedConsumer(ctx context.Context, client *rabbitmq.Client) error {
	return client.Consume(ctx, contracts.QueueDriverSelected, "trip-selected", 8,
		func(hCtx context.Context, d amqp.Delivery) error {
			var msg contracts.DriverSelectedMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				s.log.Error(hCtx, "trip.selected_consumer", "undecodable selection dropped", err, nil)
				return nil
			}
			if msg.DriverID == "" {
				msg.DriverID = routingSuffix(d.RoutingKey, contracts.RouteDriverSelectedPrefix)
			}

			s.NotifyDriverSelected(hCtx, msg.DriverID, msg.RideID)
			return nil
		})
}

// NotifyDriverSelected removes the driver from the idle pool after a final
// driver_selected payload. A driver not currently pooled is a no-op.
func (s *Service) NotifyDriverSelected(ctx context.Context, driverID, rideID string) {
	entry, ok := s.pool.Get(driverID)
	if !ok || entry.Handle == nil {
		s.log.Debug(ctx, "trip.driver_selected", "selected driver not in pool", map[string]any{
			"driver_id": driverID,
			"ride_id":   rideID,
		})
		return
	}

	s.groups.Unicast(ctx, entry.Handle, contracts.DriverSelectedResult{
		Type:     contracts.TypeDriverSelected,
		RideID:   rideID,
		Envelope: s.stamp(),
	})
	s.pool.Remove(driverID)
	entry.Handle.Close("selected for ride")

	s.log.Info(ctx, "trip.driver_selected", "driver left idle pool for ride", map[string]any{
		"driver_id": driverID,
		"ride_id":   rideID,
	})
}

func routingSuffix(key, prefix string) string {
	if strings.HasPrefix(key, prefix) {
		return strings.TrimPrefix(key, prefix)
	}
	return ""
}
