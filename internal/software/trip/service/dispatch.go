package service

import (
	"context"

	"eoncab/internal/general/contracts"
	"eoncab/internal/registry"
)

// Dispatch routes one decoded inbound event for a session. Errors are
// logged, never surfaced to the sender; a bad command from one participant
// must not disturb the rest of the group.
func (s *Service) Dispatch(ctx context.Context, sess Session, ev contracts.Inbound) {
	switch e := ev.(type) {
	case contracts.StartLegEvent:
		if err := s.StartLeg(ctx, sess, e); err != nil {
			s.log.Error(ctx, "trip.dispatch", "leg start failed", err, map[string]any{
				"ride_id": sess.RideID,
				"leg":     e.Leg.String(),
			})
		}

	case contracts.LiveLocationEvent:
		s.handleLiveLocation(ctx, sess, e)

	case contracts.ConfirmPickupEvent:
		s.handleConfirmPickup(ctx, sess)

	case contracts.ChangeSpeedEvent:
		if err := s.simulator.ChangeSpeed(sess.RideID, e.NewMultiplier, e.NewSleepSeconds); err != nil {
			s.log.Debug(ctx, "trip.dispatch", "speed change with no active run", map[string]any{
				"ride_id": sess.RideID,
			})
		}

	default:
		// closed set; nothing else can arrive
		s.log.Debug(ctx, "trip.dispatch", "unhandled event variant", nil)
	}
}

// handleLiveLocation relays a driver's position. Inside a ride group the raw
// location goes to the whole group; in the idle pool the entry is upserted
// with vehicle enrichment and echoed back to the sender.
func (s *Service) handleLiveLocation(ctx context.Context, sess Session, ev contracts.LiveLocationEvent) {
	if err := ev.Location.Validate(); err != nil {
		s.log.Debug(ctx, "trip.live_location", "ignoring invalid coordinate", map[string]any{
			"user_id": sess.UserID,
		})
		return
	}

	if sess.RideID != "" {
		s.groups.Broadcast(ctx, sess.RideID, contracts.DriverLocationResult{
			Type:     contracts.TypeDriverLocation,
			Location: ev.Location,
			DriverID: sess.UserID,
			Envelope: s.stamp(),
		})
		return
	}

	out := contracts.DriverLocationResult{
		Type:     contracts.TypeDriverLocation,
		Location: ev.Location,
		DriverID: sess.UserID,
		Envelope: s.stamp(),
	}

	// repeat reports only move the entry; the vehicle lookup happens once
	if e, ok := s.pool.Get(sess.UserID); ok {
		s.pool.UpdateLocation(sess.UserID, ev.Location)
		out.VehicleType = e.VehicleType
		out.VehicleNo = e.VehicleNo
		out.SeatCapacity = e.SeatCapacity
		s.groups.Unicast(ctx, sess.Handle, out)
		return
	}

	entry := registry.IdleDriverEntry{
		DriverID: sess.UserID,
		Location: ev.Location,
		Handle:   sess.Handle,
	}

	if v, err := s.vehicles.GetByDriver(ctx, sess.UserID); err != nil {
		s.log.Error(ctx, "trip.live_location", "vehicle lookup failed", err, map[string]any{
			"driver_id": sess.UserID,
		})
	} else if v != nil {
		vt := v.Type.String()
		entry.VehicleType = &vt
		entry.VehicleNo = &v.Number
		entry.SeatCapacity = &v.SeatCapacity
		out.VehicleType = entry.VehicleType
		out.VehicleNo = entry.VehicleNo
		out.SeatCapacity = entry.SeatCapacity
	}

	s.pool.Upsert(entry)
	s.groups.Unicast(ctx, sess.Handle, out)
}

// handleConfirmPickup issues a fresh pickup code and broadcasts it to the
// ride group.
func (s *Service) handleConfirmPickup(ctx context.Context, sess Session) {
	if sess.RideID == "" {
		return
	}

	code := s.otps.Issue(sess.RideID)
	if s.mtr != nil {
		s.mtr.OTPIssued.Inc()
	}
	s.log.Info(ctx, "trip.confirm_pickup", "pickup code issued", map[string]any{
		"ride_id": sess.RideID,
	})

	s.groups.Broadcast(ctx, sess.RideID, contracts.OTPIssuedResult{
		Type:     contracts.TypeOTPIssued,
		OTP:      code,
		Envelope: s.stamp(),
	})
}
