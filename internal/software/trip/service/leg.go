package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"eoncab/internal/domain/geo"
	"eoncab/internal/domain/ride"
	"eoncab/internal/general/contracts"
	"eoncab/internal/otp"
)

// StartLeg fetches a fresh route for the leg, launches its simulation run,
// and broadcasts the opening payload. The route is always re-fetched, never
// cached across legs.
func (s *Service) StartLeg(ctx context.Context, sess Session, ev contracts.StartLegEvent) error {
	rideID := sess.RideID
	if rideID == "" {
		return errors.New("leg start outside a ride group")
	}

	if s.simulator.IsRunning(rideID) {
		s.log.Debug(ctx, "trip.start_leg", "duplicate start ignored, run active", map[string]any{
			"ride_id": rideID,
			"leg":     ev.Leg.String(),
		})
		return nil
	}

	if ev.Leg == ride.LegDrop {
		if err := s.checkPickupCode(ctx, rideID, ev.OTP); err != nil {
			return err
		}
	}

	locs, err := s.store.GetLocations(ctx, rideID)
	if err != nil {
		return fmt.Errorf("ride locations: %w", err)
	}

	origin, dest := locs.LegEndpoints(ev.Leg, ev.Location)
	if ev.Leg == ride.LegPickup && ev.Location == nil {
		origin = s.mockStart(locs.Pickup)
	}

	route, err := s.dirs.Route(ctx, origin, dest)
	if err != nil {
		return fmt.Errorf("leg %s: %w", ev.Leg, err)
	}

	path, err := route.Path()
	if err != nil {
		return fmt.Errorf("leg %s path: %w", ev.Leg, err)
	}

	if err := s.simulator.Start(ctx, rideID, ev.Leg, path); err != nil {
		return fmt.Errorf("leg %s start: %w", ev.Leg, err)
	}

	// the state only moves once the run is live; a failed route fetch must
	// not leave the ride stranded ONGOING
	if ev.Leg == ride.LegDrop {
		if err := s.sm.Transition(ctx, rideID, ride.StateOngoing); err != nil {
			s.simulator.Stop(rideID)
			return err
		}
		s.publishState(ctx, rideID, ride.StateOngoing)
	}

	s.groups.Broadcast(ctx, rideID, contracts.InitiateResult{
		Type:        contracts.TypeInitiate,
		DriverLoc:   origin,
		CustomerLoc: dest,
		TotalCoords: path.Len(),
		Route:       path.Coordinates(),
		State:       s.sm.Current(ctx, rideID).String(),
		Envelope:    s.stamp(),
	})

	return nil
}

// RoutePreview fetches the ride's full pickup-to-destination route for the
// join ack. Best-effort: a provider failure just omits the preview.
func (s *Service) RoutePreview(ctx context.Context, rideID string) []geo.Coordinate {
	locs, err := s.store.GetLocations(ctx, rideID)
	if err != nil {
		s.log.Debug(ctx, "trip.route_preview", "no locations for preview", map[string]any{
			"ride_id": rideID,
			"reason":  err.Error(),
		})
		return nil
	}

	route, err := s.dirs.Route(ctx, locs.Pickup, locs.Destination)
	if err != nil {
		s.log.Debug(ctx, "trip.route_preview", "preview route unavailable", map[string]any{
			"ride_id": rideID,
			"reason":  err.Error(),
		})
		return nil
	}
	return route.Coordinates
}

// checkPickupCode gates the drop leg behind the pickup confirmation code.
// A ride that never issued a code passes; a live code must match.
func (s *Service) checkPickupCode(ctx context.Context, rideID, code string) error {
	err := s.otps.Validate(rideID, code)
	if err == nil || errors.Is(err, otp.ErrNoCode) {
		return nil
	}
	s.log.Info(ctx, "trip.start_leg", "drop leg rejected, pickup code invalid", map[string]any{
		"ride_id": rideID,
		"reason":  err.Error(),
	})
	return fmt.Errorf("pickup code: %w", err)
}

// mockStart offsets the pickup point by a log-scaled degree delta with a
// random sign per axis, giving the simulated driver a nearby start when no
// explicit coordinate was reported.
func (s *Service) mockStart(pickup geo.Coordinate) geo.Coordinate {
	off := math.Pow(10, math.Log10(s.mockOffsetM/1.11)-5)
	return geo.Coordinate{
		Lat: pickup.Lat + randSign()*off,
		Lng: pickup.Lng + randSign()*off,
	}
}

func randSign() float64 {
	if rand.Intn(2) == 0 {
		return -1
	}
	return 1
}
