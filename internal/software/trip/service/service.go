package service

import (
	"context"
	"encoding/json"
	"time"

	"eoncab/internal/domain/geo"
	"eoncab/internal/domain/ride"
	"eoncab/internal/domain/user"
	"eoncab/internal/general/contracts"
	"eoncab/internal/general/logger"
	"eoncab/internal/general/metrics"
	"eoncab/internal/general/rabbitmq"
	"eoncab/internal/otp"
	"eoncab/internal/ports"
	"eoncab/internal/registry"
	"eoncab/internal/sim"

	"github.com/google/uuid"
)

const producerName = "trip-service"

// Session identifies one authenticated WS participant for dispatch. RideID
// is empty for idle-pool sessions.
type Session struct {
	RideID string
	UserID string
	Role   user.Role
	Handle registry.Participant
}

// Service is the trip core: it routes inbound events, owns the simulation
// lifecycle, and fans results out to ride groups and the idle pool.
type Service struct {
	log *logger.Logger
	mtr *metrics.Collector

	groups   *registry.Registry
	pool     *registry.IdlePool
	sm       *sim.StateMachine
	cancels  *sim.CancelSet
	otps     *otp.Store
	dirs     ports.DirectionsProvider
	store    ports.RideStore
	vehicles ports.VehicleRepository
	pub      *rabbitmq.MQPublisher

	simulator *sim.Simulator

	mockOffsetM float64
}

// NewService wires the trip core. The simulator is attached afterwards via
// AttachSimulator because it needs the service as its Emitter.
func NewService(
	log *logger.Logger,
	mtr *metrics.Collector,
	groups *registry.Registry,
	pool *registry.IdlePool,
	sm *sim.StateMachine,
	cancels *sim.CancelSet,
	otps *otp.Store,
	dirs ports.DirectionsProvider,
	store ports.RideStore,
	vehicles ports.VehicleRepository,
	pub *rabbitmq.MQPublisher,
	mockOffsetMeters float64,
) *Service {
	return &Service{
		log:         log,
		mtr:         mtr,
		groups:      groups,
		pool:        pool,
		sm:          sm,
		cancels:     cancels,
		otps:        otps,
		dirs:        dirs,
		store:       store,
		vehicles:    vehicles,
		pub:         pub,
		mockOffsetM: mockOffsetMeters,
	}
}

func (s *Service) AttachSimulator(simulator *sim.Simulator) {
	s.simulator = simulator
}

func (s *Service) Groups() *registry.Registry { return s.groups }
func (s *Service) Pool() *registry.IdlePool   { return s.pool }

// CurrentState reads the ride's state, defaulting when the store misses.
func (s *Service) CurrentState(ctx context.Context, rideID string) ride.State {
	return s.sm.Current(ctx, rideID)
}

// OnLeave tears down per-session resources. When the last member of a ride
// group leaves, any active run stops and stale cancel flags are dropped.
func (s *Service) OnLeave(ctx context.Context, sess Session) {
	if sess.RideID == "" {
		s.pool.Remove(sess.UserID)
		return
	}

	s.groups.Leave(sess.RideID, sess.Handle)
	if s.groups.Size(sess.RideID) == 0 {
		s.simulator.Stop(sess.RideID)
		s.cancels.ClearStale(sess.RideID)
		s.otps.Drop(sess.RideID)
	}
}

func (s *Service) stamp() contracts.Envelope {
	return contracts.Envelope{
		CorrelationID: uuid.NewString(),
		Producer:      producerName,
		SentAt:        time.Now().UTC(),
	}
}

// publishState tells the rest of the platform about a persisted transition.
// Best-effort: a broker hiccup never fails the trip itself.
func (s *Service) publishState(ctx context.Context, rideID string, state ride.State) {
	if s.pub == nil {
		return
	}

	body, err := json.Marshal(contracts.TripStateMessage{
		RideID:    rideID,
		State:     state.String(),
		ChangedAt: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	rk := contracts.RouteTripStatePrefix + state.String()
	if err := s.pub.Publish(contracts.ExchangeTripTopic, rk, body); err != nil {
		s.log.Error(ctx, "trip.publish_state", "state publish failed", err, map[string]any{
			"ride_id": rideID,
			"state":   state.String(),
		})
	}
}

// ---- sim.Emitter ----

// Progress broadcasts a segment-boundary position to the ride group.
func (s *Service) Progress(ctx context.Context, rideID string, leg ride.Leg, at geo.Coordinate) {
	s.groups.Broadcast(ctx, rideID, contracts.InProgressResult{
		Type:      contracts.TypeInProgress,
		DriverLoc: at,
		State:     leg.InTransitState().String(),
		Envelope:  s.stamp(),
	})
}

// Complete persists the leg's terminal state and broadcasts it.
func (s *Service) Complete(ctx context.Context, rideID string, leg ride.Leg, at geo.Coordinate) {
	next := leg.TerminalState()
	if err := s.sm.Transition(ctx, rideID, next); err != nil {
		s.log.Error(ctx, "trip.complete", "terminal transition failed", err, map[string]any{
			"ride_id": rideID,
			"state":   next.String(),
		})
	}

	out := contracts.NewLegComplete(leg, at)
	out.Envelope = s.stamp()
	s.groups.Broadcast(ctx, rideID, out)
	s.publishState(ctx, rideID, next)
}

// Cancelled persists CANCELLED and tells the ride group the trip is over.
func (s *Service) Cancelled(ctx context.Context, rideID string) {
	if err := s.sm.Transition(ctx, rideID, ride.StateCancelled); err != nil {
		s.log.Error(ctx, "trip.cancelled", "cancel transition failed", err, map[string]any{
			"ride_id": rideID,
		})
	}

	s.groups.Broadcast(ctx, rideID, contracts.RideCancelledResult{
		Type:     contracts.TypeRideCancelled,
		Message:  "ride was cancelled",
		State:    ride.StateCancelled.String(),
		Envelope: s.stamp(),
	})
	s.publishState(ctx, rideID, ride.StateCancelled)
}
