package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"eoncab/internal/domain/geo"
	"eoncab/internal/domain/ride"
	"eoncab/internal/general/logger"
	"eoncab/internal/general/metrics"
)

var (
	ErrAlreadyRunning = errors.New("ride already has an active run")
	ErrTooManyRuns    = errors.New("concurrent run limit reached")
	ErrNotRunning     = errors.New("ride has no active run")
)

// fallback when a route reports zero duration and the average speed cannot
// be derived
const defaultSpeedMps = 11.11

// Emitter receives the simulator's lifecycle events. The trip service
// implements it by broadcasting payloads and driving state transitions.
type Emitter interface {
	Progress(ctx context.Context, rideID string, leg ride.Leg, at geo.Coordinate)
	Complete(ctx context.Context, rideID string, leg ride.Leg, at geo.Coordinate)
	Cancelled(ctx context.Context, rideID string)
}

// Cursor is one run's position along its path. Index points at the next
// target coordinate and starts at 1. DistanceCovered grows by
// SpeedMps*TickMultiplier per tick; Index advances only when whole segments
// are consumed, so emitted positions always sit on path coordinates.
type Cursor struct {
	Index            int
	DistanceCovered  float64
	DistanceConsumed float64
	SpeedMps         float64
	TickMultiplier   float64
	IntervalSeconds  float64
}

type run struct {
	mu     sync.Mutex
	cur    Cursor
	leg    ride.Leg
	path   *geo.Path
	cancel context.CancelFunc
	done   chan struct{}
}

func (r *run) interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Duration(r.cur.IntervalSeconds * float64(time.Second))
}

// advance moves the cursor by one tick. crossed holds the coordinates of
// every segment boundary consumed this tick, in order; done reports arrival
// at the path end, with final holding the last coordinate. A fast cursor can
// consume several segments in one tick; a slow one crosses nothing (silent
// tick).
func (r *run) advance() (crossed []geo.Coordinate, final geo.Coordinate, done bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &r.cur
	c.DistanceCovered += c.SpeedMps * c.TickMultiplier

	for {
		seg := r.path.SegmentDistance(c.Index - 1)
		if c.DistanceConsumed+seg > c.DistanceCovered {
			return crossed, geo.Coordinate{}, false
		}
		c.DistanceConsumed += seg

		if c.Index == r.path.Len()-1 {
			return crossed, r.path.At(c.Index), true
		}
		crossed = append(crossed, r.path.At(c.Index))
		c.Index++
	}
}

// Simulator owns all active leg runs, one goroutine per ride.
type Simulator struct {
	mu      sync.Mutex
	running map[string]*run

	cancels *CancelSet
	emit    Emitter
	log     *logger.Logger
	mtr     *metrics.Collector

	defaultInterval   float64
	defaultMultiplier float64
	sem               chan struct{}
}

// NewSimulator builds a simulator with the configured tick defaults.
// maxConcurrent <= 0 means unlimited.
func NewSimulator(cancels *CancelSet, emit Emitter, log *logger.Logger, mtr *metrics.Collector, tickIntervalSeconds, tickMultiplier float64, maxConcurrent int) *Simulator {
	s := &Simulator{
		running:           make(map[string]*run),
		cancels:           cancels,
		emit:              emit,
		log:               log,
		mtr:               mtr,
		defaultInterval:   tickIntervalSeconds,
		defaultMultiplier: tickMultiplier,
	}
	if maxConcurrent > 0 {
		s.sem = make(chan struct{}, maxConcurrent)
	}
	return s
}

// Start launches a run for one leg of the ride. A ride can hold at most one
// active run; a second Start while one is live returns ErrAlreadyRunning.
func (s *Simulator) Start(ctx context.Context, rideID string, leg ride.Leg, path *geo.Path) error {
	if s.sem != nil {
		select {
		case s.sem <- struct{}{}:
		default:
			return ErrTooManyRuns
		}
	}

	speed := path.AverageSpeed()
	if speed <= 0 {
		speed = defaultSpeedMps
	}

	// the run outlives the starter's connection; other group members keep
	// watching, so only Stop/StopAll may tear it down
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		cur: Cursor{
			Index:           1,
			SpeedMps:        speed,
			TickMultiplier:  s.defaultMultiplier,
			IntervalSeconds: s.defaultInterval,
		},
		leg:    leg,
		path:   path,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	if _, ok := s.running[rideID]; ok {
		s.mu.Unlock()
		cancel()
		s.release()
		return ErrAlreadyRunning
	}
	s.running[rideID] = r
	s.mu.Unlock()

	if s.mtr != nil {
		s.mtr.RunsStarted.Inc()
		s.mtr.ActiveRuns.Inc()
	}
	if s.log != nil {
		s.log.Info(runCtx, "simulator.start", "leg run started", map[string]any{
			"ride_id":    rideID,
			"leg":        leg.String(),
			"points":     path.Len(),
			"speed_mps":  speed,
			"distance_m": path.TotalDistance(),
			"duration_s": path.TotalDuration(),
			"interval_s": s.defaultInterval,
			"multiplier": s.defaultMultiplier,
		})
	}

	go s.loop(runCtx, rideID, r)
	return nil
}

// ChangeSpeed mutates the active run's tick multiplier and interval.
// Non-positive values leave the respective knob unchanged.
func (s *Simulator) ChangeSpeed(rideID string, multiplier, intervalSeconds float64) error {
	s.mu.Lock()
	r, ok := s.running[rideID]
	s.mu.Unlock()
	if !ok {
		return ErrNotRunning
	}

	r.mu.Lock()
	if multiplier > 0 {
		r.cur.TickMultiplier = multiplier
	}
	if intervalSeconds > 0 {
		r.cur.IntervalSeconds = intervalSeconds
	}
	r.mu.Unlock()
	return nil
}

// IsRunning reports whether the ride has a live run.
func (s *Simulator) IsRunning(rideID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[rideID]
	return ok
}

// Stop tears the run down without emitting anything, used when the ride's
// session disappears. Returns once the run goroutine has exited.
func (s *Simulator) Stop(rideID string) {
	s.mu.Lock()
	r, ok := s.running[rideID]
	s.mu.Unlock()
	if !ok {
		return
	}
	r.cancel()
	<-r.done
}

// StopAll tears down every active run, used on shutdown.
func (s *Simulator) StopAll() {
	s.mu.Lock()
	rs := make([]*run, 0, len(s.running))
	for _, r := range s.running {
		rs = append(rs, r)
	}
	s.mu.Unlock()

	for _, r := range rs {
		r.cancel()
		<-r.done
	}
}

func (s *Simulator) loop(ctx context.Context, rideID string, r *run) {
	defer func() {
		s.mu.Lock()
		delete(s.running, rideID)
		s.mu.Unlock()
		s.release()
		if s.mtr != nil {
			s.mtr.ActiveRuns.Dec()
		}
		r.cancel()
		close(r.done)
	}()

	timer := time.NewTimer(r.interval())
	defer timer.Stop()

	for {
		// cancellation wins over movement: the flag is checked before the
		// tick's sleep and advance
		if s.cancels != nil && s.cancels.CheckAndClear(rideID) {
			if s.mtr != nil {
				s.mtr.RunsCancelled.Inc()
			}
			s.emit.Cancelled(ctx, rideID)
			return
		}

		timer.Reset(r.interval())
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if s.mtr != nil {
			s.mtr.Ticks.Inc()
		}

		crossed, final, done := r.advance()
		for _, at := range crossed {
			if s.mtr != nil {
				s.mtr.ProgressEvents.Inc()
			}
			s.emit.Progress(ctx, rideID, r.leg, at)
		}
		if done {
			if s.mtr != nil {
				s.mtr.RunsCompleted.Inc()
			}
			s.emit.Complete(ctx, rideID, r.leg, final)
			return
		}
	}
}

func (s *Simulator) release() {
	if s.sem != nil {
		<-s.sem
	}
}
