package sim

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eoncab/internal/domain/geo"
	"eoncab/internal/domain/ride"
	"eoncab/internal/general/logger"
)

type recordEmitter struct {
	mu        sync.Mutex
	progress  []geo.Coordinate
	completed bool
	final     geo.Coordinate
	cancelled bool
	done      chan struct{}
}

func newRecordEmitter() *recordEmitter {
	return &recordEmitter{done: make(chan struct{})}
}

func (e *recordEmitter) Progress(_ context.Context, _ string, _ ride.Leg, at geo.Coordinate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress = append(e.progress, at)
}

func (e *recordEmitter) Complete(_ context.Context, _ string, _ ride.Leg, at geo.Coordinate) {
	e.mu.Lock()
	e.completed = true
	e.final = at
	e.mu.Unlock()
	close(e.done)
}

func (e *recordEmitter) Cancelled(_ context.Context, _ string) {
	e.mu.Lock()
	e.cancelled = true
	e.mu.Unlock()
	close(e.done)
}

func (e *recordEmitter) wait(t *testing.T) {
	t.Helper()
	select {
	case <-e.done:
	case <-time.After(3 * time.Second):
		t.Fatal("run did not reach a terminal state in time")
	}
}

// equatorPath builds n coordinates 0.001 deg apart along the equator
// (~111 m per segment) with the given provider totals.
func equatorPath(t *testing.T, n int, totalDist, totalDur float64) *geo.Path {
	t.Helper()
	coords := make([]geo.Coordinate, n)
	for i := range coords {
		coords[i] = geo.Coordinate{Lat: 0, Lng: 0.001 * float64(i)}
	}
	p, err := geo.NewPath(coords, totalDist, totalDur)
	if err != nil {
		t.Fatalf("NewPath: %v", err)
	}
	return p
}

func newTestSimulator(emit Emitter, cancels *CancelSet) *Simulator {
	// 2ms ticks keep the tests fast without changing the algorithm
	return NewSimulator(cancels, emit, logger.New("sim-test"), nil, 0.002, 3, 0)
}

func TestRunCompletesAtPathEnd(t *testing.T) {
	emit := newRecordEmitter()
	s := newTestSimulator(emit, NewCancelSet())

	// avg speed 111 m/s, x3 per tick: whole path inside a few ticks
	path := equatorPath(t, 4, 333, 3)

	if err := s.Start(context.Background(), "ride-1", ride.LegPickup, path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	emit.wait(t)

	emit.mu.Lock()
	defer emit.mu.Unlock()

	if !emit.completed || emit.cancelled {
		t.Fatalf("completed=%v cancelled=%v, want completed only", emit.completed, emit.cancelled)
	}
	if emit.final != path.At(path.Len()-1) {
		t.Errorf("final coordinate = %v, want %v", emit.final, path.At(path.Len()-1))
	}

	// progress positions are the interior boundaries in path order
	want := []geo.Coordinate{path.At(1), path.At(2)}
	if len(emit.progress) != len(want) {
		t.Fatalf("progress events = %d, want %d", len(emit.progress), len(want))
	}
	for i, at := range emit.progress {
		if at != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, at, want[i])
		}
	}

	if s.IsRunning("ride-1") {
		t.Error("run still registered after completion")
	}
}

func TestDuplicateStartRejected(t *testing.T) {
	emit := newRecordEmitter()
	s := newTestSimulator(emit, NewCancelSet())

	// ~0.001 m/s: effectively frozen for the duration of the test
	slow := equatorPath(t, 3, 222, 222000)

	if err := s.Start(context.Background(), "ride-2", ride.LegPickup, slow); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer s.Stop("ride-2")

	err := s.Start(context.Background(), "ride-2", ride.LegDrop, slow)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start err = %v, want ErrAlreadyRunning", err)
	}
	if !s.IsRunning("ride-2") {
		t.Error("first run was disturbed by the rejected duplicate")
	}
}

func TestCancellationWinsOverMovement(t *testing.T) {
	emit := newRecordEmitter()
	cancels := NewCancelSet()
	s := newTestSimulator(emit, cancels)

	cancels.Mark("ride-3")

	path := equatorPath(t, 4, 333, 3)
	if err := s.Start(context.Background(), "ride-3", ride.LegDrop, path); err != nil {
		t.Fatalf("Start: %v", err)
	}
	emit.wait(t)

	emit.mu.Lock()
	defer emit.mu.Unlock()

	if !emit.cancelled || emit.completed {
		t.Fatalf("cancelled=%v completed=%v, want cancelled only", emit.cancelled, emit.completed)
	}
	if len(emit.progress) != 0 {
		t.Errorf("progress after pre-marked cancellation = %d events, want 0", len(emit.progress))
	}
	if cancels.Has("ride-3") {
		t.Error("flag not consumed by the run")
	}
	if s.IsRunning("ride-3") {
		t.Error("run still registered after cancellation")
	}
}

func TestChangeSpeedTakesEffect(t *testing.T) {
	emit := newRecordEmitter()
	s := newTestSimulator(emit, NewCancelSet())

	// 1 m/s base: minutes to finish unless sped up
	path := equatorPath(t, 3, 222, 222)

	if err := s.Start(context.Background(), "ride-4", ride.LegPickup, path); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := s.ChangeSpeed("ride-4", 500, 0.001); err != nil {
		t.Fatalf("ChangeSpeed: %v", err)
	}
	emit.wait(t)

	emit.mu.Lock()
	defer emit.mu.Unlock()
	if !emit.completed {
		t.Fatal("run did not complete after speed increase")
	}
}

func TestChangeSpeedWithoutRun(t *testing.T) {
	s := newTestSimulator(newRecordEmitter(), NewCancelSet())
	if err := s.ChangeSpeed("ghost", 10, 1); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("ChangeSpeed err = %v, want ErrNotRunning", err)
	}
}

func TestConcurrentRunLimit(t *testing.T) {
	emit := newRecordEmitter()
	cancels := NewCancelSet()
	s := NewSimulator(cancels, emit, logger.New("sim-test"), nil, 0.002, 3, 1)

	slow := equatorPath(t, 3, 222, 222000)

	if err := s.Start(context.Background(), "ride-5", ride.LegPickup, slow); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer s.Stop("ride-5")

	if err := s.Start(context.Background(), "ride-6", ride.LegPickup, slow); !errors.Is(err, ErrTooManyRuns) {
		t.Fatalf("over-limit Start err = %v, want ErrTooManyRuns", err)
	}
}

func TestRunSurvivesCallerContextCancel(t *testing.T) {
	emit := newRecordEmitter()
	s := newTestSimulator(emit, NewCancelSet())

	// ~0.001 m/s: stays alive until sped up
	slow := equatorPath(t, 3, 222, 222000)

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx, "ride-7", ride.LegPickup, slow); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	if !s.IsRunning("ride-7") {
		t.Fatal("run died with the starter's context")
	}

	if err := s.ChangeSpeed("ride-7", 500000, 0.001); err != nil {
		t.Fatalf("ChangeSpeed: %v", err)
	}
	emit.wait(t)

	emit.mu.Lock()
	defer emit.mu.Unlock()
	if !emit.completed || emit.cancelled {
		t.Fatalf("completed=%v cancelled=%v, want completed only", emit.completed, emit.cancelled)
	}
	if emit.final != slow.At(slow.Len()-1) {
		t.Errorf("final coordinate = %v, want %v", emit.final, slow.At(slow.Len()-1))
	}
}

func TestAdvanceConsumesMultipleSegmentsPerTick(t *testing.T) {
	path := equatorPath(t, 5, 444, 4) // 111 m/s

	r := &run{
		cur: Cursor{
			Index:           1,
			SpeedMps:        111.19,
			TickMultiplier:  3, // ~333 m per tick, three segments
			IntervalSeconds: 0.5,
		},
		path: path,
	}

	crossed, _, done := r.advance()
	if done {
		t.Fatal("done after first tick, want mid-path")
	}
	if len(crossed) != 2 {
		t.Fatalf("boundaries crossed = %d, want 2", len(crossed))
	}

	// index never moves backward
	if r.cur.Index != 3 {
		t.Errorf("Index = %d, want 3", r.cur.Index)
	}

	_, final, done := r.advance()
	if !done {
		t.Fatal("second tick should reach the path end")
	}
	if final != path.At(4) {
		t.Errorf("final = %v, want %v", final, path.At(4))
	}
}

func TestSilentTickEmitsNothing(t *testing.T) {
	path := equatorPath(t, 3, 222, 222000)

	r := &run{
		cur: Cursor{
			Index:           1,
			SpeedMps:        0.001,
			TickMultiplier:  3,
			IntervalSeconds: 0.5,
		},
		path: path,
	}

	crossed, _, done := r.advance()
	if done || len(crossed) != 0 {
		t.Fatalf("crossed=%d done=%v, want silent tick", len(crossed), done)
	}
	if r.cur.Index != 1 {
		t.Errorf("Index moved on a silent tick: %d", r.cur.Index)
	}
	if r.cur.DistanceCovered <= 0 {
		t.Error("DistanceCovered did not grow")
	}
}
