package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"eoncab/internal/general/logger"
)

type fakeParticipant struct {
	id string

	mu     sync.Mutex
	got    []any
	fail   bool
	closed bool
	reason string
}

func (p *fakeParticipant) ID() string { return p.id }

func (p *fakeParticipant) Send(payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("connection gone")
	}
	p.got = append(p.got, payload)
	return nil
}

func (p *fakeParticipant) Close(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.reason = reason
}

func (p *fakeParticipant) received() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.got)
}

func newTestRegistry() *Registry {
	return NewRegistry(logger.New("registry-test"), nil)
}

func TestJoinIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	p := &fakeParticipant{id: "p1"}

	r.Join("ride-1", p)
	r.Join("ride-1", p)

	if got := r.Size("ride-1"); got != 1 {
		t.Fatalf("Size after double join = %d, want 1", got)
	}

	r.Broadcast(context.Background(), "ride-1", "hello")
	if got := p.received(); got != 1 {
		t.Fatalf("double join delivered %d copies, want 1", got)
	}
}

func TestLeaveNonMemberIsNoOp(t *testing.T) {
	r := newTestRegistry()
	member := &fakeParticipant{id: "member"}
	stranger := &fakeParticipant{id: "stranger"}

	r.Join("ride-1", member)
	r.Leave("ride-1", stranger)
	r.Leave("never-existed", stranger)

	if got := r.Size("ride-1"); got != 1 {
		t.Fatalf("Size = %d, want 1", got)
	}
}

func TestLeaveDropsEmptyGroup(t *testing.T) {
	r := newTestRegistry()
	p := &fakeParticipant{id: "p1"}

	r.Join("ride-1", p)
	r.Leave("ride-1", p)

	if got := r.Size("ride-1"); got != 0 {
		t.Fatalf("Size = %d, want 0", got)
	}
}

func TestBroadcastSurvivesFailingMember(t *testing.T) {
	r := newTestRegistry()
	ok1 := &fakeParticipant{id: "ok1"}
	bad := &fakeParticipant{id: "bad", fail: true}
	ok2 := &fakeParticipant{id: "ok2"}

	r.Join("ride-1", ok1)
	r.Join("ride-1", bad)
	r.Join("ride-1", ok2)

	r.Broadcast(context.Background(), "ride-1", "payload")

	if ok1.received() != 1 || ok2.received() != 1 {
		t.Fatalf("healthy members got %d/%d payloads, want 1/1", ok1.received(), ok2.received())
	}
	if bad.received() != 0 {
		t.Fatal("failing member recorded a payload")
	}
}

func TestRemoveAndNotify(t *testing.T) {
	r := newTestRegistry()
	p := &fakeParticipant{id: "p1"}
	r.Join("ride-1", p)

	r.RemoveAndNotify(context.Background(), "ride-1", p, "goodbye", "ride over")

	if p.received() != 1 {
		t.Fatalf("final payload count = %d, want 1", p.received())
	}
	if !p.closed || p.reason != "ride over" {
		t.Fatalf("closed=%v reason=%q, want closed with reason", p.closed, p.reason)
	}
	if r.Size("ride-1") != 0 {
		t.Fatal("participant still in group after RemoveAndNotify")
	}
}
