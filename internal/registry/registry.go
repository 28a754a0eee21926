package registry

import (
	"context"
	"sync"

	"eoncab/internal/general/logger"
	"eoncab/internal/general/metrics"
)

// Participant is one connected session. Implementations wrap a live
// WebSocket connection; Send must be safe for concurrent use.
type Participant interface {
	ID() string
	Send(payload any) error
	Close(reason string)
}

// Registry maps ride IDs to their broadcast groups. All operations are
// idempotent; membership is keyed by Participant.ID.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]Participant

	log *logger.Logger
	mtr *metrics.Collector
}

func NewRegistry(log *logger.Logger, mtr *metrics.Collector) *Registry {
	return &Registry{
		groups: make(map[string]map[string]Participant),
		log:    log,
		mtr:    mtr,
	}
}

// Join adds p to the ride's group. Joining twice keeps a single entry.
func (r *Registry) Join(rideID string, p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[rideID]
	if !ok {
		g = make(map[string]Participant)
		r.groups[rideID] = g
	}
	g[p.ID()] = p
}

// Leave removes p from the ride's group. Removing a non-member is a no-op.
// Empty groups are dropped so an abandoned ride leaves nothing behind.
func (r *Registry) Leave(rideID string, p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[rideID]
	if !ok {
		return
	}
	delete(g, p.ID())
	if len(g) == 0 {
		delete(r.groups, rideID)
	}
}

// Size reports the current member count of a ride's group.
func (r *Registry) Size(rideID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[rideID])
}

// Broadcast delivers payload to every member of the ride's group.
// Delivery is best-effort: a failing member is logged and skipped, the
// rest still receive the payload.
func (r *Registry) Broadcast(ctx context.Context, rideID string, payload any) {
	for _, p := range r.members(rideID) {
		r.send(ctx, p, payload)
	}
}

// Unicast delivers payload to a single participant, best-effort.
func (r *Registry) Unicast(ctx context.Context, p Participant, payload any) {
	r.send(ctx, p, payload)
}

// RemoveAndNotify sends a final payload to p, removes it from the ride's
// group, and closes the underlying connection with reason.
func (r *Registry) RemoveAndNotify(ctx context.Context, rideID string, p Participant, payload any, reason string) {
	if payload != nil {
		r.send(ctx, p, payload)
	}
	r.Leave(rideID, p)
	p.Close(reason)
}

func (r *Registry) members(rideID string) []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g := r.groups[rideID]
	out := make([]Participant, 0, len(g))
	for _, p := range g {
		out = append(out, p)
	}
	return out
}

func (r *Registry) send(ctx context.Context, p Participant, payload any) {
	if r.mtr != nil {
		r.mtr.Broadcasts.Inc()
	}
	if err := p.Send(payload); err != nil {
		if r.mtr != nil {
			r.mtr.BroadcastErrs.Inc()
		}
		if r.log != nil {
			r.log.Error(ctx, "registry.send", "dropping payload for unreachable participant", err, map[string]any{
				"participant_id": p.ID(),
			})
		}
	}
}
