package sim

import "sync"

// CancelSet holds ride IDs flagged for cancellation by the AMQP consumer.
// The simulator polls it at the top of every tick; a flag is consumed by the
// first run that observes it.
type CancelSet struct {
	mu    sync.Mutex
	flags map[string]struct{}
}

func NewCancelSet() *CancelSet {
	return &CancelSet{flags: make(map[string]struct{})}
}

// Mark flags a ride for cancellation. Marking a ride with no active run is
// harmless; the flag waits until a run observes it or ClearStale drops it.
func (c *CancelSet) Mark(rideID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags[rideID] = struct{}{}
}

// CheckAndClear reports whether the ride was flagged, consuming the flag.
func (c *CancelSet) CheckAndClear(rideID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.flags[rideID]; !ok {
		return false
	}
	delete(c.flags, rideID)
	return true
}

// Has reports whether the ride is flagged without consuming the flag.
func (c *CancelSet) Has(rideID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.flags[rideID]
	return ok
}

// ClearStale drops a flag without treating it as consumed, used when a ride's
// session tears down with no run to cancel.
func (c *CancelSet) ClearStale(rideID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.flags, rideID)
}
