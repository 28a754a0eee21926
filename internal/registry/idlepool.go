package registry

import (
	"sync"

	"eoncab/internal/domain/geo"
	"eoncab/internal/general/metrics"
)

// IdleDriverEntry is one driver waiting for work, with the vehicle
// enrichment attached at join time when available.
type IdleDriverEntry struct {
	DriverID     string
	Location     geo.Coordinate
	VehicleType  *string
	VehicleNo    *string
	SeatCapacity *int

	Handle Participant
}

// IdlePool is the single global set of available drivers. Location updates
// upsert; latest write wins.
type IdlePool struct {
	mu      sync.RWMutex
	entries map[string]IdleDriverEntry

	mtr *metrics.Collector
}

func NewIdlePool(mtr *metrics.Collector) *IdlePool {
	return &IdlePool{
		entries: make(map[string]IdleDriverEntry),
		mtr:     mtr,
	}
}

// Upsert inserts or replaces the driver's entry.
func (p *IdlePool) Upsert(e IdleDriverEntry) {
	p.mu.Lock()
	p.entries[e.DriverID] = e
	n := len(p.entries)
	p.mu.Unlock()

	if p.mtr != nil {
		p.mtr.IdlePool.Set(float64(n))
	}
}

// UpdateLocation moves an existing entry without touching the enrichment.
// Unknown drivers are ignored; they must Upsert first.
func (p *IdlePool) UpdateLocation(driverID string, loc geo.Coordinate) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[driverID]
	if !ok {
		return false
	}
	e.Location = loc
	p.entries[driverID] = e
	return true
}

// Remove drops the driver from the pool. Removing an absent driver is a no-op.
func (p *IdlePool) Remove(driverID string) {
	p.mu.Lock()
	delete(p.entries, driverID)
	n := len(p.entries)
	p.mu.Unlock()

	if p.mtr != nil {
		p.mtr.IdlePool.Set(float64(n))
	}
}

// Get returns the driver's entry if present.
func (p *IdlePool) Get(driverID string) (IdleDriverEntry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, ok := p.entries[driverID]
	return e, ok
}

// Snapshot copies the current pool contents.
func (p *IdlePool) Snapshot() []IdleDriverEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]IdleDriverEntry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e)
	}
	return out
}

// Len reports the pool size.
func (p *IdlePool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}
