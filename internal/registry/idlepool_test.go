package registry

import (
	"testing"

	"eoncab/internal/domain/geo"
)

func TestUpsertLatestWins(t *testing.T) {
	p := NewIdlePool(nil)

	p.Upsert(IdleDriverEntry{DriverID: "d1", Location: geo.Coordinate{Lat: 1, Lng: 1}})
	p.Upsert(IdleDriverEntry{DriverID: "d1", Location: geo.Coordinate{Lat: 2, Lng: 2}})

	if got := p.Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}

	e, ok := p.Get("d1")
	if !ok {
		t.Fatal("entry missing after upsert")
	}
	if e.Location != (geo.Coordinate{Lat: 2, Lng: 2}) {
		t.Fatalf("Location = %v, want the latest write", e.Location)
	}
}

func TestUpdateLocationKeepsEnrichment(t *testing.T) {
	p := NewIdlePool(nil)

	vt := "CAR_SEDAN"
	p.Upsert(IdleDriverEntry{
		DriverID:    "d1",
		Location:    geo.Coordinate{Lat: 1, Lng: 1},
		VehicleType: &vt,
	})

	if !p.UpdateLocation("d1", geo.Coordinate{Lat: 3, Lng: 3}) {
		t.Fatal("UpdateLocation = false for a pooled driver")
	}

	e, _ := p.Get("d1")
	if e.Location != (geo.Coordinate{Lat: 3, Lng: 3}) {
		t.Fatalf("Location = %v after update", e.Location)
	}
	if e.VehicleType == nil || *e.VehicleType != "CAR_SEDAN" {
		t.Fatal("enrichment lost on location update")
	}

	if p.UpdateLocation("ghost", geo.Coordinate{}) {
		t.Fatal("UpdateLocation = true for an unknown driver")
	}
}

func TestRemoveAbsentDriverIsNoOp(t *testing.T) {
	p := NewIdlePool(nil)
	p.Upsert(IdleDriverEntry{DriverID: "d1"})

	p.Remove("not-there")
	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1", p.Len())
	}

	p.Remove("d1")
	if p.Len() != 0 {
		t.Fatalf("Len = %d after removal, want 0", p.Len())
	}
	if _, ok := p.Get("d1"); ok {
		t.Fatal("removed driver still readable")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	p := NewIdlePool(nil)
	p.Upsert(IdleDriverEntry{DriverID: "d1"})
	p.Upsert(IdleDriverEntry{DriverID: "d2"})

	snap := p.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snap))
	}

	p.Remove("d1")
	if len(snap) != 2 {
		t.Fatal("snapshot shrank with the pool")
	}
}
