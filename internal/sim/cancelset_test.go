package sim

import "testing"

func TestCancelSetCheckAndClear(t *testing.T) {
	c := NewCancelSet()

	if c.CheckAndClear("r1") {
		t.Fatal("unmarked ride reported as flagged")
	}

	c.Mark("r1")
	if !c.Has("r1") {
		t.Fatal("Has = false after Mark")
	}

	if !c.CheckAndClear("r1") {
		t.Fatal("CheckAndClear = false after Mark")
	}
	if c.CheckAndClear("r1") {
		t.Fatal("flag survived its consumption")
	}
}

func TestCancelSetMarkIsIdempotent(t *testing.T) {
	c := NewCancelSet()
	c.Mark("r2")
	c.Mark("r2")

	if !c.CheckAndClear("r2") {
		t.Fatal("flag missing after double Mark")
	}
	if c.CheckAndClear("r2") {
		t.Fatal("double Mark produced two flags")
	}
}

func TestCancelSetClearStale(t *testing.T) {
	c := NewCancelSet()
	c.Mark("r3")
	c.ClearStale("r3")

	if c.Has("r3") {
		t.Fatal("stale flag still present")
	}

	// clearing an absent flag is a no-op
	c.ClearStale("never-marked")
}
