package ecsvault

import "testing"

func TestSlotMapAllocAndGet(t *testing.T) {
	m := newSlotMap(4)
	a := &archetype{}
	h := m.alloc(a, 3)

	arch, row, err := m.get(h)
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if arch != a || row != 3 {
		t.Fatalf("get() = (%v, %d), want (%v, 3)", arch, row, a)
	}
}

func TestSlotMapFreeThenDeadHandle(t *testing.T) {
	m := newSlotMap(4)
	a := &archetype{}
	h := m.alloc(a, 0)
	m.free(h)

	if _, _, err := m.get(h); err == nil {
		t.Fatalf("get() of a freed handle did not error")
	}
	if m.exists(h) {
		t.Fatalf("exists() of a freed handle = true")
	}
}

func TestSlotMapReuseBumpsGeneration(t *testing.T) {
	m := newSlotMap(4)
	a := &archetype{}
	h1 := m.alloc(a, 0)
	m.free(h1)
	h2 := m.alloc(a, 0)

	if h2.Index != h1.Index {
		t.Fatalf("reused slot got a different index: %d != %d", h2.Index, h1.Index)
	}
	if h2.Generation <= h1.Generation {
		t.Fatalf("reused slot generation %d not strictly greater than %d", h2.Generation, h1.Generation)
	}
	if _, _, err := m.get(h1); err == nil {
		t.Fatalf("stale handle %v from before reuse still resolves", h1)
	}
}

func TestSlotMapRebind(t *testing.T) {
	m := newSlotMap(4)
	a1 := &archetype{}
	a2 := &archetype{}
	h := m.alloc(a1, 0)

	if err := m.rebind(h, a2, 5); err != nil {
		t.Fatalf("rebind() error = %v", err)
	}
	arch, row, err := m.get(h)
	if err != nil || arch != a2 || row != 5 {
		t.Fatalf("get() after rebind = (%v, %d, %v), want (%v, 5, nil)", arch, row, err, a2)
	}
}

func TestSlotMapResetClearsAllSlots(t *testing.T) {
	m := newSlotMap(4)
	a := &archetype{}
	h := m.alloc(a, 0)
	m.reset()
	if m.len() != 0 {
		t.Fatalf("len() after reset = %d, want 0", m.len())
	}
	if m.exists(h) {
		t.Fatalf("exists() after reset = true")
	}
}
