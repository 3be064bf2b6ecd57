package entity

import (
	"testing"
)

func TestAllocateIdempotent(t *testing.T) {
	m := NewMap()
	a := m.Allocate(42)
	if b := m.Allocate(42); a != b {
		t.Fatalf("second allocation returned %v, want %v", b, a)
	}
	if a == PlayerRuntimeID {
		t.Fatal("allocated the runtime id of the player")
	}
	if m.Len() != 1 {
		t.Fatalf("len = %v, want 1", m.Len())
	}
}

func TestBijection(t *testing.T) {
	m := NewMap()
	m.Bind(7)
	ids := []int32{0, 1, 42, -5, 1 << 30}
	for _, id := range ids {
		m.Allocate(id)
	}
	for _, id := range append(ids, 7) {
		rid, ok := m.Runtime(id)
		if !ok {
			t.Fatalf("no runtime id for %v", id)
		}
		back, ok := m.Remote(rid)
		if !ok || back != id {
			t.Fatalf("Remote(Runtime(%v)) = %v (%v)", id, back, ok)
		}
	}
	if rid, _ := m.Runtime(7); rid != PlayerRuntimeID {
		t.Fatalf("player runtime id = %v", rid)
	}
}

func TestReleaseAndReuse(t *testing.T) {
	m := NewMap()
	first := m.Allocate(42)
	other := m.Allocate(43)
	m.Release(42)
	if _, ok := m.Runtime(42); ok {
		t.Fatal("mapping for 42 survived release")
	}
	if _, ok := m.Remote(first); ok {
		t.Fatal("reverse mapping survived release")
	}
	// Duplicate despawns are ignored.
	m.Release(42)
	m.Release(1000)

	second := m.Allocate(42)
	if second == first || second == other {
		t.Fatalf("reallocated runtime id %v collides with %v or %v", second, first, other)
	}
}

func TestPlayerNeverReleased(t *testing.T) {
	m := NewMap()
	m.Bind(10)
	m.Allocate(11)
	m.Release(10)
	if _, ok := m.Runtime(10); !ok {
		t.Fatal("player mapping was released")
	}
	m.Clear()
	if _, ok := m.Runtime(11); ok {
		t.Fatal("entity survived Clear")
	}
	if rid, ok := m.Runtime(10); !ok || rid != PlayerRuntimeID || m.Len() != 1 {
		t.Fatal("player mapping did not survive Clear")
	}
	if rid := m.Allocate(11); rid <= 2 {
		t.Fatalf("runtime id %v reused after Clear", rid)
	}

	m.Bind(20)
	if _, ok := m.Runtime(10); ok {
		t.Fatal("old player binding survived rebinding")
	}
	if self, ok := m.Self(); !ok || self != 20 {
		t.Fatalf("self = %v (%v)", self, ok)
	}
}
