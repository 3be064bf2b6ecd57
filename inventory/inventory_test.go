package inventory

import (
	"errors"
	"testing"

	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/cooldogedev/crossplay/java/protocol/packet"
	bedrockprotocol "github.com/sandertv/gophertunnel/minecraft/protocol"
)

func stone(n int32) protocol.Slot { return protocol.Slot{ItemID: 1, Count: n} }
func dirt(n int32) protocol.Slot  { return protocol.Slot{ItemID: 10, Count: n} }

func TestPlayerLayout(t *testing.T) {
	tests := []struct {
		java int
		slot Slot
	}{
		{JavaCraftingOutput, Slot{Window: bedrockprotocol.WindowIDUI, Index: UIOutput}},
		{JavaCraftingInput + 3, Slot{Window: bedrockprotocol.WindowIDUI, Index: UICraftingSmall + 3}},
		{JavaArmour, Slot{Window: bedrockprotocol.WindowIDArmour, Index: 0}},
		{JavaMain, Slot{Window: bedrockprotocol.WindowIDInventory, Index: 9}},
		{35, Slot{Window: bedrockprotocol.WindowIDInventory, Index: 35}},
		{JavaHotbar, Slot{Window: bedrockprotocol.WindowIDInventory, Index: 0}},
		{44, Slot{Window: bedrockprotocol.WindowIDInventory, Index: 8}},
		{JavaOffhand, Slot{Window: bedrockprotocol.WindowIDOffHand, Index: 0}},
	}
	for _, tt := range tests {
		got, ok := Player.Bedrock(tt.java)
		if !ok || got != tt.slot {
			t.Errorf("Bedrock(%v) = %+v (%v), want %+v", tt.java, got, ok, tt.slot)
		}
		back, ok := Player.Java(tt.slot)
		if !ok || back != tt.java {
			t.Errorf("Java(%+v) = %v (%v), want %v", tt.slot, back, ok, tt.java)
		}
	}
	if _, ok := Player.Bedrock(46); ok {
		t.Error("slot 46 of the player window should not map")
	}
}

func TestContainerLayout(t *testing.T) {
	// generic_9x1, shown as a chest in window 3.
	l, err := Open(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 45 || l.ContainerType != ContainerTypeContainer {
		t.Fatalf("layout = %+v", l)
	}
	if s, _ := l.Bedrock(4); s != (Slot{Window: 3, Index: 4}) {
		t.Fatalf("container slot 4 = %+v", s)
	}
	if s, _ := l.Bedrock(9); s != (Slot{Window: bedrockprotocol.WindowIDInventory, Index: 9}) {
		t.Fatalf("first main slot = %+v", s)
	}
	if s, _ := l.Bedrock(36); s != (Slot{Window: bedrockprotocol.WindowIDInventory, Index: 0}) {
		t.Fatalf("first hotbar slot = %+v", s)
	}
	if p, ok := l.PlayerSlot(36); !ok || p != JavaHotbar {
		t.Fatalf("player slot of 36 = %v (%v)", p, ok)
	}
	if n := len(l.Unmapped()); n != 18 {
		t.Fatalf("%v unmapped chest slots, want 18", n)
	}

	brewing, err := Open(11, 4)
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := brewing.Bedrock(3); s.Index != 0 {
		t.Fatalf("brewing ingredient shown in slot %v", s.Index)
	}
	if j, _ := brewing.Java(Slot{Window: 4, Index: 1}); j != 0 {
		t.Fatalf("first bedrock bottle slot = java %v", j)
	}

	if _, err := Open(8, 5); err == nil {
		t.Fatal("expected error for anvil")
	}
	if _, err := Open(99, 5); err == nil {
		t.Fatal("expected error for unknown menu")
	}
}

func TestSnapshotPolicy(t *testing.T) {
	l, err := Open(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	items := make([]int, l.Len())
	for i := range items {
		items[i] = i + 1
	}
	cached := func(Slot) int { return 99 }

	tests := []struct {
		policy Policy
		n      int
		extra  int
	}{
		{PolicyDrop, 45, 0},
		{PolicyNoop, 63, 99},
		{PolicyEmpty, 63, 0},
	}
	for _, tt := range tests {
		out := Snapshot(l, items, tt.policy, 0, cached)
		if len(out) != tt.n {
			t.Errorf("%v: %v assignments, want %v", tt.policy, len(out), tt.n)
			continue
		}
		for _, a := range out[45:] {
			if a.Item != tt.extra || a.Slot.Window != 3 || a.Slot.Index < 9 {
				t.Errorf("%v: unmapped assignment %+v", tt.policy, a)
			}
		}
	}
}

func TestParsePolicy(t *testing.T) {
	for _, s := range []string{"drop", "noop", "empty"} {
		p, err := ParsePolicy(s)
		if err != nil || p.String() != s {
			t.Errorf("ParsePolicy(%q) = %v, %v", s, p, err)
		}
	}
	if _, err := ParsePolicy("keep"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestHotbarPickup(t *testing.T) {
	w := NewWindow(0, Player)
	w.StateID = 7
	w.Slots[JavaHotbar] = stone(10)

	java, ok := Player.Java(Slot{Window: bedrockprotocol.WindowIDInventory, Index: 0})
	if !ok || java != 36 {
		t.Fatalf("hotbar slot 0 = java %v (%v)", java, ok)
	}
	clicks, err := w.Move(java, Cursor, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(clicks) != 1 {
		t.Fatalf("%v clicks, want 1", len(clicks))
	}
	c := clicks[0]
	if c.Slot != 36 || c.Button != 0 || c.Mode != packet.ClickModePickup || c.StateID != 7 {
		t.Fatalf("click = %+v", c)
	}
	if !c.CarriedItem.Equal(stone(10)) || len(c.ChangedSlots) != 1 || !c.ChangedSlots[0].Item.Empty() {
		t.Fatalf("click result = %+v", c)
	}
}

func TestMoves(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(w *Window)
		plan    func(w *Window) ([]packet.ClickContainer, error)
		buttons []int8
		check   func(w *Window) bool
	}{
		{
			name:    "take half",
			setup:   func(w *Window) { w.Slots[10] = stone(9) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Move(10, Cursor, 5) },
			buttons: []int8{1},
			check:   func(w *Window) bool { return w.Cursor.Count == 5 && w.Slots[10].Count == 4 },
		},
		{
			name:    "take some",
			setup:   func(w *Window) { w.Slots[10] = stone(9) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Move(10, Cursor, 7) },
			buttons: []int8{0, 1, 1},
			check:   func(w *Window) bool { return w.Cursor.Count == 7 && w.Slots[10].Count == 2 },
		},
		{
			name:    "take onto cursor",
			setup:   func(w *Window) { w.Slots[10], w.Cursor = stone(9), stone(2) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Move(10, Cursor, 8) },
			buttons: []int8{0, 0, 1},
			check:   func(w *Window) bool { return w.Cursor.Count == 10 && w.Slots[10].Count == 1 },
		},
		{
			name:    "place all",
			setup:   func(w *Window) { w.Cursor = stone(5) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Move(Cursor, 12, 5) },
			buttons: []int8{0},
			check:   func(w *Window) bool { return w.Cursor.Empty() && w.Slots[12].Count == 5 },
		},
		{
			name:    "place some",
			setup:   func(w *Window) { w.Cursor, w.Slots[12] = stone(5), stone(1) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Move(Cursor, 12, 2) },
			buttons: []int8{1, 1},
			check:   func(w *Window) bool { return w.Cursor.Count == 3 && w.Slots[12].Count == 3 },
		},
		{
			name:    "move between slots",
			setup:   func(w *Window) { w.Slots[9] = stone(4) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Move(9, 40, 4) },
			buttons: []int8{0, 0},
			check:   func(w *Window) bool { return w.Slots[9].Empty() && w.Slots[40].Count == 4 && w.Cursor.Empty() },
		},
		{
			name:    "swap",
			setup:   func(w *Window) { w.Slots[9], w.Slots[36] = stone(4), dirt(2) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Swap(9, 36) },
			buttons: []int8{0, 0, 0},
			check: func(w *Window) bool {
				return w.Slots[9].Equal(dirt(2)) && w.Slots[36].Equal(stone(4)) && w.Cursor.Empty()
			},
		},
		{
			name:    "drop from cursor",
			setup:   func(w *Window) { w.Cursor = stone(3) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Drop(Cursor, 3) },
			buttons: []int8{0},
			check:   func(w *Window) bool { return w.Cursor.Empty() },
		},
		{
			name:    "drop one from slot",
			setup:   func(w *Window) { w.Slots[36] = stone(3) },
			plan:    func(w *Window) ([]packet.ClickContainer, error) { return w.Drop(36, 1) },
			buttons: []int8{0},
			check:   func(w *Window) bool { return w.Slots[36].Count == 2 },
		},
	}
	for _, tt := range tests {
		w := NewWindow(0, Player)
		tt.setup(w)
		clicks, err := tt.plan(w)
		if err != nil {
			t.Errorf("%v: %v", tt.name, err)
			continue
		}
		if len(clicks) != len(tt.buttons) {
			t.Errorf("%v: %v clicks, want %v", tt.name, len(clicks), len(tt.buttons))
			continue
		}
		for i, c := range clicks {
			if c.Button != tt.buttons[i] {
				t.Errorf("%v: click %v used button %v, want %v", tt.name, i, c.Button, tt.buttons[i])
			}
		}
		if !tt.check(w) {
			t.Errorf("%v: unexpected state after clicks: cursor %+v", tt.name, w.Cursor)
		}
	}
}

func TestInvalidMoves(t *testing.T) {
	w := NewWindow(0, Player)
	w.Slots[9], w.Slots[10], w.Cursor = stone(4), dirt(1), dirt(1)

	if _, err := w.Move(9, Cursor, 1); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("take onto cursor holding another item: %v", err)
	}
	if _, err := w.Move(9, 10, 1); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("move with a full cursor: %v", err)
	}
	if _, err := w.Move(Cursor, 9, 1); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("place onto another item: %v", err)
	}
	if _, err := w.Move(9, 99, 1); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("move out of window: %v", err)
	}
	if _, err := w.Drop(9, 5); !errors.Is(err, ErrInvalidMove) {
		t.Errorf("drop more than the stack: %v", err)
	}
	if !w.Slots[9].Equal(stone(4)) || !w.Cursor.Equal(dirt(1)) {
		t.Error("rejected moves changed the cache")
	}
}

func TestWindowStackSize(t *testing.T) {
	pearl := func(n int32) protocol.Slot { return protocol.Slot{ItemID: 20, Count: n} }
	stackSize := func(item int32) int32 {
		if item == 20 {
			return 16
		}
		return DefaultMaxStack
	}
	tests := []struct {
		name   string
		slot   protocol.Slot
		cursor protocol.Slot
		count  int32
		valid  bool
		want   int32
	}{
		{"below max stack", pearl(14), pearl(4), 2, true, 16},
		{"above max stack", pearl(14), pearl(4), 3, false, 14},
		{"default max stack", stone(60), stone(4), 4, true, 64},
	}
	for _, tt := range tests {
		w := NewWindow(0, Player)
		w.StackSize = stackSize
		w.Slots[9], w.Cursor = tt.slot, tt.cursor
		_, err := w.Move(Cursor, 9, tt.count)
		if tt.valid != (err == nil) {
			t.Errorf("%v: err = %v", tt.name, err)
			continue
		}
		if w.Slots[9].Count != tt.want {
			t.Errorf("%v: slot holds %v, want %v", tt.name, w.Slots[9].Count, tt.want)
		}
	}
}

func TestPickupMergeStopsAtMaxStack(t *testing.T) {
	item, carried := pickup(protocol.Slot{ItemID: 20, Count: 10}, protocol.Slot{ItemID: 20, Count: 10}, 0, 16)
	if item.Count != 16 || carried.Count != 4 {
		t.Fatalf("slot %v, cursor %v after merge, want 16 and 4", item.Count, carried.Count)
	}
}
