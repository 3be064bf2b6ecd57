package inventory

import (
	"errors"
	"fmt"

	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/cooldogedev/crossplay/java/protocol/packet"
)

// Cursor is the slot index used for the item carried by the cursor in moves planned by a Window.
const Cursor = -1

// DefaultMaxStack is the stack size of items a Window has no stack size for.
const DefaultMaxStack = 64

// ErrInvalidMove is returned when a move cannot be carried out with Java clicks from the cached state.
var ErrInvalidMove = errors.New("move cannot be expressed as java clicks")

// Window is the cached state of a Java window. It plans the Java clicks that carry out a move, and applies
// the result of each click to the cache in the same way the Java server does, so that clicks planned later
// see the state left behind by earlier ones.
type Window struct {
	ID      uint8
	Layout  *Layout
	StateID int32
	Slots   []protocol.Slot
	Cursor  protocol.Slot
	// StackSize returns the max stack size of a Java item. DefaultMaxStack is used for every item if nil.
	StackSize func(item int32) int32
}

// NewWindow returns an empty window with the id and layout passed.
func NewWindow(id uint8, l *Layout) *Window {
	return &Window{ID: id, Layout: l, Slots: make([]protocol.Slot, l.Len())}
}

// SetContent replaces the content of the window.
func (w *Window) SetContent(stateID int32, slots []protocol.Slot, cursor protocol.Slot) {
	w.StateID, w.Cursor = stateID, cursor
	n := copy(w.Slots, slots)
	clear(w.Slots[n:])
}

// SetSlot sets a single slot of the window. Slots outside the window are ignored.
func (w *Window) SetSlot(stateID int32, slot int, item protocol.Slot) {
	w.StateID = stateID
	if slot >= 0 && slot < len(w.Slots) {
		w.Slots[slot] = item
	}
}

// Item returns the item in a slot of the window or, for Cursor, the item carried by the cursor.
func (w *Window) Item(slot int) protocol.Slot {
	if slot == Cursor {
		return w.Cursor
	}
	if slot < 0 || slot >= len(w.Slots) {
		return protocol.Slot{}
	}
	return w.Slots[slot]
}

func (w *Window) maxStack(item protocol.Slot) int32 {
	if w.StackSize == nil {
		return DefaultMaxStack
	}
	return max(w.StackSize(item.ItemID), 1)
}

func (w *Window) valid(slot int) error {
	if slot != Cursor && (slot < 0 || slot >= len(w.Slots)) {
		return fmt.Errorf("%w: slot %v out of window of %v", ErrInvalidMove, slot, len(w.Slots))
	}
	return nil
}

// Move plans the clicks moving count items from slot src to slot dst. Either of them may be Cursor.
func (w *Window) Move(src, dst int, count int32) ([]packet.ClickContainer, error) {
	if err := w.valid(src); err != nil {
		return nil, err
	}
	if err := w.valid(dst); err != nil {
		return nil, err
	}
	switch {
	case count <= 0 || src == dst:
		return nil, fmt.Errorf("%w: move of %v items from %v to %v", ErrInvalidMove, count, src, dst)
	case src == Cursor:
		return w.place(dst, count)
	case dst == Cursor:
		return w.take(src, count)
	}
	if !w.Cursor.Empty() {
		return nil, fmt.Errorf("%w: move between slots while the cursor is not empty", ErrInvalidMove)
	}
	clicks, err := w.take(src, count)
	if err != nil {
		return nil, err
	}
	more, err := w.place(dst, count)
	if err != nil {
		return nil, err
	}
	return append(clicks, more...), nil
}

// take plans the clicks picking up count items from a slot onto the cursor.
func (w *Window) take(slot int, count int32) ([]packet.ClickContainer, error) {
	item, carried := w.Slots[slot], w.Cursor
	switch {
	case item.Count < count:
		return nil, fmt.Errorf("%w: take %v items from slot %v holding %v", ErrInvalidMove, count, slot, item.Count)
	case !carried.Empty() && !carried.SameItem(item):
		return nil, fmt.Errorf("%w: take onto a cursor holding another item", ErrInvalidMove)
	case !carried.Empty() && carried.Count+item.Count > w.maxStack(item):
		return nil, fmt.Errorf("%w: take onto a full cursor", ErrInvalidMove)
	}
	var clicks []packet.ClickContainer
	if carried.Empty() {
		if count == (item.Count+1)/2 && count != item.Count {
			return []packet.ClickContainer{w.click(slot, 1, packet.ClickModePickup)}, nil
		}
		clicks = append(clicks, w.click(slot, 0, packet.ClickModePickup))
	} else {
		// Merge the cursor into the slot and pick the whole stack up.
		clicks = append(clicks, w.click(slot, 0, packet.ClickModePickup), w.click(slot, 0, packet.ClickModePickup))
	}
	for range item.Count - count {
		clicks = append(clicks, w.click(slot, 1, packet.ClickModePickup))
	}
	return clicks, nil
}

// place plans the clicks putting count items carried by the cursor into a slot.
func (w *Window) place(slot int, count int32) ([]packet.ClickContainer, error) {
	item, carried := w.Slots[slot], w.Cursor
	switch {
	case carried.Count < count:
		return nil, fmt.Errorf("%w: place %v items from a cursor holding %v", ErrInvalidMove, count, carried.Count)
	case !item.Empty() && !item.SameItem(carried):
		return nil, fmt.Errorf("%w: place onto slot %v holding another item", ErrInvalidMove, slot)
	case item.Count+count > w.maxStack(carried):
		return nil, fmt.Errorf("%w: place onto a full slot %v", ErrInvalidMove, slot)
	}
	if count == carried.Count {
		return []packet.ClickContainer{w.click(slot, 0, packet.ClickModePickup)}, nil
	}
	clicks := make([]packet.ClickContainer, 0, count)
	for range count {
		clicks = append(clicks, w.click(slot, 1, packet.ClickModePickup))
	}
	return clicks, nil
}

// Swap plans the clicks swapping the items of two slots. Either of them may be Cursor.
func (w *Window) Swap(a, b int) ([]packet.ClickContainer, error) {
	if err := w.valid(a); err != nil {
		return nil, err
	}
	if err := w.valid(b); err != nil {
		return nil, err
	}
	if a == b {
		return nil, fmt.Errorf("%w: swap of slot %v with itself", ErrInvalidMove, a)
	}
	if a == Cursor {
		a, b = b, a
	}
	if b == Cursor {
		if w.Slots[a].SameItem(w.Cursor) {
			return nil, fmt.Errorf("%w: swap of equal items", ErrInvalidMove)
		}
		return []packet.ClickContainer{w.click(a, 0, packet.ClickModePickup)}, nil
	}
	if !w.Cursor.Empty() {
		return nil, fmt.Errorf("%w: swap while the cursor is not empty", ErrInvalidMove)
	}
	if w.Slots[a].SameItem(w.Slots[b]) {
		return nil, fmt.Errorf("%w: swap of equal items", ErrInvalidMove)
	}
	return []packet.ClickContainer{
		w.click(a, 0, packet.ClickModePickup),
		w.click(b, 0, packet.ClickModePickup),
		w.click(a, 0, packet.ClickModePickup),
	}, nil
}

// Drop plans the clicks dropping count items from a slot, which may be Cursor, on the ground.
func (w *Window) Drop(slot int, count int32) ([]packet.ClickContainer, error) {
	if err := w.valid(slot); err != nil {
		return nil, err
	}
	item := w.Item(slot)
	if count <= 0 || item.Count < count {
		return nil, fmt.Errorf("%w: drop %v items from a stack of %v", ErrInvalidMove, count, item.Count)
	}
	if slot == Cursor {
		if count == item.Count {
			return []packet.ClickContainer{w.click(int(packet.SlotOutside), 0, packet.ClickModePickup)}, nil
		}
		clicks := make([]packet.ClickContainer, 0, count)
		for range count {
			clicks = append(clicks, w.click(int(packet.SlotOutside), 1, packet.ClickModePickup))
		}
		return clicks, nil
	}
	if count == item.Count {
		return []packet.ClickContainer{w.click(slot, 1, packet.ClickModeThrow)}, nil
	}
	clicks := make([]packet.ClickContainer, 0, count)
	for range count {
		clicks = append(clicks, w.click(slot, 0, packet.ClickModeThrow))
	}
	return clicks, nil
}

// click returns a single click and applies its result to the cache.
func (w *Window) click(slot int, button int8, mode int32) packet.ClickContainer {
	pk := packet.ClickContainer{WindowID: w.ID, StateID: w.StateID, Slot: int16(slot), Button: button, Mode: mode}
	switch {
	case slot == int(packet.SlotOutside):
		if button == 0 {
			w.Cursor = protocol.Slot{}
		} else {
			w.Cursor = w.Cursor.WithCount(w.Cursor.Count - 1)
		}
	case mode == packet.ClickModeThrow:
		if button == 0 {
			w.Slots[slot] = w.Slots[slot].WithCount(w.Slots[slot].Count - 1)
		} else {
			w.Slots[slot] = protocol.Slot{}
		}
		pk.ChangedSlots = []packet.ChangedSlot{{Slot: int16(slot), Item: w.Slots[slot]}}
	default:
		w.Slots[slot], w.Cursor = pickup(w.Slots[slot], w.Cursor, button, w.maxStack(w.Slots[slot]))
		pk.ChangedSlots = []packet.ChangedSlot{{Slot: int16(slot), Item: w.Slots[slot]}}
	}
	pk.CarriedItem = w.Cursor
	return pk
}

// pickup returns the content of a slot and the cursor after a left (button 0) or right (button 1) click.
// maxStack is the max stack size of the item in the slot.
func pickup(item, carried protocol.Slot, button int8, maxStack int32) (protocol.Slot, protocol.Slot) {
	switch {
	case carried.Empty() && button == 0:
		return protocol.Slot{}, item
	case carried.Empty():
		take := (item.Count + 1) / 2
		return item.WithCount(item.Count - take), item.WithCount(take)
	case item.Empty() && button == 0:
		return carried, protocol.Slot{}
	case item.Empty():
		return carried.WithCount(1), carried.WithCount(carried.Count - 1)
	case !item.SameItem(carried):
		return carried, item
	case button == 0:
		moved := max(min(maxStack-item.Count, carried.Count), 0)
		return item.WithCount(item.Count + moved), carried.WithCount(carried.Count - moved)
	case item.Count < maxStack:
		return item.WithCount(item.Count + 1), carried.WithCount(carried.Count - 1)
	}
	return item, carried
}
