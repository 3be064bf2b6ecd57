package packet

import "github.com/cooldogedev/crossplay/java/protocol"

// SetContainerContent replaces the content of a window. The player inventory is window 0.
type SetContainerContent struct {
	WindowID    uint8
	StateID     int32
	Slots       []protocol.Slot
	CarriedItem protocol.Slot
}

func (*SetContainerContent) ID() uint32 { return IDSetContainerContent }

func (pk *SetContainerContent) Marshal(io protocol.IO) {
	io.Uint8(&pk.WindowID)
	io.Varint32(&pk.StateID)
	protocol.Slice(io, &pk.Slots)
	io.Slot(&pk.CarriedItem)
}

// Special window ids of SetContainerSlot.
const (
	// WindowCursor sets the item carried by the cursor if Slot is -1.
	WindowCursor int8 = -1
	// WindowPlayerInventory sets a slot of the player inventory regardless of the open window.
	WindowPlayerInventory int8 = -2
)

// SetContainerSlot sets a single slot of a window.
type SetContainerSlot struct {
	WindowID int8
	StateID  int32
	Slot     int16
	Item     protocol.Slot
}

func (*SetContainerSlot) ID() uint32 { return IDSetContainerSlot }

func (pk *SetContainerSlot) Marshal(io protocol.IO) {
	io.Int8(&pk.WindowID)
	io.Varint32(&pk.StateID)
	io.Int16(&pk.Slot)
	io.Slot(&pk.Item)
}

// ClientboundCloseContainer closes the window passed.
type ClientboundCloseContainer struct {
	WindowID uint8
}

func (*ClientboundCloseContainer) ID() uint32 { return IDClientboundCloseContainer }

func (pk *ClientboundCloseContainer) Marshal(io protocol.IO) {
	io.Uint8(&pk.WindowID)
}

// OpenScreen opens a container window.
type OpenScreen struct {
	WindowID   int32
	WindowType int32
	Title      []byte
}

func (*OpenScreen) ID() uint32 { return IDOpenScreen }

func (pk *OpenScreen) Marshal(io protocol.IO) {
	io.Varint32(&pk.WindowID)
	io.Varint32(&pk.WindowType)
	io.NBT(&pk.Title)
}

// Click modes of ClickContainer.
const (
	ClickModePickup int32 = iota
	ClickModeQuickMove
	ClickModeSwap
	ClickModeClone
	ClickModeThrow
	ClickModeQuickCraft
	ClickModePickupAll
)

// SlotOutside is the slot index of a click outside the window.
const SlotOutside int16 = -999

// ChangedSlot is a slot whose content changed as a result of a click, as predicted by the client.
type ChangedSlot struct {
	Slot int16
	Item protocol.Slot
}

func (x *ChangedSlot) Marshal(io protocol.IO) {
	io.Int16(&x.Slot)
	io.Slot(&x.Item)
}

// ClickContainer is a click of the player in a window.
type ClickContainer struct {
	WindowID     uint8
	StateID      int32
	Slot         int16
	Button       int8
	Mode         int32
	ChangedSlots []ChangedSlot
	CarriedItem  protocol.Slot
}

func (*ClickContainer) ID() uint32 { return IDClickContainer }

func (pk *ClickContainer) Marshal(io protocol.IO) {
	io.Uint8(&pk.WindowID)
	io.Varint32(&pk.StateID)
	io.Int16(&pk.Slot)
	io.Int8(&pk.Button)
	io.Varint32(&pk.Mode)
	protocol.Slice(io, &pk.ChangedSlots)
	io.Slot(&pk.CarriedItem)
}

// ServerboundCloseContainer is sent when the player closes a window.
type ServerboundCloseContainer struct {
	WindowID uint8
}

func (*ServerboundCloseContainer) ID() uint32 { return IDServerboundCloseContainer }

func (pk *ServerboundCloseContainer) Marshal(io protocol.IO) {
	io.Uint8(&pk.WindowID)
}

// ServerboundSetHeldItem is sent when the player selects a hotbar slot.
type ServerboundSetHeldItem struct {
	Slot int16
}

func (*ServerboundSetHeldItem) ID() uint32 { return IDServerboundSetHeldItem }

func (pk *ServerboundSetHeldItem) Marshal(io protocol.IO) {
	io.Int16(&pk.Slot)
}

// SetCreativeModeSlot sets a slot of the player inventory in creative mode.
type SetCreativeModeSlot struct {
	Slot int16
	Item protocol.Slot
}

func (*SetCreativeModeSlot) ID() uint32 { return IDSetCreativeModeSlot }

func (pk *SetCreativeModeSlot) Marshal(io protocol.IO) {
	io.Int16(&pk.Slot)
	io.Slot(&pk.Item)
}
