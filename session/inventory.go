package session

import (
	"errors"
	"maps"
	"math"
	"slices"

	"github.com/cooldogedev/crossplay/entity"
	"github.com/cooldogedev/crossplay/inventory"
	javaprotocol "github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/cooldogedev/crossplay/mappings"
	"github.com/cooldogedev/crossplay/palette"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// containerTypeInventory is the container type of the inventory of the player itself.
const containerTypeInventory = 0xff

// fakeBlockStates are the states of the blocks placed for the client to open a container at.
var fakeBlockStates = map[string]map[string]any{
	"minecraft:chest":          {"minecraft:cardinal_direction": "north"},
	"minecraft:furnace":        {"minecraft:cardinal_direction": "north"},
	"minecraft:blast_furnace":  {"minecraft:cardinal_direction": "north"},
	"minecraft:smoker":         {"minecraft:cardinal_direction": "north"},
	"minecraft:dispenser":      {"facing_direction": int32(1), "triggered_bit": false},
	"minecraft:hopper":         {"facing_direction": int32(0), "toggle_bit": false},
	"minecraft:brewing_stand":  {"brewing_stand_slot_a_bit": false, "brewing_stand_slot_b_bit": false, "brewing_stand_slot_c_bit": false},
	"minecraft:crafting_table": {},
}

// inventoryCache holds the Java windows the player has open and the items last shown in the Bedrock
// windows.
type inventoryCache struct {
	player *inventory.Window
	open   *inventory.Window
	// bedrockWindow is the id of the Bedrock window the open Java window is shown in.
	bedrockWindow byte
	nextWindow    byte
	// fakeBlocks are the positions of the blocks placed to open the window at.
	fakeBlocks []javaprotocol.BlockPos

	shown       map[inventory.Slot]protocol.ItemInstance
	nextStackID int32
	heldSlot    int16
}

func newInventoryCache(stackSize func(item int32) int32) *inventoryCache {
	player := inventory.NewWindow(0, inventory.Player)
	player.StackSize = stackSize
	return &inventoryCache{
		player:     player,
		nextWindow: 1,
		shown:      make(map[inventory.Slot]protocol.ItemInstance),
	}
}

// active returns the window clicks are made in: the open container, or else the player inventory.
func (c *inventoryCache) active() *inventory.Window {
	if c.open != nil {
		return c.open
	}
	return c.player
}

// window returns the cached window of a Java window id.
func (c *inventoryCache) window(id uint8) (*inventory.Window, bool) {
	switch {
	case id == 0:
		return c.player, true
	case c.open != nil && c.open.ID == id:
		return c.open, true
	}
	return nil, false
}

// bedrockItem translates a Java item stack.
func (s *Session) bedrockItem(slot javaprotocol.Slot) protocol.ItemInstance {
	if slot.Empty() {
		return protocol.ItemInstance{}
	}
	rid, ok := s.set.BedrockItem(slot.ItemID)
	if !ok {
		rid = s.set.FallbackItem()
	}
	return protocol.ItemInstance{Stack: protocol.ItemStack{
		ItemType: protocol.ItemType{NetworkID: rid},
		Count:    uint16(min(max(slot.Count, 0), 255)),
	}}
}

// withStackID gives a non-empty item shown in a window a stack network id of its own.
func (c *inventoryCache) withStackID(item protocol.ItemInstance) protocol.ItemInstance {
	if item.Stack.Count == 0 {
		return item
	}
	c.nextStackID++
	item.StackNetworkID = c.nextStackID
	return item
}

// sendWindow shows the full content of a Java window to the client.
func (s *Session) sendWindow(w *inventory.Window) error {
	items := make([]protocol.ItemInstance, len(w.Slots))
	for i, slot := range w.Slots {
		items[i] = s.inv.withStackID(s.bedrockItem(slot))
	}
	assignments := inventory.Snapshot(w.Layout, items, s.conf.UnmappableSlots, protocol.ItemInstance{}, func(slot inventory.Slot) protocol.ItemInstance {
		return s.inv.shown[slot]
	})

	sizes := map[uint32]int{
		protocol.WindowIDInventory: 36,
		protocol.WindowIDArmour:    4,
		protocol.WindowIDOffHand:   1,
	}
	if w != s.inv.player {
		sizes[uint32(s.inv.bedrockWindow)] = w.Layout.BedrockSize
	}
	byWindow := make(map[uint32][]inventory.Assignment[protocol.ItemInstance])
	var single []inventory.Assignment[protocol.ItemInstance]
	for _, a := range assignments {
		s.inv.shown[a.Slot] = a.Item
		if size, ok := sizes[a.Slot.Window]; !ok || int(a.Slot.Index) >= size {
			single = append(single, a)
			continue
		}
		byWindow[a.Slot.Window] = append(byWindow[a.Slot.Window], a)
	}
	for _, window := range slices.Sorted(maps.Keys(byWindow)) {
		list := byWindow[window]
		if len(list) != sizes[window] {
			// Windows of which only some slots are known are updated slot by slot, leaving the others as they are.
			single = append(single, list...)
			continue
		}
		content := make([]protocol.ItemInstance, len(list))
		for _, a := range list {
			content[a.Slot.Index] = a.Item
		}
		if err := s.writeFront(&packet.InventoryContent{WindowID: window, Content: content}); err != nil {
			return err
		}
	}
	for _, a := range single {
		if err := s.writeFront(&packet.InventorySlot{WindowID: a.Slot.Window, Slot: a.Slot.Index, NewItem: a.Item}); err != nil {
			return err
		}
	}
	return s.sendCursor(w.Cursor)
}

// sendCursor shows the item carried by the cursor.
func (s *Session) sendCursor(item javaprotocol.Slot) error {
	instance := s.inv.withStackID(s.bedrockItem(item))
	s.inv.shown[inventory.Slot{Window: protocol.WindowIDUI, Index: inventory.UICursor}] = instance
	return s.writeFront(&packet.InventorySlot{WindowID: protocol.WindowIDUI, Slot: inventory.UICursor, NewItem: instance})
}

// sendSlot shows a single slot of a Java window.
func (s *Session) sendSlot(w *inventory.Window, slot int) error {
	b, ok := w.Layout.Bedrock(slot)
	if !ok {
		return nil
	}
	item := s.inv.withStackID(s.bedrockItem(w.Item(slot)))
	s.inv.shown[b] = item
	return s.writeFront(&packet.InventorySlot{WindowID: b.Window, Slot: b.Index, NewItem: item})
}

func handleContainerContent(s *Session, pk *javapacket.SetContainerContent) error {
	w, ok := s.inv.window(pk.WindowID)
	if !ok {
		s.log.Debug("dropped content of unknown window", "window", pk.WindowID)
		return nil
	}
	w.SetContent(pk.StateID, pk.Slots, pk.CarriedItem)
	if w != s.inv.player {
		s.syncPlayerWindow(w)
	}
	return s.sendWindow(w)
}

// syncPlayerWindow copies the player inventory part of an open window into the cached player window.
func (s *Session) syncPlayerWindow(w *inventory.Window) {
	for i := range w.Slots {
		if j, ok := w.Layout.PlayerSlot(i); ok {
			s.inv.player.Slots[j] = w.Slots[i]
		}
	}
}

func handleContainerSlot(s *Session, pk *javapacket.SetContainerSlot) error {
	switch pk.WindowID {
	case javapacket.WindowCursor:
		w := s.inv.active()
		w.Cursor = pk.Item
		return s.sendCursor(pk.Item)
	case javapacket.WindowPlayerInventory:
		s.inv.player.SetSlot(s.inv.player.StateID, int(pk.Slot), pk.Item)
		return s.sendSlot(s.inv.player, int(pk.Slot))
	}
	w, ok := s.inv.window(uint8(pk.WindowID))
	if !ok {
		s.log.Debug("dropped slot of unknown window", "window", pk.WindowID)
		return nil
	}
	w.SetSlot(pk.StateID, int(pk.Slot), pk.Item)
	if w != s.inv.player {
		if j, ok := w.Layout.PlayerSlot(int(pk.Slot)); ok {
			s.inv.player.Slots[j] = pk.Item
		}
	}
	return s.sendSlot(w, int(pk.Slot))
}

func handleOpenScreen(s *Session, pk *javapacket.OpenScreen) error {
	if s.inv.open != nil {
		if err := s.closeWindow(true); err != nil {
			return err
		}
	}
	id := s.inv.nextWindow
	if s.inv.nextWindow++; s.inv.nextWindow >= 100 {
		s.inv.nextWindow = 1
	}
	layout, err := inventory.Open(pk.WindowType, uint32(id))
	if err != nil {
		s.log.Debug("closed window without bedrock equivalent", "type", pk.WindowType, "err", err)
		return s.writeBack(&javapacket.ServerboundCloseContainer{WindowID: uint8(pk.WindowID)})
	}
	s.inv.open = inventory.NewWindow(uint8(pk.WindowID), layout)
	s.inv.open.StackSize = s.set.MaxStack
	s.inv.bedrockWindow = id

	pos := s.fakeBlockPosition()
	if err := s.placeFakeBlocks(layout, pos, renderText(pk.Title)); err != nil {
		return err
	}
	return s.writeFront(&packet.ContainerOpen{
		WindowID:                id,
		ContainerType:           layout.ContainerType,
		ContainerPosition:       protocol.BlockPos(pos),
		ContainerEntityUniqueID: -1,
	})
}

// fakeBlockPosition returns the position a container block is placed at: out of sight below the player, but
// within reach.
func (s *Session) fakeBlockPosition() javaprotocol.BlockPos {
	pos := javaBlockPos(s.movement.position)
	pos[1] -= 2
	if pos[1] < int32(s.world.dimension.Range.Min()) {
		pos[1] += 4
	}
	return pos
}

// placeFakeBlocks places the block a container is opened at, or two chests next to each other for windows
// with the size of a double chest.
func (s *Session) placeFakeBlocks(l *inventory.Layout, pos javaprotocol.BlockPos, title string) error {
	if l.Block == "" {
		return nil
	}
	rid := mappings.BlockState{Name: l.Block, Properties: fakeBlockStates[l.Block]}.RuntimeID()
	s.inv.fakeBlocks = []javaprotocol.BlockPos{pos}
	if l.BedrockSize == 54 {
		s.inv.fakeBlocks = append(s.inv.fakeBlocks, javaprotocol.BlockPos{pos[0] + 1, pos[1], pos[2]})
	}
	for i, p := range s.inv.fakeBlocks {
		if err := s.writeFront(&packet.UpdateBlock{Position: protocol.BlockPos(p), NewBlockRuntimeID: rid, Flags: packet.BlockUpdateNetwork}); err != nil {
			return err
		}
		nbt := map[string]any{"id": blockEntityID(l.Block), "x": p[0], "y": p[1], "z": p[2]}
		if title != "" {
			nbt["CustomName"] = title
		}
		if len(s.inv.fakeBlocks) == 2 {
			other := s.inv.fakeBlocks[1-i]
			nbt["pairx"], nbt["pairz"], nbt["pairlead"] = other[0], other[2], boolByte(i == 0)
		}
		if err := s.writeFront(&packet.BlockActorData{Position: protocol.BlockPos(p), NBTData: nbt}); err != nil {
			return err
		}
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// blockEntityID returns the block entity id of a container block.
func blockEntityID(block string) string {
	switch block {
	case "minecraft:chest":
		return "Chest"
	case "minecraft:undyed_shulker_box":
		return "ShulkerBox"
	case "minecraft:dispenser":
		return "Dispenser"
	case "minecraft:hopper":
		return "Hopper"
	case "minecraft:furnace":
		return "Furnace"
	case "minecraft:blast_furnace":
		return "BlastFurnace"
	case "minecraft:smoker":
		return "Smoker"
	case "minecraft:brewing_stand":
		return "BrewingStand"
	}
	return ""
}

// restoreFakeBlocks shows the blocks of the world again where container blocks were placed.
func (s *Session) restoreFakeBlocks() error {
	f := palette.JavaBlocks(s.set.JavaBlockBits())
	for _, pos := range s.inv.fakeBlocks {
		rid := s.set.AirBlock()
		if state, ok := s.chunks.block(pos, f); ok {
			if rid, ok = s.set.BedrockBlock(state); !ok {
				rid = s.set.FallbackBlock()
			}
		}
		if err := s.writeFront(&packet.UpdateBlock{Position: protocol.BlockPos(pos), NewBlockRuntimeID: rid, Flags: packet.BlockUpdateNetwork}); err != nil {
			return err
		}
	}
	s.inv.fakeBlocks = nil
	return nil
}

// closeWindow closes the open window. serverSide is set if the server closed it rather than the client.
func (s *Session) closeWindow(serverSide bool) error {
	if s.inv.open == nil {
		return nil
	}
	id := s.inv.bedrockWindow
	s.inv.open = nil
	for slot := range s.inv.shown {
		if slot.Window == uint32(id) {
			delete(s.inv.shown, slot)
		}
	}
	if err := s.writeFront(&packet.ContainerClose{WindowID: id, ServerSide: serverSide}); err != nil {
		return err
	}
	return s.restoreFakeBlocks()
}

func handleCloseScreen(s *Session, pk *javapacket.ClientboundCloseContainer) error {
	if s.inv.open == nil || s.inv.open.ID != pk.WindowID {
		return nil
	}
	return s.closeWindow(true)
}

// handleContainerClose handles the client closing a window, which it only does once the server agrees.
func handleContainerClose(s *Session, pk *packet.ContainerClose) error {
	if s.inv.open != nil && pk.WindowID == s.inv.bedrockWindow {
		if err := s.writeBack(&javapacket.ServerboundCloseContainer{WindowID: s.inv.open.ID}); err != nil {
			return err
		}
		return s.closeWindow(false)
	}
	// The player inventory.
	if err := s.writeBack(&javapacket.ServerboundCloseContainer{WindowID: 0}); err != nil {
		return err
	}
	return s.writeFront(&packet.ContainerClose{WindowID: pk.WindowID})
}

// handleInteract opens the inventory of the player when it asks for it.
func handleInteract(s *Session, pk *packet.Interact) error {
	if pk.ActionType != packet.InteractActionOpenInventory || s.inv.open != nil {
		return nil
	}
	return s.writeFront(&packet.ContainerOpen{
		WindowID:                0,
		ContainerType:           containerTypeInventory,
		ContainerPosition:       protocol.BlockPos(javaBlockPos(s.movement.position)),
		ContainerEntityUniqueID: entity.PlayerRuntimeID,
	})
}

func handleHeldItem(s *Session, pk *javapacket.ClientboundSetHeldItem) error {
	if pk.Slot < 0 || pk.Slot > 8 {
		return nil
	}
	s.inv.heldSlot = int16(pk.Slot)
	return s.writeFront(&packet.PlayerHotBar{SelectedHotBarSlot: uint32(pk.Slot), WindowID: protocol.WindowIDInventory, SelectHotBarSlot: true})
}

// handleMobEquipment translates the player selecting another hotbar slot.
func handleMobEquipment(s *Session, pk *packet.MobEquipment) error {
	if pk.WindowID != protocol.WindowIDInventory || pk.HotBarSlot > 8 || int16(pk.HotBarSlot) == s.inv.heldSlot {
		return nil
	}
	s.inv.heldSlot = int16(pk.HotBarSlot)
	return s.writeBack(&javapacket.ServerboundSetHeldItem{Slot: s.inv.heldSlot})
}

// errUnmappable is returned for an action on a slot that has no slot in the Java window.
var errUnmappable = errors.New("slot has no java equivalent")

// javaSlot returns the slot of the active Java window a slot of a Bedrock request refers to.
func (s *Session) javaSlot(info protocol.StackRequestSlotInfo) (int, error) {
	var b inventory.Slot
	switch info.Container.ContainerID {
	case protocol.ContainerCursor:
		return inventory.Cursor, nil
	case protocol.ContainerHotBar, protocol.ContainerInventory, protocol.ContainerCombinedHotBarAndInventory:
		b = inventory.Slot{Window: protocol.WindowIDInventory, Index: uint32(info.Slot)}
	case protocol.ContainerOffhand:
		b = inventory.Slot{Window: protocol.WindowIDOffHand, Index: uint32(info.Slot)}
	case protocol.ContainerArmor:
		b = inventory.Slot{Window: protocol.WindowIDArmour, Index: uint32(info.Slot)}
	case protocol.ContainerCraftingInput:
		b = inventory.Slot{Window: protocol.WindowIDUI, Index: uint32(info.Slot)}
	case protocol.ContainerCreatedOutput:
		b = inventory.Slot{Window: protocol.WindowIDUI, Index: inventory.UIOutput}
	default:
		b = inventory.Slot{Window: uint32(s.inv.bedrockWindow), Index: uint32(info.Slot)}
	}
	if i, ok := s.inv.active().Layout.Java(b); ok {
		return i, nil
	}
	return 0, errUnmappable
}

// handleItemStackRequest carries out the moves of the client in its inventory as Java clicks.
func handleItemStackRequest(s *Session, pk *packet.ItemStackRequest) error {
	responses := make([]protocol.ItemStackResponse, 0, len(pk.Requests))
	for _, req := range pk.Requests {
		status := uint8(protocol.ItemStackResponseStatusOK)
		clicks, err := s.planRequest(req)
		if err != nil {
			s.log.Debug("rejected inventory request", "request", req.RequestID, "err", err)
			status = protocol.ItemStackResponseStatusError
		}
		responses = append(responses, protocol.ItemStackResponse{Status: status, RequestID: req.RequestID})
		for _, click := range clicks {
			if err := s.writeBack(&click); err != nil {
				return err
			}
		}
		if status != protocol.ItemStackResponseStatusOK {
			// The client already made the move it asked for, so it is shown the window as it was.
			if err := s.sendWindow(s.inv.active()); err != nil {
				return err
			}
		}
	}
	return s.writeFront(&packet.ItemStackResponse{Responses: responses})
}

// planRequest plans the clicks of every action of a request. Actions on slots without a Java slot are
// ignored with the noop policy, and fail the request otherwise.
func (s *Session) planRequest(req protocol.ItemStackRequest) ([]javapacket.ClickContainer, error) {
	w := s.inv.active()
	backup := *w
	backup.Slots = append([]javaprotocol.Slot(nil), w.Slots...)

	var clicks []javapacket.ClickContainer
	for _, action := range req.Actions {
		more, err := s.planAction(w, action)
		if errors.Is(err, errUnmappable) && s.conf.UnmappableSlots == inventory.PolicyNoop {
			continue
		}
		if err != nil {
			*w = backup
			return nil, err
		}
		clicks = append(clicks, more...)
	}
	return clicks, nil
}

func (s *Session) planAction(w *inventory.Window, action protocol.StackRequestAction) ([]javapacket.ClickContainer, error) {
	switch a := action.(type) {
	case *protocol.TakeStackRequestAction:
		return s.planMove(w, a.Source, a.Destination, int32(a.Count))
	case *protocol.PlaceStackRequestAction:
		return s.planMove(w, a.Source, a.Destination, int32(a.Count))
	case *protocol.SwapStackRequestAction:
		src, err := s.javaSlot(a.Source)
		if err != nil {
			return nil, err
		}
		dst, err := s.javaSlot(a.Destination)
		if err != nil {
			return nil, err
		}
		return w.Swap(src, dst)
	case *protocol.DropStackRequestAction:
		src, err := s.javaSlot(a.Source)
		if err != nil {
			return nil, err
		}
		return w.Drop(src, int32(a.Count))
	}
	return nil, inventory.ErrInvalidMove
}

func (s *Session) planMove(w *inventory.Window, source, destination protocol.StackRequestSlotInfo, count int32) ([]javapacket.ClickContainer, error) {
	src, err := s.javaSlot(source)
	if err != nil {
		return nil, err
	}
	dst, err := s.javaSlot(destination)
	if err != nil {
		return nil, err
	}
	return w.Move(src, dst, count)
}

// javaBlockPos returns the position of the block a position is in.
func javaBlockPos(p mgl64.Vec3) javaprotocol.BlockPos {
	return javaprotocol.BlockPos{int32(math.Floor(p.X())), int32(math.Floor(p.Y())), int32(math.Floor(p.Z()))}
}
