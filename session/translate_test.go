package session

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/cooldogedev/crossplay/entity"
	javaprotocol "github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/cooldogedev/crossplay/mappings"
	"github.com/cooldogedev/crossplay/palette"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// newTestSession returns a playing session connected to fakes, without running it.
func newTestSession(t *testing.T) (*Session, *fakeFront, *fakeBack) {
	t.Helper()
	set, ok := testTables(t).Set(protocol.CurrentProtocol, javaprotocol.Version1_20_5)
	if !ok {
		t.Fatal("no mappings")
	}
	front, back := newFakeFront(), newFakeBack(javaprotocol.Version1_20_5)
	s := newSession(slog.New(slog.DiscardHandler), testConfig().withDefaults(), DefaultRegistry(), set, fakeDialer{back: back}, front)
	s.back = back
	for _, st := range []State{StateLoggingIn, StateConfiguring, StatePlaying} {
		s.setState(st)
	}
	s.entities.Bind(42)
	return s, front, back
}

func drainFront(f *fakeFront) []packet.Packet {
	var out []packet.Packet
	for {
		select {
		case pk := <-f.out:
			out = append(out, pk)
		default:
			return out
		}
	}
}

func drainBack(b *fakeBack) []javapacket.Packet {
	var out []javapacket.Packet
	for {
		select {
		case pk := <-b.out:
			out = append(out, pk)
		default:
			return out
		}
	}
}

func TestTeleport(t *testing.T) {
	s, front, back := newTestSession(t)
	s.movement.position = mgl64.Vec3{5, 64, 5}

	err := handleTeleport(s, &javapacket.SynchronisePlayerPosition{
		Position:   mgl64.Vec3{1, 70, 2},
		Yaw:        90,
		Flags:      javapacket.RelativeX,
		TeleportID: 9,
	})
	if err != nil {
		t.Fatal(err)
	}
	fronts := drainFront(front)
	if len(fronts) != 1 {
		t.Fatalf("client received %v packets, want 1", len(fronts))
	}
	move, ok := fronts[0].(*packet.MovePlayer)
	if !ok || move.Mode != packet.MoveModeTeleport || move.EntityRuntimeID != entity.PlayerRuntimeID {
		t.Fatalf("client received %#v", fronts[0])
	}
	if want := (mgl32.Vec3{6, 71.62, 2}); !move.Position.ApproxEqualThreshold(want, 1e-4) {
		t.Fatalf("teleported to %v, want %v", move.Position, want)
	}

	backs := drainBack(back)
	if len(backs) != 2 {
		t.Fatalf("server received %v packets, want 2", len(backs))
	}
	if c, ok := backs[0].(*javapacket.ConfirmTeleportation); !ok || c.TeleportID != 9 {
		t.Fatalf("first packet = %#v, want teleport confirmation", backs[0])
	}
	if p, ok := backs[1].(*javapacket.SetPlayerPositionRotation); !ok || p.Position != (mgl64.Vec3{6, 70, 2}) {
		t.Fatalf("second packet = %#v", backs[1])
	}
}

func TestAuthInputKeepsPosition(t *testing.T) {
	s, _, back := newTestSession(t)
	in := authInput(mgl32.Vec3{5, 71.62, 5})

	// The first input moves the player, the second lands it on the ground.
	for range 2 {
		if err := handleAuthInput(s, in); err != nil {
			t.Fatal(err)
		}
	}
	backs := drainBack(back)
	if len(backs) != 2 {
		t.Fatalf("server received %v packets, want 2", len(backs))
	}
	if _, ok := backs[0].(*javapacket.SetPlayerPosition); !ok {
		t.Fatalf("first packet = %#v, want position", backs[0])
	}
	if g, ok := backs[1].(*javapacket.SetPlayerOnGround); !ok || !g.OnGround {
		t.Fatalf("second packet = %#v, want on ground", backs[1])
	}

	for i := range keepPositionTicks {
		if err := handleAuthInput(s, in); err != nil {
			t.Fatal(err)
		}
		backs := drainBack(back)
		if i < keepPositionTicks-1 {
			if len(backs) != 0 {
				t.Fatalf("idle tick %v sent %v packets", i, len(backs))
			}
			continue
		}
		if len(backs) != 1 {
			t.Fatalf("idle ticks sent %v packets, want 1", len(backs))
		}
		if g, ok := backs[0].(*javapacket.SetPlayerOnGround); !ok || !g.OnGround {
			t.Fatalf("idle packet = %#v, want on ground", backs[0])
		}
	}
}

func TestAuthInputCommands(t *testing.T) {
	s, _, back := newTestSession(t)
	steps := []struct {
		flags []int
		want  []int32
	}{
		{flags: []int{packet.InputFlagStartSneaking}, want: []int32{javapacket.PlayerCommandStartSneaking}},
		{flags: []int{packet.InputFlagStartSneaking}},
		{flags: []int{packet.InputFlagStopSneaking, packet.InputFlagStartSprinting}, want: []int32{javapacket.PlayerCommandStopSneaking, javapacket.PlayerCommandStartSprinting}},
	}
	for i, step := range steps {
		if err := handleAuthInput(s, authInput(mgl32.Vec3{}, step.flags...)); err != nil {
			t.Fatal(err)
		}
		var got []int32
		for _, pk := range drainBack(back) {
			if c, ok := pk.(*javapacket.PlayerCommand); ok {
				if c.EntityID != 42 {
					t.Fatalf("command for entity %v, want 42", c.EntityID)
				}
				got = append(got, c.Action)
			}
		}
		if len(got) != len(step.want) {
			t.Fatalf("step %v: commands = %v, want %v", i, got, step.want)
		}
		for j := range got {
			if got[j] != step.want[j] {
				t.Fatalf("step %v: commands = %v, want %v", i, got, step.want)
			}
		}
	}
}

func emptyColumn(sections int) []palette.JavaSection {
	col := make([]palette.JavaSection, sections)
	for i := range col {
		col[i] = palette.JavaSection{Blocks: palette.Uniform(0), Biomes: palette.Uniform(0)}
	}
	return col
}

func TestSectionBlocks(t *testing.T) {
	s, front, _ := newTestSession(t)
	s.chunks.store(chunkPos{}, emptyColumn(24), -64)

	// Stone at x 1, y 66, z 3.
	err := handleSectionBlocks(s, &javapacket.UpdateSectionBlocks{
		Section: javaprotocol.SectionPos{0, 4, 0},
		Blocks:  []int64{1<<12 | 1<<8 | 3<<4 | 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	pos := javaprotocol.BlockPos{1, 66, 3}
	if state, ok := s.chunks.block(pos, s.blockFormat()); !ok || state != 1 {
		t.Fatalf("cached block = %v (%v), want 1", state, ok)
	}
	update := expectFront[*packet.UpdateBlock](t, front)
	stone, _ := s.set.BedrockBlock(1)
	if update.Position != (protocol.BlockPos{1, 66, 3}) || update.NewBlockRuntimeID != stone {
		t.Fatalf("update = %+v", update)
	}
}

func TestColumnEncoder(t *testing.T) {
	s, _, _ := newTestSession(t)
	enc := s.columnEncoder()

	payload, count, err := enc.encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 || len(payload) == 0 || payload[len(payload)-1] != 0 {
		t.Fatalf("empty column encoded to %v sub chunks and %v bytes", count, len(payload))
	}

	col := emptyColumn(24)
	col[4] = palette.JavaSection{BlockCount: 4096, Blocks: palette.Uniform(1), Biomes: palette.Uniform(0)}
	payload, count, err = enc.encode(col)
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Fatalf("sub chunk count = %v, want 5", count)
	}
	buf := bytes.NewBuffer(payload)
	stone, _ := s.set.BedrockBlock(1)
	for i := range 5 {
		index, layers, err := palette.ReadSubChunk(buf)
		if err != nil {
			t.Fatalf("sub chunk %v: %v", i, err)
		}
		if want := int8(i - 4); index != want {
			t.Fatalf("sub chunk %v has index %v, want %v", i, index, want)
		}
		if i == 4 && (len(layers) != 1 || layers[0].Palette[0] != stone) {
			t.Fatalf("stone sub chunk = %+v", layers)
		}
	}
	if _, err := palette.ReadBiomes(buf, 24); err != nil {
		t.Fatalf("biomes: %v", err)
	}
}

func TestGameEvent(t *testing.T) {
	tests := []struct {
		name  string
		event *javapacket.GameEvent
		check func(t *testing.T, pk packet.Packet)
	}{
		{
			name:  "begin raining",
			event: &javapacket.GameEvent{Event: javapacket.GameEventBeginRaining},
			check: func(t *testing.T, pk packet.Packet) {
				if e, ok := pk.(*packet.LevelEvent); !ok || e.EventType != levelEventStartRain {
					t.Fatalf("got %#v", pk)
				}
			},
		},
		{
			name:  "end raining",
			event: &javapacket.GameEvent{Event: javapacket.GameEventEndRaining},
			check: func(t *testing.T, pk packet.Packet) {
				if e, ok := pk.(*packet.LevelEvent); !ok || e.EventType != levelEventStopRain {
					t.Fatalf("got %#v", pk)
				}
			},
		},
		{
			name:  "spectator",
			event: &javapacket.GameEvent{Event: javapacket.GameEventChangeGameMode, Value: 3},
			check: func(t *testing.T, pk packet.Packet) {
				if g, ok := pk.(*packet.SetPlayerGameType); !ok || g.GameType != gameTypeSpectator {
					t.Fatalf("got %#v", pk)
				}
			},
		},
		{
			name:  "immediate respawn",
			event: &javapacket.GameEvent{Event: javapacket.GameEventImmediateRespawn, Value: 1},
			check: func(t *testing.T, pk packet.Packet) {
				g, ok := pk.(*packet.GameRulesChanged)
				if !ok || len(g.GameRules) != 1 || g.GameRules[0].Value != true {
					t.Fatalf("got %#v", pk)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, front, _ := newTestSession(t)
			if err := handleGameEvent(s, tt.event); err != nil {
				t.Fatal(err)
			}
			fronts := drainFront(front)
			if len(fronts) != 1 {
				t.Fatalf("client received %v packets, want 1", len(fronts))
			}
			tt.check(t, fronts[0])
		})
	}
}

func TestDeathAndRespawn(t *testing.T) {
	s, front, back := newTestSession(t)

	if err := handleHealth(s, &javapacket.SetHealth{Health: 0, Food: 20}); err != nil {
		t.Fatal(err)
	}
	attrs := expectFront[*packet.UpdateAttributes](t, front)
	if len(attrs.Attributes) != 3 || attrs.Attributes[0].Name != "minecraft:health" || attrs.Attributes[0].Value != 0 {
		t.Fatalf("attributes = %+v", attrs.Attributes)
	}
	if r := expectFront[*packet.Respawn](t, front); r.State != packet.RespawnStateSearchingForSpawn {
		t.Fatalf("respawn state = %v", r.State)
	}

	if err := handleRespawnRequest(s, &packet.Respawn{State: packet.RespawnStateClientReadyToSpawn}); err != nil {
		t.Fatal(err)
	}
	if c := expectBack[*javapacket.ClientCommand](t, back); c.Action != javapacket.ClientCommandRespawn {
		t.Fatalf("client command = %v", c.Action)
	}

	if err := handleRespawn(s, &javapacket.Respawn{Spawn: javapacket.SpawnInfo{DimensionTypeID: -1}}); err != nil {
		t.Fatal(err)
	}
	if r := expectFront[*packet.Respawn](t, front); r.State != packet.RespawnStateReadyToSpawn {
		t.Fatalf("respawn state = %v", r.State)
	}
	if s.world.dead {
		t.Fatal("player still dead after respawning")
	}
}

func TestDimensionChange(t *testing.T) {
	s, front, _ := newTestSession(t)
	if err := s.world.loadRegistry(registryDimensionType, []javapacket.RegistryEntry{
		{Name: "minecraft:overworld"},
		{Name: "minecraft:the_nether"},
	}); err != nil {
		t.Fatal(err)
	}
	zombie, _ := s.set.JavaEntityType("minecraft:zombie")
	if err := handleSpawnEntity(s, &javapacket.SpawnEntity{EntityID: 7, Type: zombie}); err != nil {
		t.Fatal(err)
	}
	s.chunks.store(chunkPos{}, emptyColumn(24), -64)
	drainFront(front)

	if err := handleRespawn(s, &javapacket.Respawn{Spawn: javapacket.SpawnInfo{DimensionTypeID: 1}}); err != nil {
		t.Fatal(err)
	}
	if s.world.dimension.ID != mappings.DimensionNether || s.world.dimensionType.height != 256 {
		t.Fatalf("world in dimension %v of height %v", s.world.dimension.ID, s.world.dimensionType.height)
	}
	if len(s.tracked) != 0 || s.chunks.len() != 0 || s.entities.Len() != 1 {
		t.Fatalf("%v entities, %v columns and %v mappings left", len(s.tracked), s.chunks.len(), s.entities.Len())
	}

	var removed, chunks int
	var changed bool
	for _, pk := range drainFront(front) {
		switch pk := pk.(type) {
		case *packet.RemoveActor:
			removed++
		case *packet.ChangeDimension:
			changed = pk.Dimension == mappings.DimensionNether
		case *packet.LevelChunk:
			if pk.Dimension != mappings.DimensionNether {
				t.Fatalf("chunk sent for dimension %v", pk.Dimension)
			}
			chunks++
		}
	}
	if removed != 1 || !changed || chunks != 25 {
		t.Fatalf("removed %v, changed %v, sent %v chunks", removed, changed, chunks)
	}
}

func TestChatToServer(t *testing.T) {
	s, front, back := newTestSession(t)

	if err := handleText(s, &packet.Text{TextType: packet.TextTypeChat, Message: " hello "}); err != nil {
		t.Fatal(err)
	}
	if m := expectBack[*javapacket.ChatMessage](t, back); m.Message != "hello" || m.HasSignature {
		t.Fatalf("chat message = %+v", m)
	}
	if err := handleCommandRequest(s, &packet.CommandRequest{CommandLine: "/gamemode creative"}); err != nil {
		t.Fatal(err)
	}
	if c := expectBack[*javapacket.ChatCommand](t, back); c.Command != "gamemode creative" {
		t.Fatalf("command = %q", c.Command)
	}

	content, _ := javaprotocol.EncodeNetworkNBT("Saved")
	if err := handleSystemChat(s, &javapacket.SystemChat{Content: content, Overlay: true}); err != nil {
		t.Fatal(err)
	}
	if title := expectFront[*packet.SetTitle](t, front); title.ActionType != packet.TitleActionSetActionBar || title.Text != "Saved" {
		t.Fatalf("title = %+v", title)
	}
}

func TestItemStackRequest(t *testing.T) {
	s, front, back := newTestSession(t)
	item := javaprotocol.Slot{ItemID: s.set.JavaFallbackItem(), Count: 10}
	s.inv.player.SetSlot(1, 36, item)

	take := &protocol.TakeStackRequestAction{}
	take.Count = 10
	take.Source = protocol.StackRequestSlotInfo{Container: protocol.FullContainerName{ContainerID: protocol.ContainerHotBar}, Slot: 0}
	take.Destination = protocol.StackRequestSlotInfo{Container: protocol.FullContainerName{ContainerID: protocol.ContainerCursor}, Slot: 0}
	place := &protocol.PlaceStackRequestAction{}
	place.Count = 10
	place.Source = take.Destination
	place.Destination = protocol.StackRequestSlotInfo{Container: protocol.FullContainerName{ContainerID: protocol.ContainerInventory}, Slot: 9}

	err := handleItemStackRequest(s, &packet.ItemStackRequest{Requests: []protocol.ItemStackRequest{{
		RequestID: 3,
		Actions:   []protocol.StackRequestAction{take, place},
	}}})
	if err != nil {
		t.Fatal(err)
	}
	var slots []int16
	for _, pk := range drainBack(back) {
		if c, ok := pk.(*javapacket.ClickContainer); ok {
			slots = append(slots, c.Slot)
		}
	}
	if len(slots) != 2 || slots[0] != 36 || slots[1] != 9 {
		t.Fatalf("clicked slots %v, want [36 9]", slots)
	}
	resp := expectFront[*packet.ItemStackResponse](t, front)
	if len(resp.Responses) != 1 || resp.Responses[0].RequestID != 3 || resp.Responses[0].Status != protocol.ItemStackResponseStatusOK {
		t.Fatalf("responses = %+v", resp.Responses)
	}
	if !s.inv.player.Item(9).Equal(item) || !s.inv.player.Item(36).Empty() {
		t.Fatal("window not updated by the planned clicks")
	}
}

func TestItemStackRequestRejected(t *testing.T) {
	s, front, back := newTestSession(t)

	take := &protocol.TakeStackRequestAction{}
	take.Count = 5
	take.Source = protocol.StackRequestSlotInfo{Container: protocol.FullContainerName{ContainerID: protocol.ContainerHotBar}, Slot: 0}
	take.Destination = protocol.StackRequestSlotInfo{Container: protocol.FullContainerName{ContainerID: protocol.ContainerCursor}, Slot: 0}
	err := handleItemStackRequest(s, &packet.ItemStackRequest{Requests: []protocol.ItemStackRequest{{
		RequestID: 4,
		Actions:   []protocol.StackRequestAction{take},
	}}})
	if err != nil {
		t.Fatal(err)
	}
	if backs := drainBack(back); len(backs) != 0 {
		t.Fatalf("server received %v packets for a rejected request", len(backs))
	}
	resp := expectFront[*packet.ItemStackResponse](t, front)
	if resp.Responses[0].Status != protocol.ItemStackResponseStatusError {
		t.Fatalf("status = %v, want error", resp.Responses[0].Status)
	}
}

func TestOpenAndCloseContainer(t *testing.T) {
	s, front, back := newTestSession(t)
	s.movement.position = mgl64.Vec3{0, 70, 0}

	// Menu type 2 is a single chest.
	if err := handleOpenScreen(s, &javapacket.OpenScreen{WindowID: 5, WindowType: 2}); err != nil {
		t.Fatal(err)
	}
	open := expectFront[*packet.ContainerOpen](t, front)
	if open.WindowID != 1 || open.ContainerPosition != (protocol.BlockPos{0, 68, 0}) {
		t.Fatalf("container open = %+v", open)
	}
	if s.inv.open == nil || s.inv.open.ID != 5 {
		t.Fatal("window not open")
	}

	if err := handleContainerClose(s, &packet.ContainerClose{WindowID: 1}); err != nil {
		t.Fatal(err)
	}
	if c := expectBack[*javapacket.ServerboundCloseContainer](t, back); c.WindowID != 5 {
		t.Fatalf("closed java window %v, want 5", c.WindowID)
	}
	if c := expectFront[*packet.ContainerClose](t, front); c.WindowID != 1 || c.ServerSide {
		t.Fatalf("container close = %+v", c)
	}
	if restore := expectFront[*packet.UpdateBlock](t, front); restore.NewBlockRuntimeID != s.set.AirBlock() {
		t.Fatalf("fake block restored as %v, want air", restore.NewBlockRuntimeID)
	}
	if s.inv.open != nil {
		t.Fatal("window still open")
	}
}
