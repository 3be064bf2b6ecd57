package packet

import (
	"slices"

	"github.com/cooldogedev/crossplay/java/protocol"
)

// Table maps the wire ids of one connection state and direction of a protocol version to packets.
type Table struct {
	pool map[int32]func() Packet
	ids  map[uint32]int32
}

// New returns a new packet for the wire id passed, or false if no packet is registered for it.
func (t *Table) New(id int32) (Packet, bool) {
	f, ok := t.pool[id]
	if !ok {
		return nil, false
	}
	return f(), true
}

// WireID returns the wire id of the packet kind passed.
func (t *Table) WireID(kind uint32) (int32, bool) {
	id, ok := t.ids[kind]
	return id, ok
}

// Len returns the amount of packets in the table.
func (t *Table) Len() int {
	return len(t.pool)
}

// Tables holds the packet tables of a single protocol version for every state and direction.
type Tables struct {
	version int32
	tables  [protocol.StatePlay + 1][2]*Table
}

// Version returns the protocol version of the tables.
func (t *Tables) Version() int32 {
	return t.version
}

// Table returns the table of the state and direction passed.
func (t *Tables) Table(state protocol.State, bound protocol.Bound) *Table {
	return t.tables[state][bound]
}

// Lookup returns the tables of the protocol version passed.
func Lookup(version int32) (*Tables, bool) {
	t, ok := versions[version]
	return t, ok
}

// Versions returns all supported protocol versions, oldest first.
func Versions() []int32 {
	v := make([]int32, 0, len(versions))
	for version := range versions {
		v = append(v, version)
	}
	slices.Sort(v)
	return v
}

// row registers a packet in a state and direction with its wire id in 1.20.3 and 1.20.5. An id of -1
// means the packet does not exist in that version.
type row struct {
	state   protocol.State
	bound   protocol.Bound
	new     func() Packet
	v1_20_3 int32
	v1_20_5 int32
}

var versions = buildTables(map[int32]func(row) int32{
	protocol.Version1_20_3: func(r row) int32 { return r.v1_20_3 },
	protocol.Version1_20_5: func(r row) int32 { return r.v1_20_5 },
})

func buildTables(columns map[int32]func(row) int32) map[int32]*Tables {
	m := make(map[int32]*Tables, len(columns))
	for version, column := range columns {
		t := &Tables{version: version}
		for state := range t.tables {
			for bound := range t.tables[state] {
				t.tables[state][bound] = &Table{pool: map[int32]func() Packet{}, ids: map[uint32]int32{}}
			}
		}
		for _, r := range rows {
			id := column(r)
			if id < 0 {
				continue
			}
			table := t.tables[r.state][r.bound]
			if _, ok := table.pool[id]; ok {
				panic("duplicate packet id registered")
			}
			table.pool[id] = r.new
			table.ids[r.new().ID()] = id
		}
		m[version] = t
	}
	return m
}

const (
	hs   = protocol.StateHandshaking
	lg   = protocol.StateLogin
	cfg  = protocol.StateConfiguration
	play = protocol.StatePlay
	cb   = protocol.Clientbound
	sb   = protocol.Serverbound
)

var rows = []row{
	{hs, sb, func() Packet { return &Handshake{} }, 0x00, 0x00},

	{lg, cb, func() Packet { return &LoginDisconnect{} }, 0x00, 0x00},
	{lg, cb, func() Packet { return &EncryptionRequest{} }, 0x01, 0x01},
	{lg, cb, func() Packet { return &LoginSuccess{} }, 0x02, 0x02},
	{lg, cb, func() Packet { return &SetCompression{} }, 0x03, 0x03},
	{lg, cb, func() Packet { return &LoginPluginRequest{} }, 0x04, 0x04},
	{lg, cb, func() Packet { return &CookieRequest{} }, -1, 0x05},
	{lg, sb, func() Packet { return &LoginStart{} }, 0x00, 0x00},
	{lg, sb, func() Packet { return &LoginPluginResponse{} }, 0x02, 0x02},
	{lg, sb, func() Packet { return &LoginAcknowledged{} }, 0x03, 0x03},
	{lg, sb, func() Packet { return &CookieResponse{} }, -1, 0x04},

	{cfg, cb, func() Packet { return &CookieRequest{} }, -1, 0x00},
	{cfg, cb, func() Packet { return &ClientboundPluginMessage{} }, 0x00, 0x01},
	{cfg, cb, func() Packet { return &ConfigurationDisconnect{} }, 0x01, 0x02},
	{cfg, cb, func() Packet { return &FinishConfiguration{} }, 0x02, 0x03},
	{cfg, cb, func() Packet { return &ClientboundKeepAlive{} }, 0x03, 0x04},
	{cfg, cb, func() Packet { return &Ping{} }, 0x04, 0x05},
	{cfg, cb, func() Packet { return &RegistryData{} }, 0x05, 0x07},
	{cfg, cb, func() Packet { return &AddResourcePack{} }, 0x07, 0x09},
	{cfg, cb, func() Packet { return &FeatureFlags{} }, 0x08, 0x0C},
	{cfg, cb, func() Packet { return &ClientboundKnownPacks{} }, -1, 0x0E},
	{cfg, sb, func() Packet { return &ClientInformation{} }, 0x00, 0x00},
	{cfg, sb, func() Packet { return &CookieResponse{} }, -1, 0x01},
	{cfg, sb, func() Packet { return &ServerboundPluginMessage{} }, 0x01, 0x02},
	{cfg, sb, func() Packet { return &AcknowledgeFinishConfiguration{} }, 0x02, 0x03},
	{cfg, sb, func() Packet { return &ServerboundKeepAlive{} }, 0x03, 0x04},
	{cfg, sb, func() Packet { return &Pong{} }, 0x04, 0x05},
	{cfg, sb, func() Packet { return &ResourcePackResponse{} }, 0x05, 0x06},
	{cfg, sb, func() Packet { return &ServerboundKnownPacks{} }, -1, 0x07},

	{play, cb, func() Packet { return &BundleDelimiter{} }, 0x00, 0x00},
	{play, cb, func() Packet { return &SpawnEntity{} }, 0x01, 0x01},
	{play, cb, func() Packet { return &SpawnExperienceOrb{} }, 0x02, 0x02},
	{play, cb, func() Packet { return &EntityAnimation{} }, 0x03, 0x03},
	{play, cb, func() Packet { return &BlockUpdate{} }, 0x09, 0x09},
	{play, cb, func() Packet { return &ChangeDifficulty{} }, 0x0B, 0x0B},
	{play, cb, func() Packet { return &ChunkBatchFinished{} }, 0x0C, 0x0C},
	{play, cb, func() Packet { return &ChunkBatchStart{} }, 0x0D, 0x0D},
	{play, cb, func() Packet { return &ClearTitles{} }, 0x0F, 0x0F},
	{play, cb, func() Packet { return &ClientboundCloseContainer{} }, 0x12, 0x12},
	{play, cb, func() Packet { return &SetContainerContent{} }, 0x13, 0x13},
	{play, cb, func() Packet { return &SetContainerSlot{} }, 0x15, 0x15},
	{play, cb, func() Packet { return &CookieRequest{} }, -1, 0x16},
	{play, cb, func() Packet { return &ClientboundPluginMessage{} }, 0x18, 0x19},
	{play, cb, func() Packet { return &Disconnect{} }, 0x1B, 0x1D},
	{play, cb, func() Packet { return &DisguisedChat{} }, 0x1C, 0x1E},
	{play, cb, func() Packet { return &EntityEvent{} }, 0x1D, 0x1F},
	{play, cb, func() Packet { return &UnloadChunk{} }, 0x1F, 0x21},
	{play, cb, func() Packet { return &GameEvent{} }, 0x20, 0x22},
	{play, cb, func() Packet { return &ClientboundKeepAlive{} }, 0x24, 0x26},
	{play, cb, func() Packet { return &ChunkData{} }, 0x25, 0x27},
	{play, cb, func() Packet { return &Login{} }, 0x29, 0x2B},
	{play, cb, func() Packet { return &UpdateEntityPosition{} }, 0x2C, 0x2E},
	{play, cb, func() Packet { return &UpdateEntityPositionRotation{} }, 0x2D, 0x2F},
	{play, cb, func() Packet { return &UpdateEntityRotation{} }, 0x2E, 0x30},
	{play, cb, func() Packet { return &OpenScreen{} }, 0x31, 0x33},
	{play, cb, func() Packet { return &Ping{} }, 0x33, 0x35},
	{play, cb, func() Packet { return &PlayerChat{} }, 0x37, 0x39},
	{play, cb, func() Packet { return &PlayerInfoRemove{} }, 0x3B, 0x3D},
	{play, cb, func() Packet { return &PlayerInfoUpdate{} }, 0x3C, 0x3E},
	{play, cb, func() Packet { return &SynchronisePlayerPosition{} }, 0x3E, 0x40},
	{play, cb, func() Packet { return &RemoveEntities{} }, 0x40, 0x42},
	{play, cb, func() Packet { return &AddResourcePack{} }, 0x44, 0x46},
	{play, cb, func() Packet { return &Respawn{} }, 0x45, 0x47},
	{play, cb, func() Packet { return &SetHeadRotation{} }, 0x46, 0x48},
	{play, cb, func() Packet { return &UpdateSectionBlocks{} }, 0x47, 0x49},
	{play, cb, func() Packet { return &SetActionBarText{} }, 0x4A, 0x4C},
	{play, cb, func() Packet { return &ClientboundSetHeldItem{} }, 0x51, 0x53},
	{play, cb, func() Packet { return &SetCenterChunk{} }, 0x52, 0x54},
	{play, cb, func() Packet { return &SetRenderDistance{} }, 0x53, 0x55},
	{play, cb, func() Packet { return &SetDefaultSpawnPosition{} }, 0x54, 0x56},
	{play, cb, func() Packet { return &SetEntityMetadata{} }, 0x56, 0x58},
	{play, cb, func() Packet { return &SetEntityVelocity{} }, 0x58, 0x5A},
	{play, cb, func() Packet { return &SetEquipment{} }, 0x59, 0x5B},
	{play, cb, func() Packet { return &SetExperience{} }, 0x5A, 0x5C},
	{play, cb, func() Packet { return &SetHealth{} }, 0x5B, 0x5D},
	{play, cb, func() Packet { return &SetSubtitleText{} }, 0x61, 0x63},
	{play, cb, func() Packet { return &UpdateTime{} }, 0x62, 0x64},
	{play, cb, func() Packet { return &SetTitleText{} }, 0x63, 0x65},
	{play, cb, func() Packet { return &SetTitleAnimationTimes{} }, 0x64, 0x66},
	{play, cb, func() Packet { return &EntitySoundEffect{} }, 0x65, 0x67},
	{play, cb, func() Packet { return &SoundEffect{} }, 0x66, 0x68},
	{play, cb, func() Packet { return &StartConfiguration{} }, 0x67, 0x69},
	{play, cb, func() Packet { return &StopSound{} }, 0x68, 0x6A},
	{play, cb, func() Packet { return &SystemChat{} }, 0x69, 0x6C},
	{play, cb, func() Packet { return &PickupItem{} }, 0x6C, 0x6F},
	{play, cb, func() Packet { return &TeleportEntity{} }, 0x6D, 0x70},

	{play, sb, func() Packet { return &ConfirmTeleportation{} }, 0x00, 0x00},
	{play, sb, func() Packet { return &ChatCommand{} }, 0x04, 0x04},
	{play, sb, func() Packet { return &ChatMessage{} }, 0x05, 0x06},
	{play, sb, func() Packet { return &ChunkBatchReceived{} }, 0x07, 0x08},
	{play, sb, func() Packet { return &ClientCommand{} }, 0x08, 0x09},
	{play, sb, func() Packet { return &ClientInformation{} }, 0x09, 0x0A},
	{play, sb, func() Packet { return &AcknowledgeConfiguration{} }, 0x0B, 0x0C},
	{play, sb, func() Packet { return &ClickContainer{} }, 0x0D, 0x0E},
	{play, sb, func() Packet { return &ServerboundCloseContainer{} }, 0x0E, 0x0F},
	{play, sb, func() Packet { return &ServerboundPluginMessage{} }, 0x10, 0x12},
	{play, sb, func() Packet { return &Interact{} }, 0x13, 0x16},
	{play, sb, func() Packet { return &ServerboundKeepAlive{} }, 0x15, 0x18},
	{play, sb, func() Packet { return &SetPlayerPosition{} }, 0x17, 0x1A},
	{play, sb, func() Packet { return &SetPlayerPositionRotation{} }, 0x18, 0x1B},
	{play, sb, func() Packet { return &SetPlayerRotation{} }, 0x19, 0x1C},
	{play, sb, func() Packet { return &SetPlayerOnGround{} }, 0x1A, 0x1D},
	{play, sb, func() Packet { return &PlayerAction{} }, 0x21, 0x24},
	{play, sb, func() Packet { return &PlayerCommand{} }, 0x22, 0x25},
	{play, sb, func() Packet { return &Pong{} }, 0x24, 0x27},
	{play, sb, func() Packet { return &ResourcePackResponse{} }, 0x28, 0x2B},
	{play, sb, func() Packet { return &ServerboundSetHeldItem{} }, 0x2C, 0x2F},
	{play, sb, func() Packet { return &SetCreativeModeSlot{} }, 0x2F, 0x32},
	{play, sb, func() Packet { return &SwingArm{} }, 0x33, 0x36},
	{play, sb, func() Packet { return &UseItemOn{} }, 0x35, 0x38},
	{play, sb, func() Packet { return &UseItem{} }, 0x36, 0x39},
}
