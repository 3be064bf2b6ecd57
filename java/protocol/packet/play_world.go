package packet

import (
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/go-gl/mathgl/mgl64"
)

// BundleDelimiter marks the start and end of a bundle of packets that must be handled in the same tick.
type BundleDelimiter struct{}

func (*BundleDelimiter) ID() uint32 { return IDBundleDelimiter }

func (*BundleDelimiter) Marshal(protocol.IO) {}

// DeathLocation is the last death location of a player.
type DeathLocation struct {
	Dimension string
	Position  protocol.BlockPos
}

func (x *DeathLocation) Marshal(io protocol.IO) {
	io.Identifier(&x.Dimension)
	io.Position(&x.Position)
}

// SpawnInfo holds the fields shared by Login and Respawn that describe the world the player spawns in.
type SpawnInfo struct {
	// DimensionType is the dimension type identifier before 1.20.5.
	DimensionType string
	// DimensionTypeID is the registry id of the dimension type from 1.20.5 onward.
	DimensionTypeID  int32
	DimensionName    string
	HashedSeed       int64
	GameMode         uint8
	PreviousGameMode int8
	Debug            bool
	Flat             bool
	HasDeathLocation bool
	DeathLocation    DeathLocation
	PortalCooldown   int32
}

func (x *SpawnInfo) Marshal(io protocol.IO) {
	if io.Version() >= protocol.Version1_20_5 {
		io.Varint32(&x.DimensionTypeID)
	} else {
		io.Identifier(&x.DimensionType)
	}
	io.Identifier(&x.DimensionName)
	io.Int64(&x.HashedSeed)
	io.Uint8(&x.GameMode)
	io.Int8(&x.PreviousGameMode)
	io.Bool(&x.Debug)
	io.Bool(&x.Flat)
	protocol.Optional(io, &x.HasDeathLocation, &x.DeathLocation, func(l *DeathLocation) { l.Marshal(io) })
	io.Varint32(&x.PortalCooldown)
}

// Login is the first packet of the play state. It holds the entity id of the player and the world it
// spawns in.
type Login struct {
	EntityID            int32
	Hardcore            bool
	DimensionNames      []string
	MaxPlayers          int32
	ViewDistance        int32
	SimulationDistance  int32
	ReducedDebugInfo    bool
	EnableRespawnScreen bool
	DoLimitedCrafting   bool
	Spawn               SpawnInfo
	// EnforcesSecureChat is only present on 1.20.5 and later.
	EnforcesSecureChat bool
}

func (*Login) ID() uint32 { return IDLogin }

func (pk *Login) Marshal(io protocol.IO) {
	io.Int32(&pk.EntityID)
	io.Bool(&pk.Hardcore)
	protocol.FuncSlice(io, &pk.DimensionNames, io.Identifier)
	io.Varint32(&pk.MaxPlayers)
	io.Varint32(&pk.ViewDistance)
	io.Varint32(&pk.SimulationDistance)
	io.Bool(&pk.ReducedDebugInfo)
	io.Bool(&pk.EnableRespawnScreen)
	io.Bool(&pk.DoLimitedCrafting)
	pk.Spawn.Marshal(io)
	if io.Version() >= protocol.Version1_20_5 {
		io.Bool(&pk.EnforcesSecureChat)
	}
}

// Respawn flags describing which data is kept.
const (
	RespawnKeepAttributes = 1 << iota
	RespawnKeepMetadata
)

// Respawn is sent when the player respawns or changes dimension.
type Respawn struct {
	Spawn    SpawnInfo
	DataKept uint8
}

func (*Respawn) ID() uint32 { return IDRespawn }

func (pk *Respawn) Marshal(io protocol.IO) {
	pk.Spawn.Marshal(io)
	io.Uint8(&pk.DataKept)
}

// Relative flags of SynchronisePlayerPosition.
const (
	RelativeX = 1 << iota
	RelativeY
	RelativeZ
	RelativeYaw
	RelativePitch
)

// SynchronisePlayerPosition teleports the player. It must be confirmed with ConfirmTeleportation.
type SynchronisePlayerPosition struct {
	Position   mgl64.Vec3
	Yaw        float32
	Pitch      float32
	Flags      uint8
	TeleportID int32
}

func (*SynchronisePlayerPosition) ID() uint32 { return IDSynchronisePlayerPosition }

func (pk *SynchronisePlayerPosition) Marshal(io protocol.IO) {
	io.Vec3(&pk.Position)
	io.Float32(&pk.Yaw)
	io.Float32(&pk.Pitch)
	io.Uint8(&pk.Flags)
	io.Varint32(&pk.TeleportID)
}

// BlockUpdate changes a single block.
type BlockUpdate struct {
	Position protocol.BlockPos
	BlockID  int32
}

func (*BlockUpdate) ID() uint32 { return IDBlockUpdate }

func (pk *BlockUpdate) Marshal(io protocol.IO) {
	io.Position(&pk.Position)
	io.Varint32(&pk.BlockID)
}

// UpdateSectionBlocks changes multiple blocks in one chunk section. Each entry of Blocks holds the block
// state id shifted left by 12 bits, or-ed with the local position packed as x<<8|z<<4|y.
type UpdateSectionBlocks struct {
	Section protocol.SectionPos
	Blocks  []int64
}

func (*UpdateSectionBlocks) ID() uint32 { return IDUpdateSectionBlocks }

func (pk *UpdateSectionBlocks) Marshal(io protocol.IO) {
	v := pk.Section.Pack()
	io.Int64(&v)
	pk.Section = protocol.UnpackSectionPos(v)
	protocol.FuncSlice(io, &pk.Blocks, io.Varint64)
}

// ChangeDifficulty ...
type ChangeDifficulty struct {
	Difficulty uint8
	Locked     bool
}

func (*ChangeDifficulty) ID() uint32 { return IDChangeDifficulty }

func (pk *ChangeDifficulty) Marshal(io protocol.IO) {
	io.Uint8(&pk.Difficulty)
	io.Bool(&pk.Locked)
}

// ChunkBatchStart ...
type ChunkBatchStart struct{}

func (*ChunkBatchStart) ID() uint32 { return IDChunkBatchStart }

func (*ChunkBatchStart) Marshal(protocol.IO) {}

// ChunkBatchFinished ends a batch of chunks. The client must answer it with ChunkBatchReceived, or the
// server stops sending chunks.
type ChunkBatchFinished struct {
	BatchSize int32
}

func (*ChunkBatchFinished) ID() uint32 { return IDChunkBatchFinished }

func (pk *ChunkBatchFinished) Marshal(io protocol.IO) {
	io.Varint32(&pk.BatchSize)
}

// UnloadChunk ...
type UnloadChunk struct {
	ChunkZ int32
	ChunkX int32
}

func (*UnloadChunk) ID() uint32 { return IDUnloadChunk }

func (pk *UnloadChunk) Marshal(io protocol.IO) {
	io.Int32(&pk.ChunkZ)
	io.Int32(&pk.ChunkX)
}

// Game events.
const (
	GameEventNoRespawnBlock uint8 = iota
	GameEventBeginRaining
	GameEventEndRaining
	GameEventChangeGameMode
	GameEventWinGame
	GameEventDemo
	GameEventArrowHitPlayer
	GameEventRainLevelChange
	GameEventThunderLevelChange
	GameEventPufferfishSting
	GameEventGuardianAppearance
	GameEventImmediateRespawn
	GameEventLimitedCrafting
	GameEventStartWaitingForChunks
)

// GameEvent ...
type GameEvent struct {
	Event uint8
	Value float32
}

func (*GameEvent) ID() uint32 { return IDGameEvent }

func (pk *GameEvent) Marshal(io protocol.IO) {
	io.Uint8(&pk.Event)
	io.Float32(&pk.Value)
}

// BlockEntity is a block entity sent with a chunk.
type BlockEntity struct {
	PackedXZ uint8
	Y        int16
	Type     int32
	Data     []byte
}

func (x *BlockEntity) Marshal(io protocol.IO) {
	io.Uint8(&x.PackedXZ)
	io.Int16(&x.Y)
	io.Varint32(&x.Type)
	io.OptionalNBT(&x.Data)
}

// ChunkData holds a full chunk column with its light. Data holds the sections of the column from the
// bottom of the world upward, each encoded as a block count followed by a block and a biome container.
type ChunkData struct {
	ChunkX        int32
	ChunkZ        int32
	Heightmaps    []byte
	Data          []byte
	BlockEntities []BlockEntity

	SkyLightMask        protocol.BitSet
	BlockLightMask      protocol.BitSet
	EmptySkyLightMask   protocol.BitSet
	EmptyBlockLightMask protocol.BitSet
	SkyLight            [][]byte
	BlockLight          [][]byte
}

func (*ChunkData) ID() uint32 { return IDChunkData }

func (pk *ChunkData) Marshal(io protocol.IO) {
	io.Int32(&pk.ChunkX)
	io.Int32(&pk.ChunkZ)
	io.NBT(&pk.Heightmaps)
	io.ByteSlice(&pk.Data)
	protocol.Slice(io, &pk.BlockEntities)
	io.BitSet(&pk.SkyLightMask)
	io.BitSet(&pk.BlockLightMask)
	io.BitSet(&pk.EmptySkyLightMask)
	io.BitSet(&pk.EmptyBlockLightMask)
	protocol.FuncSlice(io, &pk.SkyLight, io.ByteSlice)
	protocol.FuncSlice(io, &pk.BlockLight, io.ByteSlice)
}

// SetCenterChunk is sent when the player crosses a chunk border.
type SetCenterChunk struct {
	ChunkX int32
	ChunkZ int32
}

func (*SetCenterChunk) ID() uint32 { return IDSetCenterChunk }

func (pk *SetCenterChunk) Marshal(io protocol.IO) {
	io.Varint32(&pk.ChunkX)
	io.Varint32(&pk.ChunkZ)
}

// SetRenderDistance ...
type SetRenderDistance struct {
	ViewDistance int32
}

func (*SetRenderDistance) ID() uint32 { return IDSetRenderDistance }

func (pk *SetRenderDistance) Marshal(io protocol.IO) {
	io.Varint32(&pk.ViewDistance)
}

// SetDefaultSpawnPosition ...
type SetDefaultSpawnPosition struct {
	Position protocol.BlockPos
	Angle    float32
}

func (*SetDefaultSpawnPosition) ID() uint32 { return IDSetDefaultSpawnPosition }

func (pk *SetDefaultSpawnPosition) Marshal(io protocol.IO) {
	io.Position(&pk.Position)
	io.Float32(&pk.Angle)
}

// UpdateTime ...
type UpdateTime struct {
	WorldAge  int64
	TimeOfDay int64
}

func (*UpdateTime) ID() uint32 { return IDUpdateTime }

func (pk *UpdateTime) Marshal(io protocol.IO) {
	io.Int64(&pk.WorldAge)
	io.Int64(&pk.TimeOfDay)
}

// Sound is a sound event referenced either by registry id or inline by name.
type Sound struct {
	// RegistryID is the sound event registry id. It is -1 if the sound is given inline by Name.
	RegistryID    int32
	Name          string
	HasFixedRange bool
	FixedRange    float32
}

func (x *Sound) Marshal(io protocol.IO) {
	id := x.RegistryID + 1
	io.Varint32(&id)
	x.RegistryID = id - 1
	if id == 0 {
		io.Identifier(&x.Name)
		protocol.Optional(io, &x.HasFixedRange, &x.FixedRange, io.Float32)
	}
}

// SoundEffect plays a sound at a position. The position is in units of 1/8 of a block.
type SoundEffect struct {
	Sound    Sound
	Category int32
	Position [3]int32
	Volume   float32
	Pitch    float32
	Seed     int64
}

func (*SoundEffect) ID() uint32 { return IDSoundEffect }

func (pk *SoundEffect) Marshal(io protocol.IO) {
	pk.Sound.Marshal(io)
	io.Varint32(&pk.Category)
	io.Int32(&pk.Position[0])
	io.Int32(&pk.Position[1])
	io.Int32(&pk.Position[2])
	io.Float32(&pk.Volume)
	io.Float32(&pk.Pitch)
	io.Int64(&pk.Seed)
}

// EntitySoundEffect plays a sound at the position of an entity.
type EntitySoundEffect struct {
	Sound    Sound
	Category int32
	EntityID int32
	Volume   float32
	Pitch    float32
	Seed     int64
}

func (*EntitySoundEffect) ID() uint32 { return IDEntitySoundEffect }

func (pk *EntitySoundEffect) Marshal(io protocol.IO) {
	pk.Sound.Marshal(io)
	io.Varint32(&pk.Category)
	io.Varint32(&pk.EntityID)
	io.Float32(&pk.Volume)
	io.Float32(&pk.Pitch)
	io.Int64(&pk.Seed)
}

// StopSound stops sounds by category, name or both.
type StopSound struct {
	Flags    uint8
	Category int32
	Sound    string
}

func (*StopSound) ID() uint32 { return IDStopSound }

func (pk *StopSound) Marshal(io protocol.IO) {
	io.Uint8(&pk.Flags)
	if pk.Flags&0x01 != 0 {
		io.Varint32(&pk.Category)
	}
	if pk.Flags&0x02 != 0 {
		io.Identifier(&pk.Sound)
	}
}
