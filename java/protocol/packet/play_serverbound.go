package packet

import (
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ConfirmTeleportation confirms a SynchronisePlayerPosition.
type ConfirmTeleportation struct {
	TeleportID int32
}

func (*ConfirmTeleportation) ID() uint32 { return IDConfirmTeleportation }

func (pk *ConfirmTeleportation) Marshal(io protocol.IO) {
	io.Varint32(&pk.TeleportID)
}

// ArgumentSignature is the signature of a single command argument.
type ArgumentSignature struct {
	Name      string
	Signature [256]byte
}

func (x *ArgumentSignature) Marshal(io protocol.IO) {
	io.String(&x.Name)
	io.FixedBytes(x.Signature[:])
}

// ChatCommand runs a command. Before 1.20.5 it carries argument signatures and message acknowledgements;
// from 1.20.5 onward it is the unsigned variant and carries only the command.
type ChatCommand struct {
	Command            string
	Timestamp          int64
	Salt               int64
	ArgumentSignatures []ArgumentSignature
	MessageCount       int32
	Acknowledged       [3]byte
}

func (*ChatCommand) ID() uint32 { return IDChatCommand }

func (pk *ChatCommand) Marshal(io protocol.IO) {
	io.String(&pk.Command)
	if io.Version() >= protocol.Version1_20_5 {
		return
	}
	io.Int64(&pk.Timestamp)
	io.Int64(&pk.Salt)
	protocol.Slice(io, &pk.ArgumentSignatures)
	io.Varint32(&pk.MessageCount)
	io.FixedBytes(pk.Acknowledged[:])
}

// ChatMessage sends a chat message. The proxy never signs messages.
type ChatMessage struct {
	Message      string
	Timestamp    int64
	Salt         int64
	HasSignature bool
	Signature    [256]byte
	MessageCount int32
	Acknowledged [3]byte
}

func (*ChatMessage) ID() uint32 { return IDChatMessage }

func (pk *ChatMessage) Marshal(io protocol.IO) {
	io.String(&pk.Message)
	io.Int64(&pk.Timestamp)
	io.Int64(&pk.Salt)
	protocol.Optional(io, &pk.HasSignature, &pk.Signature, func(s *[256]byte) { io.FixedBytes(s[:]) })
	io.Varint32(&pk.MessageCount)
	io.FixedBytes(pk.Acknowledged[:])
}

// ChunkBatchReceived answers ChunkBatchFinished with the desired chunk rate.
type ChunkBatchReceived struct {
	ChunksPerTick float32
}

func (*ChunkBatchReceived) ID() uint32 { return IDChunkBatchReceived }

func (pk *ChunkBatchReceived) Marshal(io protocol.IO) {
	io.Float32(&pk.ChunksPerTick)
}

// Client command actions.
const (
	ClientCommandRespawn int32 = iota
	ClientCommandRequestStats
)

// ClientCommand ...
type ClientCommand struct {
	Action int32
}

func (*ClientCommand) ID() uint32 { return IDClientCommand }

func (pk *ClientCommand) Marshal(io protocol.IO) {
	io.Varint32(&pk.Action)
}

// Interact types.
const (
	InteractTypeInteract int32 = iota
	InteractTypeAttack
	InteractTypeInteractAt
)

// Hands.
const (
	HandMain int32 = iota
	HandOff
)

// Interact is sent when the player attacks or right-clicks an entity.
type Interact struct {
	EntityID int32
	Type     int32
	Target   mgl32.Vec3
	Hand     int32
	Sneaking bool
}

func (*Interact) ID() uint32 { return IDInteract }

func (pk *Interact) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Varint32(&pk.Type)
	if pk.Type == InteractTypeInteractAt {
		io.Float32(&pk.Target[0])
		io.Float32(&pk.Target[1])
		io.Float32(&pk.Target[2])
	}
	if pk.Type != InteractTypeAttack {
		io.Varint32(&pk.Hand)
	}
	io.Bool(&pk.Sneaking)
}

// SetPlayerPosition updates the position of the player. Position holds the feet position.
type SetPlayerPosition struct {
	Position mgl64.Vec3
	OnGround bool
}

func (*SetPlayerPosition) ID() uint32 { return IDSetPlayerPosition }

func (pk *SetPlayerPosition) Marshal(io protocol.IO) {
	io.Vec3(&pk.Position)
	io.Bool(&pk.OnGround)
}

// SetPlayerPositionRotation updates the position and rotation of the player.
type SetPlayerPositionRotation struct {
	Position mgl64.Vec3
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (*SetPlayerPositionRotation) ID() uint32 { return IDSetPlayerPositionRotation }

func (pk *SetPlayerPositionRotation) Marshal(io protocol.IO) {
	io.Vec3(&pk.Position)
	io.Float32(&pk.Yaw)
	io.Float32(&pk.Pitch)
	io.Bool(&pk.OnGround)
}

// SetPlayerRotation ...
type SetPlayerRotation struct {
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (*SetPlayerRotation) ID() uint32 { return IDSetPlayerRotation }

func (pk *SetPlayerRotation) Marshal(io protocol.IO) {
	io.Float32(&pk.Yaw)
	io.Float32(&pk.Pitch)
	io.Bool(&pk.OnGround)
}

// SetPlayerOnGround ...
type SetPlayerOnGround struct {
	OnGround bool
}

func (*SetPlayerOnGround) ID() uint32 { return IDSetPlayerOnGround }

func (pk *SetPlayerOnGround) Marshal(io protocol.IO) {
	io.Bool(&pk.OnGround)
}

// Player action statuses.
const (
	PlayerActionStartDigging int32 = iota
	PlayerActionCancelDigging
	PlayerActionFinishDigging
	PlayerActionDropItemStack
	PlayerActionDropItem
	PlayerActionReleaseUseItem
	PlayerActionSwapOffhand
)

// PlayerAction is sent for digging, dropping the held item, releasing a used item and swapping hands.
type PlayerAction struct {
	Status   int32
	Position protocol.BlockPos
	Face     int8
	Sequence int32
}

func (*PlayerAction) ID() uint32 { return IDPlayerAction }

func (pk *PlayerAction) Marshal(io protocol.IO) {
	io.Varint32(&pk.Status)
	io.Position(&pk.Position)
	io.Int8(&pk.Face)
	io.Varint32(&pk.Sequence)
}

// Player command actions.
const (
	PlayerCommandStartSneaking int32 = iota
	PlayerCommandStopSneaking
	PlayerCommandLeaveBed
	PlayerCommandStartSprinting
	PlayerCommandStopSprinting
	PlayerCommandStartHorseJump
	PlayerCommandStopHorseJump
	PlayerCommandOpenVehicleInventory
	PlayerCommandStartFlyingElytra
)

// PlayerCommand ...
type PlayerCommand struct {
	EntityID  int32
	Action    int32
	JumpBoost int32
}

func (*PlayerCommand) ID() uint32 { return IDPlayerCommand }

func (pk *PlayerCommand) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Varint32(&pk.Action)
	io.Varint32(&pk.JumpBoost)
}

// SwingArm ...
type SwingArm struct {
	Hand int32
}

func (*SwingArm) ID() uint32 { return IDSwingArm }

func (pk *SwingArm) Marshal(io protocol.IO) {
	io.Varint32(&pk.Hand)
}

// UseItemOn is sent when the player right-clicks a block.
type UseItemOn struct {
	Hand        int32
	Position    protocol.BlockPos
	Face        int32
	Cursor      mgl32.Vec3
	InsideBlock bool
	Sequence    int32
}

func (*UseItemOn) ID() uint32 { return IDUseItemOn }

func (pk *UseItemOn) Marshal(io protocol.IO) {
	io.Varint32(&pk.Hand)
	io.Position(&pk.Position)
	io.Varint32(&pk.Face)
	io.Float32(&pk.Cursor[0])
	io.Float32(&pk.Cursor[1])
	io.Float32(&pk.Cursor[2])
	io.Bool(&pk.InsideBlock)
	io.Varint32(&pk.Sequence)
}

// UseItem is sent when the player right-clicks the air with an item.
type UseItem struct {
	Hand     int32
	Sequence int32
}

func (*UseItem) ID() uint32 { return IDUseItem }

func (pk *UseItem) Marshal(io protocol.IO) {
	io.Varint32(&pk.Hand)
	io.Varint32(&pk.Sequence)
}
