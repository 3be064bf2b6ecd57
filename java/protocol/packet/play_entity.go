package packet

import (
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// SpawnEntity spawns any entity other than experience orbs.
type SpawnEntity struct {
	EntityID   int32
	EntityUUID uuid.UUID
	Type       int32
	Position   mgl64.Vec3
	Pitch      float32
	Yaw        float32
	HeadYaw    float32
	Data       int32
	// Velocity is in units of 1/8000 of a block per tick.
	Velocity [3]int16
}

func (*SpawnEntity) ID() uint32 { return IDSpawnEntity }

func (pk *SpawnEntity) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.UUID(&pk.EntityUUID)
	io.Varint32(&pk.Type)
	io.Vec3(&pk.Position)
	io.Angle(&pk.Pitch)
	io.Angle(&pk.Yaw)
	io.Angle(&pk.HeadYaw)
	io.Varint32(&pk.Data)
	io.Int16(&pk.Velocity[0])
	io.Int16(&pk.Velocity[1])
	io.Int16(&pk.Velocity[2])
}

// SpawnExperienceOrb ...
type SpawnExperienceOrb struct {
	EntityID int32
	Position mgl64.Vec3
	Count    int16
}

func (*SpawnExperienceOrb) ID() uint32 { return IDSpawnExperienceOrb }

func (pk *SpawnExperienceOrb) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Vec3(&pk.Position)
	io.Int16(&pk.Count)
}

// Entity animations.
const (
	AnimationSwingMainArm uint8 = iota
	_
	AnimationLeaveBed
	AnimationSwingOffhand
	AnimationCriticalEffect
	AnimationMagicCriticalEffect
)

// EntityAnimation ...
type EntityAnimation struct {
	EntityID  int32
	Animation uint8
}

func (*EntityAnimation) ID() uint32 { return IDEntityAnimation }

func (pk *EntityAnimation) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Uint8(&pk.Animation)
}

// Entity statuses sent in EntityEvent that have a front equivalent.
const (
	EntityStatusHurt        int8 = 2
	EntityStatusDeath       int8 = 3
	EntityStatusTotem       int8 = 35
	EntityStatusEatingGrass int8 = 10
)

// EntityEvent ...
type EntityEvent struct {
	EntityID int32
	Status   int8
}

func (*EntityEvent) ID() uint32 { return IDEntityEvent }

func (pk *EntityEvent) Marshal(io protocol.IO) {
	io.Int32(&pk.EntityID)
	io.Int8(&pk.Status)
}

// UpdateEntityPosition moves an entity by a delta in units of 1/4096 of a block.
type UpdateEntityPosition struct {
	EntityID int32
	Delta    [3]int16
	OnGround bool
}

func (*UpdateEntityPosition) ID() uint32 { return IDUpdateEntityPosition }

func (pk *UpdateEntityPosition) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Int16(&pk.Delta[0])
	io.Int16(&pk.Delta[1])
	io.Int16(&pk.Delta[2])
	io.Bool(&pk.OnGround)
}

// UpdateEntityPositionRotation ...
type UpdateEntityPositionRotation struct {
	EntityID int32
	Delta    [3]int16
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (*UpdateEntityPositionRotation) ID() uint32 { return IDUpdateEntityPositionRotation }

func (pk *UpdateEntityPositionRotation) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Int16(&pk.Delta[0])
	io.Int16(&pk.Delta[1])
	io.Int16(&pk.Delta[2])
	io.Angle(&pk.Yaw)
	io.Angle(&pk.Pitch)
	io.Bool(&pk.OnGround)
}

// UpdateEntityRotation ...
type UpdateEntityRotation struct {
	EntityID int32
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (*UpdateEntityRotation) ID() uint32 { return IDUpdateEntityRotation }

func (pk *UpdateEntityRotation) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Angle(&pk.Yaw)
	io.Angle(&pk.Pitch)
	io.Bool(&pk.OnGround)
}

// SetHeadRotation ...
type SetHeadRotation struct {
	EntityID int32
	HeadYaw  float32
}

func (*SetHeadRotation) ID() uint32 { return IDSetHeadRotation }

func (pk *SetHeadRotation) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Angle(&pk.HeadYaw)
}

// TeleportEntity sets the absolute position of an entity.
type TeleportEntity struct {
	EntityID int32
	Position mgl64.Vec3
	Yaw      float32
	Pitch    float32
	OnGround bool
}

func (*TeleportEntity) ID() uint32 { return IDTeleportEntity }

func (pk *TeleportEntity) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Vec3(&pk.Position)
	io.Angle(&pk.Yaw)
	io.Angle(&pk.Pitch)
	io.Bool(&pk.OnGround)
}

// SetEntityVelocity sets the velocity of an entity in units of 1/8000 of a block per tick.
type SetEntityVelocity struct {
	EntityID int32
	Velocity [3]int16
}

func (*SetEntityVelocity) ID() uint32 { return IDSetEntityVelocity }

func (pk *SetEntityVelocity) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	io.Int16(&pk.Velocity[0])
	io.Int16(&pk.Velocity[1])
	io.Int16(&pk.Velocity[2])
}

// RemoveEntities despawns a list of entities.
type RemoveEntities struct {
	EntityIDs []int32
}

func (*RemoveEntities) ID() uint32 { return IDRemoveEntities }

func (pk *RemoveEntities) Marshal(io protocol.IO) {
	protocol.FuncSlice(io, &pk.EntityIDs, io.Varint32)
}

// Equipment slots.
const (
	EquipmentMainHand int8 = iota
	EquipmentOffHand
	EquipmentBoots
	EquipmentLeggings
	EquipmentChestplate
	EquipmentHelmet
	EquipmentBody
)

// Equipment is a single slot of SetEquipment.
type Equipment struct {
	Slot int8
	Item protocol.Slot
}

// SetEquipment sets the equipment of an entity. The slots are written with the top bit of the slot byte
// set on every entry but the last.
type SetEquipment struct {
	EntityID  int32
	Equipment []Equipment
}

func (*SetEquipment) ID() uint32 { return IDSetEquipment }

func (pk *SetEquipment) Marshal(io protocol.IO) {
	io.Varint32(&pk.EntityID)
	if _, ok := io.(*protocol.Reader); ok {
		pk.Equipment = pk.Equipment[:0]
		for {
			var e Equipment
			var slot int8
			io.Int8(&slot)
			e.Slot = slot & 0x7F
			io.Slot(&e.Item)
			pk.Equipment = append(pk.Equipment, e)
			if slot >= 0 {
				return
			}
			if len(pk.Equipment) > 8 {
				io.InvalidValue(len(pk.Equipment), "equipment count", "too many slots")
			}
		}
	}
	for i := range pk.Equipment {
		slot := pk.Equipment[i].Slot
		if i != len(pk.Equipment)-1 {
			slot |= -128
		}
		io.Int8(&slot)
		io.Slot(&pk.Equipment[i].Item)
	}
}

// PickupItem plays the pickup animation of an item, orb or arrow.
type PickupItem struct {
	CollectedEntityID int32
	CollectorEntityID int32
	Count             int32
}

func (*PickupItem) ID() uint32 { return IDPickupItem }

func (pk *PickupItem) Marshal(io protocol.IO) {
	io.Varint32(&pk.CollectedEntityID)
	io.Varint32(&pk.CollectorEntityID)
	io.Varint32(&pk.Count)
}
