package session

import (
	"bytes"

	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

const (
	// positionScale is the amount of relative movement units in a block.
	positionScale = 4096
	// velocityScale is the amount of velocity units in a block per tick.
	velocityScale = 8000
)

// Bedrock actor event types.
const (
	actorEventHurt     byte = 2
	actorEventDeath    byte = 3
	actorEventEatGrass byte = 10
	actorEventTotem    byte = 65
)

// Bedrock animate action types.
const (
	animateSwingArm         int32 = 1
	animateCriticalHit      int32 = 4
	animateMagicCriticalHit int32 = 5
)

// trackedEntity is an entity of the Java server spawned for the client.
type trackedEntity struct {
	runtimeID  uint64
	javaType   int32
	identifier string
	player     bool
	uuid       uuid.UUID

	position mgl64.Vec3
	yaw      float32
	pitch    float32
	headYaw  float32
	velocity mgl32.Vec3

	// spawned is false for an item entity until its item is known.
	spawned bool
	// flags is the Java shared flags byte.
	flags     byte
	name      string
	nameShown bool

	// armour holds the helmet, chestplate, leggings and boots, since Bedrock only updates all of them at once.
	armour [4]protocol.ItemInstance
}

// offset returns the offset of the position Bedrock uses for the entity from the position of its feet.
func (e *trackedEntity) offset() float64 {
	if e.player {
		return eyeHeight
	}
	return 0
}

func (e *trackedEntity) bedrockPosition() mgl32.Vec3 {
	return vec32(e.position.Add(mgl64.Vec3{0, e.offset(), 0}))
}

// playerEntry is a player in the player list of the Java server.
type playerEntry struct {
	name     string
	gameMode int32
	listed   bool
}

// defaultSkin is shown for every Java player, since Java skins are served from a web service the proxy
// does not talk to.
var defaultSkin = newDefaultSkin()

func newDefaultSkin() protocol.Skin {
	data := bytes.Repeat([]byte{0x5a, 0x6e, 0x8c, 0xff}, 64*64)
	return protocol.Skin{
		SkinID:            "crossplay.default",
		SkinResourcePatch: []byte(`{"geometry":{"default":"geometry.humanoid.custom"}}`),
		SkinImageWidth:    64,
		SkinImageHeight:   64,
		SkinData:          data,
		ArmSize:           "wide",
		FullID:            "crossplay.default",
	}
}

// track returns the tracked entity of a Java entity id. Packets about entities the client never saw are
// dropped.
func (s *Session) track(id int32) (*trackedEntity, bool) {
	e, ok := s.tracked[id]
	if !ok {
		s.log.Debug("dropped packet about unknown entity", "entity", id)
	}
	return e, ok
}

func handleSpawnEntity(s *Session, pk *javapacket.SpawnEntity) error {
	identifier, ok := s.set.BedrockEntity(pk.Type)
	if !ok {
		s.log.Debug("dropped entity without bedrock equivalent", "type", pk.Type)
		return nil
	}
	if err := s.forget(pk.EntityID); err != nil {
		return err
	}
	e := &trackedEntity{
		runtimeID:  s.entities.Allocate(pk.EntityID),
		javaType:   pk.Type,
		identifier: identifier,
		player:     identifier == "minecraft:player",
		uuid:       pk.EntityUUID,
		position:   pk.Position,
		yaw:        pk.Yaw,
		pitch:      pk.Pitch,
		headYaw:    pk.HeadYaw,
		velocity:   velocity(pk.Velocity),
		spawned:    identifier != "minecraft:item",
	}
	s.tracked[pk.EntityID] = e
	vel := e.velocity

	switch identifier {
	case "minecraft:player":
		entry := s.players[pk.EntityUUID]
		if err := s.writeFront(&packet.PlayerList{ActionType: packet.PlayerListActionAdd, Entries: []protocol.PlayerListEntry{{
			UUID:           pk.EntityUUID,
			EntityUniqueID: int64(e.runtimeID),
			Username:       entry.name,
			Skin:           defaultSkin,
		}}}); err != nil {
			return err
		}
		return s.writeFront(&packet.AddPlayer{
			UUID:            pk.EntityUUID,
			Username:        entry.name,
			EntityRuntimeID: e.runtimeID,
			Position:        e.bedrockPosition(),
			Velocity:        vel,
			Pitch:           pk.Pitch,
			Yaw:             pk.Yaw,
			HeadYaw:         pk.HeadYaw,
			GameType:        entry.gameMode,
			AbilityData:     protocol.AbilityData{EntityUniqueID: int64(e.runtimeID)},
		})
	case "minecraft:item":
		// Spawned by handleEntityMetadata once the item is known.
		return nil
	}
	return s.writeFront(&packet.AddActor{
		EntityUniqueID:  int64(e.runtimeID),
		EntityRuntimeID: e.runtimeID,
		EntityType:      identifier,
		Position:        e.bedrockPosition(),
		Velocity:        vel,
		Pitch:           pk.Pitch,
		Yaw:             pk.Yaw,
		HeadYaw:         pk.HeadYaw,
	})
}

func handleSpawnExperienceOrb(s *Session, pk *javapacket.SpawnExperienceOrb) error {
	if err := s.forget(pk.EntityID); err != nil {
		return err
	}
	e := &trackedEntity{
		runtimeID:  s.entities.Allocate(pk.EntityID),
		javaType:   -1,
		identifier: "minecraft:xp_orb",
		position:   pk.Position,
		spawned:    true,
	}
	s.tracked[pk.EntityID] = e
	return s.writeFront(&packet.AddActor{
		EntityUniqueID:  int64(e.runtimeID),
		EntityRuntimeID: e.runtimeID,
		EntityType:      e.identifier,
		Position:        e.bedrockPosition(),
	})
}

func velocity(v [3]int16) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]) / velocityScale, float32(v[1]) / velocityScale, float32(v[2]) / velocityScale}
}

func delta(d [3]int16) mgl64.Vec3 {
	return mgl64.Vec3{float64(d[0]) / positionScale, float64(d[1]) / positionScale, float64(d[2]) / positionScale}
}

// moveEntity sends the position and rotation of an entity to the client.
func (s *Session) moveEntity(e *trackedEntity, onGround, teleport bool) error {
	if !e.spawned {
		return nil
	}
	var flags byte
	if onGround {
		flags |= packet.MoveFlagOnGround
	}
	if teleport {
		flags |= packet.MoveFlagTeleport
	}
	return s.writeFront(&packet.MoveActorAbsolute{
		EntityRuntimeID: e.runtimeID,
		Flags:           flags,
		Position:        e.bedrockPosition(),
		Rotation:        mgl32.Vec3{e.pitch, e.yaw, e.headYaw},
	})
}

func handleEntityPosition(s *Session, pk *javapacket.UpdateEntityPosition) error {
	e, ok := s.track(pk.EntityID)
	if !ok {
		return nil
	}
	e.position = e.position.Add(delta(pk.Delta))
	return s.moveEntity(e, pk.OnGround, false)
}

func handleEntityPositionRotation(s *Session, pk *javapacket.UpdateEntityPositionRotation) error {
	e, ok := s.track(pk.EntityID)
	if !ok {
		return nil
	}
	e.position = e.position.Add(delta(pk.Delta))
	e.yaw, e.pitch = pk.Yaw, pk.Pitch
	return s.moveEntity(e, pk.OnGround, false)
}

func handleEntityRotation(s *Session, pk *javapacket.UpdateEntityRotation) error {
	e, ok := s.track(pk.EntityID)
	if !ok {
		return nil
	}
	e.yaw, e.pitch = pk.Yaw, pk.Pitch
	return s.moveEntity(e, pk.OnGround, false)
}

func handleHeadRotation(s *Session, pk *javapacket.SetHeadRotation) error {
	e, ok := s.track(pk.EntityID)
	if !ok {
		return nil
	}
	e.headYaw = pk.HeadYaw
	return s.moveEntity(e, false, false)
}

func handleTeleportEntity(s *Session, pk *javapacket.TeleportEntity) error {
	e, ok := s.track(pk.EntityID)
	if !ok {
		return nil
	}
	e.position, e.yaw, e.pitch = pk.Position, pk.Yaw, pk.Pitch
	return s.moveEntity(e, pk.OnGround, true)
}

func handleEntityVelocity(s *Session, pk *javapacket.SetEntityVelocity) error {
	rid, ok := s.runtimeID(pk.EntityID)
	if !ok {
		return nil
	}
	vel := velocity(pk.Velocity)
	if e, ok := s.tracked[pk.EntityID]; ok {
		e.velocity = vel
		if !e.spawned {
			return nil
		}
	}
	return s.writeFront(&packet.SetActorMotion{EntityRuntimeID: rid, Velocity: vel})
}

// runtimeID returns the runtime id of a Java entity id, including the player itself.
func (s *Session) runtimeID(id int32) (uint64, bool) {
	rid, ok := s.entities.Runtime(id)
	if !ok {
		s.log.Debug("dropped packet about unknown entity", "entity", id)
	}
	return rid, ok
}

func handleEntityAnimation(s *Session, pk *javapacket.EntityAnimation) error {
	rid, ok := s.runtimeID(pk.EntityID)
	if !ok {
		return nil
	}
	var action int32
	switch pk.Animation {
	case javapacket.AnimationSwingMainArm, javapacket.AnimationSwingOffhand:
		action = animateSwingArm
	case javapacket.AnimationCriticalEffect:
		action = animateCriticalHit
	case javapacket.AnimationMagicCriticalEffect:
		action = animateMagicCriticalHit
	default:
		return nil
	}
	return s.writeFront(&packet.Animate{ActionType: action, EntityRuntimeID: rid})
}

func handleEntityEvent(s *Session, pk *javapacket.EntityEvent) error {
	rid, ok := s.runtimeID(pk.EntityID)
	if !ok {
		return nil
	}
	var event byte
	switch pk.Status {
	case javapacket.EntityStatusHurt:
		event = actorEventHurt
	case javapacket.EntityStatusDeath:
		event = actorEventDeath
	case javapacket.EntityStatusEatingGrass:
		event = actorEventEatGrass
	case javapacket.EntityStatusTotem:
		event = actorEventTotem
	default:
		return nil
	}
	return s.writeFront(&packet.ActorEvent{EntityRuntimeID: rid, EventType: event})
}

func handleEquipment(s *Session, pk *javapacket.SetEquipment) error {
	e, ok := s.track(pk.EntityID)
	if !ok {
		return nil
	}
	armourChanged := false
	for _, eq := range pk.Equipment {
		item := s.bedrockItem(eq.Item)
		switch eq.Slot {
		case javapacket.EquipmentMainHand:
			if err := s.writeFront(&packet.MobEquipment{EntityRuntimeID: e.runtimeID, NewItem: item, WindowID: protocol.WindowIDInventory}); err != nil {
				return err
			}
		case javapacket.EquipmentOffHand:
			if err := s.writeFront(&packet.MobEquipment{EntityRuntimeID: e.runtimeID, NewItem: item, WindowID: protocol.WindowIDOffHand}); err != nil {
				return err
			}
		case javapacket.EquipmentHelmet, javapacket.EquipmentChestplate, javapacket.EquipmentLeggings, javapacket.EquipmentBoots:
			e.armour[javapacket.EquipmentHelmet-eq.Slot] = item
			armourChanged = true
		}
	}
	if !armourChanged {
		return nil
	}
	return s.writeFront(&packet.MobArmourEquipment{
		EntityRuntimeID: e.runtimeID,
		Helmet:          e.armour[0],
		Chestplate:      e.armour[1],
		Leggings:        e.armour[2],
		Boots:           e.armour[3],
	})
}

func handlePickupItem(s *Session, pk *javapacket.PickupItem) error {
	item, ok := s.runtimeID(pk.CollectedEntityID)
	if !ok {
		return nil
	}
	taker, ok := s.runtimeID(pk.CollectorEntityID)
	if !ok {
		return nil
	}
	return s.writeFront(&packet.TakeItemActor{ItemEntityRuntimeID: item, TakerEntityRuntimeID: taker})
}

func handleRemoveEntities(s *Session, pk *javapacket.RemoveEntities) error {
	for _, id := range pk.EntityIDs {
		rid, ok := s.entities.Runtime(id)
		if !ok {
			// Servers may remove an entity more than once.
			continue
		}
		if self, _ := s.entities.Self(); id == self {
			continue
		}
		s.despawn(id)
		if err := s.writeFront(&packet.RemoveActor{EntityUniqueID: int64(rid)}); err != nil {
			return err
		}
	}
	return nil
}

// forget removes an entity from the client if the Java server spawns another entity with the same id
// without removing it first.
func (s *Session) forget(id int32) error {
	e, ok := s.tracked[id]
	if !ok {
		return nil
	}
	s.despawn(id)
	return s.writeFront(&packet.RemoveActor{EntityUniqueID: int64(e.runtimeID)})
}

// despawn forgets an entity and releases its runtime id.
func (s *Session) despawn(id int32) {
	delete(s.tracked, id)
	s.entities.Release(id)
}

// despawnAll removes every entity shown to the client, which happens when the player changes dimension.
func (s *Session) despawnAll() error {
	for id, e := range s.tracked {
		delete(s.tracked, id)
		if err := s.writeFront(&packet.RemoveActor{EntityUniqueID: int64(e.runtimeID)}); err != nil {
			return err
		}
	}
	s.entities.Clear()
	return nil
}

func handlePlayerInfoUpdate(s *Session, pk *javapacket.PlayerInfoUpdate) error {
	var added []protocol.PlayerListEntry
	for _, entry := range pk.Entries {
		p := s.players[entry.UUID]
		if pk.Actions&javapacket.PlayerInfoAddPlayer != 0 {
			p.name = entry.Name
		}
		if pk.Actions&javapacket.PlayerInfoUpdateGameMode != 0 {
			p.gameMode = bedrockGameMode(uint8(entry.GameMode))
		}
		if pk.Actions&javapacket.PlayerInfoUpdateListed != 0 {
			p.listed = entry.Listed
		}
		s.players[entry.UUID] = p
		if pk.Actions&javapacket.PlayerInfoAddPlayer != 0 && p.name != s.front.IdentityData().DisplayName {
			added = append(added, protocol.PlayerListEntry{UUID: entry.UUID, Username: p.name, Skin: defaultSkin})
		}
	}
	if len(added) == 0 {
		return nil
	}
	return s.writeFront(&packet.PlayerList{ActionType: packet.PlayerListActionAdd, Entries: added})
}

func handlePlayerInfoRemove(s *Session, pk *javapacket.PlayerInfoRemove) error {
	entries := make([]protocol.PlayerListEntry, 0, len(pk.UUIDs))
	for _, id := range pk.UUIDs {
		if _, ok := s.players[id]; !ok {
			continue
		}
		delete(s.players, id)
		entries = append(entries, protocol.PlayerListEntry{UUID: id})
	}
	if len(entries) == 0 {
		return nil
	}
	return s.writeFront(&packet.PlayerList{ActionType: packet.PlayerListActionRemove, Entries: entries})
}

// interactEntity translates an attack on or interaction with another entity.
func (s *Session) interactEntity(data *protocol.UseItemOnEntityTransactionData) error {
	id, ok := s.entities.Remote(data.TargetEntityRuntimeID)
	if !ok {
		s.log.Debug("dropped interaction with unknown entity", "runtime_id", data.TargetEntityRuntimeID)
		return nil
	}
	pk := &javapacket.Interact{EntityID: id, Hand: javapacket.HandMain, Sneaking: s.movement.sneaking}
	switch data.ActionType {
	case protocol.UseItemOnEntityActionAttack:
		pk.Type = javapacket.InteractTypeAttack
	case protocol.UseItemOnEntityActionInteract:
		pk.Type = javapacket.InteractTypeInteract
	default:
		return nil
	}
	return s.writeBack(pk)
}
