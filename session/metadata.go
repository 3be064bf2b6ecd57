package session

import (
	javaprotocol "github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// entityFlags maps bits of the Java shared flags byte to Bedrock actor flags.
var entityFlags = []struct {
	java    byte
	bedrock uint8
}{
	{javapacket.EntityFlagOnFire, protocol.EntityDataFlagOnFire},
	{javapacket.EntityFlagCrouching, protocol.EntityDataFlagSneaking},
	{javapacket.EntityFlagSprinting, protocol.EntityDataFlagSprinting},
	{javapacket.EntityFlagSwimming, protocol.EntityDataFlagSwimming},
	{javapacket.EntityFlagInvisible, protocol.EntityDataFlagInvisible},
	{javapacket.EntityFlagGliding, protocol.EntityDataFlagGliding},
}

// metadata returns the Bedrock actor metadata of the entity.
func (e *trackedEntity) metadata() protocol.EntityMetadata {
	m := protocol.NewEntityMetadata()
	m.SetFlag(protocol.EntityDataKeyFlags, protocol.EntityDataFlagHasGravity)
	m.SetFlag(protocol.EntityDataKeyFlags, protocol.EntityDataFlagHasCollision)
	for _, f := range entityFlags {
		if e.flags&f.java != 0 {
			m.SetFlag(protocol.EntityDataKeyFlags, f.bedrock)
		}
	}
	if e.name != "" {
		m[protocol.EntityDataKeyName] = e.name
		m.SetFlag(protocol.EntityDataKeyFlags, protocol.EntityDataFlagShowName)
		if e.nameShown {
			m[protocol.EntityDataKeyAlwaysShowNameTag] = uint8(1)
			m.SetFlag(protocol.EntityDataKeyFlags, protocol.EntityDataFlagAlwaysShowName)
		}
	}
	return m
}

func handleEntityMetadata(s *Session, pk *javapacket.SetEntityMetadata) error {
	e, ok := s.track(pk.EntityID)
	if !ok {
		return nil
	}
	changed := false
	for _, m := range pk.Metadata {
		switch {
		case m.Index == javapacket.MetadataIndexFlags && m.Kind == javapacket.MetadataByte:
			v, _ := m.Value.(int8)
			e.flags, changed = byte(v), true
		case m.Index == javapacket.MetadataIndexCustomName && m.Kind == javapacket.MetadataOptionalText:
			b, _ := m.Value.([]byte)
			e.name, changed = renderText(b), true
		case m.Index == javapacket.MetadataIndexNameShown && m.Kind == javapacket.MetadataBool:
			v, _ := m.Value.(bool)
			e.nameShown, changed = v, true
		case m.Index == javapacket.MetadataIndexItem && m.Kind == javapacket.MetadataSlot && e.identifier == "minecraft:item":
			item, _ := m.Value.(javaprotocol.Slot)
			if err := s.spawnItem(e, item); err != nil {
				return err
			}
		}
	}
	if !changed || !e.spawned {
		return nil
	}
	return s.writeFront(&packet.SetActorData{EntityRuntimeID: e.runtimeID, EntityMetadata: e.metadata()})
}

// spawnItem shows an item entity with the item passed. Bedrock cannot change the item of an item actor, so
// an item entity already shown is removed first.
func (s *Session) spawnItem(e *trackedEntity, item javaprotocol.Slot) error {
	if item.Empty() {
		return nil
	}
	if e.spawned {
		if err := s.writeFront(&packet.RemoveActor{EntityUniqueID: int64(e.runtimeID)}); err != nil {
			return err
		}
	}
	e.spawned = true
	return s.writeFront(&packet.AddItemActor{
		EntityUniqueID:  int64(e.runtimeID),
		EntityRuntimeID: e.runtimeID,
		Item:            s.bedrockItem(item),
		Position:        e.bedrockPosition(),
		Velocity:        e.velocity,
		EntityMetadata:  e.metadata(),
	})
}
