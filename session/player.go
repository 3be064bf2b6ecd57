package session

import (
	"github.com/cooldogedev/crossplay/entity"
	javaprotocol "github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// maxLevel is the highest experience level Bedrock shows.
const maxLevel = 24791

func attribute(name string, value, maxValue, def float32) protocol.Attribute {
	return protocol.Attribute{
		AttributeValue: protocol.AttributeValue{Name: name, Value: value, Max: maxValue},
		Default:        def,
	}
}

// handleHealth updates the health and hunger of the player. A player whose health drops to zero is shown
// the death screen.
func handleHealth(s *Session, pk *javapacket.SetHealth) error {
	health := max(pk.Health, 0)
	if err := s.writeFront(&packet.UpdateAttributes{
		EntityRuntimeID: entity.PlayerRuntimeID,
		Attributes: []protocol.Attribute{
			attribute("minecraft:health", health, 20, 20),
			attribute("minecraft:player.hunger", float32(pk.Food), 20, 20),
			attribute("minecraft:player.saturation", pk.Saturation, 20, 5),
		},
	}); err != nil {
		return err
	}
	if health > 0 || s.world.dead {
		return nil
	}
	s.world.dead = true
	return s.writeFront(&packet.Respawn{
		Position:        eyes(s.movement.position),
		State:           packet.RespawnStateSearchingForSpawn,
		EntityRuntimeID: entity.PlayerRuntimeID,
	})
}

func handleExperience(s *Session, pk *javapacket.SetExperience) error {
	return s.writeFront(&packet.UpdateAttributes{
		EntityRuntimeID: entity.PlayerRuntimeID,
		Attributes: []protocol.Attribute{
			attribute("minecraft:player.level", float32(min(pk.Level, maxLevel)), maxLevel, 0),
			attribute("minecraft:player.experience", pk.Bar, 1, 0),
		},
	})
}

// handleRespawnRequest asks the server to respawn the player once the client clicked respawn on the death
// screen.
func handleRespawnRequest(s *Session, pk *packet.Respawn) error {
	if pk.State != packet.RespawnStateClientReadyToSpawn || !s.world.dead {
		return nil
	}
	return s.writeBack(&javapacket.ClientCommand{Action: javapacket.ClientCommandRespawn})
}

func handleAnimate(s *Session, pk *packet.Animate) error {
	if pk.ActionType != animateSwingArm {
		return nil
	}
	return s.writeBack(&javapacket.SwingArm{Hand: javapacket.HandMain})
}

func (s *Session) nextSequence() int32 {
	s.movement.sequence++
	return s.movement.sequence
}

// handleInventoryTransaction translates the item uses of the client. Inventory changes are sent as item
// stack requests instead.
func handleInventoryTransaction(s *Session, pk *packet.InventoryTransaction) error {
	switch data := pk.TransactionData.(type) {
	case *protocol.UseItemOnEntityTransactionData:
		return s.interactEntity(data)
	case *protocol.UseItemTransactionData:
		switch data.ActionType {
		case protocol.UseItemActionClickBlock:
			pos := data.BlockPosition
			return s.writeBack(&javapacket.UseItemOn{
				Hand:     javapacket.HandMain,
				Position: javaprotocol.BlockPos(pos),
				Face:     javaFace(data.BlockFace),
				Cursor:   data.ClickedPosition,
				Sequence: s.nextSequence(),
			})
		case protocol.UseItemActionClickAir:
			return s.writeBack(&javapacket.UseItem{Hand: javapacket.HandMain, Sequence: s.nextSequence()})
		}
	case *protocol.ReleaseItemTransactionData:
		return s.writeBack(&javapacket.PlayerAction{Status: javapacket.PlayerActionReleaseUseItem})
	}
	return nil
}

// handleEmote swaps the items in the hands of the player, since Bedrock has no key to do so.
func handleEmote(s *Session, _ *packet.Emote) error {
	if !s.conf.EmoteOffhandWorkaround {
		return nil
	}
	return s.writeBack(&javapacket.PlayerAction{Status: javapacket.PlayerActionSwapOffhand})
}

func handleChunkRadius(s *Session, pk *packet.RequestChunkRadius) error {
	return s.writeFront(&packet.ChunkRadiusUpdated{ChunkRadius: min(pk.ChunkRadius, int32(s.conf.ChunkRadius))})
}

// handleLatency marks the last liveness probe as answered.
func handleLatency(s *Session, _ *packet.NetworkStackLatency) error {
	s.probing, s.missedProbes = false, 0
	return nil
}
