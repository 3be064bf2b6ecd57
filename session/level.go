package session

import (
	"context"
	"fmt"

	"github.com/cooldogedev/crossplay/entity"
	javaprotocol "github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/cooldogedev/crossplay/palette"
	"github.com/sandertv/gophertunnel/minecraft"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Bedrock level events.
const (
	levelEventStartRain = 3001
	levelEventStopRain  = 3003
)

// playerPermissionsMember is the permission level of players that are not operators.
const playerPermissionsMember = 1

// handleLogin spawns the client in the world the server puts the player in. A server sends Login again
// after moving the player through configuration, which is handled like a respawn.
func handleLogin(s *Session, pk *javapacket.Login) error {
	s.entities.Bind(pk.EntityID)
	changed := s.world.enter(pk.Spawn, s.back.Version())
	s.world.hardcore = pk.Hardcore
	s.world.viewDistance = pk.ViewDistance

	if s.world.spawned {
		s.setState(StatePlaying)
		return s.respawn(changed)
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.conf.StartGameTimeout)
	defer cancel()
	if err := s.front.StartGameContext(ctx, s.gameData(pk)); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("start game: %w", ctx.Err())
		}
		return &closeError{side: sideFront, err: fmt.Errorf("start game: %w", err)}
	}
	s.world.spawned = true
	s.setState(StatePlaying)
	s.startFront()
	s.log.Debug("client spawned", "dimension", s.world.dimensionType.name, "game_mode", s.world.gameMode)
	return nil
}

// gameData returns the StartGame data of the world described by a Login.
func (s *Session) gameData(pk *javapacket.Login) minecraft.GameData {
	return minecraft.GameData{
		WorldName:       s.world.dimensionName,
		Difficulty:      int32(s.world.difficulty),
		EntityUniqueID:  entity.PlayerRuntimeID,
		EntityRuntimeID: entity.PlayerRuntimeID,
		PlayerGameMode:  s.world.gameMode,
		WorldGameMode:   s.world.gameMode,
		PlayerPosition:  eyes(s.movement.position),
		Dimension:       s.world.dimension.ID,
		WorldSpawn:      protocol.BlockPos(s.world.spawn),
		Time:            s.world.timeOfDay,
		GameRules: []protocol.GameRule{
			{Name: "showcoordinates", Value: true},
			{Name: "doimmediaterespawn", Value: !pk.EnableRespawnScreen},
		},
		Items:                        s.set.ItemEntries(),
		PlayerPermissions:            playerPermissionsMember,
		PlayerMovementSettings:       protocol.PlayerMovementSettings{ServerAuthoritativeBlockBreaking: true},
		ServerAuthoritativeInventory: true,
		UseBlockNetworkIDHashes:      true,
		BaseGameVersion:              "*",
	}
}

// handleRespawn moves the player to the world of the Respawn. Java clients discard every entity on a
// respawn, so the server spawns them again afterwards.
func handleRespawn(s *Session, pk *javapacket.Respawn) error {
	return s.respawn(s.world.enter(pk.Spawn, s.back.Version()))
}

func (s *Session) respawn(dimensionChanged bool) error {
	if s.inv.open != nil {
		if err := s.closeWindow(true); err != nil {
			return err
		}
	}
	if err := s.despawnAll(); err != nil {
		return err
	}
	s.chunks.clear()
	s.world.dead = false
	if !dimensionChanged {
		return s.writeFront(&packet.Respawn{
			Position:        eyes(s.movement.position),
			State:           packet.RespawnStateReadyToSpawn,
			EntityRuntimeID: entity.PlayerRuntimeID,
		})
	}
	s.log.Debug("changed dimension", "dimension", s.world.dimensionType.name)
	if err := s.writeFront(&packet.ChangeDimension{
		Dimension: s.world.dimension.ID,
		Position:  eyes(s.movement.position),
	}); err != nil {
		return err
	}
	return s.sendEmptyChunks()
}

// sendEmptyChunks fills the view of the client with empty chunks. Clients changing dimension stay on the
// loading screen until the chunks around them are loaded, which may take a while for the server to send.
func (s *Session) sendEmptyChunks() error {
	enc := s.columnEncoder()
	payload, count, err := enc.encode(nil)
	if err != nil {
		return err
	}
	pos := javaBlockPos(s.movement.position)
	cx, cz := pos.X()>>4, pos.Z()>>4
	r := int32(s.conf.ChunkRadius)
	for x := cx - r; x <= cx+r; x++ {
		for z := cz - r; z <= cz+r; z++ {
			if err := s.writeFront(&packet.LevelChunk{
				Position:      protocol.ChunkPos{x, z},
				Dimension:     s.world.dimension.ID,
				SubChunkCount: count,
				RawPayload:    payload,
			}); err != nil {
				return err
			}
		}
	}
	return s.publishChunks(cx, cz)
}

// publishChunks tells the client around which chunk it should render the world.
func (s *Session) publishChunks(cx, cz int32) error {
	s.world.centerX, s.world.centerZ = cx, cz
	return s.writeFront(&packet.NetworkChunkPublisherUpdate{
		Position: protocol.BlockPos{cx<<4 + 8, int32(s.movement.position.Y()), cz<<4 + 8},
		Radius:   uint32(s.conf.ChunkRadius) << 4,
	})
}

// handleBundleDelimiter does nothing: bundles group packets a Java client applies in the same tick, which
// Bedrock clients have no notion of.
func handleBundleDelimiter(*Session, *javapacket.BundleDelimiter) error {
	return nil
}

func (s *Session) blockFormat() palette.Format {
	return palette.JavaBlocks(s.set.JavaBlockBits())
}

func handleChunkData(s *Session, pk *javapacket.ChunkData) error {
	enc := s.columnEncoder()
	col, err := palette.ReadJavaColumn(pk.Data, s.back.Version(), s.world.dimensionType.sections(), enc.blocks, enc.biomes)
	if err != nil {
		s.log.Debug("dropped undecodable chunk", "x", pk.ChunkX, "z", pk.ChunkZ, "err", err)
		return nil
	}
	pos := chunkPos{x: pk.ChunkX, z: pk.ChunkZ}
	s.chunks.store(pos, col, s.world.dimensionType.minY)

	payload, count, err := enc.encode(col)
	if err != nil {
		s.log.Debug("dropped untranslatable chunk", "x", pk.ChunkX, "z", pk.ChunkZ, "err", err)
		return nil
	}
	return s.writeFront(&packet.LevelChunk{
		Position:      protocol.ChunkPos{pos.x, pos.z},
		Dimension:     s.world.dimension.ID,
		SubChunkCount: count,
		RawPayload:    payload,
	})
}

// handleUnloadChunk forgets a column. Bedrock clients unload chunks outside their view on their own.
func handleUnloadChunk(s *Session, pk *javapacket.UnloadChunk) error {
	s.chunks.remove(chunkPos{x: pk.ChunkX, z: pk.ChunkZ})
	return nil
}

func handleCenterChunk(s *Session, pk *javapacket.SetCenterChunk) error {
	return s.publishChunks(pk.ChunkX, pk.ChunkZ)
}

func handleRenderDistance(s *Session, pk *javapacket.SetRenderDistance) error {
	s.world.viewDistance = pk.ViewDistance
	return nil
}

func handleChunkBatchStart(*Session, *javapacket.ChunkBatchStart) error {
	return nil
}

// handleChunkBatchFinished asks the server for the chunk rate of a vanilla client on a fast connection.
func handleChunkBatchFinished(s *Session, _ *javapacket.ChunkBatchFinished) error {
	return s.writeBack(&javapacket.ChunkBatchReceived{ChunksPerTick: 20})
}

func handleBlockUpdate(s *Session, pk *javapacket.BlockUpdate) error {
	s.chunks.setBlock(pk.Position, pk.BlockID, s.blockFormat())
	return s.updateBlock(pk.Position, pk.BlockID)
}

// handleSectionBlocks applies the block changes in a section. Every change holds the block state in the
// upper bits and the position in the section in the lower 12 bits.
func handleSectionBlocks(s *Session, pk *javapacket.UpdateSectionBlocks) error {
	f := s.blockFormat()
	for _, v := range pk.Blocks {
		state := int32(v >> 12)
		pos := javaprotocol.BlockPos{
			pk.Section[0]<<4 | int32(v>>8&15),
			pk.Section[1]<<4 | int32(v&15),
			pk.Section[2]<<4 | int32(v>>4&15),
		}
		s.chunks.setBlock(pos, state, f)
		if err := s.updateBlock(pos, state); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) updateBlock(pos javaprotocol.BlockPos, state int32) error {
	rid, ok := s.set.BedrockBlock(state)
	if !ok {
		rid = s.set.FallbackBlock()
	}
	return s.writeFront(&packet.UpdateBlock{
		Position:          protocol.BlockPos(pos),
		NewBlockRuntimeID: rid,
		Flags:             packet.BlockUpdateNetwork,
	})
}

func handleGameEvent(s *Session, pk *javapacket.GameEvent) error {
	switch pk.Event {
	case javapacket.GameEventBeginRaining:
		s.world.raining = true
		return s.writeFront(&packet.LevelEvent{EventType: levelEventStartRain, EventData: 65535})
	case javapacket.GameEventEndRaining:
		s.world.raining = false
		return s.writeFront(&packet.LevelEvent{EventType: levelEventStopRain})
	case javapacket.GameEventRainLevelChange:
		if !s.world.raining {
			return nil
		}
		if pk.Value <= 0 {
			return s.writeFront(&packet.LevelEvent{EventType: levelEventStopRain})
		}
		return s.writeFront(&packet.LevelEvent{EventType: levelEventStartRain, EventData: int32(pk.Value * 65535)})
	case javapacket.GameEventChangeGameMode:
		s.world.gameMode = bedrockGameMode(uint8(pk.Value))
		return s.writeFront(&packet.SetPlayerGameType{GameType: s.world.gameMode})
	case javapacket.GameEventImmediateRespawn:
		return s.writeFront(&packet.GameRulesChanged{GameRules: []protocol.GameRule{
			{Name: "doimmediaterespawn", Value: pk.Value == 1},
		}})
	case javapacket.GameEventWinGame:
		// Bedrock has no credits screen, so they are skipped right away.
		return s.writeBack(&javapacket.ClientCommand{Action: javapacket.ClientCommandRespawn})
	}
	return nil
}

func handleUpdateTime(s *Session, pk *javapacket.UpdateTime) error {
	s.world.timeOfDay = pk.TimeOfDay
	// A negative time means the daylight cycle is stopped.
	t := pk.TimeOfDay
	if t < 0 {
		t = -t
	}
	return s.writeFront(&packet.SetTime{Time: int32(t % 24000)})
}

func handleDifficulty(s *Session, pk *javapacket.ChangeDifficulty) error {
	s.world.difficulty = pk.Difficulty
	return s.writeFront(&packet.SetDifficulty{Difficulty: uint32(pk.Difficulty)})
}

func handleSpawnPosition(s *Session, pk *javapacket.SetDefaultSpawnPosition) error {
	s.world.spawn = pk.Position
	return s.writeFront(&packet.SetSpawnPosition{
		SpawnType:     packet.SpawnTypeWorld,
		Position:      protocol.BlockPos(pk.Position),
		Dimension:     s.world.dimension.ID,
		SpawnPosition: protocol.BlockPos(pk.Position),
	})
}
