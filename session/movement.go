package session

import (
	"github.com/cooldogedev/crossplay/entity"
	"github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	bedrockprotocol "github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// eyeHeight is the height of the eyes of a standing player. Bedrock sends the position of the eyes of the
// player itself where Java sends the position of its feet.
const eyeHeight = 1.62

// keepPositionTicks is the amount of ticks without movement after which the position is sent again anyway,
// since Java servers expect a movement packet at least once a second.
const keepPositionTicks = 20

// movement holds the last position of the player as known by the server.
type movement struct {
	position mgl64.Vec3
	yaw      float32
	pitch    float32
	onGround bool

	sneaking  bool
	sprinting bool

	idleTicks int
	sequence  int32
}

// feet returns the position of the feet of the player from the position of its eyes.
func feet(eyes mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(eyes.X()), float64(eyes.Y()) - eyeHeight, float64(eyes.Z())}
}

// eyes returns the position of the eyes of the player from the position of its feet.
func eyes(feet mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(feet.X()), float32(feet.Y() + eyeHeight), float32(feet.Z())}
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X()), float32(v.Y()), float32(v.Z())}
}

// handleAuthInput translates the input the client sends every tick into Java movement packets, player
// commands and digging actions.
func handleAuthInput(s *Session, pk *packet.PlayerAuthInput) error {
	if err := s.updateMovement(pk); err != nil {
		return err
	}
	if err := s.updateCommands(pk); err != nil {
		return err
	}
	if pk.InputData.Load(packet.InputFlagPerformBlockActions) {
		for _, action := range pk.BlockActions {
			if err := s.blockAction(action); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) updateMovement(pk *packet.PlayerAuthInput) error {
	m := &s.movement
	pos := feet(pk.Position)
	moved := pos != m.position
	rotated := pk.Yaw != m.yaw || pk.Pitch != m.pitch
	// Bedrock does not tell the server whether the player stands on the ground, so a player that does not
	// move up or down is assumed to.
	onGround := pos.Y() == m.position.Y()
	groundChanged := onGround != m.onGround
	m.position, m.yaw, m.pitch, m.onGround = pos, pk.Yaw, pk.Pitch, onGround

	if !moved && !rotated && !groundChanged {
		if m.idleTicks++; m.idleTicks < keepPositionTicks {
			return nil
		}
	}
	m.idleTicks = 0
	switch {
	case moved && rotated:
		return s.writeBack(&javapacket.SetPlayerPositionRotation{Position: pos, Yaw: pk.Yaw, Pitch: pk.Pitch, OnGround: onGround})
	case moved:
		return s.writeBack(&javapacket.SetPlayerPosition{Position: pos, OnGround: onGround})
	case rotated:
		return s.writeBack(&javapacket.SetPlayerRotation{Yaw: pk.Yaw, Pitch: pk.Pitch, OnGround: onGround})
	}
	return s.writeBack(&javapacket.SetPlayerOnGround{OnGround: onGround})
}

func (s *Session) updateCommands(pk *packet.PlayerAuthInput) error {
	self, ok := s.entities.Self()
	if !ok {
		return nil
	}
	m := &s.movement
	flags := []struct {
		flag   int
		state  *bool
		value  bool
		action int32
	}{
		{flag: packet.InputFlagStartSneaking, state: &m.sneaking, value: true, action: javapacket.PlayerCommandStartSneaking},
		{flag: packet.InputFlagStopSneaking, state: &m.sneaking, value: false, action: javapacket.PlayerCommandStopSneaking},
		{flag: packet.InputFlagStartSprinting, state: &m.sprinting, value: true, action: javapacket.PlayerCommandStartSprinting},
		{flag: packet.InputFlagStopSprinting, state: &m.sprinting, value: false, action: javapacket.PlayerCommandStopSprinting},
	}
	for _, f := range flags {
		if !pk.InputData.Load(f.flag) || *f.state == f.value {
			continue
		}
		*f.state = f.value
		if err := s.writeBack(&javapacket.PlayerCommand{EntityID: self, Action: f.action}); err != nil {
			return err
		}
	}
	return nil
}

// blockAction translates a digging action of the client.
func (s *Session) blockAction(action bedrockprotocol.PlayerBlockAction) error {
	var status int32
	switch action.Action {
	case bedrockprotocol.PlayerActionStartBreak, bedrockprotocol.PlayerActionContinueDestroyBlock:
		status = javapacket.PlayerActionStartDigging
	case bedrockprotocol.PlayerActionAbortBreak:
		status = javapacket.PlayerActionCancelDigging
	case bedrockprotocol.PlayerActionPredictDestroyBlock:
		status = javapacket.PlayerActionFinishDigging
	default:
		return nil
	}
	return s.writeBack(&javapacket.PlayerAction{
		Status:   status,
		Position: protocol.BlockPos(action.BlockPos),
		Face:     int8(javaFace(action.Face)),
		Sequence: s.nextSequence(),
	})
}

// javaFace returns the Java direction of a Bedrock block face. Both use the order of cube.Face.
func javaFace(face int32) int32 {
	if face < int32(cube.FaceDown) || face > int32(cube.FaceEast) {
		return int32(cube.FaceUp)
	}
	return face
}

// handleTeleport moves the player to the position the server puts it at and confirms the teleport.
func handleTeleport(s *Session, pk *javapacket.SynchronisePlayerPosition) error {
	m := &s.movement
	pos, yaw, pitch := pk.Position, pk.Yaw, pk.Pitch
	if pk.Flags&javapacket.RelativeX != 0 {
		pos[0] += m.position.X()
	}
	if pk.Flags&javapacket.RelativeY != 0 {
		pos[1] += m.position.Y()
	}
	if pk.Flags&javapacket.RelativeZ != 0 {
		pos[2] += m.position.Z()
	}
	if pk.Flags&javapacket.RelativeYaw != 0 {
		yaw += m.yaw
	}
	if pk.Flags&javapacket.RelativePitch != 0 {
		pitch += m.pitch
	}
	m.position, m.yaw, m.pitch, m.idleTicks = pos, yaw, pitch, 0

	if err := s.writeFront(&packet.MovePlayer{
		EntityRuntimeID: entity.PlayerRuntimeID,
		Position:        eyes(pos),
		Pitch:           pitch,
		Yaw:             yaw,
		HeadYaw:         yaw,
		Mode:            packet.MoveModeTeleport,
	}); err != nil {
		return err
	}
	if err := s.writeBack(&javapacket.ConfirmTeleportation{TeleportID: pk.TeleportID}); err != nil {
		return err
	}
	return s.writeBack(&javapacket.SetPlayerPositionRotation{Position: pos, Yaw: yaw, Pitch: pitch, OnGround: m.onGround})
}
