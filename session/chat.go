package session

import (
	"math/rand/v2"
	"strings"
	"time"

	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// maxChatLength is the longest chat message or command a Java server accepts.
const maxChatLength = 256

func handleSystemChat(s *Session, pk *javapacket.SystemChat) error {
	text := renderText(pk.Content)
	if pk.Overlay {
		return s.writeFront(&packet.SetTitle{ActionType: packet.TitleActionSetActionBar, Text: text})
	}
	return s.writeFront(&packet.Text{TextType: packet.TextTypeRaw, Message: text})
}

func handlePlayerChat(s *Session, pk *javapacket.PlayerChat) error {
	if pk.FilterType == javapacket.FilterFullyFiltered {
		return nil
	}
	message := pk.Message
	if pk.HasUnsignedContent {
		message = renderText(pk.UnsignedContent)
	}
	return s.writeFront(&packet.Text{
		TextType:   packet.TextTypeChat,
		SourceName: renderText(pk.Format.SenderName),
		Message:    message,
	})
}

func handleDisguisedChat(s *Session, pk *javapacket.DisguisedChat) error {
	return s.writeFront(&packet.Text{
		TextType:   packet.TextTypeChat,
		SourceName: renderText(pk.Format.SenderName),
		Message:    renderText(pk.Message),
	})
}

// handleText sends a chat message of the client. Messages are never signed, so servers enforcing secure
// chat reject them.
func handleText(s *Session, pk *packet.Text) error {
	if pk.TextType != packet.TextTypeChat {
		return nil
	}
	message := truncate(strings.TrimSpace(pk.Message), maxChatLength)
	if message == "" {
		return nil
	}
	return s.writeBack(&javapacket.ChatMessage{
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
		Salt:      rand.Int64(),
	})
}

func handleCommandRequest(s *Session, pk *packet.CommandRequest) error {
	command := truncate(strings.TrimPrefix(strings.TrimSpace(pk.CommandLine), "/"), maxChatLength)
	if command == "" {
		return nil
	}
	return s.writeBack(&javapacket.ChatCommand{
		Command:   command,
		Timestamp: time.Now().UnixMilli(),
		Salt:      rand.Int64(),
	})
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func handleTitle(s *Session, pk *javapacket.SetTitleText) error {
	return s.writeFront(&packet.SetTitle{ActionType: packet.TitleActionSetTitle, Text: renderText(pk.Text)})
}

func handleSubtitle(s *Session, pk *javapacket.SetSubtitleText) error {
	return s.writeFront(&packet.SetTitle{ActionType: packet.TitleActionSetSubtitle, Text: renderText(pk.Text)})
}

func handleActionBar(s *Session, pk *javapacket.SetActionBarText) error {
	return s.writeFront(&packet.SetTitle{ActionType: packet.TitleActionSetActionBar, Text: renderText(pk.Text)})
}

func handleTitleTimes(s *Session, pk *javapacket.SetTitleAnimationTimes) error {
	return s.writeFront(&packet.SetTitle{
		ActionType:      packet.TitleActionSetDurations,
		FadeInDuration:  pk.FadeIn,
		RemainDuration:  pk.Stay,
		FadeOutDuration: pk.FadeOut,
	})
}

func handleClearTitles(s *Session, pk *javapacket.ClearTitles) error {
	action := int32(packet.TitleActionClear)
	if pk.Reset {
		action = packet.TitleActionReset
	}
	return s.writeFront(&packet.SetTitle{ActionType: action})
}

// soundName returns the Bedrock name of a Java sound. Sounds referenced by registry id cannot be named,
// since the sound tables are keyed by name.
func (s *Session) soundName(sound javapacket.Sound) (string, bool) {
	if sound.RegistryID >= 0 {
		return "", false
	}
	return s.set.BedrockSound(sound.Name)
}

func handleSoundEffect(s *Session, pk *javapacket.SoundEffect) error {
	name, ok := s.soundName(pk.Sound)
	if !ok {
		s.log.Debug("dropped unmapped sound", "sound", pk.Sound.Name, "registry_id", pk.Sound.RegistryID)
		return nil
	}
	pos := mgl32.Vec3{float32(pk.Position[0]) / 8, float32(pk.Position[1]) / 8, float32(pk.Position[2]) / 8}
	return s.writeFront(&packet.PlaySound{SoundName: name, Position: pos, Volume: pk.Volume, Pitch: pk.Pitch})
}

func handleEntitySoundEffect(s *Session, pk *javapacket.EntitySoundEffect) error {
	name, ok := s.soundName(pk.Sound)
	if !ok {
		return nil
	}
	pos := vec32(s.movement.position)
	if e, ok := s.tracked[pk.EntityID]; ok {
		pos = vec32(e.position)
	} else if self, _ := s.entities.Self(); self != pk.EntityID {
		return nil
	}
	return s.writeFront(&packet.PlaySound{SoundName: name, Position: pos, Volume: pk.Volume, Pitch: pk.Pitch})
}

func handleStopSound(s *Session, pk *javapacket.StopSound) error {
	if pk.Sound == "" {
		return s.writeFront(&packet.StopSound{StopAll: true})
	}
	name, ok := s.set.BedrockSound(pk.Sound)
	if !ok {
		return nil
	}
	return s.writeFront(&packet.StopSound{SoundName: name})
}
