package session

import (
	"strings"

	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
)

// clientInformation returns the settings of the client sent to the server while configuring.
func (s *Session) clientInformation() *javapacket.ClientInformation {
	locale := strings.ToLower(s.front.ClientData().LanguageCode)
	if locale == "" {
		locale = "en_us"
	}
	return &javapacket.ClientInformation{
		Locale:              locale,
		ViewDistance:        int8(min(s.conf.ChunkRadius, 127)),
		ChatColours:         true,
		DisplayedSkinParts:  0x7f,
		MainHand:            1,
		AllowServerListings: true,
	}
}

func handleKeepAlive(s *Session, pk *javapacket.ClientboundKeepAlive) error {
	return s.writeBack(&javapacket.ServerboundKeepAlive{KeepAliveID: pk.KeepAliveID})
}

func handlePing(s *Session, pk *javapacket.Ping) error {
	return s.writeBack(&javapacket.Pong{PingID: pk.PingID})
}

func handlePluginMessage(s *Session, pk *javapacket.ClientboundPluginMessage) error {
	s.log.Debug("ignored plugin message", "channel", pk.Channel, "len", len(pk.Data))
	return nil
}

// handleRegistryCodec loads the registries 1.20.3 servers send all at once.
func handleRegistryCodec(s *Session, pk *javapacket.RegistryData) error {
	return s.world.loadCodec(pk.Codec)
}

func handleRegistryData(s *Session, pk *javapacket.RegistryData) error {
	return s.world.loadRegistry(pk.RegistryID, pk.Entries)
}

// handleKnownPacks tells the server the client knows no data packs, so that it sends every registry.
func handleKnownPacks(s *Session, _ *javapacket.ClientboundKnownPacks) error {
	return s.writeBack(&javapacket.ServerboundKnownPacks{})
}

// handleResourcePack declines every resource pack, since Java packs cannot be used by Bedrock clients.
func handleResourcePack(s *Session, pk *javapacket.AddResourcePack) error {
	s.log.Debug("declined resource pack", "url", pk.URL, "forced", pk.Forced)
	return s.writeBack(&javapacket.ResourcePackResponse{UUID: pk.UUID, Result: javapacket.ResourcePackDeclined})
}

func handleFeatureFlags(s *Session, pk *javapacket.FeatureFlags) error {
	s.log.Debug("server feature flags", "flags", pk.Flags)
	return nil
}

// handleFinishConfiguration acknowledges the end of configuration. The session moves to play once the
// server sends Login.
func handleFinishConfiguration(s *Session, _ *javapacket.FinishConfiguration) error {
	return s.writeBack(&javapacket.AcknowledgeFinishConfiguration{})
}

// handleStartConfiguration moves a player in play back to configuration, which servers do to change the
// registries or send resource packs.
func handleStartConfiguration(s *Session, _ *javapacket.StartConfiguration) error {
	if err := s.writeBack(&javapacket.AcknowledgeConfiguration{}); err != nil {
		return err
	}
	s.setState(StateConfiguring)
	return s.writeBack(s.clientInformation())
}

func handleConfigurationDisconnect(_ *Session, pk *javapacket.ConfigurationDisconnect) error {
	return &closeError{side: sideBack, err: &kickError{message: renderText(pk.Reason)}}
}

func handleDisconnect(_ *Session, pk *javapacket.Disconnect) error {
	return &closeError{side: sideBack, err: &kickError{message: renderText(pk.Reason)}}
}

// kickError is the cause of the server disconnecting the player with a message.
type kickError struct {
	message string
}

// Error ...
func (e *kickError) Error() string {
	return "kicked: " + e.message
}
