package packet

import (
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/google/uuid"
)

// ClientboundPluginMessage carries data on a custom channel. It exists in configuration and play.
type ClientboundPluginMessage struct {
	Channel string
	Data    []byte
}

func (*ClientboundPluginMessage) ID() uint32 { return IDClientboundPluginMessage }

func (pk *ClientboundPluginMessage) Marshal(io protocol.IO) {
	io.Identifier(&pk.Channel)
	io.Bytes(&pk.Data)
}

// ServerboundPluginMessage carries data on a custom channel to the server.
type ServerboundPluginMessage struct {
	Channel string
	Data    []byte
}

func (*ServerboundPluginMessage) ID() uint32 { return IDServerboundPluginMessage }

func (pk *ServerboundPluginMessage) Marshal(io protocol.IO) {
	io.Identifier(&pk.Channel)
	io.Bytes(&pk.Data)
}

// ConfigurationDisconnect disconnects the client during configuration. Reason is an NBT text component.
type ConfigurationDisconnect struct {
	Reason []byte
}

func (*ConfigurationDisconnect) ID() uint32 { return IDConfigurationDisconnect }

func (pk *ConfigurationDisconnect) Marshal(io protocol.IO) {
	io.NBT(&pk.Reason)
}

// FinishConfiguration is sent by the server once it has sent all configuration.
type FinishConfiguration struct{}

func (*FinishConfiguration) ID() uint32 { return IDFinishConfiguration }

func (*FinishConfiguration) Marshal(protocol.IO) {}

// AcknowledgeFinishConfiguration moves the connection to the play state.
type AcknowledgeFinishConfiguration struct{}

func (*AcknowledgeFinishConfiguration) ID() uint32 { return IDAcknowledgeFinishConfiguration }

func (*AcknowledgeFinishConfiguration) Marshal(protocol.IO) {}

// ClientboundKeepAlive must be answered with a ServerboundKeepAlive carrying the same id.
type ClientboundKeepAlive struct {
	KeepAliveID int64
}

func (*ClientboundKeepAlive) ID() uint32 { return IDClientboundKeepAlive }

func (pk *ClientboundKeepAlive) Marshal(io protocol.IO) {
	io.Int64(&pk.KeepAliveID)
}

// ServerboundKeepAlive ...
type ServerboundKeepAlive struct {
	KeepAliveID int64
}

func (*ServerboundKeepAlive) ID() uint32 { return IDServerboundKeepAlive }

func (pk *ServerboundKeepAlive) Marshal(io protocol.IO) {
	io.Int64(&pk.KeepAliveID)
}

// Ping must be answered with a Pong carrying the same id.
type Ping struct {
	PingID int32
}

func (*Ping) ID() uint32 { return IDPing }

func (pk *Ping) Marshal(io protocol.IO) {
	io.Int32(&pk.PingID)
}

// Pong ...
type Pong struct {
	PingID int32
}

func (*Pong) ID() uint32 { return IDPong }

func (pk *Pong) Marshal(io protocol.IO) {
	io.Int32(&pk.PingID)
}

// RegistryEntry is a single entry of a registry sent in RegistryData.
type RegistryEntry struct {
	Name    string
	HasData bool
	Data    []byte
}

func (x *RegistryEntry) Marshal(io protocol.IO) {
	io.Identifier(&x.Name)
	protocol.Optional(io, &x.HasData, &x.Data, io.NBT)
}

// RegistryData holds synchronised registries. Before 1.20.5 all registries are sent at once as a single
// NBT compound in Codec; from 1.20.5 onward one packet is sent per registry.
type RegistryData struct {
	Codec []byte

	RegistryID string
	Entries    []RegistryEntry
}

func (*RegistryData) ID() uint32 { return IDRegistryData }

func (pk *RegistryData) Marshal(io protocol.IO) {
	if io.Version() < protocol.Version1_20_5 {
		io.NBT(&pk.Codec)
		return
	}
	io.Identifier(&pk.RegistryID)
	protocol.Slice(io, &pk.Entries)
}

// AddResourcePack asks the client to download a resource pack.
type AddResourcePack struct {
	UUID      uuid.UUID
	URL       string
	Hash      string
	Forced    bool
	HasPrompt bool
	Prompt    []byte
}

func (*AddResourcePack) ID() uint32 { return IDAddResourcePack }

func (pk *AddResourcePack) Marshal(io protocol.IO) {
	io.UUID(&pk.UUID)
	io.String(&pk.URL)
	io.String(&pk.Hash)
	io.Bool(&pk.Forced)
	protocol.Optional(io, &pk.HasPrompt, &pk.Prompt, io.NBT)
}

// Resource pack response results.
const (
	ResourcePackLoaded int32 = iota
	ResourcePackDeclined
	ResourcePackFailedDownload
	ResourcePackAccepted
)

// ResourcePackResponse answers an AddResourcePack.
type ResourcePackResponse struct {
	UUID   uuid.UUID
	Result int32
}

func (*ResourcePackResponse) ID() uint32 { return IDResourcePackResponse }

func (pk *ResourcePackResponse) Marshal(io protocol.IO) {
	io.UUID(&pk.UUID)
	io.Varint32(&pk.Result)
}

// FeatureFlags lists the feature flags enabled on the server.
type FeatureFlags struct {
	Flags []string
}

func (*FeatureFlags) ID() uint32 { return IDFeatureFlags }

func (pk *FeatureFlags) Marshal(io protocol.IO) {
	protocol.FuncSlice(io, &pk.Flags, io.Identifier)
}

// KnownPack is a data pack identified by namespace, id and version.
type KnownPack struct {
	Namespace string
	PackID    string
	Version   string
}

func (x *KnownPack) Marshal(io protocol.IO) {
	io.String(&x.Namespace)
	io.String(&x.PackID)
	io.String(&x.Version)
}

// ClientboundKnownPacks lists the data packs the server could omit registry data for.
type ClientboundKnownPacks struct {
	Packs []KnownPack
}

func (*ClientboundKnownPacks) ID() uint32 { return IDClientboundKnownPacks }

func (pk *ClientboundKnownPacks) Marshal(io protocol.IO) {
	protocol.Slice(io, &pk.Packs)
}

// ServerboundKnownPacks answers ClientboundKnownPacks with the packs the client knows.
type ServerboundKnownPacks struct {
	Packs []KnownPack
}

func (*ServerboundKnownPacks) ID() uint32 { return IDServerboundKnownPacks }

func (pk *ServerboundKnownPacks) Marshal(io protocol.IO) {
	protocol.Slice(io, &pk.Packs)
}

// ClientInformation holds the settings of the client. It is sent in configuration and play.
type ClientInformation struct {
	Locale              string
	ViewDistance        int8
	ChatMode            int32
	ChatColours         bool
	DisplayedSkinParts  uint8
	MainHand            int32
	EnableTextFiltering bool
	AllowServerListings bool
}

func (*ClientInformation) ID() uint32 { return IDClientInformation }

func (pk *ClientInformation) Marshal(io protocol.IO) {
	io.String(&pk.Locale)
	io.Int8(&pk.ViewDistance)
	io.Varint32(&pk.ChatMode)
	io.Bool(&pk.ChatColours)
	io.Uint8(&pk.DisplayedSkinParts)
	io.Varint32(&pk.MainHand)
	io.Bool(&pk.EnableTextFiltering)
	io.Bool(&pk.AllowServerListings)
}

// StartConfiguration moves a connection in the play state back to configuration.
type StartConfiguration struct{}

func (*StartConfiguration) ID() uint32 { return IDStartConfiguration }

func (*StartConfiguration) Marshal(protocol.IO) {}

// AcknowledgeConfiguration acknowledges a StartConfiguration.
type AcknowledgeConfiguration struct{}

func (*AcknowledgeConfiguration) ID() uint32 { return IDAcknowledgeConfiguration }

func (*AcknowledgeConfiguration) Marshal(protocol.IO) {}
