package packet

import (
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/google/uuid"
)

// Disconnect disconnects the client during play. Reason is an NBT text component.
type Disconnect struct {
	Reason []byte
}

func (*Disconnect) ID() uint32 { return IDDisconnect }

func (pk *Disconnect) Marshal(io protocol.IO) {
	io.NBT(&pk.Reason)
}

// SystemChat is a chat message not sent by a player. If Overlay is true, it is shown above the hotbar.
type SystemChat struct {
	Content []byte
	Overlay bool
}

func (*SystemChat) ID() uint32 { return IDSystemChat }

func (pk *SystemChat) Marshal(io protocol.IO) {
	io.NBT(&pk.Content)
	io.Bool(&pk.Overlay)
}

// ChatFormat holds the chat type and decoration names of a player chat message.
type ChatFormat struct {
	ChatType      int32
	SenderName    []byte
	HasTargetName bool
	TargetName    []byte
}

func (x *ChatFormat) Marshal(io protocol.IO) {
	io.Varint32(&x.ChatType)
	io.NBT(&x.SenderName)
	protocol.Optional(io, &x.HasTargetName, &x.TargetName, io.NBT)
}

// DisguisedChat is a chat message sent without a signature, for example from the console.
type DisguisedChat struct {
	Message []byte
	Format  ChatFormat
}

func (*DisguisedChat) ID() uint32 { return IDDisguisedChat }

func (pk *DisguisedChat) Marshal(io protocol.IO) {
	io.NBT(&pk.Message)
	pk.Format.Marshal(io)
}

// PreviousMessage references a message seen before by the sender of a PlayerChat.
type PreviousMessage struct {
	MessageID int32
	Signature [256]byte
}

func (x *PreviousMessage) Marshal(io protocol.IO) {
	id := x.MessageID + 1
	io.Varint32(&id)
	x.MessageID = id - 1
	if id == 0 {
		io.FixedBytes(x.Signature[:])
	}
}

// Filter types of PlayerChat.
const (
	FilterPassThrough int32 = iota
	FilterFullyFiltered
	FilterPartiallyFiltered
)

// PlayerChat is a chat message sent by a player.
type PlayerChat struct {
	Sender       uuid.UUID
	Index        int32
	HasSignature bool
	Signature    [256]byte

	Message   string
	Timestamp int64
	Salt      int64

	PreviousMessages []PreviousMessage

	HasUnsignedContent bool
	UnsignedContent    []byte
	FilterType         int32
	FilterMask         protocol.BitSet

	Format ChatFormat
}

func (*PlayerChat) ID() uint32 { return IDPlayerChat }

func (pk *PlayerChat) Marshal(io protocol.IO) {
	io.UUID(&pk.Sender)
	io.Varint32(&pk.Index)
	protocol.Optional(io, &pk.HasSignature, &pk.Signature, func(s *[256]byte) { io.FixedBytes(s[:]) })
	io.String(&pk.Message)
	io.Int64(&pk.Timestamp)
	io.Int64(&pk.Salt)
	protocol.Slice(io, &pk.PreviousMessages)
	protocol.Optional(io, &pk.HasUnsignedContent, &pk.UnsignedContent, io.NBT)
	io.Varint32(&pk.FilterType)
	if pk.FilterType == FilterPartiallyFiltered {
		io.BitSet(&pk.FilterMask)
	}
	pk.Format.Marshal(io)
}

// Player info actions of PlayerInfoUpdate.
const (
	PlayerInfoAddPlayer = 1 << iota
	PlayerInfoInitialiseChat
	PlayerInfoUpdateGameMode
	PlayerInfoUpdateListed
	PlayerInfoUpdateLatency
	PlayerInfoUpdateDisplayName
)

// ChatSession is the public chat session of a player.
type ChatSession struct {
	SessionID    uuid.UUID
	ExpiresAt    int64
	PublicKey    []byte
	KeySignature []byte
}

func (x *ChatSession) Marshal(io protocol.IO) {
	io.UUID(&x.SessionID)
	io.Int64(&x.ExpiresAt)
	io.ByteSlice(&x.PublicKey)
	io.ByteSlice(&x.KeySignature)
}

// PlayerInfoEntry is a single player of a PlayerInfoUpdate. Only the fields of the actions set are present.
type PlayerInfoEntry struct {
	UUID           uuid.UUID
	Name           string
	Properties     []Property
	HasChatSession bool
	ChatSession    ChatSession
	GameMode       int32
	Listed         bool
	Latency        int32
	HasDisplayName bool
	DisplayName    []byte
}

// PlayerInfoUpdate adds players to or updates players in the player list.
type PlayerInfoUpdate struct {
	Actions uint8
	Entries []PlayerInfoEntry
}

func (*PlayerInfoUpdate) ID() uint32 { return IDPlayerInfoUpdate }

func (pk *PlayerInfoUpdate) Marshal(io protocol.IO) {
	io.Uint8(&pk.Actions)
	protocol.FuncSlice(io, &pk.Entries, func(e *PlayerInfoEntry) {
		io.UUID(&e.UUID)
		if pk.Actions&PlayerInfoAddPlayer != 0 {
			io.String(&e.Name)
			protocol.Slice(io, &e.Properties)
		}
		if pk.Actions&PlayerInfoInitialiseChat != 0 {
			protocol.Optional(io, &e.HasChatSession, &e.ChatSession, func(s *ChatSession) { s.Marshal(io) })
		}
		if pk.Actions&PlayerInfoUpdateGameMode != 0 {
			io.Varint32(&e.GameMode)
		}
		if pk.Actions&PlayerInfoUpdateListed != 0 {
			io.Bool(&e.Listed)
		}
		if pk.Actions&PlayerInfoUpdateLatency != 0 {
			io.Varint32(&e.Latency)
		}
		if pk.Actions&PlayerInfoUpdateDisplayName != 0 {
			protocol.Optional(io, &e.HasDisplayName, &e.DisplayName, io.NBT)
		}
	})
}

// PlayerInfoRemove removes players from the player list.
type PlayerInfoRemove struct {
	UUIDs []uuid.UUID
}

func (*PlayerInfoRemove) ID() uint32 { return IDPlayerInfoRemove }

func (pk *PlayerInfoRemove) Marshal(io protocol.IO) {
	protocol.FuncSlice(io, &pk.UUIDs, io.UUID)
}

// SetHealth ...
type SetHealth struct {
	Health     float32
	Food       int32
	Saturation float32
}

func (*SetHealth) ID() uint32 { return IDSetHealth }

func (pk *SetHealth) Marshal(io protocol.IO) {
	io.Float32(&pk.Health)
	io.Varint32(&pk.Food)
	io.Float32(&pk.Saturation)
}

// SetExperience ...
type SetExperience struct {
	Bar   float32
	Level int32
	Total int32
}

func (*SetExperience) ID() uint32 { return IDSetExperience }

func (pk *SetExperience) Marshal(io protocol.IO) {
	io.Float32(&pk.Bar)
	io.Varint32(&pk.Level)
	io.Varint32(&pk.Total)
}

// SetActionBarText ...
type SetActionBarText struct {
	Text []byte
}

func (*SetActionBarText) ID() uint32 { return IDSetActionBarText }

func (pk *SetActionBarText) Marshal(io protocol.IO) {
	io.NBT(&pk.Text)
}

// SetTitleText ...
type SetTitleText struct {
	Text []byte
}

func (*SetTitleText) ID() uint32 { return IDSetTitleText }

func (pk *SetTitleText) Marshal(io protocol.IO) {
	io.NBT(&pk.Text)
}

// SetSubtitleText ...
type SetSubtitleText struct {
	Text []byte
}

func (*SetSubtitleText) ID() uint32 { return IDSetSubtitleText }

func (pk *SetSubtitleText) Marshal(io protocol.IO) {
	io.NBT(&pk.Text)
}

// SetTitleAnimationTimes sets the fade in, stay and fade out times of titles in ticks.
type SetTitleAnimationTimes struct {
	FadeIn  int32
	Stay    int32
	FadeOut int32
}

func (*SetTitleAnimationTimes) ID() uint32 { return IDSetTitleAnimationTimes }

func (pk *SetTitleAnimationTimes) Marshal(io protocol.IO) {
	io.Int32(&pk.FadeIn)
	io.Int32(&pk.Stay)
	io.Int32(&pk.FadeOut)
}

// ClearTitles ...
type ClearTitles struct {
	Reset bool
}

func (*ClearTitles) ID() uint32 { return IDClearTitles }

func (pk *ClearTitles) Marshal(io protocol.IO) {
	io.Bool(&pk.Reset)
}

// ClientboundSetHeldItem changes the selected hotbar slot of the player.
type ClientboundSetHeldItem struct {
	Slot int8
}

func (*ClientboundSetHeldItem) ID() uint32 { return IDClientboundSetHeldItem }

func (pk *ClientboundSetHeldItem) Marshal(io protocol.IO) {
	io.Int8(&pk.Slot)
}
