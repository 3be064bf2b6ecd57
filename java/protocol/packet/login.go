package packet

import (
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/google/uuid"
)

// Handshake is the first packet sent on a connection. It declares the protocol version of the client and
// the state it wishes to move to.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

// NextStateLogin is the NextState of a Handshake that starts a login.
const NextStateLogin = 2

func (*Handshake) ID() uint32 { return IDHandshake }

func (pk *Handshake) Marshal(io protocol.IO) {
	io.Varint32(&pk.ProtocolVersion)
	io.String(&pk.ServerAddress)
	io.Uint16(&pk.ServerPort)
	io.Varint32(&pk.NextState)
}

// LoginDisconnect is sent by the server to refuse a login. The reason is a JSON text component.
type LoginDisconnect struct {
	Reason string
}

func (*LoginDisconnect) ID() uint32 { return IDLoginDisconnect }

func (pk *LoginDisconnect) Marshal(io protocol.IO) {
	io.String(&pk.Reason)
}

// EncryptionRequest is sent by servers running in online mode.
type EncryptionRequest struct {
	ServerID    string
	PublicKey   []byte
	VerifyToken []byte
	// ShouldAuthenticate is only present on 1.20.5 and later.
	ShouldAuthenticate bool
}

func (*EncryptionRequest) ID() uint32 { return IDEncryptionRequest }

func (pk *EncryptionRequest) Marshal(io protocol.IO) {
	io.String(&pk.ServerID)
	io.ByteSlice(&pk.PublicKey)
	io.ByteSlice(&pk.VerifyToken)
	if io.Version() >= protocol.Version1_20_5 {
		io.Bool(&pk.ShouldAuthenticate)
	}
}

// Property is a signed profile property such as a skin texture.
type Property struct {
	Name      string
	Value     string
	Signed    bool
	Signature string
}

func (x *Property) Marshal(io protocol.IO) {
	io.String(&x.Name)
	io.String(&x.Value)
	protocol.Optional(io, &x.Signed, &x.Signature, io.String)
}

// LoginSuccess finishes the login state.
type LoginSuccess struct {
	UUID       uuid.UUID
	Username   string
	Properties []Property
	// StrictErrorHandling is only present on 1.20.5 and later.
	StrictErrorHandling bool
}

func (*LoginSuccess) ID() uint32 { return IDLoginSuccess }

func (pk *LoginSuccess) Marshal(io protocol.IO) {
	io.UUID(&pk.UUID)
	io.String(&pk.Username)
	protocol.Slice(io, &pk.Properties)
	if io.Version() >= protocol.Version1_20_5 {
		io.Bool(&pk.StrictErrorHandling)
	}
}

// SetCompression enables compression of every frame of at least Threshold bytes.
type SetCompression struct {
	Threshold int32
}

func (*SetCompression) ID() uint32 { return IDSetCompression }

func (pk *SetCompression) Marshal(io protocol.IO) {
	io.Varint32(&pk.Threshold)
}

// LoginPluginRequest is a custom query during login.
type LoginPluginRequest struct {
	MessageID int32
	Channel   string
	Data      []byte
}

func (*LoginPluginRequest) ID() uint32 { return IDLoginPluginRequest }

func (pk *LoginPluginRequest) Marshal(io protocol.IO) {
	io.Varint32(&pk.MessageID)
	io.Identifier(&pk.Channel)
	io.Bytes(&pk.Data)
}

// CookieRequest asks the client for a cookie previously stored. It exists on 1.20.5 and later.
type CookieRequest struct {
	Key string
}

func (*CookieRequest) ID() uint32 { return IDCookieRequest }

func (pk *CookieRequest) Marshal(io protocol.IO) {
	io.Identifier(&pk.Key)
}

// LoginStart starts a login with the name and UUID of the player.
type LoginStart struct {
	Name string
	UUID uuid.UUID
}

func (*LoginStart) ID() uint32 { return IDLoginStart }

func (pk *LoginStart) Marshal(io protocol.IO) {
	io.String(&pk.Name)
	io.UUID(&pk.UUID)
}

// LoginPluginResponse answers a LoginPluginRequest.
type LoginPluginResponse struct {
	MessageID  int32
	Successful bool
	Data       []byte
}

func (*LoginPluginResponse) ID() uint32 { return IDLoginPluginResponse }

func (pk *LoginPluginResponse) Marshal(io protocol.IO) {
	io.Varint32(&pk.MessageID)
	io.Bool(&pk.Successful)
	io.Bytes(&pk.Data)
}

// LoginAcknowledged acknowledges a LoginSuccess and moves the connection to the configuration state.
type LoginAcknowledged struct{}

func (*LoginAcknowledged) ID() uint32 { return IDLoginAcknowledged }

func (*LoginAcknowledged) Marshal(protocol.IO) {}

// CookieResponse answers a CookieRequest.
type CookieResponse struct {
	Key     string
	Present bool
	Payload []byte
}

func (*CookieResponse) ID() uint32 { return IDCookieResponse }

func (pk *CookieResponse) Marshal(io protocol.IO) {
	io.Identifier(&pk.Key)
	protocol.Optional(io, &pk.Present, &pk.Payload, io.ByteSlice)
}
