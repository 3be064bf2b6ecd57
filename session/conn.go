package session

import (
	"context"
	"net"

	"github.com/cooldogedev/crossplay/backend"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/sandertv/gophertunnel/minecraft"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// FrontConn is the connection of a Bedrock client whose login has been accepted. Packets read are of the
// latest protocol version; the connection converts them for the version of the client.
type FrontConn interface {
	ReadPacket() (packet.Packet, error)
	WritePacket(pk packet.Packet) error
	Flush() error
	Close() error

	IdentityData() login.IdentityData
	ClientData() login.ClientData
	RemoteAddr() net.Addr
	// Protocol returns the protocol version of the client.
	Protocol() int32
	// StartGameContext spawns the client in the world described by data.
	StartGameContext(ctx context.Context, data minecraft.GameData) error
}

// BackConn is a connection to a Java server that has finished logging in.
type BackConn interface {
	ReadPacket() (javapacket.Packet, error)
	WritePacket(pk javapacket.Packet) error
	Close() error
	// Version returns the protocol version spoken on the connection.
	Version() int32
}

// Dialer opens the back connection of a session. It returns once the login has finished and the
// connection is in the configuration state.
type Dialer interface {
	Dial(ctx context.Context, l backend.Login) (BackConn, error)
}

// BackendDialer dials Java servers through a backend.Dialer.
type BackendDialer struct {
	backend.Dialer
}

// Dial ...
func (d BackendDialer) Dial(ctx context.Context, l backend.Login) (BackConn, error) {
	conn, err := d.Dialer.Dial(ctx, l)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
