package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	mcnet "github.com/Tnze/go-mc/net"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/google/uuid"
)

// Profile is the game profile the server assigned to the player in its LoginSuccess.
type Profile struct {
	UUID uuid.UUID
	Name string
}

// Conn is a connection to a Java Edition server. Frames are read and written through go-mc, which also
// handles compression once the server enabled it. The connection state follows the packets written: it
// moves forward when the client side of a state change is sent.
type Conn struct {
	log *slog.Logger

	netConn net.Conn
	conn    *mcnet.Conn
	tables  *packet.Tables

	state   atomic.Int32
	profile Profile

	writeMu sync.Mutex
	closed  atomic.Bool
	once    sync.Once
}

// NewConn wraps a connection to a Java server speaking the protocol of the tables passed. The connection
// starts in the handshaking state.
func NewConn(log *slog.Logger, netConn net.Conn, tables *packet.Tables) *Conn {
	c := &Conn{
		log:     log,
		netConn: netConn,
		conn:    mcnet.WrapConn(netConn),
		tables:  tables,
	}
	c.state.Store(int32(protocol.StateHandshaking))
	return c
}

// Version returns the protocol version spoken on the connection.
func (c *Conn) Version() int32 {
	return c.tables.Version()
}

// State returns the current state of the connection.
func (c *Conn) State() protocol.State {
	return protocol.State(c.state.Load())
}

// Profile returns the profile received in the LoginSuccess of the server.
func (c *Conn) Profile() Profile {
	return c.profile
}

// RemoteAddr ...
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// ReadPacket reads the next packet sent by the server. Packets that are not known to the packet tables are
// skipped. Malformed packets are returned as a *packet.DecodeError; the connection remains usable after
// such an error.
func (c *Conn) ReadPacket() (packet.Packet, error) {
	for {
		var p pk.Packet
		if err := c.conn.ReadPacket(&p); err != nil {
			return nil, err
		}
		state := c.State()
		decoded, err := packet.Decode(c.tables, state, protocol.Clientbound, p)
		if err != nil {
			if errors.Is(err, packet.ErrUnknownPacket) {
				continue
			}
			return nil, err
		}
		switch decoded := decoded.(type) {
		case *packet.SetCompression:
			c.conn.SetThreshold(int(decoded.Threshold))
			c.log.Debug("enabled backend compression", "threshold", decoded.Threshold)
		case *packet.LoginSuccess:
			c.profile = Profile{UUID: decoded.UUID, Name: decoded.Username}
		}
		return decoded, nil
	}
}

// WritePacket encodes and writes a packet to the server. Writing a packet that finishes a state on the
// client side moves the connection to the next state.
func (c *Conn) WritePacket(p packet.Packet) error {
	if c.closed.Load() {
		return net.ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	raw, err := packet.Encode(c.tables, c.State(), protocol.Serverbound, p)
	if err != nil {
		return err
	}
	switch p := p.(type) {
	case *packet.Handshake:
		if p.NextState == packet.NextStateLogin {
			c.state.Store(int32(protocol.StateLogin))
		} else {
			c.state.Store(int32(protocol.StateStatus))
		}
	case *packet.LoginAcknowledged, *packet.AcknowledgeConfiguration:
		c.state.Store(int32(protocol.StateConfiguration))
	case *packet.AcknowledgeFinishConfiguration:
		c.state.Store(int32(protocol.StatePlay))
	}
	if err := c.conn.WritePacket(raw); err != nil {
		return fmt.Errorf("write %T: %w", p, err)
	}
	return nil
}

// Close closes the connection. It is safe to call Close multiple times.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		err = c.netConn.Close()
	})
	return err
}
