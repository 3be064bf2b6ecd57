// Package bedrock holds the codecs of the Bedrock protocol versions accepted from clients.
package bedrock

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sandertv/gophertunnel/minecraft"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

var (
	// ErrUnknownPacket is the cause of a DecodeError for a packet id the protocol version does not know.
	ErrUnknownPacket = errors.New("unknown packet")
	// ErrUnsupportedVersion is returned by New for a protocol version without a codec.
	ErrUnsupportedVersion = errors.New("unsupported protocol version")
)

// DecodeError is returned for a single packet that could not be decoded. The connection it was read from
// remains usable.
type DecodeError struct {
	PacketID uint32
	Err      error
}

// Error ...
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode packet %v: %v", e.PacketID, e.Err)
}

// Unwrap ...
func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	protocolsMu sync.RWMutex
	protocols   = map[int32]minecraft.Protocol{
		protocol.CurrentProtocol: minecraft.DefaultProtocol,
	}
)

// Register adds a protocol to the versions accepted from clients. Packets of the protocol are converted to
// and from the packets of the latest version by the protocol itself.
func Register(p minecraft.Protocol) {
	protocolsMu.Lock()
	defer protocolsMu.Unlock()
	protocols[p.ID()] = p
}

// Protocols returns all registered protocols other than the latest one, as accepted by a gophertunnel
// listener.
func Protocols() []minecraft.Protocol {
	protocolsMu.RLock()
	defer protocolsMu.RUnlock()
	var out []minecraft.Protocol
	for id, p := range protocols {
		if id != protocol.CurrentProtocol {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b minecraft.Protocol) int { return int(a.ID() - b.ID()) })
	return out
}

// Supported reports whether a codec exists for the protocol version passed.
func Supported(version int32) bool {
	protocolsMu.RLock()
	defer protocolsMu.RUnlock()
	_, ok := protocols[version]
	return ok
}

// Codec decodes packets sent by a client and encodes packets sent to it, for one protocol version. Decoded
// packets are always of the latest version. A Codec is not safe for concurrent use.
type Codec struct {
	proto    minecraft.Protocol
	pool     packet.Pool
	header   packet.Header
	shieldID int32
}

// New returns the codec of the protocol version passed.
func New(version int32) (*Codec, error) {
	protocolsMu.RLock()
	p, ok := protocols[version]
	protocolsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, version)
	}
	return &Codec{proto: p, pool: p.Packets(true)}, nil
}

// Protocol returns the protocol of the codec.
func (c *Codec) Protocol() minecraft.Protocol {
	return c.proto
}

// SetShieldID sets the item runtime id of the shield, which changes the layout of item stacks.
func (c *Codec) SetShieldID(id int32) {
	c.shieldID = id
}

// Register adds packets to the packets decoded by the codec, in addition to the game packets.
func (c *Codec) Register(id uint32, f func() packet.Packet) {
	c.pool[id] = f
}

// Decode decodes a single packet, header included. A *DecodeError is returned if the packet could not be
// decoded.
func (c *Codec) Decode(b []byte) (pks []packet.Packet, err error) {
	buf := bytes.NewBuffer(b)
	if err := c.header.Read(buf); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("read header: %w", err)}
	}
	id := c.header.PacketID
	factory, ok := c.pool[id]
	if !ok {
		return nil, &DecodeError{PacketID: id, Err: ErrUnknownPacket}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &DecodeError{PacketID: id, Err: fmt.Errorf("%v", r)}
		}
	}()
	pk := factory()
	pk.Marshal(c.proto.NewReader(buf, c.shieldID, true))
	if buf.Len() != 0 {
		return nil, &DecodeError{PacketID: id, Err: fmt.Errorf("%v unread bytes", buf.Len())}
	}
	if c.proto.ID() == protocol.CurrentProtocol {
		return []packet.Packet{pk}, nil
	}
	return c.proto.ConvertToLatest(pk, nil), nil
}

// Encode encodes a packet of the latest version, header included, into buf. Packets that do not exist in the
// protocol version of the codec are dropped.
func (c *Codec) Encode(buf *bytes.Buffer, pk packet.Packet, f func(b []byte) error) error {
	pks := []packet.Packet{pk}
	if c.proto.ID() != protocol.CurrentProtocol {
		pks = c.proto.ConvertFromLatest(pk, nil)
	}
	for _, pk := range pks {
		buf.Reset()
		c.header.PacketID = pk.ID()
		if err := c.header.Write(buf); err != nil {
			return err
		}
		pk.Marshal(c.proto.NewWriter(buf, c.shieldID))
		if err := f(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
