package packet

import (
	"bytes"
	"errors"
	"fmt"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/cooldogedev/crossplay/java/protocol"
)

// ErrUnknownPacket is returned by Decode for wire ids without a registered packet, and by Encode for packets
// that do not exist in the state they are written in.
var ErrUnknownPacket = errors.New("unknown packet")

// DecodeError is returned when a packet could not be decoded. It never means the connection is broken:
// the frame was read in full, only its content could not be understood.
type DecodeError struct {
	State  protocol.State
	WireID int32
	Err    error
}

// Error ...
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode java packet 0x%02x in %v state: %v", e.WireID, e.State, e.Err)
}

// Unwrap ...
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode decodes a raw packet read in the state passed using the packet table passed. Trailing bytes
// after a packet are reported as an error.
func Decode(tables *Tables, state protocol.State, bound protocol.Bound, p pk.Packet) (packet Packet, err error) {
	packet, ok := tables.Table(state, bound).New(p.ID)
	if !ok {
		return nil, &DecodeError{State: state, WireID: p.ID, Err: ErrUnknownPacket}
	}
	r := protocol.NewReader(p.Data, tables.Version())
	defer func() {
		protocol.Recover(&err)
		if err != nil {
			packet, err = nil, &DecodeError{State: state, WireID: p.ID, Err: err}
		}
	}()
	packet.Marshal(r)
	if r.Len() != 0 {
		return nil, &DecodeError{State: state, WireID: p.ID, Err: fmt.Errorf("%T: %v unread bytes", packet, r.Len())}
	}
	return packet, nil
}

// Encode encodes a packet for the state passed into a raw packet that may be written to a connection.
func Encode(tables *Tables, state protocol.State, bound protocol.Bound, packet Packet) (p pk.Packet, err error) {
	id, ok := tables.Table(state, bound).WireID(packet.ID())
	if !ok {
		return pk.Packet{}, fmt.Errorf("encode %T: %w in %v state of protocol %v", packet, ErrUnknownPacket, state, tables.Version())
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("encode %T: %v", packet, r)
		}
	}()
	buf := new(bytes.Buffer)
	packet.Marshal(protocol.NewWriter(buf, tables.Version()))
	return pk.Packet{ID: id, Data: buf.Bytes()}, nil
}
