package protocol

import "fmt"

const (
	// Version1_20_3 is the protocol version of 1.20.3 and 1.20.4.
	Version1_20_3 int32 = 765
	// Version1_20_5 is the protocol version of 1.20.5 and 1.20.6.
	Version1_20_5 int32 = 766
)

// VersionName returns the game version name of a protocol version.
func VersionName(v int32) string {
	switch v {
	case Version1_20_3:
		return "1.20.4"
	case Version1_20_5:
		return "1.20.6"
	}
	return fmt.Sprintf("protocol %d", v)
}

// State is the state of a Java Edition connection. The same packet id means a different packet in every
// state.
type State uint8

const (
	StateHandshaking State = iota
	StateStatus
	StateLogin
	StateConfiguration
	StatePlay
)

// String ...
func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StateConfiguration:
		return "configuration"
	case StatePlay:
		return "play"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Bound is the direction a packet travels in.
type Bound uint8

const (
	// Clientbound packets are sent by the server.
	Clientbound Bound = iota
	// Serverbound packets are sent by the client.
	Serverbound
)
