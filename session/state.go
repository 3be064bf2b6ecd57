package session

import (
	"fmt"
)

// State is the state of a Session. A session only moves forward through the states, except for a back
// server sending a player in play back to configuration.
type State int32

const (
	StateHandshaking State = iota
	StateLoggingIn
	StateConfiguring
	StatePlaying
	StateDisconnecting
	StateClosed
)

// String ...
func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateLoggingIn:
		return "logging_in"
	case StateConfiguring:
		return "configuring"
	case StatePlaying:
		return "playing"
	case StateDisconnecting:
		return "disconnecting"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// States is a set of states.
type States uint8

// In returns the set of the states passed.
func In(states ...State) States {
	var s States
	for _, st := range states {
		s |= 1 << st
	}
	return s
}

// Has reports whether the state passed is in the set.
func (s States) Has(st State) bool {
	return st >= 0 && st < 8 && s&(1<<st) != 0
}

var (
	configuring = In(StateConfiguring)
	playing     = In(StatePlaying)
	joined      = In(StateConfiguring, StatePlaying)
)

// canTransition reports whether a session may move from one state to another.
func canTransition(from, to State) bool {
	switch {
	case from == StateClosed:
		return false
	case to == StateDisconnecting || to == StateClosed:
		return from <= to
	case from == StatePlaying && to == StateConfiguring:
		return true
	}
	return to == from+1
}
