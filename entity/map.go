// Package entity maps the entity ids of a Java server onto the entity runtime ids shown to a Bedrock client.
package entity

import (
	"github.com/brentp/intintmap"
)

// PlayerRuntimeID is the runtime id the Bedrock client knows itself by.
const PlayerRuntimeID = 1

// Map is a bijection between the entity ids of the Java server and runtime ids allocated for the Bedrock
// client. Runtime ids are allocated from a dense counter and never handed out twice, so an id can never
// refer to two entities during a session. A Map is owned by a single session and is not safe for
// concurrent use.
type Map struct {
	runtime *intintmap.Map
	remote  *intintmap.Map

	next uint64

	self      int32
	selfBound bool
}

// NewMap returns an empty Map.
func NewMap() *Map {
	m := &Map{next: PlayerRuntimeID + 1}
	m.reset()
	return m
}

func (m *Map) reset() {
	m.runtime = intintmap.New(64, 0.6)
	m.remote = intintmap.New(64, 0.6)
}

// Bind maps the Java entity id of the player itself to PlayerRuntimeID. Any previous binding is replaced.
func (m *Map) Bind(remote int32) {
	if m.selfBound {
		m.runtime.Del(int64(m.self))
		m.remote.Del(PlayerRuntimeID)
	}
	m.self, m.selfBound = remote, true
	m.runtime.Put(int64(remote), PlayerRuntimeID)
	m.remote.Put(PlayerRuntimeID, int64(remote))
}

// Self returns the Java entity id of the player, if bound.
func (m *Map) Self() (int32, bool) {
	return m.self, m.selfBound
}

// Allocate returns the runtime id of the Java entity id passed, allocating a new one if the entity has no
// mapping yet. Calling Allocate again for the same entity returns the same runtime id until it is released.
func (m *Map) Allocate(remote int32) uint64 {
	if rid, ok := m.runtime.Get(int64(remote)); ok {
		return uint64(rid)
	}
	rid := m.next
	m.next++
	m.runtime.Put(int64(remote), int64(rid))
	m.remote.Put(int64(rid), int64(remote))
	return rid
}

// Release removes the mapping of the Java entity id passed. Releasing an entity without a mapping does
// nothing. The player itself is never released.
func (m *Map) Release(remote int32) {
	if m.selfBound && remote == m.self {
		return
	}
	rid, ok := m.runtime.Get(int64(remote))
	if !ok {
		return
	}
	m.runtime.Del(int64(remote))
	m.remote.Del(rid)
}

// Runtime returns the runtime id of a Java entity id.
func (m *Map) Runtime(remote int32) (uint64, bool) {
	rid, ok := m.runtime.Get(int64(remote))
	return uint64(rid), ok
}

// Remote returns the Java entity id of a runtime id.
func (m *Map) Remote(runtime uint64) (int32, bool) {
	remote, ok := m.remote.Get(int64(runtime))
	return int32(remote), ok
}

// Len returns the amount of live mappings, including the player itself.
func (m *Map) Len() int {
	return m.runtime.Size()
}

// Clear releases every mapping except the one of the player. Runtime ids released are still never reused.
func (m *Map) Clear() {
	m.reset()
	if m.selfBound {
		m.Bind(m.self)
	}
}
