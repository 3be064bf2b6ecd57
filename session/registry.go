package session

import (
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Direction is the direction a packet travels through the proxy in.
type Direction uint8

const (
	// FrontToBack packets are sent by the Bedrock client and translated for the Java server.
	FrontToBack Direction = iota
	// BackToFront packets are sent by the Java server and translated for the Bedrock client.
	BackToFront
)

// String ...
func (d Direction) String() string {
	if d == FrontToBack {
		return "front_to_back"
	}
	return "back_to_front"
}

// AnyVersion registers a translator for every protocol version.
const AnyVersion int32 = 0

type registryKey struct {
	dir     Direction
	version int32
	id      uint32
}

type translator struct {
	states States
	// tolerant translators drop packets arriving in other states without counting a violation.
	tolerant bool

	front func(s *Session, pk packet.Packet) error
	back  func(s *Session, pk javapacket.Packet) error
}

// Registry holds the translators of a proxy, keyed by direction, protocol version of the side the packet
// comes from, and packet kind. A Registry is filled once at startup and read-only afterwards.
type Registry struct {
	translators map[registryKey]translator
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{translators: make(map[registryKey]translator)}
}

// Option changes how a translator is registered.
type Option func(k *registryKey, t *translator)

// Version registers the translator only for packets of the protocol version passed.
func Version(v int32) Option {
	return func(k *registryKey, _ *translator) {
		k.version = v
	}
}

// Tolerant drops packets arriving outside the states of the translator without counting them as a
// violation.
func Tolerant() Option {
	return func(_ *registryKey, t *translator) {
		t.tolerant = true
	}
}

// HandleFront registers the translator of a Bedrock packet. It runs only in the states passed.
func HandleFront[P packet.Packet](r *Registry, states States, f func(s *Session, pk P) error, opts ...Option) {
	var zero P
	k, t := registryKey{dir: FrontToBack, id: zero.ID()}, translator{states: states}
	t.front = func(s *Session, pk packet.Packet) error {
		return f(s, pk.(P))
	}
	r.add(k, t, opts)
}

// HandleBack registers the translator of a Java packet. It runs only in the states passed.
func HandleBack[P javapacket.Packet](r *Registry, states States, f func(s *Session, pk P) error, opts ...Option) {
	var zero P
	k, t := registryKey{dir: BackToFront, id: zero.ID()}, translator{states: states}
	t.back = func(s *Session, pk javapacket.Packet) error {
		return f(s, pk.(P))
	}
	r.add(k, t, opts)
}

func (r *Registry) add(k registryKey, t translator, opts []Option) {
	for _, opt := range opts {
		opt(&k, &t)
	}
	if _, ok := r.translators[k]; ok {
		panic("translator registered twice")
	}
	r.translators[k] = t
}

// lookup returns the translator of a packet, preferring one registered for the exact version.
func (r *Registry) lookup(dir Direction, version int32, id uint32) (translator, bool) {
	if t, ok := r.translators[registryKey{dir: dir, version: version, id: id}]; ok {
		return t, true
	}
	t, ok := r.translators[registryKey{dir: dir, version: AnyVersion, id: id}]
	return t, ok
}

// Len returns the amount of translators registered.
func (r *Registry) Len() int {
	return len(r.translators)
}
