package session

import (
	"time"

	"github.com/cooldogedev/crossplay/inventory"
)

// Config holds the settings sessions run with.
type Config struct {
	// BackendAddress is the address of the Java server players are connected to.
	BackendAddress string
	// BackendVersion is the Java protocol version spoken with the server.
	BackendVersion int32

	// UnmappableSlots decides how Bedrock slots without a Java equivalent are handled.
	UnmappableSlots inventory.Policy
	// EmoteOffhandWorkaround swaps the items in the hands of the player when they use an emote, since
	// Bedrock has no key for it.
	EmoteOffhandWorkaround bool
	// ViolationThreshold is the amount of packets of the same kind a client or server may send in a state
	// they are not valid in before the session is closed.
	ViolationThreshold int

	// LivenessInterval is the interval at which the client is probed.
	LivenessInterval time.Duration
	// MaxMissedProbes is the amount of probes in a row the client may leave unanswered.
	MaxMissedProbes int
	// CloseGracePeriod is how long the surviving side of a session is given to receive its disconnect
	// before its connection is closed.
	CloseGracePeriod time.Duration
	// StartGameTimeout bounds the time the client may take to spawn.
	StartGameTimeout time.Duration

	// ChunkRadius is the view distance sent to the server and client.
	ChunkRadius int
}

// DefaultConfig returns the Config used for settings left empty.
func DefaultConfig() Config {
	return Config{
		BackendAddress:     "127.0.0.1:25565",
		BackendVersion:     766,
		UnmappableSlots:    inventory.PolicyDrop,
		ViolationThreshold: 20,
		LivenessInterval:   5 * time.Second,
		MaxMissedProbes:    6,
		CloseGracePeriod:   time.Second * 2,
		StartGameTimeout:   time.Minute,
		ChunkRadius:        8,
	}
}

// withDefaults returns the config with every zero setting replaced by its default.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BackendAddress == "" {
		c.BackendAddress = d.BackendAddress
	}
	if c.BackendVersion == 0 {
		c.BackendVersion = d.BackendVersion
	}
	if c.ViolationThreshold <= 0 {
		c.ViolationThreshold = d.ViolationThreshold
	}
	if c.LivenessInterval <= 0 {
		c.LivenessInterval = d.LivenessInterval
	}
	if c.MaxMissedProbes <= 0 {
		c.MaxMissedProbes = d.MaxMissedProbes
	}
	if c.CloseGracePeriod <= 0 {
		c.CloseGracePeriod = d.CloseGracePeriod
	}
	if c.StartGameTimeout <= 0 {
		c.StartGameTimeout = d.StartGameTimeout
	}
	if c.ChunkRadius <= 0 {
		c.ChunkRadius = d.ChunkRadius
	}
	return c
}
