package crossplay

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/cooldogedev/crossplay/backend"
	"github.com/cooldogedev/crossplay/inventory"
	"github.com/cooldogedev/crossplay/mappings"
	"github.com/cooldogedev/crossplay/presence"
	"github.com/cooldogedev/crossplay/session"
	"github.com/cooldogedev/crossplay/util"
	"github.com/pelletier/go-toml"
)

// Transports front connections may be accepted over.
const (
	TransportRakNet   = "raknet"
	TransportSpectral = "spectral"
	TransportQUIC     = "quic"
	TransportTCP      = "tcp"
)

// Config holds the settings a Proxy runs with.
type Config struct {
	// Log is the logger of the proxy and every session it runs.
	Log *slog.Logger

	// Transport is the transport clients connect over: raknet for Bedrock clients connecting directly, or
	// spectral, quic or tcp for players forwarded by a spectrum proxy.
	Transport string
	// ListenAddress is the address clients connect to.
	ListenAddress string
	// ProxyProtocol requires a PROXY protocol header on tcp connections.
	ProxyProtocol bool
	// Authentication decides which players forwarded by a spectrum proxy may join. Nil accepts every player.
	Authentication util.Authentication
	// MOTD is the name shown in the server list of clients connecting over raknet.
	MOTD string
	// AuthenticationDisabled allows clients connecting over raknet without an Xbox Live account.
	AuthenticationDisabled bool

	// Session holds the settings of every session.
	Session session.Config
	// DialTimeout bounds connecting and logging in to the Java server.
	DialTimeout time.Duration

	// MappingsDirectory holds mapping files replacing the built-in ones. Empty uses the built-in files only.
	MappingsDirectory string
	// Mappings holds the fallbacks used for blocks and items without a mapping.
	Mappings mappings.Options

	// Presence holds the services sessions are published to. Presence is disabled if no service is set.
	Presence presence.Config
	// AdminAddress is the address the admin API listens on. Empty disables it.
	AdminAddress string
}

// UserConfig is the user configurable form of Config, read from a TOML file.
type UserConfig struct {
	Network struct {
		// Transport is one of raknet, spectral, quic or tcp.
		Transport              string
		Address                string
		ProxyProtocol          bool
		Secret                 string
		MOTD                   string
		AuthenticationDisabled bool
	}
	Backend struct {
		Address     string
		Version     int32
		DialTimeout string
	}
	Translation struct {
		MappingsDirectory      string
		FallbackBlock          string
		FallbackItem           string
		UnmappableSlots        string
		EmoteOffhandWorkaround bool
		ViolationThreshold     int
	}
	Session struct {
		LivenessInterval string
		MaxMissedProbes  int
		CloseGracePeriod string
		StartGameTimeout string
		ChunkRadius      int
	}
	Presence struct {
		RedisAddress string
		NATSURL      string
		Node         string
		TTL          string
	}
	Admin struct {
		Address string
	}
	Log struct {
		Debug bool
	}
}

// DefaultConfig returns the UserConfig written to new config files.
func DefaultConfig() UserConfig {
	d := session.DefaultConfig()
	c := UserConfig{}
	c.Network.Transport = TransportRakNet
	c.Network.Address = ":19132"
	c.Network.MOTD = "Crossplay"
	c.Backend.Address = d.BackendAddress
	c.Backend.Version = d.BackendVersion
	c.Backend.DialTimeout = "10s"
	c.Translation.FallbackBlock = "minecraft:info_update"
	c.Translation.FallbackItem = "minecraft:barrier"
	c.Translation.UnmappableSlots = d.UnmappableSlots.String()
	c.Translation.EmoteOffhandWorkaround = true
	c.Translation.ViolationThreshold = d.ViolationThreshold
	c.Session.LivenessInterval = d.LivenessInterval.String()
	c.Session.MaxMissedProbes = d.MaxMissedProbes
	c.Session.CloseGracePeriod = d.CloseGracePeriod.String()
	c.Session.StartGameTimeout = d.StartGameTimeout.String()
	c.Session.ChunkRadius = d.ChunkRadius
	c.Presence.Node = "crossplay-1"
	c.Presence.TTL = "1m0s"
	return c
}

// ReadConfig reads the UserConfig at path. A config file with the default settings is created if none
// exists.
func ReadConfig(path string) (UserConfig, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return c, fmt.Errorf("create default config: %w", err)
		}
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// Config converts the UserConfig into a Config, validating every setting.
func (uc UserConfig) Config(log *slog.Logger) (Config, error) {
	switch uc.Network.Transport {
	case TransportRakNet, TransportSpectral, TransportQUIC, TransportTCP:
	default:
		return Config{}, fmt.Errorf("unknown transport %q", uc.Network.Transport)
	}
	if !backend.Supported(uc.Backend.Version) {
		return Config{}, fmt.Errorf("unsupported java protocol version %v", uc.Backend.Version)
	}
	policy, err := inventory.ParsePolicy(uc.Translation.UnmappableSlots)
	if err != nil {
		return Config{}, err
	}
	durations := []struct {
		name string
		s    string
		d    *time.Duration
	}{
		{name: "Backend.DialTimeout", s: uc.Backend.DialTimeout},
		{name: "Session.LivenessInterval", s: uc.Session.LivenessInterval},
		{name: "Session.CloseGracePeriod", s: uc.Session.CloseGracePeriod},
		{name: "Session.StartGameTimeout", s: uc.Session.StartGameTimeout},
		{name: "Presence.TTL", s: uc.Presence.TTL},
	}
	parsed := make([]time.Duration, len(durations))
	for i, d := range durations {
		if d.s == "" {
			continue
		}
		if parsed[i], err = time.ParseDuration(d.s); err != nil {
			return Config{}, fmt.Errorf("parse %v: %w", d.name, err)
		}
	}
	conf := Config{
		Log:                    log,
		Transport:              uc.Network.Transport,
		ListenAddress:          uc.Network.Address,
		ProxyProtocol:          uc.Network.ProxyProtocol,
		MOTD:                   uc.Network.MOTD,
		AuthenticationDisabled: uc.Network.AuthenticationDisabled,
		Session: session.Config{
			BackendAddress:         uc.Backend.Address,
			BackendVersion:         uc.Backend.Version,
			UnmappableSlots:        policy,
			EmoteOffhandWorkaround: uc.Translation.EmoteOffhandWorkaround,
			ViolationThreshold:     uc.Translation.ViolationThreshold,
			LivenessInterval:       parsed[1],
			MaxMissedProbes:        uc.Session.MaxMissedProbes,
			CloseGracePeriod:       parsed[2],
			StartGameTimeout:       parsed[3],
			ChunkRadius:            uc.Session.ChunkRadius,
		},
		DialTimeout:       parsed[0],
		MappingsDirectory: uc.Translation.MappingsDirectory,
		Mappings: mappings.Options{
			FallbackBlock: uc.Translation.FallbackBlock,
			FallbackItem:  uc.Translation.FallbackItem,
		},
		Presence: presence.Config{
			RedisAddress: uc.Presence.RedisAddress,
			NATSURL:      uc.Presence.NATSURL,
			Node:         uc.Presence.Node,
			TTL:          parsed[4],
		},
		AdminAddress: uc.Admin.Address,
	}
	if uc.Network.Secret != "" {
		conf.Authentication = util.NewSecretAuthentication(uc.Network.Secret)
	}
	return conf, nil
}
