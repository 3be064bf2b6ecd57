package crossplay

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cooldogedev/crossplay/inventory"
)

func TestReadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	c, err := ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Network.Transport != TransportRakNet {
		t.Fatalf("transport = %q, want %q", c.Network.Transport, TransportRakNet)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	again, err := ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if again != c {
		t.Fatalf("config read back differs:\n got %+v\nwant %+v", again, c)
	}
	if _, err := again.Config(slog.Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := strings.Join([]string{
		"[Network]",
		`Transport = "tcp"`,
		`Address = ":19133"`,
		"ProxyProtocol = true",
		`Secret = "hunter2"`,
		"[Translation]",
		`UnmappableSlots = "empty"`,
		"[Session]",
		`LivenessInterval = "3s"`,
		"ChunkRadius = 12",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	uc, err := ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	conf, err := uc.Config(slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if conf.Transport != TransportTCP || conf.ListenAddress != ":19133" || !conf.ProxyProtocol {
		t.Fatalf("network = %v %v %v", conf.Transport, conf.ListenAddress, conf.ProxyProtocol)
	}
	if conf.Authentication == nil {
		t.Fatal("secret set but no authentication configured")
	}
	if conf.Session.UnmappableSlots != inventory.PolicyEmpty {
		t.Fatalf("policy = %v, want empty", conf.Session.UnmappableSlots)
	}
	if conf.Session.LivenessInterval != 3*time.Second {
		t.Fatalf("liveness interval = %v, want 3s", conf.Session.LivenessInterval)
	}
	if conf.Session.ChunkRadius != 12 {
		t.Fatalf("chunk radius = %v, want 12", conf.Session.ChunkRadius)
	}
	// Settings left out keep their defaults.
	if conf.Session.BackendVersion != DefaultConfig().Backend.Version {
		t.Fatalf("backend version = %v", conf.Session.BackendVersion)
	}
}

func TestUserConfigInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*UserConfig)
	}{
		{"transport", func(c *UserConfig) { c.Network.Transport = "websocket" }},
		{"version", func(c *UserConfig) { c.Backend.Version = 1 }},
		{"policy", func(c *UserConfig) { c.Translation.UnmappableSlots = "explode" }},
		{"duration", func(c *UserConfig) { c.Session.CloseGracePeriod = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.modify(&c)
			if _, err := c.Config(slog.Default()); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
