package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	mcnet "github.com/Tnze/go-mc/net"
	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/cooldogedev/crossplay/java/protocol"
	"github.com/cooldogedev/crossplay/java/protocol/packet"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeServer accepts a single connection and runs the handler passed on it.
func fakeServer(t *testing.T, handle func(c *mcnet.Conn, tables *packet.Tables)) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = l.Close() })
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		tables, _ := packet.Lookup(protocol.Version1_20_5)
		handle(mcnet.WrapConn(conn), tables)
	}()
	return l.Addr().String()
}

func read(t *testing.T, c *mcnet.Conn, tables *packet.Tables, state protocol.State) packet.Packet {
	var p pk.Packet
	if err := c.ReadPacket(&p); err != nil {
		t.Errorf("server read: %v", err)
		return nil
	}
	decoded, err := packet.Decode(tables, state, protocol.Serverbound, p)
	if err != nil {
		t.Errorf("server decode: %v", err)
	}
	return decoded
}

func write(t *testing.T, c *mcnet.Conn, tables *packet.Tables, state protocol.State, p packet.Packet) {
	raw, err := packet.Encode(tables, state, protocol.Clientbound, p)
	if err != nil {
		t.Errorf("server encode: %v", err)
		return
	}
	if err := c.WritePacket(raw); err != nil {
		t.Errorf("server write: %v", err)
	}
}

func TestDialLogin(t *testing.T) {
	done := make(chan packet.Packet, 4)
	addr := fakeServer(t, func(c *mcnet.Conn, tables *packet.Tables) {
		done <- read(t, c, tables, protocol.StateHandshaking)
		done <- read(t, c, tables, protocol.StateLogin)
		write(t, c, tables, protocol.StateLogin, &packet.SetCompression{Threshold: 64})
		c.SetThreshold(64)
		write(t, c, tables, protocol.StateLogin, &packet.LoginPluginRequest{MessageID: 9, Channel: "velocity:player_info"})
		if resp, ok := read(t, c, tables, protocol.StateLogin).(*packet.LoginPluginResponse); !ok || resp.MessageID != 9 || resp.Successful {
			t.Errorf("unexpected plugin response %#v", resp)
		}
		write(t, c, tables, protocol.StateLogin, &packet.LoginSuccess{UUID: OfflineUUID("Steve"), Username: "Steve"})
		done <- read(t, c, tables, protocol.StateLogin)
		write(t, c, tables, protocol.StateConfiguration, &packet.FinishConfiguration{})
	})

	c, err := Dialer{Log: testLog, Timeout: 5 * time.Second}.Dial(context.Background(), Login{Address: addr, Version: protocol.Version1_20_5, Username: "Steve"})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	handshake, ok := (<-done).(*packet.Handshake)
	if !ok || handshake.ProtocolVersion != protocol.Version1_20_5 || handshake.NextState != packet.NextStateLogin || handshake.ServerAddress != "127.0.0.1" {
		t.Fatalf("unexpected handshake %#v", handshake)
	}
	if start, ok := (<-done).(*packet.LoginStart); !ok || start.Name != "Steve" || start.UUID != OfflineUUID("Steve") {
		t.Fatalf("unexpected login start %#v", start)
	}
	if _, ok := (<-done).(*packet.LoginAcknowledged); !ok {
		t.Fatal("expected login acknowledgement")
	}
	if c.State() != protocol.StateConfiguration {
		t.Fatalf("state = %v, want configuration", c.State())
	}
	if c.Profile().Name != "Steve" {
		t.Fatalf("profile = %+v", c.Profile())
	}
	p, err := c.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*packet.FinishConfiguration); !ok {
		t.Fatalf("read %T, want *packet.FinishConfiguration", p)
	}
	if err := c.WritePacket(&packet.AcknowledgeFinishConfiguration{}); err != nil {
		t.Fatal(err)
	}
	if c.State() != protocol.StatePlay {
		t.Fatalf("state = %v, want play", c.State())
	}
}

func TestDialOnlineMode(t *testing.T) {
	addr := fakeServer(t, func(c *mcnet.Conn, tables *packet.Tables) {
		read(t, c, tables, protocol.StateHandshaking)
		read(t, c, tables, protocol.StateLogin)
		write(t, c, tables, protocol.StateLogin, &packet.EncryptionRequest{PublicKey: []byte{1}, VerifyToken: []byte{2}, ShouldAuthenticate: true})
	})
	_, err := Dialer{Log: testLog}.Dial(context.Background(), Login{Address: addr, Version: protocol.Version1_20_5, Username: "Steve"})
	if !errors.Is(err, ErrOnlineMode) {
		t.Fatalf("expected ErrOnlineMode, got %v", err)
	}
}

func TestDialRefused(t *testing.T) {
	addr := fakeServer(t, func(c *mcnet.Conn, tables *packet.Tables) {
		read(t, c, tables, protocol.StateHandshaking)
		read(t, c, tables, protocol.StateLogin)
		write(t, c, tables, protocol.StateLogin, &packet.LoginDisconnect{Reason: `{"text":"You are banned"}`})
	})
	_, err := Dialer{Log: testLog}.Dial(context.Background(), Login{Address: addr, Version: protocol.Version1_20_5, Username: "Steve"})
	var loginErr *LoginError
	if !errors.As(err, &loginErr) || loginErr.Reason != "You are banned" {
		t.Fatalf("expected login error, got %v", err)
	}
}

func TestDialUnsupportedVersion(t *testing.T) {
	if _, err := (Dialer{}).Dial(context.Background(), Login{Address: "127.0.0.1:25565", Version: 47}); err == nil {
		t.Fatal("expected error for unsupported version")
	}
	if Supported(47) || !Supported(protocol.Version1_20_3) {
		t.Fatal("unexpected result of Supported")
	}
}

func TestSanitiseUsername(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Steve", "Steve"},
		{"Cool Player 1", "Cool_Player_1"},
		{"ÄÖÜ", "Player"},
		{"AVeryLongBedrockGamertag", "AVeryLongBedrock"},
		{"x.y-z", "xyz"},
	}
	for _, tt := range tests {
		if got := SanitiseUsername(tt.in); got != tt.want {
			t.Errorf("SanitiseUsername(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOfflineUUID(t *testing.T) {
	id := OfflineUUID("Steve")
	if id.Version() != 3 {
		t.Fatalf("version = %v, want 3", id.Version())
	}
	if id != OfflineUUID("Steve") || id == OfflineUUID("Alex") {
		t.Fatal("offline UUIDs must be derived from the name only")
	}
}
