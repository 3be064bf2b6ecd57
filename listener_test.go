package crossplay

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	tr "github.com/cooldogedev/crossplay/transport"
	proto "github.com/cooldogedev/spectrum/protocol"
	packet2 "github.com/cooldogedev/spectrum/server/packet"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// pipeTransport hands out the server ends of in-memory pipes.
type pipeTransport struct {
	conns  chan io.ReadWriteCloser
	closed chan struct{}
	once   sync.Once
}

func newPipeTransport() *pipeTransport {
	return &pipeTransport{conns: make(chan io.ReadWriteCloser), closed: make(chan struct{})}
}

func (p *pipeTransport) Listen(string) error { return nil }

func (p *pipeTransport) Accept() (io.ReadWriteCloser, error) {
	select {
	case c := <-p.conns:
		return c, nil
	case <-p.closed:
		return nil, tr.ErrClosed
	}
}

func (p *pipeTransport) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

// dial forwards a player of the protocol passed and returns a channel closed once the listener closes
// the connection.
func (p *pipeTransport) dial(t *testing.T, name string, version int32) <-chan struct{} {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })

	identity, _ := json.Marshal(login.IdentityData{DisplayName: name, XUID: "2535"})
	clientData, _ := json.Marshal(login.ClientData{GameVersion: protocol.CurrentVersion})
	req := &packet2.ConnectionRequest{
		Addr:           "127.0.0.1:19132",
		ClientData:     clientData,
		IdentityData:   identity,
		ClientProtocol: version,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := proto.NewWriter(client).Write(requestFrame(req)); err != nil {
			return
		}
		r := proto.NewReader(client)
		for {
			if _, err := r.ReadPacket(); err != nil {
				return
			}
		}
	}()
	p.conns <- server
	return done
}

// requestFrame encodes an uncompressed frame holding only the packet passed.
func requestFrame(pk packet.Packet) []byte {
	var b bytes.Buffer
	h := packet.Header{PacketID: pk.ID()}
	_ = h.Write(&b)
	pk.Marshal(protocol.NewWriter(&b, 0))

	body := bytes.NewBuffer([]byte{0})
	_ = protocol.WriteVaruint32(body, 1)
	_ = protocol.WriteVaruint32(body, uint32(b.Len()))
	body.Write(b.Bytes())
	return body.Bytes()
}

func TestListenerRejectsUnsupportedProtocols(t *testing.T) {
	transport := newPipeTransport()
	l, err := NewListener(slog.New(slog.DiscardHandler), ListenerConfig{
		Transport: transport,
		Supported: func(p int32) bool { return p == protocol.CurrentProtocol },
	})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	select {
	case <-transport.dial(t, "Alex", protocol.CurrentProtocol-1):
	case <-time.After(5 * time.Second):
		t.Fatal("unsupported client was not disconnected")
	}

	transport.dial(t, "Steve", protocol.CurrentProtocol)
	accepted := make(chan string, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			accepted <- err.Error()
			return
		}
		accepted <- c.IdentityData().DisplayName
		_ = c.Close()
	}()
	select {
	case name := <-accepted:
		if name != "Steve" {
			t.Fatalf("accepted %v, want Steve", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supported client was not accepted")
	}
}

func TestListenerConfigDefaults(t *testing.T) {
	l, err := NewListener(slog.New(slog.DiscardHandler), ListenerConfig{Transport: newPipeTransport()})
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if l.conf.ChunkRadius != 16 || l.conf.MaxPending != 64 || cap(l.incoming) != 64 {
		t.Fatalf("config = %+v", l.conf)
	}
}
