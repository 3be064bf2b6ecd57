package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/cooldogedev/crossplay/bedrock"
	proto "github.com/cooldogedev/spectrum/protocol"
	packet2 "github.com/cooldogedev/spectrum/server/packet"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// frame encodes the packets passed into an uncompressed frame.
func frame(pks ...packet.Packet) []byte {
	var body bytes.Buffer
	var scratch [5]byte
	_ = writeVaruint32(&body, uint32(len(pks)), scratch[:])
	for _, pk := range pks {
		var b bytes.Buffer
		h := packet.Header{PacketID: pk.ID()}
		_ = h.Write(&b)
		pk.Marshal(protocol.NewWriter(&b, 0))
		_ = writeVaruint32(&body, uint32(b.Len()), scratch[:])
		body.Write(b.Bytes())
	}
	return append([]byte{0}, body.Bytes()...)
}

func connectionRequest(t *testing.T, version int32, token string) *packet2.ConnectionRequest {
	t.Helper()
	identity, err := json.Marshal(login.IdentityData{DisplayName: "Steve", XUID: "2535"})
	if err != nil {
		t.Fatal(err)
	}
	client, err := json.Marshal(login.ClientData{GameVersion: protocol.CurrentVersion})
	if err != nil {
		t.Fatal(err)
	}
	return &packet2.ConnectionRequest{
		Addr:           "127.0.0.1:19132",
		ClientData:     client,
		IdentityData:   identity,
		Token:          token,
		ClientProtocol: version,
	}
}

func TestNewConn(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	w, r := proto.NewWriter(client), proto.NewReader(client)
	done := make(chan error, 1)
	go func() {
		if err := w.Write(frame(connectionRequest(t, protocol.CurrentProtocol, "secret"))); err != nil {
			done <- err
			return
		}
		// Connection response.
		if _, err := r.ReadPacket(); err != nil {
			done <- err
			return
		}
		unknown := []byte{2, 0xff, 0x07}
		payload := frame(&packet.Text{TextType: packet.TextTypeChat, Message: "hello"})
		// Append an undecodable packet to the batch.
		payload[1]++
		payload = append(payload, unknown...)
		done <- w.Write(payload)
	}()

	auth := func(identity login.IdentityData, token string) bool {
		return identity.XUID == "2535" && token == "secret"
	}
	c, err := NewConn(slog.New(slog.NewTextHandler(io.Discard, nil)), server, auth, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.IdentityData().DisplayName != "Steve" || c.Protocol() != protocol.CurrentProtocol {
		t.Fatalf("unexpected login data: %+v", c.IdentityData())
	}
	if c.RemoteAddr().String() != "127.0.0.1:19132" {
		t.Fatalf("remote address = %v", c.RemoteAddr())
	}

	pk, err := c.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if text, ok := pk.(*packet.Text); !ok || text.Message != "hello" {
		t.Fatalf("read %#v", pk)
	}
	var decodeErr *bedrock.DecodeError
	if _, err := c.ReadPacket(); !errors.As(err, &decodeErr) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestNewConnAuthentication(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	go func() {
		_ = proto.NewWriter(client).Write(frame(connectionRequest(t, protocol.CurrentProtocol, "wrong")))
	}()
	auth := func(_ login.IdentityData, token string) bool { return token == "secret" }
	if _, err := NewConn(slog.New(slog.NewTextHandler(io.Discard, nil)), server, auth, 8); err == nil {
		t.Fatal("expected authentication failure")
	}
}

func TestFlushBatches(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	r := proto.NewReader(client)
	frames := make(chan []byte, 4)
	go func() {
		_ = proto.NewWriter(client).Write(frame(connectionRequest(t, protocol.CurrentProtocol, "")))
		for {
			payload, err := r.ReadPacket()
			if err != nil {
				close(frames)
				return
			}
			frames <- payload
		}
	}()
	c, err := NewConn(slog.New(slog.NewTextHandler(io.Discard, nil)), server, nil, 8)
	if err != nil {
		t.Fatal(err)
	}
	<-frames // Connection response.

	for range 3 {
		if err := c.WritePacket(&packet.Text{TextType: packet.TextTypeRaw, Message: "hi"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.internalFlush(); err != nil {
		t.Fatal(err)
	}
	payload := <-frames
	if payload[0] != 0 {
		t.Fatalf("small batch flagged as compressed: %x", payload[0])
	}
	var count uint32
	if err := protocol.Varuint32(bytes.NewBuffer(payload[1:]), &count); err != nil || count != 3 {
		t.Fatalf("batch of %v packets (%v)", count, err)
	}
	_ = c.Close()
	if err := c.WritePacket(&packet.Text{}); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("write after close: %v", err)
	}
}
