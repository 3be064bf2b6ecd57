package crossplay

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestListenTCP(t *testing.T) {
	p := &Proxy{conf: Config{
		Log:           slog.New(slog.DiscardHandler),
		Transport:     TransportTCP,
		ListenAddress: "127.0.0.1:0",
	}}
	l, err := p.Listen()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.(*Listener); !ok {
		t.Fatalf("Listen() = %T, want *Listener", l)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err == nil {
		t.Fatal("closing twice should fail")
	}
	if _, err := l.Accept(); !errors.Is(err, io.EOF) {
		t.Fatalf("Accept() after close: %v, want EOF", err)
	}
}

func TestListenUnknownTransport(t *testing.T) {
	p := &Proxy{conf: Config{Log: slog.New(slog.DiscardHandler), Transport: "udp"}}
	if _, err := p.Listen(); err == nil {
		t.Fatal("expected an error")
	}
}
