package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
)

type nopStream struct {
	bytes.Buffer
	closed bool
}

func (s *nopStream) Close() error {
	s.closed = true
	return nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"", "*transport.Spectral"},
		{"spectral", "*transport.Spectral"},
		{"quic", "*transport.QUIC"},
		{"tcp", "*transport.TCP"},
	}
	for _, tt := range tests {
		tr, err := New(tt.kind)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.kind, err)
		}
		if got := fmt.Sprintf("%T", tr); got != tt.want {
			t.Fatalf("New(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
	if _, err := New("udp"); err == nil {
		t.Fatal("expected an error for an unknown transport")
	}
}

func TestQueue(t *testing.T) {
	q := newQueue()
	s := &nopStream{}
	q.push(s)
	got, err := q.pop()
	if err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Fatal("popped a different stream")
	}

	q.close()
	q.close()
	if _, err := q.pop(); !errors.Is(err, ErrClosed) {
		t.Fatalf("pop after close: %v, want ErrClosed", err)
	}
}

func TestTCP(t *testing.T) {
	tr := NewTCP()
	if err := tr.Listen("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	addr := tr.listener.Addr().String()

	done := make(chan error, 1)
	go func() {
		c, err := net.Dial("tcp", addr)
		if err != nil {
			done <- err
			return
		}
		_, err = c.Write([]byte("hello"))
		done <- err
		_ = c.Close()
	}()

	conn, err := tr.Accept()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := conn.(Addressed); !ok {
		t.Fatal("tcp connection does not report its remote address")
	}
	buf := make([]byte, 5)
	if _, err := io.ReadFull(conn, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "hello" {
		t.Fatalf("read %q, want hello", buf)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	_ = conn.Close()

	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Accept(); !errors.Is(err, ErrClosed) {
		t.Fatalf("accept after close: %v, want ErrClosed", err)
	}
}
