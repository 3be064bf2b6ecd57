// Package transport implements the stream transports a spectrum proxy forwards players over.
package transport

import (
	"errors"
	"io"
	"net"
	"sync"
)

// ErrClosed is returned by Accept once the transport is closed.
var ErrClosed = errors.New("transport closed")

// Transport accepts the streams of players forwarded by a proxy. Each stream carries a single player.
type Transport interface {
	// Listen starts listening on the address passed.
	Listen(addr string) error
	// Accept blocks until a new stream is opened by the proxy.
	Accept() (io.ReadWriteCloser, error)
	// Close stops listening and unblocks Accept.
	Close() error
}

// Addressed is implemented by streams that know the address of their remote end.
type Addressed interface {
	RemoteAddr() net.Addr
}

// streamConn attaches the address of the connection a stream belongs to to the stream.
type streamConn struct {
	io.ReadWriteCloser
	addr net.Addr
}

// RemoteAddr ...
func (s streamConn) RemoteAddr() net.Addr {
	return s.addr
}

// queue hands streams accepted by background goroutines to Accept.
type queue struct {
	incoming chan io.ReadWriteCloser
	closed   chan struct{}
	once     sync.Once
}

func newQueue() *queue {
	return &queue{incoming: make(chan io.ReadWriteCloser, 64), closed: make(chan struct{})}
}

func (q *queue) push(s io.ReadWriteCloser) {
	select {
	case q.incoming <- s:
	case <-q.closed:
		_ = s.Close()
	}
}

func (q *queue) pop() (io.ReadWriteCloser, error) {
	select {
	case s := <-q.incoming:
		return s, nil
	case <-q.closed:
		return nil, ErrClosed
	}
}

func (q *queue) close() {
	q.once.Do(func() { close(q.closed) })
}

// New returns the transport of the kind passed: spectral, quic or tcp.
func New(kind string) (Transport, error) {
	switch kind {
	case "", "spectral":
		return NewSpectral(), nil
	case "quic":
		return NewQUIC(), nil
	case "tcp":
		return NewTCP(), nil
	}
	return nil, errors.New("unknown transport " + kind)
}
