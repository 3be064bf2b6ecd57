package transport

import (
	"errors"
	"io"
	"net"

	"github.com/pires/go-proxyproto"
)

// TCP is a transport over plain TCP, with one connection per player. If ProxyProtocol is set, every
// connection must start with a PROXY protocol header, and the address in it is reported as the remote
// address of the connection.
type TCP struct {
	ProxyProtocol bool

	listener net.Listener
}

// NewTCP ...
func NewTCP() *TCP {
	return &TCP{}
}

// Listen ...
func (t *TCP) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if t.ProxyProtocol {
		listener = &proxyproto.Listener{
			Listener: listener,
			Policy: func(net.Addr) (proxyproto.Policy, error) {
				return proxyproto.REQUIRE, nil
			},
		}
	}
	t.listener = listener
	return nil
}

// Accept ...
func (t *TCP) Accept() (io.ReadWriteCloser, error) {
	if t.listener == nil {
		return nil, ErrClosed
	}
	conn, err := t.listener.Accept()
	if errors.Is(err, net.ErrClosed) {
		return nil, ErrClosed
	} else if err != nil {
		return nil, err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	return conn, nil
}

// Close ...
func (t *TCP) Close() error {
	if t.listener == nil {
		return nil
	}
	return t.listener.Close()
}
