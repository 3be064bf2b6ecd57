package transport

import (
	"context"
	"io"

	"github.com/cooldogedev/spectral"
)

// Spectral is a transport over spectral, the UDP based stream protocol spectrum proxies connect with by
// default.
type Spectral struct {
	listener io.Closer
	queue    *queue
	cancel   context.CancelFunc
}

// NewSpectral ...
func NewSpectral() *Spectral {
	return &Spectral{queue: newQueue()}
}

// Listen ...
func (s *Spectral) Listen(addr string) error {
	listener, err := spectral.Listen(addr)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.listener, s.cancel = listener, cancel
	go func() {
		for {
			conn, err := listener.Accept(ctx)
			if err != nil {
				s.queue.close()
				return
			}
			go func() {
				for {
					stream, err := conn.AcceptStream(ctx)
					if err != nil {
						return
					}
					s.queue.push(streamConn{ReadWriteCloser: stream, addr: conn.RemoteAddr()})
				}
			}()
		}
	}()
	return nil
}

// Accept ...
func (s *Spectral) Accept() (io.ReadWriteCloser, error) {
	return s.queue.pop()
}

// Close ...
func (s *Spectral) Close() error {
	s.queue.close()
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
