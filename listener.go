package crossplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/cooldogedev/crossplay/internal"
	"github.com/cooldogedev/crossplay/session"
	tr "github.com/cooldogedev/crossplay/transport"
	"github.com/cooldogedev/crossplay/util"
	"golang.org/x/sync/semaphore"
)

// ListenerConfig configures a Listener accepting players forwarded by a spectrum proxy.
type ListenerConfig struct {
	// Address is the address the transport listens on.
	Address string
	// Transport carries the forwarded connections. Spectral is used if nil.
	Transport tr.Transport
	// Authentication validates the token of every connection request. Every request is accepted if nil.
	Authentication util.Authentication
	// ChunkRadius is the chunk radius players are spawned with. Defaults to 16.
	ChunkRadius int
	// Supported reports whether a session can be run for a client of the Bedrock protocol passed. Clients
	// of other versions are disconnected before they are accepted. Every version with a codec is accepted
	// if nil.
	Supported func(protocol int32) bool
	// MaxPending is the highest number of connections completing their preamble at once. Defaults to 64.
	MaxPending int64
}

// Listener accepts the players a spectrum proxy forwards to the proxy over a transport.
type Listener struct {
	log  *slog.Logger
	conf ListenerConfig

	pending  *semaphore.Weighted
	incoming chan *internal.Conn

	closed  bool
	closeMu sync.Mutex
}

// NewListener starts listening on the address of the config.
func NewListener(log *slog.Logger, conf ListenerConfig) (*Listener, error) {
	if conf.Transport == nil {
		conf.Transport = tr.NewSpectral()
	}
	if conf.ChunkRadius <= 0 {
		conf.ChunkRadius = 16
	}
	if conf.MaxPending <= 0 {
		conf.MaxPending = 64
	}
	if err := conf.Transport.Listen(conf.Address); err != nil {
		return nil, err
	}
	l := &Listener{
		log:      log,
		conf:     conf,
		pending:  semaphore.NewWeighted(conf.MaxPending),
		incoming: make(chan *internal.Conn, conf.MaxPending),
	}
	go l.acceptLoop()
	return l, nil
}

func (l *Listener) acceptLoop() {
	defer l.closeIncoming()
	for {
		c, err := l.conf.Transport.Accept()
		if err != nil {
			if !errors.Is(err, tr.ErrClosed) {
				l.log.Error("failed to accept connection", "err", err)
			}
			return
		}
		var addr net.Addr
		if c2, ok := c.(tr.Addressed); ok {
			addr = c2.RemoteAddr()
		}
		// At most MaxPending preambles run at once.
		_ = l.pending.Acquire(context.Background(), 1)
		go func() {
			defer l.pending.Release(1)
			conn, err := l.preamble(addr, c)
			if err != nil {
				l.log.Info("dropped forwarded connection", "remote_addr", addr, "err", err)
				return
			}
			l.queue(conn)
		}()
	}
}

// preamble reads the connection request of a connection and checks the player may join.
func (l *Listener) preamble(addr net.Addr, c io.ReadWriteCloser) (*internal.Conn, error) {
	var authenticator internal.Authenticator
	if l.conf.Authentication != nil {
		authenticator = l.conf.Authentication.Authenticate
	}
	conn, err := internal.NewConn(l.log.With("remote_addr", addr), c, authenticator, l.conf.ChunkRadius)
	if err != nil {
		return nil, err
	}
	if l.conf.Supported != nil && !l.conf.Supported(conn.Protocol()) {
		conn.Reject(fmt.Sprintf("Unsupported client version (protocol %v).", conn.Protocol()))
		return nil, fmt.Errorf("%w: %v", session.ErrUnsupportedVersion, conn.Protocol())
	}
	return conn, nil
}

func (l *Listener) queue(conn *internal.Conn) {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()
	if l.closed {
		conn.Reject("Server closed.")
		return
	}
	select {
	case l.incoming <- conn:
	default:
		l.log.Warn("accept queue full, disconnecting player", "username", conn.IdentityData().DisplayName)
		conn.Reject("Server is full.")
	}
}

// Accept blocks until a player was forwarded and its preamble completed.
func (l *Listener) Accept() (session.FrontConn, error) {
	conn, ok := <-l.incoming
	if !ok {
		return nil, io.EOF
	}
	conn.Respond()
	l.log.Debug("accepted forwarded player", "username", conn.IdentityData().DisplayName, "initial_connection", conn.InitialConnection())
	return conn, nil
}

// Close stops accepting players. Connections still completing their preamble are disconnected.
func (l *Listener) Close() error {
	if !l.closeIncoming() {
		return errors.New("listener already closed")
	}
	return l.conf.Transport.Close()
}

// closeIncoming stops handing out connections. It reports whether the listener was still open.
func (l *Listener) closeIncoming() bool {
	l.closeMu.Lock()
	defer l.closeMu.Unlock()
	if l.closed {
		return false
	}
	l.closed = true
	close(l.incoming)
	for conn := range l.incoming {
		conn.Reject("Server closed.")
	}
	return true
}
