package crossplay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cooldogedev/crossplay/bedrock"
	"github.com/cooldogedev/crossplay/session"
	"github.com/sandertv/gophertunnel/minecraft"
)

// RakNetListener accepts Bedrock clients connecting to the proxy directly over RakNet.
type RakNetListener struct {
	log      *slog.Logger
	listener *minecraft.Listener
}

// RakNetConfig holds the settings of a RakNetListener.
type RakNetConfig struct {
	// Address is the UDP address listened on.
	Address string
	// MOTD is the server name shown in the server list of clients.
	MOTD string
	// AuthenticationDisabled allows clients not logged into Xbox Live to join.
	AuthenticationDisabled bool
	// ChunkRadius is the highest chunk radius clients may use.
	ChunkRadius int
}

// NewRakNetListener listens for Bedrock clients of every protocol version a codec is registered for.
func NewRakNetListener(log *slog.Logger, conf RakNetConfig) (*RakNetListener, error) {
	l, err := minecraft.ListenConfig{
		StatusProvider:         minecraft.NewStatusProvider(conf.MOTD, "crossplay"),
		AcceptedProtocols:      bedrock.Protocols(),
		AuthenticationDisabled: conf.AuthenticationDisabled,
		MaximumChunkRadius:     conf.ChunkRadius,
	}.Listen("raknet", conf.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %v: %w", conf.Address, err)
	}
	return &RakNetListener{log: log, listener: l}, nil
}

// Accept blocks until a client finished logging in.
func (l *RakNetListener) Accept() (session.FrontConn, error) {
	c, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	conn, ok := c.(*minecraft.Conn)
	if !ok {
		_ = c.Close()
		return nil, errors.New("accepted connection is not a minecraft connection")
	}
	return rakNetConn{Conn: conn}, nil
}

// Close ...
func (l *RakNetListener) Close() error {
	return l.listener.Close()
}

// rakNetConn is a client connected over RakNet. gophertunnel converts its packets for its protocol version.
type rakNetConn struct {
	*minecraft.Conn
}

// Protocol ...
func (c rakNetConn) Protocol() int32 {
	return c.Proto().ID()
}
