package backend

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Tnze/go-mc/chat"
	"github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/google/uuid"
)

// ErrOnlineMode is returned when the server asks for encryption, which only happens for servers
// authenticating players with Mojang. Such servers cannot be joined through the proxy.
var ErrOnlineMode = errors.New("server runs in online mode")

// LoginError is returned when the server refused the login with a reason.
type LoginError struct {
	Reason string
}

// Error ...
func (e *LoginError) Error() string {
	return "login refused: " + e.Reason
}

// Login holds the details of a login to a Java server.
type Login struct {
	// Address is the address of the server, as host:port.
	Address string
	// Version is the protocol version to speak.
	Version int32
	// Username is the name the player logs in with. It is sanitised by Dial.
	Username string
}

// Dialer opens connections to Java servers and logs in with them.
type Dialer struct {
	Log     *slog.Logger
	Timeout time.Duration
}

// Dial connects to the server and logs in. The connection returned is in the configuration state. The login
// is cancelled when the context is done.
func (d Dialer) Dial(ctx context.Context, l Login) (*Conn, error) {
	tables, ok := packet.Lookup(l.Version)
	if !ok {
		return nil, fmt.Errorf("unsupported java protocol %v", l.Version)
	}
	host, portStr, err := net.SplitHostPort(l.Address)
	if err != nil {
		return nil, fmt.Errorf("parse backend address: %w", err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("parse backend port: %w", err)
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	netConn, err := (&net.Dialer{}).DialContext(ctx, "tcp", l.Address)
	if err != nil {
		return nil, fmt.Errorf("dial backend: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = netConn.Close()
	})
	defer stop()

	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	name := SanitiseUsername(l.Username)
	c := NewConn(log.With("backend_addr", l.Address), netConn, tables)
	if err := c.login(host, uint16(port), name); err != nil {
		_ = c.Close()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("login: %w", ctx.Err())
		}
		return nil, err
	}
	if !stop() {
		// The context was cancelled right as the login finished: the connection is already closed.
		return nil, fmt.Errorf("login: %w", context.Cause(ctx))
	}
	return c, nil
}

// login performs the handshake and login states on the connection.
func (c *Conn) login(host string, port uint16, name string) error {
	if err := c.WritePacket(&packet.Handshake{
		ProtocolVersion: c.Version(),
		ServerAddress:   host,
		ServerPort:      port,
		NextState:       packet.NextStateLogin,
	}); err != nil {
		return err
	}
	if err := c.WritePacket(&packet.LoginStart{Name: name, UUID: OfflineUUID(name)}); err != nil {
		return err
	}
	for {
		p, err := c.ReadPacket()
		if err != nil {
			return fmt.Errorf("read login packet: %w", err)
		}
		switch p := p.(type) {
		case *packet.EncryptionRequest:
			return ErrOnlineMode
		case *packet.LoginDisconnect:
			return &LoginError{Reason: loginReason(p.Reason)}
		case *packet.LoginPluginRequest:
			if err := c.WritePacket(&packet.LoginPluginResponse{MessageID: p.MessageID}); err != nil {
				return err
			}
		case *packet.CookieRequest:
			if err := c.WritePacket(&packet.CookieResponse{Key: p.Key}); err != nil {
				return err
			}
		case *packet.LoginSuccess:
			c.log.Debug("logged in with backend", "uuid", p.UUID, "name", p.Username)
			return c.WritePacket(&packet.LoginAcknowledged{})
		}
	}
}

// loginReason returns the plain text of a JSON text component.
func loginReason(s string) string {
	var msg chat.Message
	if err := msg.UnmarshalJSON([]byte(s)); err != nil {
		return s
	}
	return msg.ClearString()
}

// SanitiseUsername turns a Bedrock display name into a name accepted by Java servers: at most 16
// characters of letters, digits and underscores.
func SanitiseUsername(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
		if b.Len() == 16 {
			break
		}
	}
	if b.Len() == 0 {
		return "Player"
	}
	return b.String()
}

// OfflineUUID returns the UUID an offline mode server assigns to the name passed.
func OfflineUUID(name string) uuid.UUID {
	h := md5.Sum([]byte("OfflinePlayer:" + name))
	h[6] = h[6]&0x0f | 0x30
	h[8] = h[8]&0x3f | 0x80
	return uuid.UUID(h)
}

// Supported reports whether the Java protocol version passed can be dialed.
func Supported(version int32) bool {
	_, ok := packet.Lookup(version)
	return ok
}
