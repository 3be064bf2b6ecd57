package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cooldogedev/crossplay/mappings"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// ErrUnsupportedVersion is returned by Manager.Handle for a client whose protocol version has no mappings
// for the Java version of the server.
var ErrUnsupportedVersion = errors.New("unsupported protocol version")

// Observer is notified when sessions open and close. Observers are called from the goroutine running the
// session and must not block for long.
type Observer interface {
	SessionOpened(s Summary)
	SessionClosed(s Summary)
}

// Summary describes a session at a point in time.
type Summary struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	XUID          string    `json:"xuid"`
	RemoteAddr    string    `json:"remote_addr"`
	FrontProtocol int32     `json:"front_protocol"`
	BackProtocol  int32     `json:"back_protocol"`
	State         string    `json:"state"`
	FrontPackets  uint64    `json:"front_packets"`
	BackPackets   uint64    `json:"back_packets"`
	Opened        time.Time `json:"opened"`
}

// Summary returns a summary of the session. It is safe to call from any goroutine.
func (s *Session) Summary() Summary {
	identity := s.front.IdentityData()
	var addr string
	if a := s.front.RemoteAddr(); a != nil {
		addr = a.String()
	}
	return Summary{
		ID:            s.id,
		Username:      identity.DisplayName,
		XUID:          identity.XUID,
		RemoteAddr:    addr,
		FrontProtocol: s.front.Protocol(),
		BackProtocol:  s.conf.BackendVersion,
		State:         s.State().String(),
		FrontPackets:  s.frontSeq.Load(),
		BackPackets:   s.backSeq.Load(),
		Opened:        s.opened,
	}
}

// Manager creates a Session for every client handed to it and keeps track of the sessions running.
type Manager struct {
	log      *slog.Logger
	conf     Config
	tables   *mappings.Tables
	registry *Registry
	dialer   Dialer

	observersMu sync.RWMutex
	observers   []Observer

	sessions sync.Map // map[uuid.UUID]*Session
	running  sync.WaitGroup
}

// NewManager returns a Manager running sessions with the config, mappings and dialer passed. If registry is
// nil, the translators of DefaultRegistry are used.
func NewManager(log *slog.Logger, conf Config, tables *mappings.Tables, registry *Registry, dialer Dialer) *Manager {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Manager{
		log:      log,
		conf:     conf.withDefaults(),
		tables:   tables,
		registry: registry,
		dialer:   dialer,
	}
}

// Observe adds an observer notified of every session opened and closed from now on.
func (m *Manager) Observe(o Observer) {
	m.observersMu.Lock()
	defer m.observersMu.Unlock()
	m.observers = append(m.observers, o)
}

// Supports reports whether sessions can be run for clients of the Bedrock protocol passed.
func (m *Manager) Supports(protocol int32) bool {
	_, ok := m.tables.Set(protocol, m.conf.BackendVersion)
	return ok
}

// Handle runs a session for the client passed and blocks until it ends. A client whose protocol version
// cannot be translated to the server is disconnected without a session being created.
func (m *Manager) Handle(ctx context.Context, front FrontConn) error {
	set, ok := m.tables.Set(front.Protocol(), m.conf.BackendVersion)
	if !ok {
		m.log.Info("rejected client with unsupported version", "protocol", front.Protocol(), "remote_addr", front.RemoteAddr())
		_ = front.WritePacket(&packet.Disconnect{Message: fmt.Sprintf("Unsupported client version (protocol %v).", front.Protocol())})
		_ = front.Flush()
		_ = front.Close()
		return fmt.Errorf("%w: %v", ErrUnsupportedVersion, front.Protocol())
	}
	s := newSession(m.log, m.conf, m.registry, set, m.dialer, front)

	m.running.Add(1)
	defer m.running.Done()
	m.sessions.Store(s.id, s)
	defer m.sessions.Delete(s.id)

	s.log.Info("session opened", "remote_addr", front.RemoteAddr(), "protocol", front.Protocol())
	m.notify(s.Summary(), Observer.SessionOpened)
	defer func() {
		m.notify(s.Summary(), Observer.SessionClosed)
	}()

	err := s.Run(ctx)
	var closeErr *closeError
	if err == nil || errors.As(err, &closeErr) {
		s.log.Info("session closed", "reason", err)
		return nil
	}
	s.log.Warn("session closed", "reason", err)
	return err
}

func (m *Manager) notify(sum Summary, f func(Observer, Summary)) {
	m.observersMu.RLock()
	defer m.observersMu.RUnlock()
	for _, o := range m.observers {
		f(o, sum)
	}
}

// Sessions returns a summary of every running session.
func (m *Manager) Sessions() []Summary {
	var out []Summary
	m.sessions.Range(func(_, v any) bool {
		out = append(out, v.(*Session).Summary())
		return true
	})
	return out
}

// Close disconnects the client of the session with the id passed. It reports whether the session exists.
func (m *Manager) Close(id uuid.UUID, reason string) bool {
	v, ok := m.sessions.Load(id)
	if ok {
		v.(*Session).Close(reason)
	}
	return ok
}

// CloseAll disconnects every client and waits for their sessions to end.
func (m *Manager) CloseAll(reason string) {
	m.sessions.Range(func(_, v any) bool {
		v.(*Session).Close(reason)
		return true
	})
	m.running.Wait()
}
