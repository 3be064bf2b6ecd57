// Package session translates the packets exchanged between a Bedrock client and a Java server, keeping
// the state both protocols describe in sync for the lifetime of the connection.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/cooldogedev/crossplay/backend"
	"github.com/cooldogedev/crossplay/bedrock"
	"github.com/cooldogedev/crossplay/entity"
	"github.com/cooldogedev/crossplay/java/protocol"
	javapacket "github.com/cooldogedev/crossplay/java/protocol/packet"
	"github.com/cooldogedev/crossplay/mappings"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSessionClosed is returned when writing to a session that has been closed.
	ErrSessionClosed = errors.New("session closed")

	errLiveness   = errors.New("client stopped answering liveness probes")
	errViolations = errors.New("too many packets invalid in the session state")
)

type side uint8

const (
	sideFront side = iota
	sideBack
)

// String ...
func (s side) String() string {
	if s == sideFront {
		return "front"
	}
	return "back"
}

// closeError is the cause of a session ending because one of its connections closed.
type closeError struct {
	side side
	err  error
}

// Error ...
func (e *closeError) Error() string {
	return fmt.Sprintf("%v connection closed: %v", e.side, e.err)
}

// Unwrap ...
func (e *closeError) Unwrap() error {
	return e.err
}

// closeRequest is the cause of a session ending because it was closed through its Manager.
type closeRequest struct {
	reason string
}

// Error ...
func (e *closeRequest) Error() string {
	return "closed: " + e.reason
}

// Session is a Bedrock client connected to a Java server through the proxy. Everything a session holds
// is owned by the goroutine running it; other goroutines only reach it through Summary and Close.
type Session struct {
	id       uuid.UUID
	log      *slog.Logger
	conf     Config
	registry *Registry
	set      *mappings.Set
	dialer   Dialer

	front FrontConn
	back  BackConn

	ctx     context.Context
	group   *errgroup.Group
	frontCh chan packet.Packet

	opened   time.Time
	state    atomic.Int32
	frontSeq atomic.Uint64
	backSeq  atomic.Uint64

	closeRequests chan string
	frontStarted  bool
	frontDone     chan struct{}
	notified      bool

	violations   map[registryKey]int
	probing      bool
	missedProbes int

	entities *entity.Map
	tracked  map[int32]*trackedEntity
	players  map[uuid.UUID]playerEntry
	world    *world
	chunks   *chunkCache
	movement movement
	inv      *inventoryCache
}

func newSession(log *slog.Logger, conf Config, registry *Registry, set *mappings.Set, dialer Dialer, front FrontConn) *Session {
	id := uuid.New()
	s := &Session{
		id:            id,
		log:           log.With("session", id.String(), "username", front.IdentityData().DisplayName),
		conf:          conf,
		registry:      registry,
		set:           set,
		dialer:        dialer,
		front:         front,
		opened:        time.Now(),
		closeRequests: make(chan string, 1),
		frontDone:     make(chan struct{}),
		frontCh:       make(chan packet.Packet, 256),
		violations:    make(map[registryKey]int),
		entities:      entity.NewMap(),
		tracked:       make(map[int32]*trackedEntity),
		players:       make(map[uuid.UUID]playerEntry),
		world:         newWorld(),
		chunks:        newChunkCache(),
		inv:           newInventoryCache(set.MaxStack),
	}
	s.state.Store(int32(StateHandshaking))
	return s
}

// ID returns the unique id of the session.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// State returns the current state of the session.
func (s *Session) State() State {
	return State(s.state.Load())
}

// setState moves the session to a new state. Moves that the state machine does not allow are ignored.
func (s *Session) setState(to State) {
	from := s.State()
	if from == to || !canTransition(from, to) {
		return
	}
	s.state.Store(int32(to))
	s.log.Debug("session state changed", "from", from, "to", to)
}

// Close asks the session to disconnect the client with the reason passed. It does not wait for the session
// to end.
func (s *Session) Close(reason string) {
	select {
	case s.closeRequests <- reason:
	default:
	}
}

// Run connects the session to the Java server and translates packets until either side disconnects. The
// error returned is the reason the session ended.
func (s *Session) Run(ctx context.Context) error {
	defer s.setState(StateClosed)

	if err := s.connect(ctx); err != nil {
		s.setState(StateDisconnecting)
		if s.back != nil {
			_ = s.back.Close()
		}
		s.disconnectFront(connectFailure(err))
		s.closeFrontAfterGrace()
		return err
	}
	ctx, cancel := context.WithCancelCause(ctx)
	g, ctx := errgroup.WithContext(ctx)
	s.ctx, s.group = ctx, g

	backCh := make(chan javapacket.Packet, 256)
	g.Go(func() error {
		return s.readBack(ctx, backCh)
	})
	err := s.process(ctx, backCh)
	cancel(err)
	s.shutdown(err)
	_ = g.Wait()
	return err
}

// connect dials the Java server and sends the settings of the client.
func (s *Session) connect(ctx context.Context) error {
	s.setState(StateLoggingIn)
	back, err := s.dialer.Dial(ctx, backend.Login{
		Address:  s.conf.BackendAddress,
		Version:  s.conf.BackendVersion,
		Username: s.front.IdentityData().DisplayName,
	})
	if err != nil {
		return fmt.Errorf("connect to backend: %w", err)
	}
	s.back = back
	s.setState(StateConfiguring)
	s.log.Debug("connected to backend", "version", protocol.VersionName(back.Version()))

	if err := s.writeBack(s.clientInformation()); err != nil {
		return err
	}
	brand := append(protocol.AppendVarInt(nil, int32(len(brandName))), brandName...)
	return s.writeBack(&javapacket.ServerboundPluginMessage{Channel: "minecraft:brand", Data: brand})
}

const brandName = "crossplay"

// connectFailure returns the message shown to a client whose back connection could not be opened.
func connectFailure(err error) string {
	var loginErr *backend.LoginError
	switch {
	case errors.As(err, &loginErr):
		return loginErr.Reason
	case errors.Is(err, backend.ErrOnlineMode):
		return "The server requires a Java Edition account."
	}
	return "Could not connect to the server."
}

// process runs the translation loop of the session until it ends.
func (s *Session) process(ctx context.Context, backCh <-chan javapacket.Packet) error {
	ticker := time.NewTicker(s.conf.LivenessInterval)
	defer ticker.Stop()

	for {
		select {
		case pk := <-backCh:
			s.backSeq.Add(1)
			if err := s.handleBack(pk); err != nil {
				return err
			}
		case pk := <-s.frontCh:
			s.frontSeq.Add(1)
			if err := s.handleFront(pk); err != nil {
				return err
			}
		case <-ticker.C:
			if err := s.probe(); err != nil {
				return err
			}
		case reason := <-s.closeRequests:
			return &closeRequest{reason: reason}
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

// startFront starts reading packets from the client. Until then, the connection belongs to StartGame.
func (s *Session) startFront() {
	if s.frontStarted {
		return
	}
	s.frontStarted = true
	s.group.Go(func() error {
		return s.readFront(s.ctx)
	})
}

func (s *Session) readFront(ctx context.Context) error {
	defer close(s.frontDone)
	for ctx.Err() == nil {
		pk, err := s.front.ReadPacket()
		if err != nil {
			var decodeErr *bedrock.DecodeError
			if errors.As(err, &decodeErr) {
				s.log.Debug("dropped undecodable packet", "side", sideFront, "err", err)
				continue
			}
			return &closeError{side: sideFront, err: err}
		}
		select {
		case s.frontCh <- pk:
		case <-ctx.Done():
		}
	}
	return nil
}

func (s *Session) readBack(ctx context.Context, out chan<- javapacket.Packet) error {
	for ctx.Err() == nil {
		pk, err := s.back.ReadPacket()
		if err != nil {
			var decodeErr *javapacket.DecodeError
			if errors.As(err, &decodeErr) {
				s.log.Debug("dropped undecodable packet", "side", sideBack, "err", err)
				continue
			}
			return &closeError{side: sideBack, err: err}
		}
		select {
		case out <- pk:
		case <-ctx.Done():
		}
	}
	return nil
}

// handleFront translates a packet sent by the client.
func (s *Session) handleFront(pk packet.Packet) error {
	t, ok := s.registry.lookup(FrontToBack, s.front.Protocol(), pk.ID())
	if !ok {
		s.log.Debug("dropped packet without translator", "side", sideFront, "packet", packetName(pk))
		return nil
	}
	if !t.states.Has(s.State()) {
		return s.violation(registryKey{dir: FrontToBack, id: pk.ID()}, t, pk)
	}
	return t.front(s, pk)
}

// handleBack translates a packet sent by the server.
func (s *Session) handleBack(pk javapacket.Packet) error {
	t, ok := s.registry.lookup(BackToFront, s.back.Version(), pk.ID())
	if !ok {
		s.log.Debug("dropped packet without translator", "side", sideBack, "packet", packetName(pk))
		return nil
	}
	if !t.states.Has(s.State()) {
		return s.violation(registryKey{dir: BackToFront, id: pk.ID()}, t, pk)
	}
	return t.back(s, pk)
}

// violation drops a packet that is not valid in the current state. The session ends once the same kind of
// packet has been dropped more often than the threshold allows.
func (s *Session) violation(k registryKey, t translator, pk any) error {
	if t.tolerant {
		return nil
	}
	s.violations[k]++
	n := s.violations[k]
	s.log.Warn("dropped packet invalid in state", "dir", k.dir, "packet", packetName(pk), "state", s.State(), "count", n)
	if n > s.conf.ViolationThreshold {
		return fmt.Errorf("%w: %v", errViolations, packetName(pk))
	}
	return nil
}

// probe sends a liveness probe to the client, ending the session if too many probes in a row went
// unanswered.
func (s *Session) probe() error {
	if s.State() != StatePlaying {
		return nil
	}
	if s.probing {
		s.missedProbes++
		if s.missedProbes >= s.conf.MaxMissedProbes {
			return errLiveness
		}
	}
	s.probing = true
	return s.writeFront(&packet.NetworkStackLatency{Timestamp: time.Now().UnixMilli(), NeedsResponse: true})
}

// writeFront writes a packet to the client.
func (s *Session) writeFront(pk packet.Packet) error {
	if err := s.front.WritePacket(pk); err != nil {
		return &closeError{side: sideFront, err: err}
	}
	return nil
}

// writeBack writes a packet to the server. Packets that do not exist in the state of the connection are
// dropped.
func (s *Session) writeBack(pk javapacket.Packet) error {
	if err := s.back.WritePacket(pk); err != nil {
		if errors.Is(err, javapacket.ErrUnknownPacket) {
			s.log.Debug("dropped packet not valid in backend state", "packet", packetName(pk), "err", err)
			return nil
		}
		return &closeError{side: sideBack, err: err}
	}
	return nil
}

// disconnectFront shows the client a disconnection screen with the message passed. Only the first message
// is sent.
func (s *Session) disconnectFront(message string) {
	if s.notified {
		return
	}
	s.notified = true
	_ = s.front.WritePacket(&packet.Disconnect{Message: message})
	_ = s.front.Flush()
}

// shutdown closes both connections once the translation loop ended with cause. A client that is still
// connected is told why and given the grace period to receive it.
func (s *Session) shutdown(cause error) {
	s.setState(StateDisconnecting)

	var closeErr *closeError
	if errors.As(cause, &closeErr) && closeErr.side == sideFront {
		s.log.Info("client disconnected", "err", closeErr.err)
		_ = s.back.Close()
		_ = s.front.Close()
		return
	}
	_ = s.back.Close()
	s.disconnectFront(disconnectMessage(cause))
	s.closeFrontAfterGrace()
}

// closeFrontAfterGrace closes the client connection once the client closed it or the grace period passed.
func (s *Session) closeFrontAfterGrace() {
	timer := time.NewTimer(s.conf.CloseGracePeriod)
	defer timer.Stop()
	if s.frontStarted {
		select {
		case <-s.frontDone:
		case <-timer.C:
		}
	} else {
		<-timer.C
	}
	_ = s.front.Close()
}

// disconnectMessage returns the message shown to the client for a session ending with err.
func disconnectMessage(err error) string {
	var (
		closeErr *closeError
		request  *closeRequest
		kick     *kickError
	)
	switch {
	case errors.As(err, &request):
		return request.reason
	case errors.As(err, &kick):
		return kick.message
	case errors.As(err, &closeErr):
		return "Lost connection to the server."
	case errors.Is(err, errLiveness), errors.Is(err, context.DeadlineExceeded):
		return "Timed out."
	case errors.Is(err, errViolations):
		return "Too many invalid packets."
	}
	return "Internal proxy error."
}

// packetName returns the type name of a packet for logging.
func packetName(pk any) string {
	t := reflect.TypeOf(pk)
	if t == nil {
		return "nil"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
