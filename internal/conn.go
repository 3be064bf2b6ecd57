package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cooldogedev/crossplay/bedrock"
	proto "github.com/cooldogedev/spectrum/protocol"
	packet2 "github.com/cooldogedev/spectrum/server/packet"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

const maxSendBufferSize = 4096

// ErrConnClosed is returned when reading from or writing to a closed connection.
var ErrConnClosed = errors.New("connection closed")

// Authenticator decides whether a player forwarded by the proxy may join, using the token it sent along.
type Authenticator func(identityData login.IdentityData, token string) bool

// Conn is a connection of a player forwarded by a spectrum proxy. Packets are sent in batches, flushed
// twenty times per second, and compressed with snappy above a threshold.
type Conn struct {
	log *slog.Logger

	addr *net.UDPAddr
	conn io.ReadWriteCloser

	reader *proto.Reader
	writer *proto.Writer

	codec        *bedrock.Codec
	clientData   login.ClientData
	identityData login.IdentityData

	pending []pendingPacket

	ch      chan struct{}
	flusher chan struct{}
	running sync.WaitGroup

	sendBufferMu sync.Mutex
	flushMu      sync.Mutex
	sendBuffer   []packet.Packet

	chunkRadius int

	initialConnection bool
	clientProtocol    int32

	once sync.Once
}

type pendingPacket struct {
	pk  packet.Packet
	err error
}

// NewConn performs the preamble of a connection forwarded by the proxy: it reads the connection request
// holding the login data of the player and the address they connected from, and answers it. The player
// is always known by runtime id 1 on this side of the proxy.
func NewConn(log *slog.Logger, conn io.ReadWriteCloser, authenticator Authenticator, chunkRadius int) (*Conn, error) {
	c := &Conn{
		log: log,

		conn: conn,

		reader: proto.NewReader(conn),
		writer: proto.NewWriter(conn),

		ch:      make(chan struct{}),
		flusher: make(chan struct{}),

		sendBuffer: make([]packet.Packet, 0, 512),

		chunkRadius: chunkRadius,
	}
	req, err := c.readConnectionRequest()
	if err != nil {
		_ = c.conn.Close()
		return nil, err
	}
	c.initialConnection, c.clientProtocol = req.InitialConnection, int32(req.ClientProtocol)

	if c.addr, err = net.ResolveUDPAddr("udp", req.Addr); err != nil {
		_ = c.conn.Close()
		return nil, err
	}
	if err := json.Unmarshal(req.ClientData, &c.clientData); err != nil {
		_ = c.conn.Close()
		return nil, fmt.Errorf("decode client data: %w", err)
	}
	if err := json.Unmarshal(req.IdentityData, &c.identityData); err != nil {
		_ = c.conn.Close()
		return nil, fmt.Errorf("decode identity data: %w", err)
	}
	c.log = c.log.With("username", c.identityData.DisplayName)

	if authenticator != nil && !authenticator(c.identityData, req.Token) {
		_ = c.conn.Close()
		return nil, errors.New("authentication failed")
	}

	if c.codec, err = bedrock.New(c.clientProtocol); err != nil {
		// The disconnect is written in the latest version, which is the best guess we have.
		c.codec, _ = bedrock.New(protocol.CurrentProtocol)
		c.Reject(fmt.Sprintf("Unsupported client version (protocol %v)", c.clientProtocol))
		return nil, err
	}
	c.codec.Register(packet2.IDConnectionResponse, func() packet.Packet { return &packet2.ConnectionResponse{} })

	_ = c.WritePacket(&packet2.ConnectionResponse{RuntimeID: 1, UniqueID: 1})
	if err := c.internalFlush(); err != nil {
		_ = c.conn.Close()
		return nil, err
	}
	return c, nil
}

// readConnectionRequest reads the first frame of the connection, which holds only the connection request.
func (c *Conn) readConnectionRequest() (req *packet2.ConnectionRequest, err error) {
	payloads, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	if len(payloads) == 0 {
		return nil, errors.New("empty preamble")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode connection request: %v", r)
		}
	}()

	buf := bytes.NewBuffer(payloads[0])
	header := &packet.Header{}
	if err := header.Read(buf); err != nil {
		return nil, fmt.Errorf("read packet header: %w", err)
	}
	if header.PacketID != packet2.IDConnectionRequest {
		return nil, fmt.Errorf("expected connection request, got packet %v", header.PacketID)
	}
	req = &packet2.ConnectionRequest{}
	req.Marshal(protocol.NewReader(buf, 0, false))
	return req, nil
}

// Respond starts flushing packets written to the connection.
func (c *Conn) Respond() {
	c.running.Add(1)
	go c.handleFlusher()
}

// handleFlusher ...
func (c *Conn) handleFlusher() {
	defer c.running.Done()
	ticker := time.NewTicker(time.Second / 20)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
		case <-c.flusher:
		case <-c.ch:
			return
		}
		if err := c.internalFlush(); err != nil {
			c.log.Debug("error flushing packets", "err", err)
			go c.Close()
			return
		}
	}
}

// ReadPacket reads the next packet sent by the player. A *bedrock.DecodeError is returned for a packet that
// could not be decoded; the connection remains usable after it.
func (c *Conn) ReadPacket() (packet.Packet, error) {
	for len(c.pending) == 0 {
		if err := c.read(); err != nil {
			if !errors.Is(err, ErrConnClosed) && !strings.Contains(err.Error(), "connection reset by peer") {
				c.log.Error("error reading packets", "err", err)
			} else {
				c.log.Debug("ignored error reading packets", "err", err)
			}
			return nil, err
		}
	}
	next := c.pending[0]
	c.pending[0] = pendingPacket{}
	c.pending = c.pending[1:]
	return next.pk, next.err
}

// WritePacket buffers a packet to be sent with the next flush.
func (c *Conn) WritePacket(pk packet.Packet) error {
	c.sendBufferMu.Lock()
	defer c.sendBufferMu.Unlock()
	if c.sendBuffer == nil {
		return ErrConnClosed
	}

	if len(c.sendBuffer) >= maxSendBufferSize {
		clear(c.sendBuffer)
		c.sendBuffer = nil
		return errors.New("send buffer is full, cannot write packet")
	}

	c.sendBuffer = append(c.sendBuffer, pk)
	return nil
}

// Flush schedules the packets buffered to be sent immediately.
func (c *Conn) Flush() error {
	c.sendBufferMu.Lock()
	defer c.sendBufferMu.Unlock()

	if len(c.sendBuffer) == 0 {
		return nil
	}

	select {
	case c.flusher <- struct{}{}:
	default:
	}
	return nil
}

// internalFlush ...
func (c *Conn) internalFlush() error {
	c.sendBufferMu.Lock()
	if c.sendBuffer == nil {
		c.sendBufferMu.Unlock()
		return ErrConnClosed
	}
	if len(c.sendBuffer) == 0 {
		c.sendBufferMu.Unlock()
		return nil
	}
	sendBuffer := slices.Clone(c.sendBuffer)
	clear(c.sendBuffer)
	c.sendBuffer = c.sendBuffer[:0]
	c.sendBufferMu.Unlock()

	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	batch := BufferPool.Get().(*bytes.Buffer)
	buf := BufferPool.Get().(*bytes.Buffer)
	defer func() {
		batch.Reset()
		buf.Reset()
		BufferPool.Put(batch)
		BufferPool.Put(buf)
	}()

	var (
		count   uint32
		scratch [5]byte
		body    bytes.Buffer
	)
	for _, pk := range sendBuffer {
		err := c.codec.Encode(buf, pk, func(b []byte) error {
			count++
			if err := writeVaruint32(&body, uint32(len(b)), scratch[:]); err != nil {
				return err
			}
			_, err := body.Write(b)
			return err
		})
		if err != nil {
			return err
		}
	}
	frame, err := encodeFrame(batch, count, body.Bytes())
	if err != nil {
		return err
	}
	return c.writer.Write(frame)
}

// ClientData ...
func (c *Conn) ClientData() login.ClientData {
	return c.clientData
}

// IdentityData ...
func (c *Conn) IdentityData() login.IdentityData {
	return c.identityData
}

// Protocol returns the protocol version of the client.
func (c *Conn) Protocol() int32 {
	return c.clientProtocol
}

// ChunkRadius ...
func (c *Conn) ChunkRadius() int {
	return c.chunkRadius
}

// RemoteAddr returns the address the player connected to the proxy from.
func (c *Conn) RemoteAddr() net.Addr {
	return c.addr
}

// InitialConnection reports whether this is the first server the proxy connected the player to.
func (c *Conn) InitialConnection() bool {
	return c.initialConnection
}

// StartGameContext spawns the player in the world described by data and waits until the client reports
// that it has been initialised.
func (c *Conn) StartGameContext(ctx context.Context, data minecraft.GameData) error {
	for _, item := range data.Items {
		if item.Name == "minecraft:shield" {
			c.codec.SetShieldID(int32(item.RuntimeID))
			break
		}
	}

	startGame := &packet.StartGame{
		Difficulty:                   data.Difficulty,
		EntityUniqueID:               data.EntityUniqueID,
		EntityRuntimeID:              data.EntityRuntimeID,
		PlayerGameMode:               data.PlayerGameMode,
		PlayerPosition:               data.PlayerPosition,
		Pitch:                        data.Pitch,
		Yaw:                          data.Yaw,
		WorldSeed:                    data.WorldSeed,
		Dimension:                    data.Dimension,
		WorldSpawn:                   data.WorldSpawn,
		PersonaDisabled:              data.PersonaDisabled,
		CustomSkinsDisabled:          data.CustomSkinsDisabled,
		GameRules:                    data.GameRules,
		Time:                         data.Time,
		Blocks:                       data.CustomBlocks,
		AchievementsDisabled:         true,
		Generator:                    1,
		MultiPlayerGame:              true,
		MultiPlayerCorrelationID:     uuid.Must(uuid.NewRandom()).String(),
		CommandsEnabled:              true,
		WorldName:                    data.WorldName,
		LANBroadcastEnabled:          true,
		PlayerMovementSettings:       data.PlayerMovementSettings,
		WorldGameMode:                data.WorldGameMode,
		ServerAuthoritativeInventory: data.ServerAuthoritativeInventory,
		PlayerPermissions:            data.PlayerPermissions,
		Experiments:                  data.Experiments,
		ChatRestrictionLevel:         data.ChatRestrictionLevel,
		BaseGameVersion:              data.BaseGameVersion,
		GameVersion:                  protocol.CurrentVersion,
		UseBlockNetworkIDHashes:      data.UseBlockNetworkIDHashes,
	}
	steps := []func() error{
		func() error { return c.WritePacket(startGame) },
		func() error { return c.WritePacket(&packet.ItemRegistry{Items: data.Items}) },
		func() error { return c.Flush() },
		func() error { return c.expect(ctx, packet.IDRequestChunkRadius) },
		func() error { return c.WritePacket(&packet.ChunkRadiusUpdated{ChunkRadius: int32(c.chunkRadius)}) },
		func() error { return c.WritePacket(&packet.PlayStatus{Status: packet.PlayStatusPlayerSpawn}) },
		func() error { return c.Flush() },
		func() error { return c.expect(ctx, packet.IDSetLocalPlayerAsInitialised) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// Reject disconnects a connection that was never handed out with the message passed.
func (c *Conn) Reject(message string) {
	_ = c.WritePacket(&packet.Disconnect{Message: message})
	_ = c.internalFlush()
	_ = c.conn.Close()
}

// Close ...
func (c *Conn) Close() error {
	c.once.Do(func() {
		close(c.ch)

		c.sendBufferMu.Lock()
		clear(c.sendBuffer)
		c.sendBuffer = nil
		c.sendBufferMu.Unlock()

		go func() {
			c.running.Wait()
			_ = c.conn.Close()
		}()
	})
	return nil
}

// read reads a frame from the connection and decodes the packets in it.
func (c *Conn) read() error {
	select {
	case <-c.ch:
		return ErrConnClosed
	default:
	}
	payloads, err := c.readFrame()
	if err != nil {
		return err
	}
	for _, b := range payloads {
		pks, err := c.codec.Decode(b)
		if err != nil {
			c.pending = append(c.pending, pendingPacket{err: err})
			continue
		}
		for _, pk := range pks {
			c.pending = append(c.pending, pendingPacket{pk: pk})
		}
	}
	return nil
}

// readFrame reads a single frame and splits it into the payloads of the packets in it.
func (c *Conn) readFrame() ([][]byte, error) {
	frame, err := c.reader.ReadPacket()
	if err != nil {
		return nil, err
	}
	return decodeFrame(frame)
}

// expect reads packets from the connection until one with the id passed arrives.
func (c *Conn) expect(ctx context.Context, id uint32) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pk, err := c.ReadPacket()
		if err != nil {
			var decodeErr *bedrock.DecodeError
			if errors.As(err, &decodeErr) {
				continue
			}
			return err
		}
		if pk.ID() == id {
			return nil
		}
	}
}
