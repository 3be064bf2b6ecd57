// Package presence publishes the sessions running on a proxy node: every session is registered in Redis
// under a key with a TTL, and lifecycle events are published on NATS.
package presence

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cooldogedev/crossplay/session"
	"github.com/google/uuid"
)

const (
	// SubjectOpened is the NATS subject an event is published on when a session opens.
	SubjectOpened = "crossplay.session.open"
	// SubjectClosed is the NATS subject an event is published on when a session closes.
	SubjectClosed = "crossplay.session.close"

	opTimeout = time.Second
)

// Store holds the presence records of sessions.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// DelIfEqual removes the key if it still holds the value passed. A record replaced by a newer session
	// of the same player is kept.
	DelIfEqual(ctx context.Context, key string, value []byte) error
}

// Publisher publishes lifecycle events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event is the payload of the records and events of a session.
type Event struct {
	Node    string          `json:"node"`
	Time    time.Time       `json:"time"`
	Session session.Summary `json:"session"`
}

// Presence is a session.Observer registering the sessions of a node. Either its store or its publisher
// may be nil.
type Presence struct {
	log    *slog.Logger
	store  Store
	events Publisher
	node   string
	ttl    time.Duration

	mu   sync.Mutex
	live map[uuid.UUID]record
}

// record is the key a live session is registered under and the value it was registered with.
type record struct {
	key  string
	data []byte
}

// New returns a Presence for the node passed. Records expire after ttl unless refreshed by Run.
func New(log *slog.Logger, store Store, events Publisher, node string, ttl time.Duration) *Presence {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Presence{
		log:    log,
		store:  store,
		events: events,
		node:   node,
		ttl:    ttl,
		live:   make(map[uuid.UUID]record),
	}
}

// Key returns the key a session is registered under: the XUID of the player, or its name for players that
// did not log into Xbox Live. A player joining again replaces the record of their previous session.
func Key(s session.Summary) string {
	id := s.XUID
	if id == "" {
		id = s.Username
	}
	return "crossplay:sess:" + id
}

// SessionOpened ...
func (p *Presence) SessionOpened(s session.Summary) {
	data := p.encode(s)
	if data == nil {
		return
	}
	key := Key(s)
	p.mu.Lock()
	p.live[s.ID] = record{key: key, data: data}
	p.mu.Unlock()

	if p.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := p.store.Set(ctx, key, data, p.ttl); err != nil {
			p.log.Warn("failed to register session", "key", key, "err", err)
		}
	}
	p.publish(SubjectOpened, data)
}

// SessionClosed ...
func (p *Presence) SessionClosed(s session.Summary) {
	p.mu.Lock()
	r, ok := p.live[s.ID]
	delete(p.live, s.ID)
	p.mu.Unlock()
	if !ok {
		return
	}
	if p.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := p.store.DelIfEqual(ctx, r.key, r.data); err != nil {
			p.log.Warn("failed to unregister session", "key", r.key, "err", err)
		}
	}
	if data := p.encode(s); data != nil {
		p.publish(SubjectClosed, data)
	}
}

// Run refreshes the TTL of the records of live sessions until the context is done.
func (p *Presence) Run(ctx context.Context) {
	if p.store == nil {
		return
	}
	ticker := time.NewTicker(p.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Presence) refresh(ctx context.Context) {
	p.mu.Lock()
	keys := make([]string, 0, len(p.live))
	for _, r := range p.live {
		keys = append(keys, r.key)
	}
	p.mu.Unlock()

	for _, key := range keys {
		opCtx, cancel := context.WithTimeout(ctx, opTimeout)
		err := p.store.Expire(opCtx, key, p.ttl)
		cancel()
		if err != nil {
			p.log.Warn("failed to refresh session", "key", key, "err", err)
		}
	}
}

// Live returns the amount of sessions registered.
func (p *Presence) Live() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func (p *Presence) encode(s session.Summary) []byte {
	data, err := json.Marshal(Event{Node: p.node, Time: time.Now(), Session: s})
	if err != nil {
		p.log.Error("failed to encode presence event", "err", err)
		return nil
	}
	return data
}

func (p *Presence) publish(subject string, data []byte) {
	if p.events == nil {
		return
	}
	if err := p.events.Publish(subject, data); err != nil {
		p.log.Warn("failed to publish session event", "subject", subject, "err", err)
	}
}
