package presence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Config holds the addresses of the services presence is published to. Services with an empty address are
// not used.
type Config struct {
	RedisAddress string
	NATSURL      string
	Node         string
	TTL          time.Duration
}

// RedisStore is a Store backed by a Redis client.
type RedisStore struct {
	client *redis.Client
}

// Set ...
func (r RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Expire ...
func (r RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Expire(ctx, key, ttl).Err()
}

var delIfEqual = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// DelIfEqual ...
func (r RedisStore) DelIfEqual(ctx context.Context, key string, value []byte) error {
	return delIfEqual.Run(ctx, r.client, []string{key}, value).Err()
}

// Dial connects to the services in the config and returns a Presence publishing to them, and a function
// closing the connections.
func Dial(ctx context.Context, log *slog.Logger, conf Config) (*Presence, func(), error) {
	var (
		store   Store
		events  Publisher
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if conf.RedisAddress != "" {
		client := redis.NewClient(&redis.Options{Addr: conf.RedisAddress})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		log.Info("connected to redis", "addr", conf.RedisAddress)
		store = RedisStore{client: client}
		closers = append(closers, func() { _ = client.Close() })
	}
	if conf.NATSURL != "" {
		nc, err := nats.Connect(conf.NATSURL, nats.Name("crossplay "+conf.Node))
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect to nats: %w", err)
		}
		log.Info("connected to nats", "url", conf.NATSURL)
		events = nc
		closers = append(closers, func() { _ = nc.Drain() })
	}
	return New(log, store, events, conf.Node, conf.TTL), closeAll, nil
}
