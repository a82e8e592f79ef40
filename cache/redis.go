package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/netservice/errors"
)

// Redis stores entries as JSON under a key prefix. Keys expire once the
// entry is past its retention window.
type Redis struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	clock     clock.Clock
}

// RedisOption configures a Redis cache
type RedisOption func(*Redis) error

// WithPrefix sets the key prefix (default "netservice:cache:")
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) error {
		r.prefix = prefix
		return nil
	}
}

// WithRedisRetention sets how long entries outlive their expiry
func WithRedisRetention(d time.Duration) RedisOption {
	return func(r *Redis) error {
		r.retention = d
		return nil
	}
}

// WithRedisClock sets the clock key lifetimes are measured against
func WithRedisClock(c clock.Clock) RedisOption {
	return func(r *Redis) error {
		r.clock = c
		return nil
	}
}

// WithTracing instruments the client with OpenTelemetry tracing
func WithTracing(opts ...redisotel.TracingOption) RedisOption {
	return func(r *Redis) error {
		return redisotel.InstrumentTracing(r.client, opts...)
	}
}

// NewRedis wraps an existing client. The client is owned by the caller.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (*Redis, error) {
	if client == nil {
		return nil, errors.InvalidConfiguration("redis client cannot be nil")
	}

	r := &Redis{
		client:    client,
		prefix:    "netservice:cache:",
		retention: DefaultRetention,
		clock:     clock.New(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Redis) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, err
	}
	return &entry, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, data, r.ttl(entry)).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// ttl never returns zero, which redis would read as "no expiry"
func (r *Redis) ttl(entry *Entry) time.Duration {
	ttl := entry.ExpiresAt.Sub(r.clock.Now()) + r.retention
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
