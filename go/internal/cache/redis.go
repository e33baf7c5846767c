package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// Redis is the shared tier. Redis expires keys natively; the envelope timestamp is
// also checked against maxAge so a key written with a long TTL by an older
// instance is not served past the current freshness window.
type Redis struct {
	client *redis.Client
	prefix string
	maxAge time.Duration
	clock  clockwork.Clock
}

// NewRedisFromURL connects using a redis:// URL
func NewRedisFromURL(url, prefix string, maxAge time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, Error.New("invalid redis url: %v", err)
	}
	return NewRedis(redis.NewClient(opts), prefix, maxAge, clockwork.NewRealClock()), nil
}

func NewRedis(client *redis.Client, prefix string, maxAge time.Duration, clock clockwork.Clock) *Redis {
	return &Redis{client: client, prefix: prefix, maxAge: maxAge, clock: clock}
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, Error.Wrap(err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// undecodable envelope; drop it so the next write starts clean
		_ = r.client.Del(ctx, r.key(key)).Err()
		return Entry{}, false, nil
	}
	if r.maxAge > 0 && r.clock.Since(entry.Timestamp) > r.maxAge {
		return Entry{}, false, nil
	}
	return entry, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return Error.Wrap(err)
	}
	if err := r.client.Set(ctx, r.key(key), raw, ttl).Err(); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	return Error.Wrap(r.client.Del(ctx, prefixed...).Err())
}

// Ping checks connectivity for the health endpoint
func (r *Redis) Ping(ctx context.Context) error {
	return Error.Wrap(r.client.Ping(ctx).Err())
}

func (r *Redis) Close() error {
	return r.client.Close()
}
