package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Tiered reads local first, then shared, and writes through to both. The shared
// tier is optional; without it the cache is process-local only.
type Tiered struct {
	local   Store
	shared  Store
	clock   clockwork.Clock
	observe func(family string, tier Tier, hit bool)
}

func NewTiered(local Store, shared Store, clock clockwork.Clock) *Tiered {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tiered{local: local, shared: shared, clock: clock}
}

// OnLookup registers a callback invoked once per tier consulted
func (t *Tiered) OnLookup(fn func(family string, tier Tier, hit bool)) {
	t.observe = fn
}

// Lookup returns the first accepted value. A shared hit is copied into the local
// tier with its original timestamp, so local staleness still counts from the
// origin fetch. Rejected values are evicted from the tier that held them.
func (t *Tiered) Lookup(ctx context.Context, key string, accept Accept) ([]byte, Tier, bool) {
	if entry, ok := t.lookupTier(ctx, t.local, TierLocal, key, accept); ok {
		return entry.Data, TierLocal, true
	}

	if t.shared == nil {
		return nil, TierNone, false
	}
	entry, ok := t.lookupTier(ctx, t.shared, TierShared, key, accept)
	if !ok {
		return nil, TierNone, false
	}

	if err := t.local.Set(ctx, key, entry, 0); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to backfill local cache")
	}
	return entry.Data, TierShared, true
}

func (t *Tiered) lookupTier(ctx context.Context, store Store, tier Tier, key string, accept Accept) (Entry, bool) {
	entry, ok, err := store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("tier", string(tier)).Msg("cache read failed")
		t.record(key, tier, false)
		return Entry{}, false
	}
	if ok && accept != nil && !accept(entry.Data) {
		log.Info().Str("key", key).Str("tier", string(tier)).Msg("cached value rejected")
		if err := store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Str("tier", string(tier)).Msg("failed to evict rejected value")
		}
		ok = false
	}
	t.record(key, tier, ok)
	return entry, ok
}

// Set writes value to both tiers. The shared tier expires the key after ttl.
func (t *Tiered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	entry := Entry{Data: value, Timestamp: t.clock.Now()}

	if err := t.local.Set(ctx, key, entry, ttl); err != nil {
		return err
	}
	if t.shared == nil {
		return nil
	}
	if err := t.shared.Set(ctx, key, entry, ttl); err != nil {
		return err
	}
	return nil
}

// SetJSON marshals v and writes it through
func (t *Tiered) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return Error.Wrap(err)
	}
	return t.Set(ctx, key, raw, ttl)
}

// Invalidate drops keys from both tiers
func (t *Tiered) Invalidate(ctx context.Context, keys ...string) error {
	if err := t.local.Delete(ctx, keys...); err != nil {
		return err
	}
	if t.shared == nil {
		return nil
	}
	return t.shared.Delete(ctx, keys...)
}

// InvalidateLocal drops keys from this process only. Peers call it when another
// instance announces a refresh.
func (t *Tiered) InvalidateLocal(ctx context.Context, keys ...string) {
	if err := t.local.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate local cache")
	}
}

func (t *Tiered) record(key string, tier Tier, hit bool) {
	if t.observe != nil {
		t.observe(Family(key), tier, hit)
	}
}

// Family strips the identifier from a key ("article:abc" -> "article")
func Family(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

// LookupJSON decodes a cached value into T; check may reject decoded values
func LookupJSON[T any](ctx context.Context, t *Tiered, key string, check func(T) bool) (T, Tier, bool) {
	var out T
	_, tier, ok := t.Lookup(ctx, key, func(data []byte) bool {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return false
		}
		if check != nil && !check(v) {
			return false
		}
		out = v
		return true
	})
	return out, tier, ok
}
