// Package cache implements the two-tier read-through cache: a process-local map
// in front of a shared Redis instance.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zeebo/errs"
)

// Error wraps failures talking to a cache tier
var Error = errs.Class("cache")

// Keys used by the orchestrators
const (
	LadderKey = "ladder_data"
)

// ArticlesKey is the per-source article list key
func ArticlesKey(source string) string { return "articles:" + source }

// ArticleKey is the single article key
func ArticleKey(id string) string { return "article:" + id }

// Tier names where a lookup was satisfied
type Tier string

const (
	TierNone   Tier = ""
	TierLocal  Tier = "local"
	TierShared Tier = "shared"
)

// Entry is the envelope stored in both tiers. Timestamp is the time the value was
// fetched from its origin and survives backfills between tiers.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store is one cache tier
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Accept decides whether a cached value can be trusted. Rejected values are
// treated as misses.
type Accept func(data []byte) bool
