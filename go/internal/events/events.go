// Package events fans cache invalidations and fresh data out to every running
// instance. NATS carries them between processes; LocalBus is used when no NATS
// server is configured.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/internal/models"
)

// Event types
const (
	TypeCacheInvalidated = "cache.invalidated"
	TypeStandingsUpdated = "standings.updated"
	TypeArticlesUpdated  = "articles.updated"
)

// Event is the envelope sent on the wire
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Origin    string          `json:"origin"` // instance that published the event
	Keys      []string        `json:"keys,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher is what the orchestrators need to announce changes
type Publisher interface {
	PublishInvalidation(ctx context.Context, keys ...string) error
	PublishStandings(ctx context.Context, table *models.StandingsTable) error
	PublishArticles(ctx context.Context, articles []models.Article) error
}

// Subscriber lets consumers react to announcements
type Subscriber interface {
	OnInvalidate(fn func(keys []string))
	OnStandings(fn func(table *models.StandingsTable))
	OnArticles(fn func(articles []models.Article))
}

// handlers routes decoded events. Invalidations from this instance are skipped
// because the publisher already dropped its own entries.
type handlers struct {
	mu         sync.RWMutex
	instanceID string
	invalidate []func([]string)
	standings  []func(*models.StandingsTable)
	articles   []func([]models.Article)
}

func (h *handlers) OnInvalidate(fn func(keys []string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invalidate = append(h.invalidate, fn)
}

func (h *handlers) OnStandings(fn func(table *models.StandingsTable)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.standings = append(h.standings, fn)
}

func (h *handlers) OnArticles(fn func(articles []models.Article)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.articles = append(h.articles, fn)
}

func (h *handlers) newEvent(eventType string, keys []string, payload any) (Event, error) {
	ev := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Origin:    h.instanceID,
		Keys:      keys,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, err
		}
		ev.Payload = raw
	}
	return ev, nil
}

func (h *handlers) dispatch(ev Event) {
	h.mu.RLock()
	invalidate, standings, articles := h.invalidate, h.standings, h.articles
	h.mu.RUnlock()

	switch ev.Type {
	case TypeCacheInvalidated:
		if ev.Origin == h.instanceID {
			return
		}
		for _, fn := range invalidate {
			fn(ev.Keys)
		}
	case TypeStandingsUpdated:
		var table models.StandingsTable
		if err := json.Unmarshal(ev.Payload, &table); err != nil {
			log.Warn().Err(err).Str("event_id", ev.ID).Msg("dropping malformed standings event")
			return
		}
		for _, fn := range standings {
			fn(&table)
		}
	case TypeArticlesUpdated:
		var list []models.Article
		if err := json.Unmarshal(ev.Payload, &list); err != nil {
			log.Warn().Err(err).Str("event_id", ev.ID).Msg("dropping malformed articles event")
			return
		}
		for _, fn := range articles {
			fn(list)
		}
	default:
		log.Debug().Str("type", ev.Type).Msg("ignoring unknown event type")
	}
}

// LocalBus delivers events synchronously inside one process
type LocalBus struct {
	handlers
}

func NewLocalBus() *LocalBus {
	return &LocalBus{handlers: handlers{instanceID: uuid.NewString()}}
}

func (b *LocalBus) PublishInvalidation(_ context.Context, keys ...string) error {
	return b.publish(TypeCacheInvalidated, keys, nil)
}

func (b *LocalBus) PublishStandings(_ context.Context, table *models.StandingsTable) error {
	return b.publish(TypeStandingsUpdated, nil, table)
}

func (b *LocalBus) PublishArticles(_ context.Context, articles []models.Article) error {
	return b.publish(TypeArticlesUpdated, nil, articles)
}

func (b *LocalBus) publish(eventType string, keys []string, payload any) error {
	ev, err := b.newEvent(eventType, keys, payload)
	if err != nil {
		return err
	}
	b.dispatch(ev)
	return nil
}
