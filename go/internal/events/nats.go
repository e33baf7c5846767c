package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/internal/metrics"
	"github.com/purplehaze/glorynews/go/internal/models"
)

// Config holds configuration for the NATS bus
type Config struct {
	URL           string        `yaml:"url"`
	SubjectPrefix string        `yaml:"subject_prefix"` // e.g. "glorynews"
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

// DefaultConfig returns default NATS configuration
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "glorynews",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// conn is the part of *nats.Conn the bus uses
type conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Drain() error
	IsConnected() bool
}

// Bus publishes and consumes events over core NATS
type Bus struct {
	handlers
	nc      conn
	prefix  string
	metrics metrics.MetricsCollector
}

// Connect dials NATS and subscribes to every subject under the prefix
func Connect(cfg Config, m metrics.MetricsCollector) (*Bus, error) {
	opts := []nats.Option{
		nats.Name("glorynews"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	bus, err := newBus(nc, cfg.SubjectPrefix, m)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return bus, nil
}

func newBus(nc conn, prefix string, m metrics.MetricsCollector) (*Bus, error) {
	if m == nil {
		m = &metrics.NoOpMetricsCollector{}
	}
	b := &Bus{
		handlers: handlers{instanceID: uuid.NewString()},
		nc:       nc,
		prefix:   prefix,
		metrics:  m,
	}
	if _, err := nc.Subscribe(prefix+".>", b.handleMsg); err != nil {
		return nil, fmt.Errorf("subscribe to %s.>: %w", prefix, err)
	}
	log.Info().Str("prefix", prefix).Str("instance", b.instanceID).Msg("event bus subscribed")
	return b, nil
}

func (b *Bus) subject(eventType string) string {
	return b.prefix + "." + eventType
}

func (b *Bus) PublishInvalidation(ctx context.Context, keys ...string) error {
	return b.publish(ctx, TypeCacheInvalidated, keys, nil)
}

func (b *Bus) PublishStandings(ctx context.Context, table *models.StandingsTable) error {
	return b.publish(ctx, TypeStandingsUpdated, nil, table)
}

func (b *Bus) PublishArticles(ctx context.Context, articles []models.Article) error {
	return b.publish(ctx, TypeArticlesUpdated, nil, articles)
}

func (b *Bus) publish(ctx context.Context, eventType string, keys []string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ev, err := b.newEvent(eventType, keys, payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := b.subject(eventType)
	err = b.nc.Publish(subject, data)
	b.metrics.RecordPublishAttempt(subject, err == nil)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Str("event_id", ev.ID).Int("size", len(data)).Msg("event published")
	return nil
}

func (b *Bus) handleMsg(msg *nats.Msg) {
	var ev Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping undecodable event")
		return
	}
	b.dispatch(ev)
}

// Connected reports whether the NATS connection is currently up
func (b *Bus) Connected() bool {
	return b.nc.IsConnected()
}

// Close drains the connection so in-flight messages are delivered
func (b *Bus) Close() error {
	return b.nc.Drain()
}
