package ladder

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/internal/cache"
	"github.com/purplehaze/glorynews/go/internal/events"
	"github.com/purplehaze/glorynews/go/internal/metrics"
	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

// SnapshotRepository defines what the app layer needs from the archive
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, table *models.StandingsTable) error
	LatestSnapshot(ctx context.Context) (*models.StandingsTable, error)
}

// Config holds orchestration timings
type Config struct {
	Timeout        time.Duration `yaml:"timeout"`         // per source on normal requests
	RefreshTimeout time.Duration `yaml:"refresh_timeout"` // per source on forced refresh
	CacheTTL       time.Duration `yaml:"cache_ttl"`       // shared tier expiry
}

// DefaultConfig returns the default orchestration timings
func DefaultConfig() Config {
	return Config{
		Timeout:        8 * time.Second,
		RefreshTimeout: 10 * time.Second,
		CacheTTL:       15 * time.Minute,
	}
}

// FetchOptions control a single standings request
type FetchOptions struct {
	ForceRefresh bool
}

// App orchestrates cache, sources, validation and fallbacks for the ladder
type App struct {
	cache     *cache.Tiered
	sources   []sources.StandingsSource
	validator *Validator
	repo      SnapshotRepository
	events    events.Publisher
	metrics   metrics.MetricsCollector
	clock     clockwork.Clock
	config    Config
}

// Option customises an App
type Option func(*App)

// WithRepository archives every fresh table and serves the latest one on total failure
func WithRepository(repo SnapshotRepository) Option {
	return func(a *App) { a.repo = repo }
}

// WithEvents announces fresh tables and refresh invalidations
func WithEvents(p events.Publisher) Option {
	return func(a *App) { a.events = p }
}

// WithMetrics records source and fallback metrics
func WithMetrics(m metrics.MetricsCollector) Option {
	return func(a *App) { a.metrics = m }
}

// WithClock replaces the real clock
func WithClock(c clockwork.Clock) Option {
	return func(a *App) { a.clock = c }
}

// NewApp creates a new ladder App. srcs are consulted in the given order.
func NewApp(c *cache.Tiered, srcs []sources.StandingsSource, validator *Validator, config Config, opts ...Option) *App {
	a := &App{
		cache:     c,
		sources:   srcs,
		validator: validator,
		metrics:   &metrics.NoOpMetricsCollector{},
		clock:     clockwork.NewRealClock(),
		config:    config,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// FetchStandings always returns a usable table. Fresh data comes from the cache,
// then the first source yielding a valid table, then the archive, then the static
// backup. Degraded tables are never cached so the next request retries sources.
func (a *App) FetchStandings(ctx context.Context, opts FetchOptions) *models.StandingsTable {
	timeout := a.config.Timeout
	if opts.ForceRefresh {
		timeout = a.config.RefreshTimeout
		if err := a.cache.Invalidate(ctx, cache.LadderKey); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate standings cache")
		}
		a.publishInvalidation(ctx)
	} else if table, ok := a.fromCache(ctx); ok {
		return table
	}

	if table, ok := a.fromSources(ctx, timeout); ok {
		a.store(ctx, table)
		return table
	}

	return a.fallback(ctx)
}

// RefreshStandings drops both cache tiers and refetches with the longer timeout
func (a *App) RefreshStandings(ctx context.Context) *models.StandingsTable {
	return a.FetchStandings(ctx, FetchOptions{ForceRefresh: true})
}

func (a *App) fromCache(ctx context.Context) (*models.StandingsTable, bool) {
	table, tier, ok := cache.LookupJSON(ctx, a.cache, cache.LadderKey, func(t models.StandingsTable) bool {
		return a.validator.Check(&t) == nil
	})
	if !ok {
		return nil, false
	}
	log.Debug().Str("tier", string(tier)).Str("source", table.Source.Name).Msg("standings served from cache")
	return a.validator.Validate(&table), true
}

func (a *App) fromSources(ctx context.Context, timeout time.Duration) (*models.StandingsTable, bool) {
	runner := sources.Runner{
		Timeout: timeout,
		Observe: func(info sources.Info, items int, elapsed time.Duration) {
			a.metrics.RecordSourceFetch(info.Key, items, elapsed)
		},
	}

	var accepted *models.StandingsTable
	_, ok := sources.FirstMatch(ctx, runner, a.sources, func(out sources.Outcome[models.StandingsEntry]) bool {
		if len(out.Items) < MinEntries {
			return false
		}
		table := a.tableFrom(out)
		if err := a.validator.Check(table); err != nil {
			log.Info().Err(err).Str("source", out.Info.Key).Msg("source table failed validation")
			return false
		}
		accepted = table
		return true
	})
	if !ok {
		return nil, false
	}

	log.Info().
		Str("source", accepted.Source.Name).
		Int("entries", len(accepted.Entries)).
		Msg("standings fetched")
	return a.validator.Validate(accepted), true
}

func (a *App) tableFrom(out sources.Outcome[models.StandingsEntry]) *models.StandingsTable {
	now := a.clock.Now()
	return &models.StandingsTable{
		LeagueName:  DefaultLeagueName,
		Season:      Season(now),
		LastUpdated: now,
		Source:      out.Info.Provenance(),
		Entries:     out.Items,
	}
}

func (a *App) store(ctx context.Context, table *models.StandingsTable) {
	if err := a.cache.SetJSON(ctx, cache.LadderKey, table, a.config.CacheTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache standings")
	}
	if a.repo != nil {
		if err := a.repo.SaveSnapshot(ctx, table); err != nil {
			log.Warn().Err(err).Msg("failed to archive standings")
		}
	}
	if a.events != nil {
		if err := a.events.PublishStandings(ctx, table); err != nil {
			log.Warn().Err(err).Msg("failed to publish standings")
		}
	}
}

func (a *App) publishInvalidation(ctx context.Context) {
	if a.events == nil {
		return
	}
	if err := a.events.PublishInvalidation(ctx, cache.LadderKey); err != nil {
		log.Warn().Err(err).Msg("failed to publish standings invalidation")
	}
}

func (a *App) fallback(ctx context.Context) *models.StandingsTable {
	if a.repo != nil {
		snapshot, err := a.repo.LatestSnapshot(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load archived standings")
		}
		if snapshot != nil && a.validator.Check(snapshot) == nil {
			table := a.validator.Validate(snapshot)
			table.Source = models.Provenance{Name: ArchiveSourceName, URL: snapshot.Source.URL, Author: snapshot.Source.Name}
			a.metrics.RecordFallback("standings", "archive")
			log.Warn().Time("archived_at", snapshot.LastUpdated).Msg("all standings sources failed, serving archive")
			return table
		}
	}

	a.metrics.RecordFallback("standings", "static")
	log.Warn().Msg("all standings sources failed, serving static backup")
	return BackupTable(a.clock.Now())
}
