package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/clients/aleague_client"
	"github.com/purplehaze/glorynews/go/clients/club_feed_client"
	"github.com/purplehaze/glorynews/go/clients/espn_client"
	"github.com/purplehaze/glorynews/go/clients/reddit_client"
	"github.com/purplehaze/glorynews/go/clients/sport_radar_client"
	"github.com/purplehaze/glorynews/go/clients/sports_api_client"
	"github.com/purplehaze/glorynews/go/clients/ultimate_aleague_client"
	"github.com/purplehaze/glorynews/go/internal/cache"
	"github.com/purplehaze/glorynews/go/internal/events"
	"github.com/purplehaze/glorynews/go/internal/ladder"
	"github.com/purplehaze/glorynews/go/internal/live"
	"github.com/purplehaze/glorynews/go/internal/metrics"
	"github.com/purplehaze/glorynews/go/internal/news"
	"github.com/purplehaze/glorynews/go/internal/ratelimit"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

// eventBus is satisfied by both the NATS bus and the in-process bus
type eventBus interface {
	events.Publisher
	events.Subscriber
}

type Services struct {
	Ladder        *ladder.App
	News          *news.App
	LadderService *ladder.Service
	NewsService   *news.Service
	Hub           *live.Hub
	LiveHandler   *live.Handler
	Registry      *prometheus.Registry

	redis *cache.Redis
	bus   eventBus
	nats  *events.Bus
	pool  *pgxpool.Pool
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Clients → Source adapters → Cache/Archive → App layer → Service layer
	s := &Services{Registry: prometheus.NewRegistry()}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewPrometheusMetrics(s.Registry)
	clock := clockwork.NewRealClock()

	// Outbound plumbing
	limiter := ratelimit.NewLimiter(config.RateLimit)
	limiter.OnFailOpen(m.RecordRateLimitFailOpen)

	norm := sources.NewNormalizer()
	norm.Team = sources.NewTeamMatcher(config.Team.Aliases...)

	builder := sourceBuilder{config: config, limiter: limiter, norm: norm}
	registry := config.registry()
	standings := builder.standings(clients.OrderByPriority(registry, clients.KindStandings))
	articles := builder.articles(clients.OrderByPriority(registry, clients.KindNews))
	log.Info().Int("standings_sources", len(standings)).Int("news_sources", len(articles)).Msg("sources configured")

	// Cache
	var shared cache.Store
	if config.Cache.RedisURL != "" {
		r, err := cache.NewRedisFromURL(config.Cache.RedisURL, config.Cache.KeyPrefix, config.Cache.SharedMaxAge)
		if err != nil {
			return nil, fmt.Errorf("failed to configure redis: %w", err)
		}
		if err := r.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable at startup, shared cache will keep retrying")
		}
		s.redis = r
		shared = r
	}
	tiered := cache.NewTiered(cache.NewLocal(config.Cache.LocalMaxAge), shared, clock)
	tiered.OnLookup(func(family string, tier cache.Tier, hit bool) {
		m.RecordCacheLookup(family, string(tier), hit)
	})

	// Events and live updates
	if config.Events.Enabled {
		bus, err := events.Connect(config.Events.NATS, m)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect event bus: %w", err)
		}
		s.nats = bus
		s.bus = bus
	} else {
		s.bus = events.NewLocalBus()
	}

	s.Hub = live.NewHub(live.DefaultConnectionConfig())
	s.LiveHandler = live.NewHandler(s.Hub)
	s.bus.OnInvalidate(func(keys []string) {
		tiered.InvalidateLocal(context.Background(), keys...)
	})
	s.bus.OnStandings(s.Hub.BroadcastStandings)
	s.bus.OnArticles(s.Hub.BroadcastArticles)

	// Ladder
	opts := []ladder.Option{
		ladder.WithEvents(s.bus),
		ladder.WithMetrics(m),
		ladder.WithClock(clock),
	}
	if config.Database.Enabled {
		pool, err := setupDatabase(ctx)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.pool = pool

		repo := ladder.NewRepository(pool, config.Database.Retention)
		if err := repo.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to prepare snapshot archive: %w", err)
		}
		opts = append(opts, ladder.WithRepository(repo))
	}

	validator := ladder.NewValidator(norm.Team, norm.Form, clock)
	s.Ladder = ladder.NewApp(tiered, standings, validator, config.Ladder, opts...)
	s.LadderService = ladder.NewService(s.Ladder)

	// News
	s.News = news.NewApp(tiered, articles, config.News, s.bus, m)
	s.NewsService = news.NewService(s.News)

	return s, nil
}

func (s *Services) Close() {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to drain event bus")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// sourceBuilder turns registry entries into adapters sharing one limiter
type sourceBuilder struct {
	config  *Config
	limiter *ratelimit.Limiter
	norm    *sources.Normalizer
}

func (b sourceBuilder) prepare(c *clients.BaseClient) {
	c.SetLimiter(b.limiter)
	c.SetRetry(b.config.Retry)
}

func (b sourceBuilder) standings(ordered []clients.ExternalSourceConfig) []sources.StandingsSource {
	var out []sources.StandingsSource
	for _, sc := range ordered {
		override := b.config.override(sc.Source)

		switch sc.Source {
		case clients.ExternalSourceALeagues:
			c := aleague_client.NewALeagueClient(override.BaseURL)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewALeagueSource(c, sc, b.norm))
		case clients.ExternalSourceESPN:
			c := espn_client.NewESPNClient(override.BaseURL)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewESPNSource(c, sc, b.norm))
		case clients.ExternalSourceUltimateALeague:
			c := ultimate_aleague_client.NewUltimateALeagueClient(override.BaseURL)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewUltimateALeagueSource(c, sc, b.norm))
		case clients.ExternalSourceReddit:
			c := reddit_client.NewRedditClient(override.BaseURL)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewRedditLadderSource(c, sc, b.norm))
		case clients.ExternalSourceSportsAPI:
			if override.APIKey == "" {
				log.Info().Str("source", string(sc.Source)).Msg("no API key, skipping source")
				continue
			}
			c := sports_api_client.NewSportsApiClient(override.BaseURL, override.APIKey)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewAPISportsSource(c, sc, b.norm))
		case clients.ExternalSourceSportRadar:
			if override.APIKey == "" || override.SeasonID == "" {
				log.Info().Str("source", string(sc.Source)).Msg("no API key or season, skipping source")
				continue
			}
			c := sport_radar_client.NewSportRadarClient(override.BaseURL, override.APIKey)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewSportRadarSource(c, override.SeasonID, sc, b.norm))
		default:
			log.Warn().Str("source", string(sc.Source)).Msg("no standings adapter for source")
		}
	}
	return out
}

func (b sourceBuilder) articles(ordered []clients.ExternalSourceConfig) []sources.ArticleSource {
	var out []sources.ArticleSource
	for _, sc := range ordered {
		override := b.config.override(sc.Source)

		switch sc.Source {
		case clients.ExternalSourceClubFeed:
			c := club_feed_client.NewClubFeedClient(override.BaseURL)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewClubFeedSource(c, sc, b.norm))
		case clients.ExternalSourceALeaguesNews:
			c := aleague_client.NewALeagueClient(override.BaseURL)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewALeagueNewsSource(c, sc, b.norm))
		case clients.ExternalSourceRedditNews:
			c := reddit_client.NewRedditClient(override.BaseURL)
			b.prepare(c.BaseClient)
			out = append(out, sources.NewRedditNewsSource(c, sc, b.norm))
		default:
			log.Warn().Str("source", string(sc.Source)).Msg("no news adapter for source")
		}
	}
	return out
}
