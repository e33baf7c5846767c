package news

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/purplehaze/glorynews/go/internal/cache"
	"github.com/purplehaze/glorynews/go/internal/events"
	"github.com/purplehaze/glorynews/go/internal/metrics"
	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

// Config holds news orchestration settings
type Config struct {
	Timeout        time.Duration `yaml:"timeout"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	DefaultLimit   int           `yaml:"default_limit"`
}

// DefaultConfig returns default news settings
func DefaultConfig() Config {
	return Config{
		Timeout:        8 * time.Second,
		RefreshTimeout: 10 * time.Second,
		CacheTTL:       10 * time.Minute,
		DefaultLimit:   20,
	}
}

// Query selects articles
type Query struct {
	SourceID     string // empty means every source
	Limit        int    // zero means Config.DefaultLimit, negative means no limit
	ForceRefresh bool
}

// App gathers articles from every news source
type App struct {
	cache   *cache.Tiered
	sources []sources.ArticleSource
	events  events.Publisher
	metrics metrics.MetricsCollector
	config  Config
}

// NewApp creates a new news App
func NewApp(c *cache.Tiered, srcs []sources.ArticleSource, config Config, publisher events.Publisher, m metrics.MetricsCollector) *App {
	if m == nil {
		m = &metrics.NoOpMetricsCollector{}
	}
	return &App{cache: c, sources: srcs, events: publisher, metrics: m, config: config}
}

// FetchArticles never fails. Each source is served from its cache entry when
// present; the rest are fetched concurrently. Results are merged, de-duplicated
// by ID, sorted newest first and truncated. An empty result yields the fallback feed.
func (a *App) FetchArticles(ctx context.Context, q Query) *models.ArticleFeed {
	limit := q.Limit
	if limit == 0 {
		limit = a.config.DefaultLimit
	}

	selected := a.selectSources(q.SourceID)
	if len(selected) == 0 {
		log.Warn().Str("source", q.SourceID).Msg("unknown news source")
		a.metrics.RecordFallback("news", "unknown_source")
		return FallbackFeed(limit)
	}

	timeout := a.config.Timeout
	if q.ForceRefresh {
		timeout = a.config.RefreshTimeout
		a.invalidate(ctx, selected)
	}

	var (
		collected [][]models.Article
		misses    []sources.ArticleSource
	)
	for _, src := range selected {
		if !q.ForceRefresh {
			if cached, ok := a.cachedSource(ctx, src.Info().Key); ok {
				collected = append(collected, cached)
				continue
			}
		}
		misses = append(misses, src)
	}

	if len(misses) > 0 {
		runner := sources.Runner{
			Timeout: timeout,
			Observe: func(info sources.Info, items int, elapsed time.Duration) {
				a.metrics.RecordSourceFetch(info.Key, items, elapsed)
			},
		}
		var fresh []models.Article
		for _, out := range sources.Run(ctx, runner, sources.ParallelGather, misses, nil) {
			if len(out.Items) == 0 {
				continue
			}
			a.store(ctx, out.Info.Key, out.Items)
			collected = append(collected, out.Items)
			fresh = append(fresh, out.Items...)
		}
		a.publish(ctx, fresh)
	}

	articles := Merge(collected, limit)
	if len(articles) == 0 {
		a.metrics.RecordFallback("news", "sources_empty")
		log.Warn().Str("source", q.SourceID).Msg("no articles from any source, serving fallback")
		return FallbackFeed(limit)
	}
	return &models.ArticleFeed{Articles: articles}
}

// GetArticleByID returns nil when the article is unknown
func (a *App) GetArticleByID(ctx context.Context, id string) *models.Article {
	if article, _, ok := cache.LookupJSON(ctx, a.cache, cache.ArticleKey(id), func(a models.Article) bool {
		return a.ID != ""
	}); ok {
		return &article
	}

	feed := a.FetchArticles(ctx, Query{Limit: -1})
	for _, article := range feed.Articles {
		if article.ID == id {
			out := article
			return &out
		}
	}
	return fallbackArticle(id)
}

// Merge concatenates per-source lists, keeps the first article seen for each ID,
// sorts newest first and applies limit (limit <= 0 keeps everything)
func Merge(lists [][]models.Article, limit int) []models.Article {
	seen := make(map[string]bool)
	var merged []models.Article
	for _, list := range lists {
		for _, article := range list {
			if article.ID == "" || seen[article.ID] {
				continue
			}
			seen[article.ID] = true
			merged = append(merged, article)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (a *App) selectSources(id string) []sources.ArticleSource {
	if id == "" {
		return a.sources
	}
	for _, src := range a.sources {
		if src.Info().Key == id {
			return []sources.ArticleSource{src}
		}
	}
	return nil
}

func (a *App) cachedSource(ctx context.Context, key string) ([]models.Article, bool) {
	articles, tier, ok := cache.LookupJSON(ctx, a.cache, cache.ArticlesKey(key), func(list []models.Article) bool {
		return len(list) > 0
	})
	if ok {
		log.Debug().Str("source", key).Str("tier", string(tier)).Int("articles", len(articles)).Msg("articles served from cache")
	}
	return articles, ok
}

func (a *App) store(ctx context.Context, key string, articles []models.Article) {
	if err := a.cache.SetJSON(ctx, cache.ArticlesKey(key), articles, a.config.CacheTTL); err != nil {
		log.Warn().Err(err).Str("source", key).Msg("failed to cache articles")
	}
	for _, article := range articles {
		if err := a.cache.SetJSON(ctx, cache.ArticleKey(article.ID), article, a.config.CacheTTL); err != nil {
			log.Warn().Err(err).Str("article_id", article.ID).Msg("failed to cache article")
		}
	}
}

func (a *App) invalidate(ctx context.Context, selected []sources.ArticleSource) {
	keys := make([]string, 0, len(selected))
	for _, src := range selected {
		keys = append(keys, cache.ArticlesKey(src.Info().Key))
	}
	if err := a.cache.Invalidate(ctx, keys...); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate article cache")
	}
	if a.events != nil {
		if err := a.events.PublishInvalidation(ctx, keys...); err != nil {
			log.Warn().Err(err).Msg("failed to publish article invalidation")
		}
	}
}

func (a *App) publish(ctx context.Context, fresh []models.Article) {
	if a.events == nil || len(fresh) == 0 {
		return
	}
	if err := a.events.PublishArticles(ctx, Merge([][]models.Article{fresh}, a.config.DefaultLimit)); err != nil {
		log.Warn().Err(err).Msg("failed to publish articles")
	}
}
