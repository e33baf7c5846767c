package news

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purplehaze/glorynews/go/internal/cache"
	"github.com/purplehaze/glorynews/go/internal/events"
	"github.com/purplehaze/glorynews/go/internal/models"
	"github.com/purplehaze/glorynews/go/internal/sources"
)

var testNow = time.Date(2025, time.November, 2, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	key      string
	articles []models.Article
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeSource) Info() sources.Info {
	return sources.Info{Key: f.key, Name: f.key + ".example"}
}

func (f *fakeSource) Fetch(ctx context.Context) []models.Article {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil
		}
	}
	return f.articles
}

func article(id string, hoursAgo int) models.Article {
	return models.Article{
		ID:          id,
		Title:       "Story " + id,
		PublishedAt: testNow.Add(-time.Duration(hoursAgo) * time.Hour),
		URL:         "https://news.example/" + id,
		Source:      "test",
	}
}

func newCache(t *testing.T) (*cache.Tiered, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	clock := clockwork.NewFakeClockAt(testNow)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	local := cache.NewLocalWithClock(5*time.Minute, clock)
	shared := cache.NewRedis(client, "", 15*time.Minute, clock)
	return cache.NewTiered(local, shared, clock), mr
}

func ids(articles []models.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestFetchArticles_MergesSortsAndDedupes(t *testing.T) {
	c, _ := newCache(t)
	club := &fakeSource{key: "club", articles: []models.Article{article("a", 5), article("b", 1)}}
	social := &fakeSource{key: "social", articles: []models.Article{article("c", 3), article("b", 1)}}

	app := NewApp(c, []sources.ArticleSource{club, social}, DefaultConfig(), nil, nil)
	feed := app.FetchArticles(context.Background(), Query{})

	assert.False(t, feed.Fallback)
	assert.Equal(t, []string{"b", "c", "a"}, ids(feed.Articles))
}

func TestFetchArticles_Limit(t *testing.T) {
	c, _ := newCache(t)
	src := &fakeSource{key: "club", articles: []models.Article{article("a", 1), article("b", 2), article("c", 3)}}
	app := NewApp(c, []sources.ArticleSource{src}, DefaultConfig(), nil, nil)

	feed := app.FetchArticles(context.Background(), Query{Limit: 2})
	assert.Equal(t, []string{"a", "b"}, ids(feed.Articles))
}

func TestFetchArticles_SourceFilter(t *testing.T) {
	c, _ := newCache(t)
	club := &fakeSource{key: "club", articles: []models.Article{article("a", 1)}}
	social := &fakeSource{key: "social", articles: []models.Article{article("b", 1)}}
	app := NewApp(c, []sources.ArticleSource{club, social}, DefaultConfig(), nil, nil)

	feed := app.FetchArticles(context.Background(), Query{SourceID: "social"})
	assert.Equal(t, []string{"b"}, ids(feed.Articles))
	assert.Zero(t, club.calls.Load())

	unknown := app.FetchArticles(context.Background(), Query{SourceID: "nope"})
	assert.True(t, unknown.Fallback)
}

func TestFetchArticles_CachedPerSource(t *testing.T) {
	c, _ := newCache(t)
	club := &fakeSource{key: "club", articles: []models.Article{article("a", 1)}}
	social := &fakeSource{key: "social"}
	app := NewApp(c, []sources.ArticleSource{club, social}, DefaultConfig(), nil, nil)

	first := app.FetchArticles(context.Background(), Query{})
	second := app.FetchArticles(context.Background(), Query{})

	assert.Equal(t, ids(first.Articles), ids(second.Articles))
	assert.EqualValues(t, 1, club.calls.Load())
	// empty results are not cached, so the empty source is asked again
	assert.EqualValues(t, 2, social.calls.Load())
}

func TestFetchArticles_ForceRefresh(t *testing.T) {
	c, _ := newCache(t)
	club := &fakeSource{key: "club", articles: []models.Article{article("a", 1)}}
	bus := events.NewLocalBus()
	app := NewApp(c, []sources.ArticleSource{club}, DefaultConfig(), bus, nil)

	var announced atomic.Int32
	bus.OnArticles(func([]models.Article) { announced.Add(1) })

	app.FetchArticles(context.Background(), Query{})
	club.articles = []models.Article{article("z", 0)}
	feed := app.FetchArticles(context.Background(), Query{ForceRefresh: true})

	assert.Equal(t, []string{"z"}, ids(feed.Articles))
	assert.EqualValues(t, 2, club.calls.Load())
	assert.EqualValues(t, 2, announced.Load())
}

func TestFetchArticles_Fallback(t *testing.T) {
	c, _ := newCache(t)
	app := NewApp(c, []sources.ArticleSource{&fakeSource{key: "club"}}, DefaultConfig(), nil, nil)

	feed := app.FetchArticles(context.Background(), Query{})
	require.True(t, feed.Fallback)
	assert.Equal(t, FallbackMessage, feed.Message)
	assert.NotEmpty(t, feed.Articles)
}

func TestFetchArticles_SlowSourceTimesOut(t *testing.T) {
	c, _ := newCache(t)
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	fast := &fakeSource{key: "fast", articles: []models.Article{article("a", 1)}}
	slow := &fakeSource{key: "slow", articles: []models.Article{article("b", 1)}, delay: time.Second}
	app := NewApp(c, []sources.ArticleSource{fast, slow}, cfg, nil, nil)

	feed := app.FetchArticles(context.Background(), Query{})
	assert.Equal(t, []string{"a"}, ids(feed.Articles))
}

func TestGetArticleByID(t *testing.T) {
	c, mr := newCache(t)
	club := &fakeSource{key: "club", articles: []models.Article{article("a", 1), article("b", 2)}}
	app := NewApp(c, []sources.ArticleSource{club}, DefaultConfig(), nil, nil)

	got := app.GetArticleByID(context.Background(), "b")
	require.NotNil(t, got)
	assert.Equal(t, "Story b", got.Title)
	assert.True(t, mr.Exists(cache.ArticleKey("b")))

	again := app.GetArticleByID(context.Background(), "a")
	require.NotNil(t, again)
	assert.EqualValues(t, 1, club.calls.Load())

	assert.Nil(t, app.GetArticleByID(context.Background(), "missing"))
	assert.NotNil(t, app.GetArticleByID(context.Background(), "fallback-welcome"))
}

func TestMerge(t *testing.T) {
	lists := [][]models.Article{
		{article("x", 2), {Title: "no id"}},
		{article("y", 2), article("x", 9)},
	}
	merged := Merge(lists, 0)
	assert.Equal(t, []string{"x", "y"}, ids(merged))
	assert.Equal(t, testNow.Add(-2*time.Hour), merged[0].PublishedAt)
	assert.Empty(t, Merge(nil, 5))
}
