package sources

import (
	"context"
	"html"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/purplehaze/glorynews/go/clients"
	"github.com/purplehaze/glorynews/go/clients/aleague_client"
	"github.com/purplehaze/glorynews/go/clients/club_feed_client"
	"github.com/purplehaze/glorynews/go/clients/reddit_client"
	"github.com/purplehaze/glorynews/go/internal/models"
)

// WordsPerMinute drives the reading time estimate
const WordsPerMinute = 200

// ArticleID derives a stable identifier from an article's canonical URL
func ArticleID(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

// PlainText strips markup from article content
func PlainText(content string) string {
	if !strings.Contains(content, "<") {
		return strings.Join(strings.Fields(html.UnescapeString(content)), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// ReadingStats returns the word count and reading time in whole minutes (at least one)
func ReadingStats(content string) (words, minutes int) {
	words = len(strings.Fields(PlainText(content)))
	minutes = int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		minutes = 1
	}
	return words, minutes
}

func newArticle(a models.Article, provenance string, priority int) models.Article {
	if a.ID == "" {
		a.ID = ArticleID(a.URL)
	}
	words, minutes := ReadingStats(a.Content)
	a.Metadata.WordCount = words
	a.Metadata.ReadingTime = minutes
	a.Metadata.Provenance = provenance
	a.Metadata.Priority = priority
	if len(a.Tags) == 0 {
		a.Tags = tagsFor(a.Categories)
	}
	return a
}

func tagsFor(categories []string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, c := range categories {
		t := Slugify(c)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	return tags
}

func isSponsored(labels ...string) bool {
	for _, l := range labels {
		l = strings.ToLower(l)
		if strings.Contains(l, "sponsor") || strings.Contains(l, "partner") || strings.Contains(l, "promoted") {
			return true
		}
	}
	return false
}

// ClubFeedSource turns the club's RSS feed into official articles
type ClubFeedSource struct {
	info   Info
	client *club_feed_client.ClubFeedClient
	norm   *Normalizer
}

func NewClubFeedSource(client *club_feed_client.ClubFeedClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *ClubFeedSource {
	return &ClubFeedSource{info: InfoFromConfig(cfg), client: client, norm: norm}
}

func (s *ClubFeedSource) Info() Info { return s.info }

func (s *ClubFeedSource) Fetch(ctx context.Context) []models.Article {
	feed, err := s.client.GetFeed(ctx)
	if err != nil {
		logFailure(s.info, err)
		return nil
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		articles = append(articles, s.fromItem(item))
	}
	return articles
}

func (s *ClubFeedSource) fromItem(item *gofeed.Item) models.Article {
	content := item.Content
	if content == "" {
		content = item.Description
	}

	published := s.norm.now()
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	a := models.Article{
		Title:       strings.TrimSpace(item.Title),
		Content:     content,
		PublishedAt: published.UTC(),
		URL:         item.Link,
		Source:      s.info.Key,
		Categories:  item.Categories,
	}
	if item.Author != nil {
		a.Author = item.Author.Name
	}
	if item.Image != nil {
		a.Images.Featured = item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if !strings.HasPrefix(enc.Type, "image/") || enc.URL == a.Images.Featured {
			continue
		}
		if a.Images.Featured == "" {
			a.Images.Featured = enc.URL
			continue
		}
		a.Images.Gallery = append(a.Images.Gallery, enc.URL)
	}
	a.Metadata.Sponsored = isSponsored(item.Categories...)

	return newArticle(a, models.ProvenanceOfficial, 1)
}

// publishedLayouts covers the date formats seen on league news cards
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ALeagueNewsSource scrapes partner articles from the league news listing
type ALeagueNewsSource struct {
	info   Info
	client *aleague_client.ALeagueClient
	norm   *Normalizer
}

func NewALeagueNewsSource(client *aleague_client.ALeagueClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *ALeagueNewsSource {
	return &ALeagueNewsSource{info: InfoFromConfig(cfg), client: client, norm: norm}
}

func (s *ALeagueNewsSource) Info() Info { return s.info }

func (s *ALeagueNewsSource) Fetch(ctx context.Context) []models.Article {
	items, err := s.client.GetNews(ctx)
	if err != nil {
		logFailure(s.info, err)
		return nil
	}

	articles := make([]models.Article, 0, len(items))
	for _, item := range items {
		a := models.Article{
			Title:       item.Title,
			Content:     item.Summary,
			PublishedAt: s.parsePublished(item.Published),
			URL:         item.URL,
			Author:      item.Author,
			Source:      s.info.Key,
			Images:      models.ImageSet{Featured: item.Image},
		}
		if item.Category != "" {
			a.Categories = []string{item.Category}
		}
		a.Metadata.Sponsored = item.Sponsored || isSponsored(item.Category)
		articles = append(articles, newArticle(a, models.ProvenancePartner, 2))
	}
	return articles
}

func (s *ALeagueNewsSource) parsePublished(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return s.norm.now().UTC()
}

// RedditNewsSource turns the subreddit front page into social articles
type RedditNewsSource struct {
	info   Info
	client *reddit_client.RedditClient
	norm   *Normalizer
}

func NewRedditNewsSource(client *reddit_client.RedditClient, cfg clients.ExternalSourceConfig, norm *Normalizer) *RedditNewsSource {
	return &RedditNewsSource{info: InfoFromConfig(cfg), client: client, norm: norm}
}

func (s *RedditNewsSource) Info() Info { return s.info }

func (s *RedditNewsSource) Fetch(ctx context.Context) []models.Article {
	posts, err := s.client.GetHotPosts(ctx)
	if err != nil {
		logFailure(s.info, err)
		return nil
	}

	articles := make([]models.Article, 0, len(posts))
	for _, p := range posts {
		if p.Promoted || p.Title == "" || p.Permalink == "" {
			continue
		}
		a := models.Article{
			Title:       html.UnescapeString(p.Title),
			Content:     html.UnescapeString(p.SelfText),
			PublishedAt: time.Unix(int64(p.CreatedUTC), 0).UTC(),
			URL:         strings.TrimRight(s.client.BaseURL(), "/") + p.Permalink,
			Author:      p.Author,
			Source:      s.info.Key,
			Images:      redditImages(p),
		}
		if p.Flair != "" {
			a.Categories = []string{p.Flair}
		}
		a.Metadata.Engagement = &models.Engagement{Likes: p.Score, Comments: p.NumComments}
		articles = append(articles, newArticle(a, models.ProvenanceSocial, 3))
	}
	return articles
}

func redditImages(p reddit_client.Post) models.ImageSet {
	var set models.ImageSet
	if p.Preview != nil && len(p.Preview.Images) > 0 {
		img := p.Preview.Images[0]
		set.Featured = html.UnescapeString(img.Source.URL)
		if len(img.Resolutions) > 0 {
			set.Sizes = make(map[string]string, len(img.Resolutions))
			res := append([]reddit_client.ImageSource(nil), img.Resolutions...)
			sort.Slice(res, func(i, j int) bool { return res[i].Width < res[j].Width })
			for _, r := range res {
				set.Sizes[sizeLabel(r.Width)] = html.UnescapeString(r.URL)
			}
		}
	}
	if set.Featured == "" && strings.HasPrefix(p.Thumbnail, "http") {
		set.Featured = p.Thumbnail
	}
	return set
}

func sizeLabel(width int) string {
	switch {
	case width <= 216:
		return "thumbnail"
	case width <= 640:
		return "medium"
	default:
		return "large"
	}
}
