package news

import (
	"time"

	"github.com/purplehaze/glorynews/go/internal/models"
)

// FallbackMessage is shown when no source produced articles
const FallbackMessage = "Live news is unavailable right now. Showing featured stories instead."

// FallbackSource tags articles that did not come from a live source
const FallbackSource = "glorynews"

var fallbackArticles = []models.Article{
	{
		ID:          "fallback-welcome",
		Title:       "Welcome to Glory News",
		Content:     "Glory News collects the latest Perth Glory stories from the club, the league and the fan community in one place. Live feeds will return shortly.",
		PublishedAt: time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		URL:         "https://glorynews.com.au/about",
		Source:      FallbackSource,
		Categories:  []string{"Site News"},
		Tags:        []string{"site-news"},
		Metadata:    models.ArticleMetadata{WordCount: 24, ReadingTime: 1, Provenance: models.ProvenanceOfficial, Priority: 1},
	},
	{
		ID:          "fallback-ladder",
		Title:       "Where the Glory sit on the A-League ladder",
		Content:     "Follow the full A-League Men ladder, updated through the season from official and community sources.",
		PublishedAt: time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
		URL:         "https://glorynews.com.au/ladder",
		Source:      FallbackSource,
		Categories:  []string{"Ladder"},
		Tags:        []string{"ladder"},
		Metadata:    models.ArticleMetadata{WordCount: 16, ReadingTime: 1, Provenance: models.ProvenanceOfficial, Priority: 1},
	},
	{
		ID:          "fallback-club",
		Title:       "Perth Glory official site",
		Content:     "Fixtures, tickets, memberships and club announcements are available on the official Perth Glory website.",
		PublishedAt: time.Date(2025, time.June, 29, 0, 0, 0, 0, time.UTC),
		URL:         "https://www.perthglory.com.au",
		Source:      FallbackSource,
		Categories:  []string{"Club"},
		Tags:        []string{"club"},
		Metadata:    models.ArticleMetadata{WordCount: 14, ReadingTime: 1, Provenance: models.ProvenanceOfficial, Priority: 1},
	},
}

// FallbackFeed returns the fixed articles served when every source is empty
func FallbackFeed(limit int) *models.ArticleFeed {
	articles := append([]models.Article(nil), fallbackArticles...)
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return &models.ArticleFeed{Articles: articles, Fallback: true, Message: FallbackMessage}
}

func fallbackArticle(id string) *models.Article {
	for _, a := range fallbackArticles {
		if a.ID == id {
			out := a
			return &out
		}
	}
	return nil
}
