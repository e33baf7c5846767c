package models

import "time"

// Provenance classes for articles
const (
	ProvenanceOfficial = "official"
	ProvenanceSocial   = "social"
	ProvenancePartner  = "partner"
)

// ImageSet holds the artwork attached to an article
type ImageSet struct {
	Featured string            `json:"featured,omitempty"`
	Gallery  []string          `json:"gallery,omitempty"`
	Sizes    map[string]string `json:"sizes,omitempty"`
}

// Engagement counters reported by social sources
type Engagement struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}

// ArticleMetadata carries derived and provenance information for an article
type ArticleMetadata struct {
	WordCount   int         `json:"word_count"`
	ReadingTime int         `json:"reading_time"` // minutes
	Sponsored   bool        `json:"sponsored"`
	Provenance  string      `json:"provenance"`
	Priority    int         `json:"priority"` // 1 (highest) to 3
	Engagement  *Engagement `json:"engagement,omitempty"`
}

// Article represents a single news item. Values are never mutated after creation.
type Article struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	PublishedAt time.Time       `json:"published_at"`
	URL         string          `json:"url"`
	Author      string          `json:"author,omitempty"`
	Source      string          `json:"source"`
	Images      ImageSet        `json:"images"`
	Categories  []string        `json:"categories,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Metadata    ArticleMetadata `json:"metadata"`
}

// ArticleFeed is what the news orchestrator hands back to callers
type ArticleFeed struct {
	Articles []Article `json:"articles"`
	Fallback bool      `json:"fallback"`
	Message  string    `json:"message,omitempty"`
}
