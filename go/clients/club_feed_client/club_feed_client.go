package club_feed_client

import (
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/purplehaze/glorynews/go/clients"
)

// ClubFeedClient reads the club's RSS/Atom news feed. Fetching goes through the
// base client so the feed shares rate limiting and retry with the scrapers.
type ClubFeedClient struct {
	*clients.BaseClient
	parser *gofeed.Parser
}

func NewClubFeedClient(baseURL string) *ClubFeedClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	client := &ClubFeedClient{
		BaseClient: clients.NewBaseClient(baseURL),
		parser:     gofeed.NewParser(),
	}

	client.SetHeader("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9")

	return client
}

// GetFeed downloads and parses the news feed
func (c *ClubFeedClient) GetFeed(ctx context.Context) (*gofeed.Feed, error) {
	body, err := c.Get(ctx, FeedEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	feed, err := c.parser.ParseString(string(body))
	if err != nil {
		return nil, clients.ParseError.New("failed to parse feed: %v", err)
	}
	return feed, nil
}
