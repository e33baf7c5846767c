package club_feed_client

const (
	// Base URL
	BaseURL = "https://www.perthglory.com.au"

	// Paths
	FeedEndpoint = "/news/rss"
)
