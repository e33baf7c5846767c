package reddit_client

const (
	// Base URL
	BaseURL = "https://www.reddit.com"

	// Paths
	Subreddit       = "Aleague"
	SearchEndpoint  = "/r/" + Subreddit + "/search.json"
	HotEndpoint     = "/r/" + Subreddit + "/hot.json"
	DefaultPageSize = 25

	// Queries that surface ladder tables in match threads and weekly discussions
	LadderQuery = "ladder OR standings OR table"
)
