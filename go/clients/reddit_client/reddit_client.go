package reddit_client

import (
	"github.com/purplehaze/glorynews/go/clients"
)

type RedditClient struct {
	*clients.BaseClient
}

func NewRedditClient(baseURL string) *RedditClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	client := &RedditClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	// reddit rejects generic agents; the base client already sends a descriptive one
	client.SetHeader("Accept", "application/json")

	return client
}
