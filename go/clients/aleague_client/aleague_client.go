package aleague_client

import (
	"github.com/purplehaze/glorynews/go/clients"
)

type ALeagueClient struct {
	*clients.BaseClient
}

func NewALeagueClient(baseURL string) *ALeagueClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	client := &ALeagueClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader("Accept", "text/html,application/xhtml+xml")

	return client
}
