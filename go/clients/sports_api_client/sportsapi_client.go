package sports_api_client

import (
	"github.com/purplehaze/glorynews/go/clients"
)

type SportsApiClient struct {
	*clients.BaseClient
}

func NewSportsApiClient(baseURL, apiKey string) *SportsApiClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	client := &SportsApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader(RapidAPIKeyHeader, apiKey)
	client.SetHeader(RapidAPIHostHeader, RapidAPIHost)

	return client
}
