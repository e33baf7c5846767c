package espn_client

import (
	"github.com/purplehaze/glorynews/go/clients"
)

type ESPNClient struct {
	*clients.BaseClient
}

func NewESPNClient(baseURL string) *ESPNClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	client := &ESPNClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader("Accept", "text/html")
	client.SetHeader("Accept-Language", "en-AU,en;q=0.9")

	return client
}
