package sport_radar_client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/purplehaze/glorynews/go/clients"
)

type SportRadarClient struct {
	*clients.BaseClient
	apiKey string
}

func NewSportRadarClient(baseURL, apiKey string) *SportRadarClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	client := &SportRadarClient{
		BaseClient: clients.NewBaseClient(baseURL),
		apiKey:     apiKey,
	}

	client.SetHeader(JsonHeader, JsonContentType)

	return client
}

// Get overrides the base Get method to add API key query parameter
func (c *SportRadarClient) Get(ctx context.Context, endpoint string) ([]byte, error) {
	// Add API key as query parameter
	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	endpointWithKey := fmt.Sprintf("%s%s%s=%s", endpoint, separator, APIKeyParam, url.QueryEscape(c.apiKey))

	return c.BaseClient.Get(ctx, endpointWithKey)
}
