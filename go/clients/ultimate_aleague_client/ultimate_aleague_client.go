package ultimate_aleague_client

import (
	"context"
	"fmt"

	"github.com/purplehaze/glorynews/go/clients"
)

type UltimateALeagueClient struct {
	*clients.BaseClient
}

func NewUltimateALeagueClient(baseURL string) *UltimateALeagueClient {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &UltimateALeagueClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}

// GetLadder scrapes the current season ladder
func (c *UltimateALeagueClient) GetLadder(ctx context.Context) ([]clients.TableRow, error) {
	body, err := c.Get(ctx, LadderEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get ladder: %w", err)
	}

	doc, err := clients.NewDocument(body)
	if err != nil {
		return nil, err
	}

	table := doc.Find(ladderSelector).First()
	if table.Length() == 0 {
		return nil, clients.ParseError.New("ladder table not found")
	}

	rows := clients.ParseTable(table)
	if len(rows) == 0 {
		return nil, clients.ParseError.New("ladder table has no rows")
	}
	return rows, nil
}
