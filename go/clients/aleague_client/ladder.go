package aleague_client

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/purplehaze/glorynews/go/clients"
)

// GetLadder scrapes the men's ladder table
func (c *ALeagueClient) GetLadder(ctx context.Context) ([]clients.TableRow, error) {
	body, err := c.Get(ctx, LadderEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get ladder: %w", err)
	}

	doc, err := clients.NewDocument(body)
	if err != nil {
		return nil, err
	}

	table := findLadderTable(doc)
	if table == nil {
		return nil, clients.ParseError.New("ladder table not found")
	}

	rows := clients.ParseTable(table)
	if len(rows) == 0 {
		return nil, clients.ParseError.New("ladder table has no rows")
	}
	return rows, nil
}

// findLadderTable prefers the known selectors and otherwise picks the first table
// whose header mentions points.
func findLadderTable(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find(ladderTableSelector).First(); sel.Length() > 0 {
		return sel
	}
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		header := strings.ToLower(t.Find("th").Text())
		if strings.Contains(header, "pts") || strings.Contains(header, "points") {
			found = t
			return false
		}
		return true
	})
	return found
}
