package espn_client

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/purplehaze/glorynews/go/clients"
)

// GetStandings scrapes the standings page and zips the team column with the stats table
func (c *ESPNClient) GetStandings(ctx context.Context) ([]clients.TableRow, error) {
	body, err := c.Get(ctx, StandingsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	doc, err := clients.NewDocument(body)
	if err != nil {
		return nil, err
	}

	teams := doc.Find(teamTableSelector)
	stats := doc.Find(statsTableSelector).First()
	if teams.Length() == 0 || stats.Length() == 0 {
		return nil, clients.ParseError.New("standings tables not found")
	}

	headers := clients.HeaderText(stats.Find("thead th"))
	for i, h := range headers {
		if alias, ok := headerAliases[h]; ok {
			headers[i] = alias
		}
	}

	statRows := clients.ParseRows(stats.Find("tbody tr"), headers)
	if len(statRows) != teams.Length() {
		return nil, clients.ParseError.New("team column has %d rows but stats table has %d", teams.Length(), len(statRows))
	}

	rows := make([]clients.TableRow, 0, len(statRows))
	teams.Each(func(i int, tr *goquery.Selection) {
		row := statRows[i]
		row.Headers = append([]string{"pos", "team"}, row.Headers...)
		row.Cells["team"] = teamCell(tr)
		row.Cells["pos"] = clients.Cell{Text: strings.TrimSpace(tr.Find(".team-position").First().Text())}
		row.Text = strings.Join(strings.Fields(tr.Text()), " ") + " " + row.Text
		rows = append(rows, row)
	})
	return rows, nil
}

func teamCell(tr *goquery.Selection) clients.Cell {
	name := strings.TrimSpace(tr.Find(".hide-mobile a").First().Text())
	if name == "" {
		name = strings.TrimSpace(tr.Find("a").Last().Text())
	}
	cell := clients.Cell{Text: name}
	if href, ok := tr.Find("a").First().Attr("href"); ok {
		cell.Href = href
	}
	if src, ok := tr.Find("img").First().Attr("src"); ok {
		cell.Image = src
	}
	return cell
}
