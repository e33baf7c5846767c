package aleague_client

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/purplehaze/glorynews/go/clients"
)

// NewsItem is a card from the league news listing
type NewsItem struct {
	Title     string
	URL       string
	Summary   string
	Published string // raw datetime attribute or visible date text
	Image     string
	Category  string
	Author    string
	Sponsored bool
}

// GetNews scrapes the news listing page
func (c *ALeagueClient) GetNews(ctx context.Context) ([]NewsItem, error) {
	body, err := c.Get(ctx, NewsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get news: %w", err)
	}

	doc, err := clients.NewDocument(body)
	if err != nil {
		return nil, err
	}

	var items []NewsItem
	doc.Find(newsCardSelector).Each(func(_ int, card *goquery.Selection) {
		item := readNewsCard(card, c.BaseURL())
		if item.Title == "" || item.URL == "" {
			return
		}
		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, clients.ParseError.New("no news cards found")
	}
	return items, nil
}

func readNewsCard(card *goquery.Selection, base string) NewsItem {
	item := NewsItem{
		Title:    firstText(card, ".article-card__title", "h3", "h2", "a"),
		Summary:  firstText(card, ".article-card__summary", "p"),
		Category: firstText(card, ".article-card__tag", ".category"),
		Author:   firstText(card, ".article-card__author", ".author"),
	}

	if href, ok := card.Find("a").First().Attr("href"); ok {
		item.URL = absolute(base, href)
	}

	timeEl := card.Find("time").First()
	if dt, ok := timeEl.Attr("datetime"); ok {
		item.Published = dt
	} else {
		item.Published = strings.TrimSpace(timeEl.Text())
	}

	img := card.Find("img").First()
	if src, ok := img.Attr("src"); ok && src != "" {
		item.Image = absolute(base, src)
	} else if src, ok := img.Attr("data-src"); ok {
		item.Image = absolute(base, src)
	}

	class, _ := card.Attr("class")
	item.Sponsored = strings.Contains(class, "sponsored") ||
		card.Find(".sponsored, .partner-content").Length() > 0

	return item
}

func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if text := strings.TrimSpace(sel.Find(s).First().Text()); text != "" {
			return strings.Join(strings.Fields(text), " ")
		}
	}
	return ""
}

func absolute(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}
