package reddit_client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type ImageSource struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type PreviewImage struct {
	Source      ImageSource   `json:"source"`
	Resolutions []ImageSource `json:"resolutions"`
}

type Preview struct {
	Images []PreviewImage `json:"images"`
}

type Post struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	SelfText    string   `json:"selftext"`
	Author      string   `json:"author"`
	Permalink   string   `json:"permalink"`
	URL         string   `json:"url"`
	CreatedUTC  float64  `json:"created_utc"`
	Score       int      `json:"score"`
	Ups         int      `json:"ups"`
	NumComments int      `json:"num_comments"`
	Thumbnail   string   `json:"thumbnail"`
	Flair       string   `json:"link_flair_text"`
	Stickied    bool     `json:"stickied"`
	Promoted    bool     `json:"promoted"`
	Preview     *Preview `json:"preview,omitempty"`
}

type child struct {
	Kind string `json:"kind"`
	Data Post   `json:"data"`
}

type ListingResponse struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []child `json:"children"`
	} `json:"data"`
}

func (r ListingResponse) Posts() []Post {
	posts := make([]Post, 0, len(r.Data.Children))
	for _, c := range r.Data.Children {
		posts = append(posts, c.Data)
	}
	return posts
}

// SearchLadderPosts returns the newest posts likely to contain a ladder table
func (c *RedditClient) SearchLadderPosts(ctx context.Context) ([]Post, error) {
	q := url.Values{}
	q.Set("q", LadderQuery)
	q.Set("restrict_sr", "1")
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(DefaultPageSize))

	var response ListingResponse
	if err := c.GetJSON(ctx, SearchEndpoint+"?"+q.Encode(), &response); err != nil {
		return nil, fmt.Errorf("failed to search ladder posts: %w", err)
	}
	return response.Posts(), nil
}

// GetHotPosts returns the current front page of the subreddit
func (c *RedditClient) GetHotPosts(ctx context.Context) ([]Post, error) {
	endpoint := fmt.Sprintf("%s?limit=%d", HotEndpoint, DefaultPageSize)

	var response ListingResponse
	if err := c.GetJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to get hot posts: %w", err)
	}
	return response.Posts(), nil
}
