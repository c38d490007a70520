// Package twitter queries the third-party Twitter data API used to verify engagement tasks.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yukikurage/points-api/internal/config"
)

// Client pages through twitterapi.io style endpoints keyed by cursor.
type Client struct {
	baseURL  string
	apiKey   string
	maxPages int
	http     *http.Client
}

func New(cfg config.TwitterConfig) *Client {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		maxPages: maxPages,
		http:     &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type account struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
}

type tweet struct {
	ID     string  `json:"id"`
	Author account `json:"author"`
}

type page struct {
	Tweets      []tweet   `json:"tweets"`
	Users       []account `json:"users"`
	Followings  []account `json:"followings"`
	HasNextPage bool      `json:"has_next_page"`
	NextCursor  string    `json:"next_cursor"`
}

// HasReplied reports whether username authored a reply to tweetID.
func (c *Client) HasReplied(ctx context.Context, tweetID, username string) (bool, error) {
	return c.scan(ctx, "/twitter/tweet/replies", url.Values{"tweetId": {tweetID}}, func(p *page) bool {
		return containsAuthor(p.Tweets, username)
	})
}

// HasRetweeted reports whether username is among the retweeters of tweetID.
func (c *Client) HasRetweeted(ctx context.Context, tweetID, username string) (bool, error) {
	return c.scan(ctx, "/twitter/tweet/retweeters", url.Values{"tweetId": {tweetID}}, func(p *page) bool {
		return containsUser(p.Users, username)
	})
}

// HasQuoted reports whether username quoted tweetID.
func (c *Client) HasQuoted(ctx context.Context, tweetID, username string) (bool, error) {
	return c.scan(ctx, "/twitter/tweet/quotes", url.Values{"tweetId": {tweetID}}, func(p *page) bool {
		return containsAuthor(p.Tweets, username)
	})
}

// Follows reports whether username follows target.
func (c *Client) Follows(ctx context.Context, username, target string) (bool, error) {
	return c.scan(ctx, "/twitter/user/followings", url.Values{"userName": {username}}, func(p *page) bool {
		return containsUser(p.Followings, target)
	})
}

// scan walks pages until match returns true, the API reports no next page,
// or maxPages is reached.
func (c *Client) scan(ctx context.Context, path string, query url.Values, match func(*page) bool) (bool, error) {
	cursor := ""
	for i := 0; i < c.maxPages; i++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}

		p, err := c.fetch(ctx, path, q)
		if err != nil {
			return false, err
		}
		if match(p) {
			return true, nil
		}
		if !p.HasNextPage || p.NextCursor == "" {
			return false, nil
		}
		cursor = p.NextCursor
	}
	return false, nil
}

func (c *Client) fetch(ctx context.Context, path string, query url.Values) (*page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("request %s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &p, nil
}

func containsAuthor(tweets []tweet, username string) bool {
	for _, t := range tweets {
		if sameUser(t.Author.UserName, username) {
			return true
		}
	}
	return false
}

func containsUser(users []account, username string) bool {
	for _, u := range users {
		if sameUser(u.UserName, username) {
			return true
		}
	}
	return false
}

func sameUser(a, b string) bool {
	a = strings.TrimPrefix(strings.TrimSpace(a), "@")
	b = strings.TrimPrefix(strings.TrimSpace(b), "@")
	return a != "" && strings.EqualFold(a, b)
}
