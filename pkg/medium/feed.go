package medium

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedEntry is one item from the contest tag feed. GUID is the raw guid URI
// as published; the post id still has to be extracted from it.
type FeedEntry struct {
	GUID  string
	Title string
}

// FeedClient fetches the RSS feed listing the contest submissions.
type FeedClient struct {
	client *http.Client
	parser *gofeed.Parser
	url    string
}

// NewFeedClient creates a FeedClient for the given feed URL.
func NewFeedClient(url string, timeout time.Duration) *FeedClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &FeedClient{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
		url:    url,
	}
}

// Fetch downloads and parses the feed.
func (f *FeedClient) Fetch(ctx context.Context) ([]FeedEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "medium-leaderboard/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %d", resp.StatusCode)
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]FeedEntry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entries = append(entries, FeedEntry{GUID: item.GUID, Title: item.Title})
	}
	return entries, nil
}

// PostID extracts the post id from a feed guid URI, which embeds it as the
// last path segment (e.g. "https://medium.com/p/abc123" -> "abc123").
// ok is false when no id can be extracted.
func PostID(guid string) (id string, ok bool) {
	id = guid[strings.LastIndexByte(guid, '/')+1:]
	return id, id != ""
}
