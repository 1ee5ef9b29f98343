package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"StoryForge/internal/listing"
)

const defaultWebBaseURL = "https://old.reddit.com"

// WebListing scrapes old-reddit top pages. It is the fallback strategy for
// runs without API credentials; listing pages only inline the self-text of
// pre-expanded posts, so bodies may come back empty and fail the length
// filter upstream.
type WebListing struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

var _ listing.Strategy = (*WebListing)(nil)

// NewWebListing wires an HTTP client; a nil client gets a 20s timeout default.
func NewWebListing(client *http.Client, userAgent string) *WebListing {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = "storyforge/1.0"
	}
	return &WebListing{client: client, baseURL: defaultWebBaseURL, userAgent: userAgent}
}

// Name identifies the strategy inside the registry.
func (l *WebListing) Name() string {
	return "web"
}

// TopPosts fetches and parses one top-listing page.
func (l *WebListing) TopPosts(ctx context.Context, q listing.Query) ([]listing.Post, error) {
	pageURL, err := buildTopURL(l.baseURL, q)
	if err != nil {
		return nil, fmt.Errorf("r/%s: %w", q.Subreddit, err)
	}

	doc, err := l.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("r/%s: %w", q.Subreddit, err)
	}

	return extractPosts(doc, q), nil
}

func (l *WebListing) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	return doc, nil
}

func extractPosts(doc *goquery.Document, q listing.Query) []listing.Post {
	var collected []listing.Post

	doc.Find("div.thing").EachWithBreak(func(_ int, thing *goquery.Selection) bool {
		fullName, _ := thing.Attr("data-fullname")
		id := strings.TrimPrefix(fullName, "t3_")
		if id == "" {
			return true
		}

		title := strings.TrimSpace(thing.Find("a.title").First().Text())
		body := strings.TrimSpace(thing.Find("div.expando div.md").Text())

		collected = append(collected, listing.Post{
			ID:        id,
			Subreddit: q.Subreddit,
			Title:     title,
			Body:      body,
		})

		return len(collected) < q.Limit
	})

	return collected
}

func buildTopURL(base string, q listing.Query) (string, error) {
	parsed, err := url.Parse(fmt.Sprintf("%s/r/%s/top/", base, q.Subreddit))
	if err != nil {
		return "", fmt.Errorf("invalid listing url: %w", err)
	}

	query := parsed.Query()
	query.Set("t", q.TimeFilter)
	query.Set("limit", strconv.Itoa(q.Limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
