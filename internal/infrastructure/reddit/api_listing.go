// Package reddit provides listing strategies over the reddit ranked-post
// source: an authenticated API client and an HTML fallback for credential-less
// runs.
package reddit

import (
	"context"
	"fmt"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"StoryForge/internal/config"
	"StoryForge/internal/listing"
)

// APIListing implements listing.Strategy over the reddit API.
type APIListing struct {
	client *reddit.Client
}

var _ listing.Strategy = (*APIListing)(nil)

// NewAPIListing builds an API client from configuration. Without client
// credentials a read-only client is used.
func NewAPIListing(cfg config.RedditConfig) (*APIListing, error) {
	var opts []reddit.Opt
	if cfg.UserAgent != "" {
		opts = append(opts, reddit.WithUserAgent(cfg.UserAgent))
	}

	var (
		client *reddit.Client
		err    error
	)
	if cfg.ClientID != "" {
		creds := reddit.Credentials{
			ID:       cfg.ClientID,
			Secret:   cfg.ClientSecret,
			Username: cfg.Username,
			Password: cfg.Password,
		}
		client, err = reddit.NewClient(creds, opts...)
	} else {
		client, err = reddit.NewReadonlyClient(opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("build reddit client: %w", err)
	}

	return &APIListing{client: client}, nil
}

// Name identifies the strategy inside the registry.
func (l *APIListing) Name() string {
	return "api"
}

// TopPosts queries the top listing for one subreddit/time-window combination,
// preserving rank order.
func (l *APIListing) TopPosts(ctx context.Context, q listing.Query) ([]listing.Post, error) {
	posts, _, err := l.client.Subreddit.TopPosts(ctx, q.Subreddit, &reddit.ListPostOptions{
		ListOptions: reddit.ListOptions{Limit: q.Limit},
		Time:        q.TimeFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("top posts r/%s (%s): %w", q.Subreddit, q.TimeFilter, err)
	}

	results := make([]listing.Post, 0, len(posts))
	for _, post := range posts {
		results = append(results, listing.Post{
			ID:        post.ID,
			Subreddit: post.SubredditName,
			Title:     post.Title,
			Body:      post.Body,
		})
	}

	return results, nil
}
