package sampler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"StoryForge/internal/domain"
	"StoryForge/internal/listing"
	"StoryForge/internal/ports"
)

// minBodyLength is the trimmed-body length a post must exceed to qualify.
const minBodyLength = 100

// ErrInsufficientStories is returned when the query budget runs out before the
// target count is reached. The partial collection is still returned with it.
var ErrInsufficientStories = errors.New("insufficient qualifying stories")

// Sampler collects qualifying stories by querying random subreddit/time-window
// combinations of a ranked listing until a target count is reached.
type Sampler struct {
	strategy    listing.Strategy
	repository  ports.StoryRepository
	subreddits  []string
	timeFilters []string
	maxQueries  int
	rng         *rand.Rand
	logger      *slog.Logger
}

// Options carries the fixed catalogs and bounds for a sampler.
type Options struct {
	Subreddits  []string
	TimeFilters []string
	MaxQueries  int
}

// New wires a sampler over a listing strategy. The repository is optional and
// extends deduplication across runs; rng is injected so tests can seed it.
func New(strategy listing.Strategy, repository ports.StoryRepository, opts Options, rng *rand.Rand, logger *slog.Logger) *Sampler {
	return &Sampler{
		strategy:    strategy,
		repository:  repository,
		subreddits:  opts.Subreddits,
		timeFilters: opts.TimeFilters,
		maxQueries:  opts.MaxQueries,
		rng:         rng,
		logger:      logger,
	}
}

// Collect gathers up to target stories, scanning at most perQuery posts per
// listing request. Post ids are deduplicated across all queries of the run,
// and a post qualifies only if its trimmed body exceeds minBodyLength.
// The number of listing queries is bounded; when the budget is exhausted the
// partial result is returned together with ErrInsufficientStories.
func (s *Sampler) Collect(ctx context.Context, target, perQuery int) ([]domain.Story, error) {
	if s.strategy == nil {
		return nil, fmt.Errorf("listing strategy is not configured")
	}

	collected := make([]domain.Story, 0, target)
	tried := map[string]struct{}{}

	// Partial collections still flow downstream, so accepted stories are
	// recorded no matter how the loop exits.
	var collectErr error
	for queries := 0; len(collected) < target; queries++ {
		if queries >= s.maxQueries {
			s.warn("query budget exhausted", "queries", queries, "collected", len(collected), "target", target)
			collectErr = fmt.Errorf("%w: %d of %d after %d queries",
				ErrInsufficientStories, len(collected), target, queries)
			break
		}

		if err := ctx.Err(); err != nil {
			collectErr = fmt.Errorf("collect stories: %w", err)
			break
		}

		query := listing.Query{
			Subreddit:  s.subreddits[s.rng.Intn(len(s.subreddits))],
			TimeFilter: s.timeFilters[s.rng.Intn(len(s.timeFilters))],
			Limit:      perQuery,
		}
		s.debug("searching listing", "subreddit", query.Subreddit, "window", query.TimeFilter)

		posts, err := s.strategy.TopPosts(ctx, query)
		if err != nil {
			s.warn("listing query failed", "subreddit", query.Subreddit, "window", query.TimeFilter, "error", err)
			continue
		}

		seenBefore := s.previouslySeen(ctx, posts)

		for _, post := range posts {
			if _, ok := tried[post.ID]; ok {
				continue
			}
			tried[post.ID] = struct{}{}

			if seenBefore[post.ID] {
				continue
			}

			body := strings.TrimSpace(post.Body)
			if len(body) <= minBodyLength {
				continue
			}

			collected = append(collected, domain.Story{
				ID:        post.ID,
				Subreddit: query.Subreddit,
				Title:     strings.TrimSpace(post.Title),
				Body:      body,
			})
			s.debug("story accepted", "count", len(collected), "title", truncate(post.Title, 60))

			if len(collected) >= target {
				break
			}
		}
	}

	s.record(ctx, collected)
	return collected, collectErr
}

// previouslySeen consults the optional repository; failures only disable
// cross-run deduplication for the current batch.
func (s *Sampler) previouslySeen(ctx context.Context, posts []listing.Post) map[string]bool {
	if s.repository == nil || len(posts) == 0 {
		return map[string]bool{}
	}

	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	seen, err := s.repository.Seen(ctx, ids)
	if err != nil {
		s.warn("seen-story lookup failed", "error", err)
		return map[string]bool{}
	}
	return seen
}

func (s *Sampler) record(ctx context.Context, stories []domain.Story) {
	if s.repository == nil || len(stories) == 0 {
		return
	}
	if err := s.repository.Record(ctx, stories); err != nil {
		s.warn("seen-story record failed", "error", err)
	}
}

func truncate(v string, max int) string {
	if len(v) <= max {
		return v
	}
	return v[:max]
}

func (s *Sampler) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Sampler) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
