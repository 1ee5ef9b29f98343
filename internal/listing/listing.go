package listing

import (
	"context"
	"fmt"
)

// Post is one raw entry from a ranked listing, in rank order.
type Post struct {
	ID        string
	Subreddit string
	Title     string
	Body      string
}

// Query carries all parameters required to execute one top-listing request.
type Query struct {
	Subreddit  string
	TimeFilter string
	Limit      int
}

// Strategy captures a single listing implementation (API, HTML fallback, etc.).
type Strategy interface {
	Name() string
	TopPosts(ctx context.Context, q Query) ([]Post, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a listing strategy.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("listing strategy %s is not registered", name)
}
