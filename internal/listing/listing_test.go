package listing

import (
	"context"
	"testing"
)

type namedStrategy string

func (n namedStrategy) Name() string { return string(n) }

func (n namedStrategy) TopPosts(context.Context, Query) ([]Post, error) {
	return nil, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(namedStrategy("api"))
	r.Register(namedStrategy("web"))

	s, err := r.Resolve("web")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if s.Name() != "web" {
		t.Fatalf("unexpected strategy: %s", s.Name())
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if _, err := r.Resolve("missing"); err == nil {
		t.Fatal("expected error for unregistered strategy")
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(namedStrategy("api"))
	r.Register(namedStrategy("api"))

	if _, err := r.Resolve("api"); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
}
