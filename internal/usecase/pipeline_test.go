package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"StoryForge/internal/checkpoint"
	"StoryForge/internal/domain"
	"StoryForge/internal/sampler"
)

type fixedCollector struct {
	stories []domain.Story
	err     error
}

func (c *fixedCollector) Collect(_ context.Context, target, _ int) ([]domain.Story, error) {
	if len(c.stories) > target {
		return c.stories[:target], c.err
	}
	return c.stories, c.err
}

func newTestPipeline(t *testing.T, collector StoryCollector, chat *scriptedChat) (*Pipeline, PipelineConfig) {
	t.Helper()

	root := t.TempDir()
	cfg := PipelineConfig{
		TargetCount:   5,
		PostsPerQuery: 15,
		StoryListPath: filepath.Join(root, "story_list.json"),
		HookedPath:    filepath.Join(root, "hooked_stories.json"),
		ExportsDir:    filepath.Join(root, "exports"),
	}
	logger := discardLogger()
	p := NewPipeline(cfg, PipelineDeps{
		Collector:    collector,
		Annotator:    NewAnnotator(chat, logger),
		Materializer: NewMaterializer(logger),
		Logger:       logger,
	})
	return p, cfg
}

func TestProduceWritesCheckpointsAndArtifacts(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("B", 150)
	collector := &fixedCollector{stories: []domain.Story{
		{ID: "a1", Subreddit: "TIFU", Title: "T", Body: body},
		{ID: "b2", Subreddit: "AITA", Title: "U", Body: body},
	}}
	chat := &scriptedChat{replies: map[string]string{"Title:": `"H"`}}

	p, cfg := newTestPipeline(t, collector, chat)
	written, err := p.Produce(context.Background())
	if err != nil {
		t.Fatalf("Produce returned error: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected 2 artifacts, got %d", written)
	}

	collected, err := checkpoint.Load(cfg.StoryListPath)
	if err != nil {
		t.Fatalf("load story list: %v", err)
	}
	if len(collected) != 2 || collected[0].HasHook() {
		t.Fatalf("unexpected story list checkpoint: %+v", collected)
	}

	hooked, err := checkpoint.Load(cfg.HookedPath)
	if err != nil {
		t.Fatalf("load hooked stories: %v", err)
	}
	if len(hooked) != 2 || !hooked[0].HasHook() {
		t.Fatalf("unexpected hooked checkpoint: %+v", hooked)
	}

	raw, err := os.ReadFile(filepath.Join(cfg.ExportsDir, "story_output_0.txt"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(raw) != "H\n\n"+body {
		t.Fatalf("unexpected artifact content: %q", string(raw))
	}
}

func TestProducePartialCollectionContinues(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("B", 150)
	collector := &fixedCollector{
		stories: []domain.Story{{ID: "only", Title: "T", Body: body}},
		err:     fmt.Errorf("%w: 1 of 5 after 60 queries", sampler.ErrInsufficientStories),
	}
	chat := &scriptedChat{replies: map[string]string{"Title:": "H."}}

	p, _ := newTestPipeline(t, collector, chat)
	written, err := p.Produce(context.Background())
	if err != nil {
		t.Fatalf("partial collection should not abort: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 artifact, got %d", written)
	}
}

func TestProduceEmptyCollectionIsFatal(t *testing.T) {
	t.Parallel()

	collector := &fixedCollector{
		err: fmt.Errorf("%w: 0 of 5 after 60 queries", sampler.ErrInsufficientStories),
	}
	chat := &scriptedChat{}

	p, _ := newTestPipeline(t, collector, chat)
	_, err := p.Produce(context.Background())
	if !errors.Is(err, ErrNoStories) {
		t.Fatalf("expected ErrNoStories, got %v", err)
	}
}

func TestProduceCollectorFailureIsFatal(t *testing.T) {
	t.Parallel()

	collector := &fixedCollector{err: errors.New("listing offline")}
	chat := &scriptedChat{}

	p, _ := newTestPipeline(t, collector, chat)
	if _, err := p.Produce(context.Background()); err == nil {
		t.Fatal("expected collector failure to propagate")
	}
}
