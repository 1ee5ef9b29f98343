package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"StoryForge/internal/checkpoint"
	"StoryForge/internal/domain"
	"StoryForge/internal/sampler"
)

// StoryCollector abstracts the sampling stage for the pipeline.
type StoryCollector interface {
	Collect(ctx context.Context, target, perQuery int) ([]domain.Story, error)
}

// ErrNoStories is returned when sampling yields nothing to process.
var ErrNoStories = errors.New("no stories collected")

// PipelineConfig fixes the stage boundaries of one run.
type PipelineConfig struct {
	TargetCount   int
	PostsPerQuery int
	StoryListPath string
	HookedPath    string
	ExportsDir    string
}

// PipelineDeps wires the text stages into the orchestration pipeline.
type PipelineDeps struct {
	Collector    StoryCollector
	Annotator    *Annotator
	Materializer *Materializer
	Logger       *slog.Logger
}

// Pipeline runs the text half of the batch: collect, annotate, materialize.
// Each stage fully completes and persists a checkpoint before the next begins.
type Pipeline struct {
	cfg          PipelineConfig
	collector    StoryCollector
	annotator    *Annotator
	materializer *Materializer
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(cfg PipelineConfig, deps PipelineDeps) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		collector:    deps.Collector,
		annotator:    deps.Annotator,
		materializer: deps.Materializer,
		logger:       deps.Logger,
	}
}

// Produce drives collection through materialization and returns the number of
// text artifacts written into the exports directory. A partial collection is
// processed; an empty one is fatal.
func (p *Pipeline) Produce(ctx context.Context) (int, error) {
	stories, err := p.collector.Collect(ctx, p.cfg.TargetCount, p.cfg.PostsPerQuery)
	if err != nil {
		if !errors.Is(err, sampler.ErrInsufficientStories) {
			return 0, fmt.Errorf("collect stories: %w", err)
		}
		if len(stories) == 0 {
			return 0, fmt.Errorf("%w: %v", ErrNoStories, err)
		}
		p.logger.Warn("continuing with partial collection", "collected", len(stories), "error", err)
	}

	if len(stories) == 0 {
		return 0, ErrNoStories
	}

	if err := checkpoint.Save(p.cfg.StoryListPath, stories); err != nil {
		return 0, fmt.Errorf("save story list: %w", err)
	}
	p.logger.Info("stories collected", "count", len(stories), "checkpoint", p.cfg.StoryListPath)

	hooked := p.annotator.Annotate(ctx, loadStage(p.cfg.StoryListPath, stories, p.logger))
	if err := checkpoint.Save(p.cfg.HookedPath, hooked); err != nil {
		return 0, fmt.Errorf("save hooked stories: %w", err)
	}
	p.logger.Info("stories hooked", "count", len(hooked), "checkpoint", p.cfg.HookedPath)

	input, err := checkpoint.Load(p.cfg.HookedPath)
	if err != nil {
		return 0, fmt.Errorf("load hooked stories: %w", err)
	}

	written, err := p.materializer.Materialize(input, p.cfg.ExportsDir)
	if err != nil {
		return 0, fmt.Errorf("materialize stories: %w", err)
	}

	return written, nil
}

// loadStage re-reads a checkpoint so each stage consumes the persisted
// snapshot rather than in-memory state; a read failure falls back to the
// in-memory sequence it was written from.
func loadStage(path string, fallback []domain.Story, logger *slog.Logger) []domain.Story {
	stories, err := checkpoint.Load(path)
	if err != nil {
		logger.Warn("re-reading checkpoint failed, using in-memory stage output", "path", path, "error", err)
		return fallback
	}
	return stories
}
