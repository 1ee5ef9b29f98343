package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"StoryForge/internal/assembly"
	"StoryForge/internal/config"
	"StoryForge/internal/infrastructure/llm"
	"StoryForge/internal/infrastructure/reddit"
	"StoryForge/internal/infrastructure/storage"
	"StoryForge/internal/infrastructure/tts"
	"StoryForge/internal/listing"
	"StoryForge/internal/logging"
	"StoryForge/internal/ports"
	"StoryForge/internal/sampler"
	"StoryForge/internal/usecase"
)

// Application wires config to use cases and runs one batch end to end.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run executes the whole batch: collect, annotate, materialize, then acquire
// the synthesis engine once and assemble audio for every exported file.
func (a *Application) Run(ctx context.Context) error {
	strategy, err := a.buildListingStrategy()
	if err != nil {
		return fmt.Errorf("build listing strategy: %w", err)
	}

	repository, closeRepo, err := a.buildRepository()
	if err != nil {
		return fmt.Errorf("open story repository: %w", err)
	}
	defer closeRepo()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	collector := sampler.New(strategy, repository, sampler.Options{
		Subreddits:  a.cfg.Sampler.Subreddits,
		TimeFilters: a.cfg.Sampler.TimeFilters,
		MaxQueries:  a.cfg.Sampler.MaxQueries,
	}, rng, a.logger.With("component", "sampler"))

	pipeline := usecase.NewPipeline(usecase.PipelineConfig{
		TargetCount:   a.cfg.Sampler.TargetCount,
		PostsPerQuery: a.cfg.Sampler.PostsPerQuery,
		StoryListPath: a.cfg.Paths.StoryList,
		HookedPath:    a.cfg.Paths.HookedStories,
		ExportsDir:    a.cfg.Paths.ExportsDir,
	}, usecase.PipelineDeps{
		Collector:    collector,
		Annotator:    usecase.NewAnnotator(llm.NewGroqClient(a.cfg.Groq), a.logger.With("component", "annotator")),
		Materializer: usecase.NewMaterializer(a.logger.With("component", "materializer")),
		Logger:       a.logger.With("component", "pipeline"),
	})

	written, err := pipeline.Produce(ctx)
	if err != nil {
		return err
	}
	a.logger.Info("text artifacts ready", "count", written, "dir", a.cfg.Paths.ExportsDir)

	// The engine is acquired once for the whole assembly stage.
	engine, err := tts.NewEngine(ctx, a.cfg.TTS)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			a.logger.Warn("closing synthesis engine", "error", closeErr)
		}
	}()

	assembler := assembly.New(engine, assembly.Config{
		SourceRate:  a.cfg.Assembly.SampleRate,
		SpeedFactor: a.cfg.Assembly.SpeedFactor,
		Voices:      a.cfg.Assembly.Voices,
	}, rng, a.logger.With("component", "assembly"))

	if err := assembler.Assemble(ctx, a.cfg.Paths.ExportsDir, a.cfg.Paths.AudioDir); err != nil {
		return err
	}

	a.logger.Info("batch complete", "audio_dir", a.cfg.Paths.AudioDir)
	return nil
}

// buildListingStrategy resolves the configured strategy; with no explicit
// choice the API is used when credentials are present, the HTML fallback
// otherwise.
func (a *Application) buildListingStrategy() (listing.Strategy, error) {
	registry := listing.NewRegistry()

	api, err := reddit.NewAPIListing(a.cfg.Reddit)
	if err != nil {
		return nil, err
	}
	registry.Register(api)
	registry.Register(reddit.NewWebListing(nil, a.cfg.Reddit.UserAgent))

	name := a.cfg.Reddit.Strategy
	if name == "" {
		name = "web"
		if a.cfg.Reddit.ClientID != "" {
			name = "api"
		}
	}

	strategy, err := registry.Resolve(name)
	if err != nil {
		return nil, err
	}

	a.logger.Info("listing strategy selected", "strategy", strategy.Name())
	return strategy, nil
}

func (a *Application) buildRepository() (ports.StoryRepository, func(), error) {
	if a.cfg.Storage.SQLitePath == "" {
		return nil, func() {}, nil
	}

	repo, err := storage.Open(a.cfg.Storage.SQLitePath)
	if err != nil {
		return nil, nil, err
	}

	closeRepo := func() {
		if err := repo.Close(); err != nil {
			a.logger.Warn("closing story repository", "error", err)
		}
	}
	return repo, closeRepo, nil
}
