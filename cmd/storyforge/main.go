package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"StoryForge/internal/app"
	"StoryForge/internal/assembly"
	"StoryForge/internal/checkpoint"
	"StoryForge/internal/config"
	"StoryForge/internal/infrastructure/tts"
	"StoryForge/internal/logging"
	"StoryForge/internal/sampler"
	"StoryForge/internal/usecase"
)

// Exit codes per failure class.
const (
	exitFailure      = 1
	exitConfig       = 2
	exitCheckpoint   = 3
	exitOutputDir    = 4
	exitEngineInit   = 5
	exitInsufficient = 6
)

func main() {
	// .env is a convenience for local runs; absence is not an error.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load()
	logger := logging.New(cfg.Logging.Level)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(exitConfig)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(exitConfig)
	}

	application := app.New(cfg, logger)

	if err := application.Run(ctx); err != nil {
		logger.Error("pipeline stopped", "error", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalid):
		return exitConfig
	case errors.Is(err, checkpoint.ErrBadCheckpoint):
		return exitCheckpoint
	case errors.Is(err, usecase.ErrOutputDir), errors.Is(err, assembly.ErrNotDirectory):
		return exitOutputDir
	case errors.Is(err, tts.ErrEngineInit):
		return exitEngineInit
	case errors.Is(err, sampler.ErrInsufficientStories), errors.Is(err, usecase.ErrNoStories):
		return exitInsufficient
	default:
		return exitFailure
	}
}
