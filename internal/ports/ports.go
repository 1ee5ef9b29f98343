package ports

import (
	"context"

	"StoryForge/internal/domain"
)

// ChatCompleter sends a single-turn prompt to a text-generation service and
// returns the raw completion text.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// SpeechSynthesizer turns text into an ordered, single-pass sequence of audio
// segments. Implementations are expensive to construct and are acquired once
// per assembly stage, not per file.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]domain.AudioSegment, error)
	Close() error
}

// StoryRepository persists collected story ids for cross-run deduplication.
type StoryRepository interface {
	Seen(ctx context.Context, ids []string) (map[string]bool, error)
	Record(ctx context.Context, stories []domain.Story) error
}
