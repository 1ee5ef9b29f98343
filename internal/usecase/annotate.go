package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"StoryForge/internal/domain"
	"StoryForge/internal/ports"
)

// hookBodyLimit caps how much of the story body is embedded in the prompt.
const hookBodyLimit = 1000

const hookPromptFormat = `
You are a viral content writer for YouTube Shorts and TikTok. Your job is to write a short, shocking, emotional, or dramatic HOOK for a Reddit story that makes people want to keep watching.

Write 1-2 sentences. End with: "Here's the full story."

Title: %s

Body: %s
`

// Annotator enriches stories with a generated hook, dropping the ones the
// generator fails on instead of aborting the batch.
type Annotator struct {
	chat   ports.ChatCompleter
	logger *slog.Logger
}

// NewAnnotator wires the completion client.
func NewAnnotator(chat ports.ChatCompleter, logger *slog.Logger) *Annotator {
	return &Annotator{chat: chat, logger: logger}
}

// Annotate returns an order-preserving subsequence of stories, each with a
// non-empty hook attached. A generation failure or empty completion drops the
// story; the aggregate dropped count is logged for observability.
func (a *Annotator) Annotate(ctx context.Context, stories []domain.Story) []domain.Story {
	hooked := make([]domain.Story, 0, len(stories))
	dropped := 0

	for i, story := range stories {
		a.debug("generating hook", "index", i+1, "total", len(stories), "title", story.Title)

		hook, err := a.chat.Complete(ctx, buildHookPrompt(story))
		hook = strings.TrimSpace(hook)
		if err != nil || hook == "" {
			dropped++
			a.warn("skipping story without hook", "id", story.ID, "error", err)
			continue
		}

		story.Hook = hook
		hooked = append(hooked, story)
	}

	a.info("annotation complete", "hooked", len(hooked), "dropped", dropped)
	return hooked
}

func buildHookPrompt(story domain.Story) string {
	body := story.Body
	// The limit counts characters, not bytes; slicing must not split a rune.
	if r := []rune(body); len(r) > hookBodyLimit {
		body = string(r[:hookBodyLimit])
	}
	return fmt.Sprintf(hookPromptFormat, story.Title, body)
}

func (a *Annotator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Annotator) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Annotator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
