package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"StoryForge/internal/domain"
)

// textArtifactFormat names artifacts by position in the input sequence, not by
// story id; the assembly stage correlates files by this name.
const textArtifactFormat = "story_output_%d.txt"

// ErrOutputDir marks a failure to create a required output directory.
var ErrOutputDir = errors.New("cannot create output directory")

// Materializer writes one text artifact per well-formed story.
type Materializer struct {
	logger *slog.Logger
}

// NewMaterializer builds the file-conversion stage.
func NewMaterializer(logger *slog.Logger) *Materializer {
	return &Materializer{logger: logger}
}

// Materialize converts each story into <outputDir>/story_output_<i>.txt where
// i is the story's position in the input sequence. Stories missing a hook or
// body are skipped with a warning; a single write failure does not abort the
// batch. Only a failure to create outputDir is fatal. Returns the number of
// artifacts written.
func (m *Materializer) Materialize(stories []domain.Story, outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return 0, fmt.Errorf("%w %s: %v", ErrOutputDir, outputDir, err)
	}

	written := 0
	for i, story := range stories {
		if story.Hook == "" || story.Body == "" {
			m.warn("story missing hook or body, skipping", "index", i, "id", story.ID)
			continue
		}

		// Upstream generation sometimes wraps its output in literal quotes.
		hook := trimQuotes(story.Hook)
		body := trimQuotes(story.Body)
		content := hook + "\n\n" + body

		path := filepath.Join(outputDir, fmt.Sprintf(textArtifactFormat, i))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			m.warn("write text artifact failed", "path", path, "error", err)
			continue
		}
		written++
	}

	m.info("materialization complete", "written", written, "input", len(stories))
	return written, nil
}

func trimQuotes(v string) string {
	return strings.Trim(v, `"`)
}

func (m *Materializer) info(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Info(msg, args...)
	}
}

func (m *Materializer) warn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
