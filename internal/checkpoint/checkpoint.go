// Package checkpoint persists a complete stage output as an indented JSON
// array, read back in full by the next stage.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"StoryForge/internal/domain"
)

// ErrBadCheckpoint marks a checkpoint that is missing, unreadable, or not a
// well-formed story sequence.
var ErrBadCheckpoint = errors.New("malformed checkpoint")

// Save writes stories as human-readable JSON, atomically: the payload lands in
// a uniquely named temp file next to the target and is renamed into place.
func Save(path string, stories []domain.Story) error {
	if stories == nil {
		stories = []domain.Story{}
	}

	data, err := json.MarshalIndent(stories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory %s: %w", dir, err)
	}

	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish checkpoint %s: %w", path, err)
	}

	return nil
}

// Load reads a full checkpoint back. Any failure here is fatal to the run and
// wraps ErrBadCheckpoint so callers can classify it.
func Load(path string) ([]domain.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrBadCheckpoint, path, err)
	}

	var stories []domain.Story
	if err := json.Unmarshal(data, &stories); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrBadCheckpoint, path, err)
	}

	return stories, nil
}
