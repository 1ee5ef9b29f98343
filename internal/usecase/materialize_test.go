package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"StoryForge/internal/domain"
)

func TestMaterializePositionalNamingWithGaps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stories := []domain.Story{
		{ID: "a", Hook: "h0", Body: "b0"},
		{ID: "b", Hook: "", Body: "b1"}, // malformed: no hook
		{ID: "c", Hook: "h2", Body: "b2"},
	}

	m := NewMaterializer(discardLogger())
	written, err := m.Materialize(stories, dir)
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected 2 artifacts, got %d", written)
	}

	for _, name := range []string{"story_output_0.txt", "story_output_2.txt"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected artifact %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "story_output_1.txt")); !os.IsNotExist(err) {
		t.Fatal("artifact for malformed story should not exist")
	}
}

func TestMaterializeStripsQuotesAndJoins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	body := strings.Repeat("B", 150)
	stories := []domain.Story{
		{ID: "a1", Title: "T", Hook: `"H"`, Body: body},
	}

	m := NewMaterializer(discardLogger())
	written, err := m.Materialize(stories, dir)
	if err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	if written != 1 {
		t.Fatalf("expected 1 artifact, got %d", written)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "story_output_0.txt"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	want := "H\n\n" + body
	if string(raw) != want {
		t.Fatalf("unexpected content: %q", string(raw))
	}
}

func TestMaterializePreservesInternalQuotes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stories := []domain.Story{
		{ID: "a", Hook: `"She said "never" to me"`, Body: `body with "quotes" inside`},
	}

	m := NewMaterializer(discardLogger())
	if _, err := m.Materialize(stories, dir); err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "story_output_0.txt"))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	want := `She said "never" to me` + "\n\n" + `body with "quotes" inside`
	if string(raw) != want {
		t.Fatalf("unexpected content: %q", string(raw))
	}
}

func TestMaterializeCreatesOutputDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "exports")
	m := NewMaterializer(discardLogger())
	if _, err := m.Materialize(nil, dir); err != nil {
		t.Fatalf("Materialize returned error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}
}

func TestMaterializeUncreatableDirIsFatal(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	m := NewMaterializer(discardLogger())
	_, err := m.Materialize(nil, filepath.Join(blocker, "exports"))
	if !errors.Is(err, ErrOutputDir) {
		t.Fatalf("expected ErrOutputDir, got %v", err)
	}
}
