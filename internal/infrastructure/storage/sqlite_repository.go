// Package storage persists collected story ids so repeated runs do not pick
// the same posts again. The repository is optional: a nil handle disables it
// and per-run deduplication in the sampler is unaffected.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"StoryForge/internal/domain"
	"StoryForge/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS seen_stories (
	external_id TEXT PRIMARY KEY,
	subreddit   TEXT NOT NULL,
	title       TEXT NOT NULL,
	collected_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteRepository records seen stories in a local sqlite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.StoryRepository = (*SQLiteRepository)(nil)

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Seen returns a map with the IDs that already exist in storage.
func (r *SQLiteRepository) Seen(ctx context.Context, ids []string) (map[string]bool, error) {
	if r == nil || r.db == nil || len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := sq.Select("external_id").
		From("seen_stories").
		Where(sq.Eq{"external_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// Record inserts the collected stories, ignoring ids already present.
func (r *SQLiteRepository) Record(ctx context.Context, stories []domain.Story) error {
	if r == nil || r.db == nil || len(stories) == 0 {
		return nil
	}

	builder := sq.Insert("seen_stories").
		Columns("external_id", "subreddit", "title").
		Suffix("ON CONFLICT(external_id) DO NOTHING")

	for _, story := range stories {
		builder = builder.Values(story.ID, story.Subreddit, story.Title)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build record query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record stories: %w", err)
	}

	return nil
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}
