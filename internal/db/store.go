// Package db provides the sqlite store backing usage telemetry, profile
// tags, and comment history.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps the database connection.
type Store struct {
	*sql.DB
}

// NewStore creates a new database connection.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{DB: sqlDB}, nil
}

// migration is a single schema change applied exactly once.
type migration struct {
	version string
	sql     string
}

var migrations = []migration{
	{
		version: "001_usage_records",
		sql: `CREATE TABLE usage_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL,
			operation TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		version: "002_profile_tags",
		sql: `CREATE TABLE profile_tags (
			profile_id TEXT NOT NULL,
			tag TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (profile_id, tag)
		)`,
	},
	{
		version: "003_comment_history",
		sql: `CREATE TABLE comment_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_id TEXT NOT NULL,
			comment TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		version: "004_comment_history_profile_idx",
		sql:     `CREATE INDEX idx_comment_history_profile ON comment_history(profile_id, id)`,
	},
}

// Migrate runs all pending database migrations.
func (s *Store) Migrate(ctx context.Context) error {
	slog.Info("running database migrations")

	_, err := s.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	rows, err := s.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return fmt.Errorf("scan migration: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		slog.Info("applying migration", "version", m.version)

		tx, err := s.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", m.version, err)
		}
	}

	return nil
}

// UsageRecord is one stored telemetry row.
type UsageRecord struct {
	RequestID        string
	Provider         string
	Operation        string
	Category         string
	Model            string
	Status           string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
	Error            string
}

// InsertUsageRecord stores a telemetry row.
func (s *Store) InsertUsageRecord(ctx context.Context, rec UsageRecord) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO usage_records
			(request_id, provider, operation, category, model, status,
			 prompt_tokens, completion_tokens, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Provider, rec.Operation, rec.Category, rec.Model,
		rec.Status, rec.PromptTokens, rec.CompletionTokens,
		rec.Duration.Milliseconds(), rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// CountUsageRecords returns the number of stored telemetry rows for a status.
func (s *Store) CountUsageRecords(ctx context.Context, status string) (int, error) {
	var count int
	err := s.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM usage_records WHERE status = ?", status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count usage records: %w", err)
	}
	return count, nil
}

// ReplaceProfileTags replaces the full tag set for a profile.
func (s *Store) ReplaceProfileTags(ctx context.Context, profileID string, tags []string) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tag replace: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM profile_tags WHERE profile_id = ?", profileID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear profile tags: %w", err)
	}

	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO profile_tags (profile_id, tag) VALUES (?, ?)", profileID, tag,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert profile tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tag replace: %w", err)
	}
	return nil
}

// ProfileTags returns the tags attached to a profile, sorted.
func (s *Store) ProfileTags(ctx context.Context, profileID string) ([]string, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT tag FROM profile_tags WHERE profile_id = ? ORDER BY tag", profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("query profile tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan profile tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile tags: %w", err)
	}
	return tags, nil
}

// AddComment records a delivered comment for a profile.
func (s *Store) AddComment(ctx context.Context, profileID, comment string) error {
	_, err := s.ExecContext(ctx,
		"INSERT INTO comment_history (profile_id, comment) VALUES (?, ?)",
		profileID, comment,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// RecentComments returns up to limit most recent comments for a profile,
// newest first.
func (s *Store) RecentComments(ctx context.Context, profileID string, limit int) ([]string, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT comment FROM comment_history WHERE profile_id = ? ORDER BY id DESC LIMIT ?",
		profileID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []string
	for rows.Next() {
		var comment string
		if err := rows.Scan(&comment); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}
