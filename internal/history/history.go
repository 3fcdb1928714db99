// Package history persists a journal of completed downloads in a
// local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"ardfetch/internal/config"
)

// Entry is one recorded download.
type Entry struct {
	ID        int64
	PageURL   string
	Output    string
	Quality   int
	Bytes     int64
	Subtitles bool
	CreatedAt time.Time
}

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens the history database, creating it and its schema when
// missing.
func Open() (*Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, fmt.Errorf("locating history db: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS downloads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page_url TEXT NOT NULL,
		output TEXT NOT NULL,
		quality INTEGER NOT NULL,
		bytes INTEGER NOT NULL DEFAULT 0,
		subtitles INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records a completed download.
func (s *Store) Add(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO downloads (page_url, output, quality, bytes, subtitles, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.PageURL, e.Output, e.Quality, e.Bytes, boolToInt(e.Subtitles), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording download: %w", err)
	}
	return nil
}

// List returns recorded downloads, newest first, capped at limit.
// A limit of 0 or less returns everything.
func (s *Store) List(limit int) ([]Entry, error) {
	query := `SELECT id, page_url, output, quality, bytes, subtitles, created_at FROM downloads ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing downloads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var subtitles int
		if err := rows.Scan(&e.ID, &e.PageURL, &e.Output, &e.Quality, &e.Bytes, &subtitles, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning download row: %w", err)
		}
		e.Subtitles = subtitles != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all recorded downloads.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM downloads`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
