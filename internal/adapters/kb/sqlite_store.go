package kb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// SQLiteStore is a SQLite implementation of the KnowledgeBase interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens the FAQ database, creating the table when absent
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS faq_entries (
			id TEXT PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			category TEXT,
			frequency INTEGER DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Entries returns all FAQ entries
func (s *SQLiteStore) Entries(ctx context.Context) ([]core.FAQEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question, answer, category, frequency
		FROM faq_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query FAQ entries: %w", err)
	}
	defer rows.Close()

	var entries []core.FAQEntry
	for rows.Next() {
		var entry core.FAQEntry
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &entry.Category, &entry.Frequency); err != nil {
			return nil, fmt.Errorf("failed to scan FAQ entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read FAQ entries: %w", err)
	}

	return entries, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	return nil
}
