package kb

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// MySQLStore is a MySQL implementation of the KnowledgeBase interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore connects to the FAQ database, creating the table when absent
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS faq_entries (
			id VARCHAR(64) PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			category VARCHAR(255),
			frequency INT DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Entries returns all FAQ entries
func (s *MySQLStore) Entries(ctx context.Context) ([]core.FAQEntry, error) {
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
func (s *MySQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close MySQL connection: %w", err)
	}
	return nil
}
