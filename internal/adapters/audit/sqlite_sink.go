package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// SQLiteSink is a SQLite implementation of the AuditSink interface. Each
// entry is one INSERT, so a cancelled run either commits the entry fully or
// not at all.
type SQLiteSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteSink opens the audit database, creating the table when absent
func NewSQLiteSink(dbPath string, logger *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT,
			function_name TEXT,
			input_tokens INTEGER,
			output_tokens INTEGER,
			status TEXT,
			model TEXT,
			error TEXT,
			timestamp TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteSink{
		db:     db,
		logger: logger,
	}, nil
}

// Append writes a single entry
func (s *SQLiteSink) Append(ctx context.Context, entry *core.AuditLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (username, function_name, input_tokens, output_tokens, status, model, error, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.Username,
		entry.FunctionName,
		entry.InputTokens,
		entry.OutputTokens,
		string(entry.Status),
		entry.Model,
		entry.Error,
		entry.Timestamp.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log entry: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteSink) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close SQLite database: %w", err)
	}
	return nil
}
