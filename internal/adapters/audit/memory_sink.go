// Package audit provides append-only sinks for LLM invocation records.
package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// MemorySink is an in-memory implementation of the AuditSink interface,
// safe for concurrent writers.
type MemorySink struct {
	entries []core.AuditLogEntry
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewMemorySink creates a new in-memory audit sink
func NewMemorySink(logger *zap.Logger) *MemorySink {
	return &MemorySink{
		logger: logger,
	}
}

// Append writes a single entry. The ctx check happens before any mutation so
// a cancelled run never leaves a partially written entry.
func (s *MemorySink) Append(ctx context.Context, entry *core.AuditLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// Entries returns a copy of all recorded entries
func (s *MemorySink) Entries() []core.AuditLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]core.AuditLogEntry, len(s.entries))
	copy(copied, s.entries)
	return copied
}
