// Package kb provides knowledge-base stores supplying FAQ entries to the
// matcher. Stores are read-only from the pipeline's point of view.
package kb

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// MemoryStore is an in-memory implementation of the KnowledgeBase interface,
// seeded from configuration.
type MemoryStore struct {
	entries []core.FAQEntry
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory knowledge base
func NewMemoryStore(entries []core.FAQEntry, logger *zap.Logger) *MemoryStore {
	copied := make([]core.FAQEntry, len(entries))
	copy(copied, entries)

	logger.Info("Initialized in-memory knowledge base", zap.Int("entries", len(copied)))

	return &MemoryStore{
		entries: copied,
		logger:  logger,
	}
}

// Entries returns all FAQ entries
func (s *MemoryStore) Entries(ctx context.Context) ([]core.FAQEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Callers must never be able to mutate the store through the result
	copied := make([]core.FAQEntry, len(s.entries))
	copy(copied, s.entries)
	return copied, nil
}

// Replace swaps the full entry set, e.g. after an external reload
func (s *MemoryStore) Replace(entries []core.FAQEntry) {
	copied := make([]core.FAQEntry, len(entries))
	copy(copied, entries)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = copied
}
