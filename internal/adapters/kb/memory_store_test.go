package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

func seedEntries() []core.FAQEntry {
	return []core.FAQEntry{
		{ID: "faq-1", Question: "How do I reset my password?", Answer: "Use the reset link.", Frequency: 10},
		{ID: "faq-2", Question: "How do I cancel my subscription?", Answer: "Open billing settings.", Frequency: 5},
	}
}

func TestMemoryStoreServesSeededEntries(t *testing.T) {
	store := NewMemoryStore(seedEntries(), zap.NewNop())

	entries, err := store.Entries(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "faq-1", entries[0].ID)
}

func TestMemoryStoreEntriesReturnsCopy(t *testing.T) {
	store := NewMemoryStore(seedEntries(), zap.NewNop())

	entries, err := store.Entries(context.Background())
	require.NoError(t, err)

	entries[0].Answer = "tampered"

	fresh, err := store.Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Use the reset link.", fresh[0].Answer)
}

func TestMemoryStoreReplaceSwapsEntrySet(t *testing.T) {
	store := NewMemoryStore(seedEntries(), zap.NewNop())

	store.Replace([]core.FAQEntry{
		{ID: "faq-9", Question: "Where are my invoices?", Answer: "Under billing."},
	})

	entries, err := store.Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "faq-9", entries[0].ID)
}
