package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testKnowledgeBase() []FAQEntry {
	return []FAQEntry{
		{ID: "faq-1", Question: "How do I reset my password?", Answer: "Use the reset link.", Frequency: 10},
		{ID: "faq-2", Question: "How do I cancel my subscription?", Answer: "Open billing settings.", Frequency: 5},
		{ID: "faq-3", Question: "Where can I download my invoices?", Answer: "Invoices are under billing.", Frequency: 3},
	}
}

func TestMatcherExcludesEntriesBelowFloor(t *testing.T) {
	matcher := NewMatcher(0.9, 10, zap.NewNop())
	email := &NormalizedEmail{Subject: "completely unrelated topic", Body: "nothing in common"}

	matches := matcher.Match(email, testKnowledgeBase())

	assert.Empty(t, matches)
}

func TestMatcherReturnsScoresInDescendingOrder(t *testing.T) {
	matcher := NewMatcher(0.0, 10, zap.NewNop())
	email := &NormalizedEmail{Subject: "How do I reset my password?", Body: ""}

	matches := matcher.Match(email, testKnowledgeBase())

	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	assert.Equal(t, "faq-1", matches[0].Entry.ID)
}

func TestMatcherTruncatesToTopK(t *testing.T) {
	matcher := NewMatcher(0.0, 2, zap.NewNop())
	email := &NormalizedEmail{Subject: "How do I", Body: "manage my account"}

	matches := matcher.Match(email, testKnowledgeBase())

	assert.Len(t, matches, 2)
}

func TestMatcherBreaksTiesByFrequencyThenID(t *testing.T) {
	// Two entries with identical questions always tie on score
	entries := []FAQEntry{
		{ID: "faq-b", Question: "How do I export my data?", Frequency: 2},
		{ID: "faq-a", Question: "How do I export my data?", Frequency: 7},
		{ID: "faq-c", Question: "How do I export my data?", Frequency: 2},
	}

	matcher := NewMatcher(0.0, 10, zap.NewNop())
	email := &NormalizedEmail{Subject: "How do I export my data?", Body: ""}

	matches := matcher.Match(email, entries)

	require.Len(t, matches, 3)
	assert.Equal(t, "faq-a", matches[0].Entry.ID)
	assert.Equal(t, "faq-b", matches[1].Entry.ID)
	assert.Equal(t, "faq-c", matches[2].Entry.ID)
}

func TestMatcherWithEmptyKnowledgeBase(t *testing.T) {
	matcher := NewMatcher(0.15, 3, zap.NewNop())
	email := &NormalizedEmail{Subject: "Help", Body: "I need assistance"}

	assert.Empty(t, matcher.Match(email, nil))
}
