package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/utils"
)

// fakeAuditSink records appended entries in memory.
type fakeAuditSink struct {
	mu      sync.Mutex
	entries []*AuditLogEntry
	err     error
}

func (f *fakeAuditSink) Append(ctx context.Context, entry *AuditLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditSink) all() []*AuditLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*AuditLogEntry(nil), f.entries...)
}

func newTestDrafter(client CompletionClient, audit AuditSink) *Drafter {
	return NewDrafter(client, audit, testRetryOptions(), 0.2, 4096, "support-triage", utils.NewTextProcessor(zap.NewNop()), zap.NewNop())
}

func supportEmail() *NormalizedEmail {
	return &NormalizedEmail{
		ID:      "msg-1",
		Subject: "Password reset",
		Sender:  "customer@example.com",
		Body:    "How do I reset my password?",
	}
}

func passwordMatches() []MatchCandidate {
	return []MatchCandidate{
		{Entry: FAQEntry{ID: "faq-1", Question: "How do I reset my password?", Answer: "Use the reset link on the login page."}, Score: 0.95},
		{Entry: FAQEntry{ID: "faq-2", Question: "How do I change my email?", Answer: "Open account settings."}, Score: 0.4},
	}
}

func TestDraftFailsWithoutMatches(t *testing.T) {
	client := &fakeCompletionClient{}
	audit := &fakeAuditSink{}
	drafter := newTestDrafter(client, audit)

	_, _, err := drafter.Draft(context.Background(), supportEmail(), nil)

	var draftErr *DraftingError
	require.ErrorAs(t, err, &draftErr)
	assert.Equal(t, 0, client.callCount())
	// Nothing was invoked, so nothing is audited
	assert.Empty(t, audit.all())
}

func TestDraftReturnsReplyAndAuditsSuccess(t *testing.T) {
	client := &fakeCompletionClient{
		responses: []*CompletionResponse{
			{
				Text:  "Hello,\n\nThanks for reaching out. Use the reset link on the login page.\n\nBest,\nSupport",
				Usage: TokenUsage{InputTokens: 120, OutputTokens: 45},
				Model: "gpt-4o-mini",
			},
		},
	}
	audit := &fakeAuditSink{}
	drafter := newTestDrafter(client, audit)

	reply, usage, err := drafter.Draft(context.Background(), supportEmail(), passwordMatches())

	require.NoError(t, err)
	assert.Contains(t, reply, "reset link")
	assert.Equal(t, TokenUsage{InputTokens: 120, OutputTokens: 45}, usage)

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "draft_reply", entries[0].FunctionName)
	assert.Equal(t, "support-triage", entries[0].Username)
	assert.Equal(t, AuditStatusSuccess, entries[0].Status)
	assert.Equal(t, 120, entries[0].InputTokens)
	assert.Equal(t, 45, entries[0].OutputTokens)
	assert.Equal(t, "gpt-4o-mini", entries[0].Model)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestDraftAuditsFailureWithZeroUsage(t *testing.T) {
	client := &fakeCompletionClient{
		errs: []error{errors.New("service unavailable"), errors.New("service unavailable")},
	}
	audit := &fakeAuditSink{}
	drafter := newTestDrafter(client, audit)

	_, _, err := drafter.Draft(context.Background(), supportEmail(), passwordMatches())

	var draftErr *DraftingError
	require.ErrorAs(t, err, &draftErr)

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, AuditStatusFailed, entries[0].Status)
	assert.Equal(t, 0, entries[0].InputTokens)
	assert.Equal(t, 0, entries[0].OutputTokens)
	assert.Contains(t, entries[0].Error, "service unavailable")
}

func TestDraftRejectsEmptyCompletionText(t *testing.T) {
	client := &fakeCompletionClient{
		responses: []*CompletionResponse{
			{Text: "   \n", Usage: TokenUsage{InputTokens: 80, OutputTokens: 0}},
		},
	}
	audit := &fakeAuditSink{}
	drafter := newTestDrafter(client, audit)

	_, _, err := drafter.Draft(context.Background(), supportEmail(), passwordMatches())

	var draftErr *DraftingError
	require.ErrorAs(t, err, &draftErr)
	assert.ErrorIs(t, err, ErrMalformedResponse)

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, AuditStatusFailed, entries[0].Status)
}

func TestDraftSurvivesAuditSinkFailure(t *testing.T) {
	client := &fakeCompletionClient{
		responses: []*CompletionResponse{
			{Text: "Hello, here is your answer.", Usage: TokenUsage{InputTokens: 50, OutputTokens: 20}},
		},
	}
	audit := &fakeAuditSink{err: errors.New("disk full")}
	drafter := newTestDrafter(client, audit)

	reply, _, err := drafter.Draft(context.Background(), supportEmail(), passwordMatches())

	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestDraftPromptEmbedsBestMatchAndSupportingEntries(t *testing.T) {
	var captured *CompletionRequest
	client := &capturingCompletionClient{
		response: &CompletionResponse{Text: "Drafted reply."},
		capture:  func(req *CompletionRequest) { captured = req },
	}
	drafter := newTestDrafter(client, &fakeAuditSink{})

	_, _, err := drafter.Draft(context.Background(), supportEmail(), passwordMatches())

	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Contains(t, captured.UserPrompt, "Use the reset link on the login page.")
	assert.Contains(t, captured.UserPrompt, "Supporting entries:")
	assert.Contains(t, captured.UserPrompt, "Open account settings.")
}

// capturingCompletionClient hands each request to a callback before replying.
type capturingCompletionClient struct {
	response *CompletionResponse
	capture  func(*CompletionRequest)
}

func (c *capturingCompletionClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if c.capture != nil {
		c.capture(req)
	}
	return c.response, nil
}
