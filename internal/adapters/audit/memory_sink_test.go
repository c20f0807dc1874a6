package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

func TestMemorySinkAppendsEntries(t *testing.T) {
	sink := NewMemorySink(zap.NewNop())

	err := sink.Append(context.Background(), &core.AuditLogEntry{
		Username:     "support-triage",
		FunctionName: "draft_reply",
		InputTokens:  100,
		OutputTokens: 40,
		Status:       core.AuditStatusSuccess,
		Timestamp:    time.Now(),
	})

	require.NoError(t, err)

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "draft_reply", entries[0].FunctionName)
	assert.Equal(t, core.AuditStatusSuccess, entries[0].Status)
}

func TestMemorySinkRejectsCancelledContext(t *testing.T) {
	sink := NewMemorySink(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sink.Append(ctx, &core.AuditLogEntry{FunctionName: "draft_reply"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.Entries())
}

func TestMemorySinkEntriesReturnsCopy(t *testing.T) {
	sink := NewMemorySink(zap.NewNop())

	require.NoError(t, sink.Append(context.Background(), &core.AuditLogEntry{FunctionName: "draft_reply"}))

	entries := sink.Entries()
	entries[0].FunctionName = "tampered"

	assert.Equal(t, "draft_reply", sink.Entries()[0].FunctionName)
}
