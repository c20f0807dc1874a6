package core

import (
	"context"
)

// CompletionRequest is a single request to the LLM completion service.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// CompletionResponse is the text and usage returned by the completion service.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// CompletionClient defines the interface for the LLM completion service.
type CompletionClient interface {
	// Complete generates text for the given request
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)
}

// EmailProvider defines the boundary to the external mailbox. Implementations
// normalize provider messages before returning them.
type EmailProvider interface {
	// ListMessages returns normalized messages matching the provider query
	ListMessages(ctx context.Context, query string, maxResults int64) ([]*NormalizedEmail, error)

	// GetMessage retrieves and normalizes a single message
	GetMessage(ctx context.Context, id string) (*NormalizedEmail, error)

	// GetThread retrieves a thread's messages ordered oldest-first
	GetThread(ctx context.Context, id string) ([]*NormalizedEmail, error)
}

// KnowledgeBase supplies FAQ entries for matching. It is read-only from the
// pipeline's point of view.
type KnowledgeBase interface {
	// Entries returns all FAQ entries
	Entries(ctx context.Context) ([]FAQEntry, error)
}

// AuditSink receives append-only audit log entries, one per LLM invocation.
type AuditSink interface {
	// Append writes a single entry; the entry is fully written or not at all
	Append(ctx context.Context, entry *AuditLogEntry) error
}
