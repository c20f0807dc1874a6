package core

import (
	"time"
)

// ContentType identifies the body format of a normalized email.
type ContentType string

const (
	ContentTypeText ContentType = "text"
	ContentTypeHTML ContentType = "html"
)

// NormalizedEmail is the canonical record produced from one raw provider
// message. It is immutable once produced; raw provider shapes never leak
// past the normalization boundary.
type NormalizedEmail struct {
	ID              string
	ThreadID        string
	Subject         string
	Sender          string
	ReceivedAt      int64 // epoch milliseconds, 0 means unknown
	Body            string
	BodyContentType ContentType
}

// FAQEntry is a stored question/answer pair used as ground truth for
// automated replies. The knowledge base is consumed read-only.
type FAQEntry struct {
	ID        string `json:"id" mapstructure:"id"`
	Question  string `json:"question" mapstructure:"question"`
	Answer    string `json:"answer" mapstructure:"answer"`
	Category  string `json:"category" mapstructure:"category"`
	Frequency int    `json:"frequency" mapstructure:"frequency"`
}

// MatchCandidate pairs an FAQ entry with its similarity score against an
// incoming email. Candidate sequences are ordered descending by score.
type MatchCandidate struct {
	Entry FAQEntry
	Score float64
}

// ClassificationResult is the outcome of the support/not-support gate.
// Confidence is advisory only; thresholds are the caller's business.
type ClassificationResult struct {
	IsSupport  bool    `json:"isSupport"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// TokenUsage holds the token counts reported by the completion service.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// TriageResult is the final product of one triage run. It is created once
// per run and never mutated after construction.
type TriageResult struct {
	Email          NormalizedEmail
	Classification ClassificationResult
	Matches        []MatchCandidate
	DraftReply     string
	Usage          TokenUsage
}

// AuditStatus is the outcome recorded for one LLM invocation.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditLogEntry records one LLM invocation. The audit log is append-only.
type AuditLogEntry struct {
	Username     string
	FunctionName string
	InputTokens  int
	OutputTokens int
	Status       AuditStatus
	Model        string
	Error        string
	Timestamp    time.Time
}
