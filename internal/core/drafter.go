package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/retry"
	"github.com/helpdeskhq/support-triage/internal/utils"
)

const drafterSystemPrompt = "You are a customer-support agent drafting a reply email. Respond only with the reply text."

const drafterInstructions = `Write the reply following these steps:
1. Open with a polite greeting addressed to the customer.
2. Acknowledge the customer's concern in one sentence.
3. Answer the question using the knowledge-base answer above.
4. Add any helpful context from the supporting entries, if relevant.
5. Close professionally on behalf of the support team.`

// Drafter composes a reply to a support email from the matched FAQ entries
// by delegating to the completion service. Every invocation appends one
// audit log entry.
type Drafter struct {
	completion    CompletionClient
	audit         AuditSink
	retryOpts     retry.Options
	temperature   float32
	maxPromptSize int
	username      string
	text          *utils.TextProcessor
	logger        *zap.Logger
}

// NewDrafter creates a new reply drafter
func NewDrafter(
	completion CompletionClient,
	audit AuditSink,
	retryOpts retry.Options,
	temperature float32,
	maxPromptSize int,
	username string,
	text *utils.TextProcessor,
	logger *zap.Logger,
) *Drafter {
	return &Drafter{
		completion:    completion,
		audit:         audit,
		retryOpts:     retryOpts,
		temperature:   temperature,
		maxPromptSize: maxPromptSize,
		username:      username,
		text:          text,
		logger:        logger,
	}
}

// Draft produces a reply from the ranked match candidates. It fails with a
// DraftingError when the match set is empty or the completion service
// returns no text.
func (d *Drafter) Draft(ctx context.Context, email *NormalizedEmail, matches []MatchCandidate) (string, TokenUsage, error) {
	if len(matches) == 0 {
		return "", TokenUsage{}, &DraftingError{Reason: "no matched FAQ entries to draft from"}
	}

	prompt := d.buildPrompt(email, matches)

	resp, err := retry.Do(ctx, d.retryOpts, func(ctx context.Context) (*CompletionResponse, error) {
		return d.completion.Complete(ctx, &CompletionRequest{
			SystemPrompt: drafterSystemPrompt,
			UserPrompt:   prompt,
			Temperature:  d.temperature,
		})
	})
	if err != nil {
		d.appendAudit(ctx, TokenUsage{}, "", AuditStatusFailed, err)
		return "", TokenUsage{}, &DraftingError{Reason: "completion service call failed", Err: err}
	}

	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		emptyErr := fmt.Errorf("%w: empty completion text", ErrMalformedResponse)
		d.appendAudit(ctx, resp.Usage, resp.Model, AuditStatusFailed, emptyErr)
		return "", TokenUsage{}, &DraftingError{Reason: "completion service returned no text", Err: emptyErr}
	}

	d.appendAudit(ctx, resp.Usage, resp.Model, AuditStatusSuccess, nil)

	d.logger.Info("Drafted reply",
		zap.String("email_id", email.ID),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	return reply, resp.Usage, nil
}

// buildPrompt embeds the original email, the best match and any secondary
// matches as supporting context.
func (d *Drafter) buildPrompt(email *NormalizedEmail, matches []MatchCandidate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Customer email:\nSubject: %s\nBody:\n%s\n\n",
		email.Subject, d.text.ProcessText(email.Body, d.maxPromptSize))

	best := matches[0]
	fmt.Fprintf(&b, "Best matching knowledge-base entry:\nQ: %s\nA: %s\n\n",
		best.Entry.Question, best.Entry.Answer)

	if len(matches) > 1 {
		b.WriteString("Supporting entries:\n")
		for _, m := range matches[1:] {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", m.Entry.Question, m.Entry.Answer)
		}
		b.WriteString("\n")
	}

	b.WriteString(drafterInstructions)
	return b.String()
}

// appendAudit writes one audit entry per completion invocation. Sink
// failures are logged locally and never abort the run.
func (d *Drafter) appendAudit(ctx context.Context, usage TokenUsage, model string, status AuditStatus, cause error) {
	entry := &AuditLogEntry{
		Username:     d.username,
		FunctionName: "draft_reply",
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		Status:       status,
		Model:        model,
		Timestamp:    time.Now(),
	}
	if status == AuditStatusFailed {
		entry.InputTokens = 0
		entry.OutputTokens = 0
		if cause != nil {
			entry.Error = cause.Error()
		}
	}

	if err := d.audit.Append(ctx, entry); err != nil {
		d.logger.Error("Failed to append audit log entry", zap.Error(err))
	}
}
