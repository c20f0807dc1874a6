package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/ignore"
)

// Pipeline orchestrates one triage run: classification gate, FAQ matching
// and reply drafting. Runs are independent; concurrent runs share only the
// audit sink and the credential manager, both safe for concurrent use.
type Pipeline struct {
	classifier *Classifier
	matcher    *Matcher
	drafter    *Drafter
	kb         KnowledgeBase
	ignored    *ignore.Checker
	logger     *zap.Logger
}

// NewPipeline creates a new triage pipeline
func NewPipeline(
	classifier *Classifier,
	matcher *Matcher,
	drafter *Drafter,
	kb KnowledgeBase,
	ignored *ignore.Checker,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		matcher:    matcher,
		drafter:    drafter,
		kb:         kb,
		ignored:    ignored,
		logger:     logger,
	}
}

// RunMessage fetches and normalizes a single provider message, then triages
// it. Normalization never fails beyond the provider fetch itself.
func (p *Pipeline) RunMessage(ctx context.Context, provider EmailProvider, id string) (*TriageResult, error) {
	email, err := provider.GetMessage(ctx, id)
	if err != nil {
		return nil, &TriageError{Stage: StageNormalizing, Err: fmt.Errorf("failed to fetch message %s: %w", id, err)}
	}
	return p.Run(ctx, email)
}

// Run triages one normalized email. Callers always receive either a complete
// TriageResult or a TriageError carrying the partial result and the cause.
func (p *Pipeline) Run(ctx context.Context, email *NormalizedEmail) (*TriageResult, error) {
	if email == nil {
		return nil, &TriageError{Stage: StageNormalizing, Err: fmt.Errorf("nil email")}
	}

	// Classifying. Ignored sender domains are rejected locally; everything
	// else goes through the classifier, which never fails.
	var classification ClassificationResult
	if p.ignored.IsIgnored(email.Sender) {
		classification = ClassificationResult{
			IsSupport:  false,
			Confidence: 1,
			Reason:     "sender domain is on the ignore list",
		}
	} else {
		classification = p.classifier.Classify(ctx, email)
	}

	if !classification.IsSupport {
		p.logger.Info("Email classified as not support, stopping",
			zap.String("email_id", email.ID),
			zap.String("reason", classification.Reason))
		return &TriageResult{
			Email:          *email,
			Classification: classification,
			Matches:        []MatchCandidate{},
		}, nil
	}

	// Matching
	entries, err := p.kb.Entries(ctx)
	if err != nil {
		return nil, &TriageError{
			Stage: StageMatching,
			Partial: &TriageResult{
				Email:          *email,
				Classification: classification,
				Matches:        []MatchCandidate{},
			},
			Err: fmt.Errorf("failed to load knowledge base: %w", err),
		}
	}

	matches := p.matcher.Match(email, entries)
	if len(matches) == 0 {
		p.logger.Info("No FAQ entry cleared the similarity floor, stopping",
			zap.String("email_id", email.ID))
		return &TriageResult{
			Email:          *email,
			Classification: classification,
			Matches:        matches,
		}, nil
	}

	// Drafting
	reply, usage, err := p.drafter.Draft(ctx, email, matches)
	if err != nil {
		return nil, &TriageError{
			Stage: StageDrafting,
			Partial: &TriageResult{
				Email:          *email,
				Classification: classification,
				Matches:        matches,
			},
			Err: err,
		}
	}

	result := &TriageResult{
		Email:          *email,
		Classification: classification,
		Matches:        matches,
		DraftReply:     reply,
		Usage:          usage,
	}

	p.logger.Info("Triage run complete",
		zap.String("email_id", email.ID),
		zap.Int("matches", len(matches)),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens))

	return result, nil
}
