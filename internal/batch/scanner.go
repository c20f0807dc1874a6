// Package batch scans a mailbox and triages each message.
package batch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// Outcome is the settled result of one message's triage run: either a
// complete result or the error that failed it.
type Outcome struct {
	EmailID string
	Result  *core.TriageResult
	Err     error
}

// Scanner lists mailbox messages and runs the full pipeline for each one.
// Independent messages run concurrently up to the configured limit; each
// message settles (Done or Failed) before it is reported.
type Scanner struct {
	provider    core.EmailProvider
	pipeline    *core.Pipeline
	query       string
	maxResults  int64
	concurrency int
	logger      *zap.Logger
}

// NewScanner creates a new mailbox scanner
func NewScanner(
	provider core.EmailProvider,
	pipeline *core.Pipeline,
	query string,
	maxResults int64,
	concurrency int,
	logger *zap.Logger,
) *Scanner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Scanner{
		provider:    provider,
		pipeline:    pipeline,
		query:       query,
		maxResults:  maxResults,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Scan triages every message matching the configured query and returns one
// outcome per message, in listing order.
func (s *Scanner) Scan(ctx context.Context) ([]Outcome, error) {
	emails, err := s.provider.ListMessages(ctx, s.query, s.maxResults)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, nil
	}

	s.logger.Info("Scanning mailbox",
		zap.String("query", s.query),
		zap.Int("messages", len(emails)),
		zap.Int("concurrency", s.concurrency))

	outcomes := make([]Outcome, len(emails))
	semaphore := make(chan struct{}, s.concurrency)

	var wg sync.WaitGroup
	for idx, email := range emails {
		wg.Add(1)
		go func(idx int, email *core.NormalizedEmail) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			result, err := s.pipeline.Run(ctx, email)
			outcomes[idx] = Outcome{EmailID: email.ID, Result: result, Err: err}

			if err != nil {
				var triageErr *core.TriageError
				if errors.As(err, &triageErr) {
					outcomes[idx].Result = triageErr.Partial
				}
				s.logger.Error("Message triage failed",
					zap.String("email_id", email.ID),
					zap.Error(err))
			}
		}(idx, email)
	}
	wg.Wait()

	return outcomes, nil
}
