// Package gmail implements the email provider boundary over the Gmail API.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/helpdeskhq/support-triage/internal/auth"
	"github.com/helpdeskhq/support-triage/internal/core"
	"github.com/helpdeskhq/support-triage/internal/retry"
)

// Provider implements core.EmailProvider against a Gmail mailbox. All calls
// read the credential through the token manager at request time.
type Provider struct {
	service   *gmail.Service
	tokens    *auth.Manager
	retryOpts retry.Options
	logger    *zap.Logger
}

// NewProvider creates a provider whose HTTP client authenticates through the
// token manager.
func NewProvider(ctx context.Context, tokens *auth.Manager, retryOpts retry.Options, logger *zap.Logger) (*Provider, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokens))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Provider{
		service:   service,
		tokens:    tokens,
		retryOpts: retryOpts,
		logger:    logger,
	}, nil
}

// ListMessages lists mailbox messages matching query and normalizes each.
func (p *Provider) ListMessages(ctx context.Context, query string, maxResults int64) ([]*core.NormalizedEmail, error) {
	resp, err := call(ctx, p, func(ctx context.Context) (*gmail.ListMessagesResponse, error) {
		req := p.service.Users.Messages.List("me")
		if query != "" {
			req = req.Q(query)
		}
		if maxResults > 0 {
			req = req.MaxResults(maxResults)
		}
		return req.Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	emails := make([]*core.NormalizedEmail, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		email, err := p.GetMessage(ctx, m.Id)
		if err != nil {
			p.logger.Warn("Skipping message that could not be fetched",
				zap.String("message_id", m.Id),
				zap.Error(err))
			continue
		}
		emails = append(emails, email)
	}

	return emails, nil
}

// GetMessage retrieves one message and normalizes it.
func (p *Provider) GetMessage(ctx context.Context, id string) (*core.NormalizedEmail, error) {
	msg, err := call(ctx, p, func(ctx context.Context) (*gmail.Message, error) {
		return p.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	return Normalize(msg), nil
}

// GetThread retrieves a thread's messages ordered oldest-first.
func (p *Provider) GetThread(ctx context.Context, id string) ([]*core.NormalizedEmail, error) {
	thread, err := call(ctx, p, func(ctx context.Context) (*gmail.Thread, error) {
		return p.service.Users.Threads.Get("me", id).Format("full").Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", id, err)
	}

	return NormalizeThread(thread), nil
}

// call runs op with backoff retry for transient failures. An expired
// credential bypasses timed retry: the cached token is invalidated and the
// operation retried exactly once with a fresh credential.
func call[T any](ctx context.Context, p *Provider, op func(ctx context.Context) (T, error)) (T, error) {
	classified := func(ctx context.Context) (T, error) {
		result, err := op(ctx)
		if err != nil {
			return result, classifyError(err)
		}
		return result, nil
	}

	result, err := retry.Do(ctx, p.retryOpts, classified)
	if errors.Is(err, core.ErrAuthExpired) {
		p.logger.Info("Credential rejected by provider, refreshing and retrying once")
		p.tokens.Invalidate()

		result, err = op(ctx)
		if err != nil {
			var zero T
			return zero, classifyError(err)
		}
		return result, nil
	}

	return result, err
}

// classifyError maps provider failures onto the error taxonomy: 401 expired
// credential and 403 quota/permission are not worth timed retry; everything
// else is treated as transient.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return retry.Permanent(fmt.Errorf("%w: %v", core.ErrAuthExpired, err))
		case http.StatusForbidden:
			return retry.Permanent(fmt.Errorf("%w: %v", core.ErrFatalExternal, err))
		}
	}
	return err
}
