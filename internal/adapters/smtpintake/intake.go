// Package smtpintake accepts copies of support-mailbox messages over SMTP
// and feeds them through the triage pipeline, for deployments that BCC the
// triage host instead of granting mailbox API access.
package smtpintake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/adapters/rawmail"
	"github.com/helpdeskhq/support-triage/internal/core"
)

// Intake is an SMTP endpoint implementing the EmailIntake interface
type Intake struct {
	pipeline   *core.Pipeline
	logger     *zap.Logger
	listenAddr string
	server     *smtp.Server
	runTimeout time.Duration
}

// NewIntake creates a new SMTP intake
func NewIntake(pipeline *core.Pipeline, listenAddr string, logger *zap.Logger) *Intake {
	return &Intake{
		pipeline:   pipeline,
		logger:     logger,
		listenAddr: listenAddr,
		runTimeout: 2 * time.Minute,
	}
}

// Start starts the SMTP intake service
func (i *Intake) Start() error {
	i.server = smtp.NewServer(&smtpBackend{intake: i})

	i.server.Addr = i.listenAddr
	i.server.Domain = "localhost"
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP intake starting", zap.String("address", i.listenAddr))

	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				i.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP intake service
func (i *Intake) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// handleMessage normalizes one accepted message and runs a full triage run.
// The message is always accepted at the SMTP level; triage failures are
// logged, never bounced.
func (i *Intake) handleMessage(sender string, data []byte) {
	email, err := rawmail.Normalize(bytes.NewReader(data))
	if err != nil {
		i.logger.Error("Failed to parse intake message",
			zap.String("sender", sender),
			zap.Error(err))
		return
	}
	if email.Sender == "Unknown Sender" && sender != "" {
		email.Sender = sender
	}
	if email.ReceivedAt == 0 {
		email.ReceivedAt = time.Now().UnixMilli()
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.runTimeout)
	defer cancel()

	result, err := i.pipeline.Run(ctx, email)
	if err != nil {
		var triageErr *core.TriageError
		if errors.As(err, &triageErr) {
			i.logger.Error("Triage run failed",
				zap.String("email_id", email.ID),
				zap.String("stage", string(triageErr.Stage)),
				zap.Error(triageErr.Err))
		} else {
			i.logger.Error("Triage run failed", zap.String("email_id", email.ID), zap.Error(err))
		}
		return
	}

	i.logger.Info("Intake message triaged",
		zap.String("email_id", email.ID),
		zap.String("sender", email.Sender),
		zap.Bool("is_support", result.Classification.IsSupport),
		zap.Int("matches", len(result.Matches)),
		zap.Bool("drafted", result.DraftReply != ""))
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *Intake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		intake:     b.intake,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *Intake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the intake)
func (s *smtpSession) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data accepts the message and triages it asynchronously so slow completion
// calls never hold the SMTP connection open.
func (s *smtpSession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return fmt.Errorf("failed to read message data: %w", err)
	}

	go s.intake.handleMessage(s.sender, data)
	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
