package factory

import (
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/adapters/smtpintake"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
	"github.com/helpdeskhq/support-triage/internal/ports"
)

// IntakeFactory creates email intake endpoints
type IntakeFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewIntakeFactory creates a new intake factory
func NewIntakeFactory(cfg *config.Config, logger *zap.Logger) *IntakeFactory {
	return &IntakeFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateIntake creates the SMTP intake endpoint
func (f *IntakeFactory) CreateIntake(pipeline *core.Pipeline) ports.EmailIntake {
	return smtpintake.NewIntake(pipeline, f.cfg.GetString("intake.listen_address"), f.logger)
}
