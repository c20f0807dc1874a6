package gemini

import (
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
)

// Factory creates new instances of the Gemini completion client
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for Gemini completion clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCompletionClient creates a new Gemini completion client
func (f *Factory) CreateCompletionClient() (core.CompletionClient, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewClient(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.TopP,
		f.logger,
	)
}
