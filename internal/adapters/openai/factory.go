package openai

import (
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
)

// Factory creates new instances of the OpenAI completion client
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAI completion clients
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCompletionClient creates a new OpenAI completion client
func (f *Factory) CreateCompletionClient() (core.CompletionClient, error) {
	openaiCfg := f.cfg.GetOpenAI()

	client := openai.NewClient(openaiCfg.APIKey)

	return NewClient(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.TopP,
		f.logger,
	), nil
}
