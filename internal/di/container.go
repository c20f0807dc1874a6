package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/adapters/gmail"
	"github.com/helpdeskhq/support-triage/internal/auth"
	"github.com/helpdeskhq/support-triage/internal/batch"
	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
	"github.com/helpdeskhq/support-triage/internal/factory"
	"github.com/helpdeskhq/support-triage/internal/ignore"
	"github.com/helpdeskhq/support-triage/internal/logging"
	"github.com/helpdeskhq/support-triage/internal/ports"
	"github.com/helpdeskhq/support-triage/internal/retry"
	"github.com/helpdeskhq/support-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the mailbox-scanning daemon.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCompletionFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewKnowledgeBaseFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAuditFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGmailFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIntakeFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register retry options
	if err := container.Provide(func(cfg *config.Config) (retry.Options, error) {
		delay, err := cfg.GetDuration("retry.initial_delay")
		if err != nil {
			return retry.Options{}, err
		}
		return retry.Options{
			MaxRetries:   cfg.GetInt("retry.max_retries"),
			InitialDelay: delay,
		}, nil
	}); err != nil {
		return nil, err
	}

	// Register completion client
	if err := container.Provide(func(f *factory.CompletionFactory) (core.CompletionClient, error) {
		return f.CreateCompletionClient()
	}); err != nil {
		return nil, err
	}

	// Register knowledge base
	if err := container.Provide(func(f *factory.KnowledgeBaseFactory) (core.KnowledgeBase, error) {
		return f.CreateKnowledgeBase()
	}); err != nil {
		return nil, err
	}

	// Register audit sink
	if err := container.Provide(func(f *factory.AuditFactory) (core.AuditSink, error) {
		return f.CreateAuditSink()
	}); err != nil {
		return nil, err
	}

	// Register ignored-domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *ignore.Checker {
		return ignore.NewChecker(cfg.GetTriage().IgnoredDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register pipeline components
	if err := container.Provide(func(
		cfg *config.Config,
		completion core.CompletionClient,
		retryOpts retry.Options,
		text *utils.TextProcessor,
		logger *zap.Logger,
	) *core.Classifier {
		return core.NewClassifier(
			completion,
			retryOpts,
			cfg.GetLLMTemperature(),
			cfg.GetLLMMaxPromptSize(),
			text,
			logger,
		)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *core.Matcher {
		triageCfg := cfg.GetTriage()
		return core.NewMatcher(triageCfg.SimilarityFloor, triageCfg.TopK, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		cfg *config.Config,
		completion core.CompletionClient,
		audit core.AuditSink,
		retryOpts retry.Options,
		text *utils.TextProcessor,
		logger *zap.Logger,
	) *core.Drafter {
		return core.NewDrafter(
			completion,
			audit,
			retryOpts,
			cfg.GetLLMTemperature(),
			cfg.GetLLMMaxPromptSize(),
			cfg.GetString("audit.username"),
			text,
			logger,
		)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewPipeline); err != nil {
		return nil, err
	}

	// Register token manager and Gmail provider
	if err := container.Provide(func(f *factory.GmailFactory) (*auth.Manager, error) {
		return f.CreateTokenManager(context.Background())
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.GmailFactory, tokens *auth.Manager, retryOpts retry.Options) (*gmail.Provider, error) {
		return f.CreateProvider(context.Background(), tokens, retryOpts)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(p *gmail.Provider) core.EmailProvider {
		return p
	}); err != nil {
		return nil, err
	}

	// Register mailbox scanner
	if err := container.Provide(func(
		cfg *config.Config,
		provider core.EmailProvider,
		pipeline *core.Pipeline,
		logger *zap.Logger,
	) *batch.Scanner {
		gmailCfg := cfg.GetGmail()
		return batch.NewScanner(
			provider,
			pipeline,
			gmailCfg.Query,
			gmailCfg.MaxResults,
			cfg.GetInt("batch.concurrency"),
			logger,
		)
	}); err != nil {
		return nil, err
	}

	// Register SMTP intake
	if err := container.Provide(func(f *factory.IntakeFactory, pipeline *core.Pipeline) ports.EmailIntake {
		return f.CreateIntake(pipeline)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
