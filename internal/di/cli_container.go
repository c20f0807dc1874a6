package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/config"
	"github.com/helpdeskhq/support-triage/internal/core"
	"github.com/helpdeskhq/support-triage/internal/factory"
	"github.com/helpdeskhq/support-triage/internal/ignore"
	"github.com/helpdeskhq/support-triage/internal/logging"
	"github.com/helpdeskhq/support-triage/internal/retry"
	"github.com/helpdeskhq/support-triage/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider      string
	MaxTokens     int
	Temperature   float64
	TopP          float64
	MaxPromptSize int

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Matching flags
	SimilarityFloor float64
	TopK            int

	// Knowledge base flags
	KBType       string
	KBSQLitePath string
	KBMySQLDSN   string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// LLM provider flags
	flag.StringVar(&flags.Provider, "provider", "openai", "LLM provider (openai, gemini, bedrock)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.2, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxPromptSize, "max-prompt-size", 4096, "Maximum email body size to embed in prompts")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Matching flags
	flag.Float64Var(&flags.SimilarityFloor, "similarity-floor", 0.15, "Minimum similarity score for FAQ matches")
	flag.IntVar(&flags.TopK, "top-k", 3, "Maximum number of FAQ matches to keep")

	// Knowledge base flags
	flag.StringVar(&flags.KBType, "kb-type", "sqlite", "Knowledge base type (memory, sqlite, mysql)")
	flag.StringVar(&flags.KBSQLitePath, "kb-sqlite", "faq.db", "Path to the SQLite FAQ database")
	flag.StringVar(&flags.KBMySQLDSN, "kb-mysql-dsn", "", "MySQL DSN for the FAQ database")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container
// for the one-shot CLI application.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
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

	// Register empty ignored-domain checker for CLI
	if err := container.Provide(func(logger *zap.Logger) *ignore.Checker {
		return ignore.NewChecker(nil, logger)
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

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_prompt_size", flags.MaxPromptSize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_prompt_size", flags.MaxPromptSize)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_prompt_size", flags.MaxPromptSize)
	}

	// Set matching configuration
	v.Set("triage.similarity_floor", flags.SimilarityFloor)
	v.Set("triage.top_k", flags.TopK)

	// Set knowledge base configuration
	v.Set("kb.type", flags.KBType)
	v.Set("kb.sqlite_path", flags.KBSQLitePath)
	v.Set("kb.mysql_dsn", flags.KBMySQLDSN)

	// Audit stays in memory for one-shot runs
	v.Set("audit.type", "memory")

	return config.NewFromViper(v)
}
