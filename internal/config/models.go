package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey        string
	ModelName     string
	MaxTokens     int
	Temperature   float32
	TopP          float32
	MaxPromptSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey        string
	ModelName     string
	MaxTokens     int
	Temperature   float32
	TopP          float32
	MaxPromptSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region        string
	ModelID       string
	MaxTokens     int
	Temperature   float32
	TopP          float32
	MaxPromptSize int
}

// GmailConfig represents the configuration for the Gmail provider
type GmailConfig struct {
	CredentialsFile string
	TokenFile       string
	Query           string
	MaxResults      int64
}

// TriageConfig represents the matching configuration
type TriageConfig struct {
	SimilarityFloor float64
	TopK            int
	IgnoredDomains  []string
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:        c.GetString("openai.api_key"),
		ModelName:     c.GetString("openai.model_name"),
		MaxTokens:     c.GetInt("openai.max_tokens"),
		Temperature:   float32(c.GetFloat64("openai.temperature")),
		TopP:          float32(c.GetFloat64("openai.top_p")),
		MaxPromptSize: c.GetInt("openai.max_prompt_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:        c.GetString("gemini.api_key"),
		ModelName:     c.GetString("gemini.model_name"),
		MaxTokens:     c.GetInt("gemini.max_tokens"),
		Temperature:   float32(c.GetFloat64("gemini.temperature")),
		TopP:          float32(c.GetFloat64("gemini.top_p")),
		MaxPromptSize: c.GetInt("gemini.max_prompt_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:        c.GetString("bedrock.region"),
		ModelID:       c.GetString("bedrock.model_id"),
		MaxTokens:     c.GetInt("bedrock.max_tokens"),
		Temperature:   float32(c.GetFloat64("bedrock.temperature")),
		TopP:          float32(c.GetFloat64("bedrock.top_p")),
		MaxPromptSize: c.GetInt("bedrock.max_prompt_size"),
	}
}

// GetGmail returns the Gmail provider configuration
func (c *Config) GetGmail() GmailConfig {
	return GmailConfig{
		CredentialsFile: c.GetString("gmail.credentials_file"),
		TokenFile:       c.GetString("gmail.token_file"),
		Query:           c.GetString("gmail.query"),
		MaxResults:      c.GetInt64("gmail.max_results"),
	}
}

// GetTriage returns the triage matching configuration
func (c *Config) GetTriage() TriageConfig {
	return TriageConfig{
		SimilarityFloor: c.GetFloat64("triage.similarity_floor"),
		TopK:            c.GetInt("triage.top_k"),
		IgnoredDomains:  c.GetStringSlice("triage.ignored_domains"),
	}
}

// GetLLMTemperature returns the generation temperature for the active provider
func (c *Config) GetLLMTemperature() float32 {
	switch c.GetString("llm.provider") {
	case "gemini":
		return float32(c.GetFloat64("gemini.temperature"))
	case "bedrock":
		return float32(c.GetFloat64("bedrock.temperature"))
	default:
		return float32(c.GetFloat64("openai.temperature"))
	}
}

// GetLLMMaxPromptSize returns the prompt size budget for the active provider
func (c *Config) GetLLMMaxPromptSize() int {
	switch c.GetString("llm.provider") {
	case "gemini":
		return c.GetInt("gemini.max_prompt_size")
	case "bedrock":
		return c.GetInt("bedrock.max_prompt_size")
	default:
		return c.GetInt("openai.max_prompt_size")
	}
}
