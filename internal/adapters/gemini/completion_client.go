package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// Client is an implementation of the CompletionClient interface using Google Gemini
type Client struct {
	client    *genai.Client
	modelName string
	maxTokens int
	topP      float32
	logger    *zap.Logger
}

// NewClient creates a new Gemini completion client
func NewClient(
	apiKey string,
	modelName string,
	maxTokens int,
	topP float32,
	logger *zap.Logger,
) (*Client, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
		topP:      topP,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Complete generates text for the given request
func (c *Client) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(req.Temperature)
	model.SetTopP(c.topP)
	model.SetMaxOutputTokens(int32(c.maxTokens))
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	usage := core.TokenUsage{}
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	c.logger.Debug("Gemini completion finished",
		zap.String("model", c.modelName),
		zap.Int("prompt_tokens", usage.InputTokens),
		zap.Int("completion_tokens", usage.OutputTokens))

	return &core.CompletionResponse{
		Text:  b.String(),
		Usage: usage,
		Model: c.modelName,
	}, nil
}
