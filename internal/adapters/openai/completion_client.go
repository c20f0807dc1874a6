package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// Client is an implementation of the CompletionClient interface using OpenAI
type Client struct {
	client    *openai.Client
	modelName string
	maxTokens int
	topP      float32
	logger    *zap.Logger
}

// NewClient creates a new OpenAI completion client
func NewClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	topP float32,
	logger *zap.Logger,
) *Client {
	return &Client{
		client:    client,
		modelName: modelName,
		maxTokens: maxTokens,
		topP:      topP,
		logger:    logger,
	}
}

// Complete generates text for the given request
func (c *Client) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.UserPrompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: req.Temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("OpenAI completion finished",
		zap.String("model", c.modelName),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return &core.CompletionResponse{
		Text: resp.Choices[0].Message.Content,
		Usage: core.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Model: c.modelName,
	}, nil
}
