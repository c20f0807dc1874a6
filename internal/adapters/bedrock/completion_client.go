package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/core"
)

// Client is an implementation of the CompletionClient interface using Amazon Bedrock
type Client struct {
	client    *bedrockruntime.Client
	modelID   string
	maxTokens int
	topP      float32
	logger    *zap.Logger
}

// NewClient creates a new Bedrock completion client
func NewClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	topP float32,
	logger *zap.Logger,
) *Client {
	return &Client{
		client:    client,
		modelID:   modelID,
		maxTokens: maxTokens,
		topP:      topP,
		logger:    logger,
	}
}

// Complete generates text for the given request. The invoke payload and
// response shape depend on the model family.
func (c *Client) Complete(ctx context.Context, req *core.CompletionRequest) (*core.CompletionResponse, error) {
	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        c.maxTokens,
			"temperature":       req.Temperature,
			"top_p":             c.topP,
			"system":            req.SystemPrompt,
			"messages": []map[string]interface{}{
				{"role": "user", "content": req.UserPrompt},
			},
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": req.SystemPrompt + "\n\n" + req.UserPrompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   req.Temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      req.SystemPrompt + "\n\n" + req.UserPrompt,
			"max_tokens":  c.maxTokens,
			"temperature": req.Temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, usage, err := c.parseResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock completion finished",
		zap.String("model", c.modelID),
		zap.Int("prompt_tokens", usage.InputTokens),
		zap.Int("completion_tokens", usage.OutputTokens))

	return &core.CompletionResponse{
		Text:  text,
		Usage: usage,
		Model: c.modelID,
	}, nil
}

// parseResponse extracts text and token usage per model family.
func (c *Client) parseResponse(body []byte) (string, core.TokenUsage, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			Usage struct {
				InputTokens  int `json:"input_tokens"`
				OutputTokens int `json:"output_tokens"`
			} `json:"usage"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", core.TokenUsage{}, fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		if len(claudeResp.Content) == 0 {
			return "", core.TokenUsage{}, fmt.Errorf("empty response from Claude model")
		}
		return claudeResp.Content[0].Text, core.TokenUsage{
			InputTokens:  claudeResp.Usage.InputTokens,
			OutputTokens: claudeResp.Usage.OutputTokens,
		}, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			InputTextTokenCount int `json:"inputTextTokenCount"`
			Results             []struct {
				TokenCount int    `json:"tokenCount"`
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", core.TokenUsage{}, fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", core.TokenUsage{}, fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, core.TokenUsage{
			InputTokens:  titanResp.InputTextTokenCount,
			OutputTokens: titanResp.Results[0].TokenCount,
		}, nil
	}

	// Generic fallback: usage is not reported by unknown model families
	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", core.TokenUsage{}, fmt.Errorf("failed to unmarshal generic response: %w", err)
	}

	switch {
	case genericResp.Output != "":
		return genericResp.Output, core.TokenUsage{}, nil
	case genericResp.Text != "":
		return genericResp.Text, core.TokenUsage{}, nil
	case genericResp.Response != "":
		return genericResp.Response, core.TokenUsage{}, nil
	}
	return string(body), core.TokenUsage{}, nil
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *Client) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *Client) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
