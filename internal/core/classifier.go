package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/retry"
	"github.com/helpdeskhq/support-triage/internal/utils"
)

const classifierSystemPrompt = "You are a customer-support triage assistant. Respond only with JSON."

const classifierPromptFormat = `Decide whether the following email is a customer-support request.
Respond with a JSON object containing exactly these keys:
- isSupport: boolean (true if the email is a support request, false if not)
- confidence: number between 0 and 1 (how confident you are in your assessment)
- reason: string (brief explanation of your decision)

Email:
From: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// Classifier decides whether an email is support-related by delegating to
// the completion service. Failures never propagate: any error degrades to a
// conservative "not support" result.
type Classifier struct {
	completion    CompletionClient
	retryOpts     retry.Options
	temperature   float32
	maxPromptSize int
	text          *utils.TextProcessor
	logger        *zap.Logger
}

// NewClassifier creates a new support classifier
func NewClassifier(
	completion CompletionClient,
	retryOpts retry.Options,
	temperature float32,
	maxPromptSize int,
	text *utils.TextProcessor,
	logger *zap.Logger,
) *Classifier {
	return &Classifier{
		completion:    completion,
		retryOpts:     retryOpts,
		temperature:   temperature,
		maxPromptSize: maxPromptSize,
		text:          text,
		logger:        logger,
	}
}

// Classify gates an email as support or not. Emails with no usable content
// are rejected locally without spending completion budget.
func (c *Classifier) Classify(ctx context.Context, email *NormalizedEmail) ClassificationResult {
	subject := strings.TrimSpace(email.Subject)
	body := strings.TrimSpace(email.Body)
	if (subject == "" || subject == "No Subject") && (body == "" || body == "No content available") {
		return ClassificationResult{
			IsSupport:  false,
			Confidence: 0,
			Reason:     "no content to analyze",
		}
	}

	processedBody := c.text.ProcessText(email.Body, c.maxPromptSize)
	prompt := fmt.Sprintf(classifierPromptFormat, email.Sender, email.Subject, processedBody)

	resp, err := retry.Do(ctx, c.retryOpts, func(ctx context.Context) (*CompletionResponse, error) {
		return c.completion.Complete(ctx, &CompletionRequest{
			SystemPrompt: classifierSystemPrompt,
			UserPrompt:   prompt,
			Temperature:  c.temperature,
		})
	})
	if err != nil {
		c.logger.Warn("Classification call failed, treating as not support",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return ClassificationResult{
			IsSupport:  false,
			Confidence: 0,
			Reason:     fmt.Sprintf("classification failed: %v", err),
		}
	}

	result, err := parseClassification(resp.Text)
	if err != nil {
		c.logger.Warn("Classification response unparseable, treating as not support",
			zap.String("email_id", email.ID),
			zap.Error(err))
		return ClassificationResult{
			IsSupport:  false,
			Confidence: 0,
			Reason:     fmt.Sprintf("classification failed: %v", err),
		}
	}

	return result
}

// parseClassification parses the completion text as a strict JSON object with
// exactly the keys isSupport, confidence and reason. Models occasionally wrap
// the object in prose, so the outermost braces are extracted first.
func parseClassification(text string) (ClassificationResult, error) {
	jsonStr, ok := extractJSONObject(text)
	if !ok {
		return ClassificationResult{}, fmt.Errorf("%w: no JSON object in response", ErrMalformedResponse)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(jsonStr)))
	dec.DisallowUnknownFields()

	var result ClassificationResult
	if err := dec.Decode(&result); err != nil {
		return ClassificationResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return result, nil
}

// extractJSONObject returns the substring between the first '{' and the last
// '}' of text, if both exist.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	return text[start : end+1], true
}
