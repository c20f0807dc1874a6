package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/helpdeskhq/support-triage/internal/retry"
	"github.com/helpdeskhq/support-triage/internal/utils"
)

// fakeCompletionClient returns canned responses and counts invocations.
type fakeCompletionClient struct {
	mu        sync.Mutex
	calls     int
	responses []*CompletionResponse
	errs      []error
}

func (f *fakeCompletionClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	f.calls++

	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	if len(f.responses) > 0 {
		return f.responses[len(f.responses)-1], nil
	}
	return nil, errors.New("no canned response")
}

func (f *fakeCompletionClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testRetryOptions() retry.Options {
	return retry.Options{MaxRetries: 1, InitialDelay: 1}
}

func newTestClassifier(client CompletionClient) *Classifier {
	return NewClassifier(client, testRetryOptions(), 0.2, 4096, utils.NewTextProcessor(zap.NewNop()), zap.NewNop())
}

func TestClassifyRejectsEmptyEmailWithoutCompletionCall(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
	}{
		{name: "blank subject and body", subject: "", body: ""},
		{name: "placeholder subject and body", subject: "No Subject", body: "No content available"},
		{name: "whitespace only", subject: "   ", body: "  \n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeCompletionClient{}
			classifier := newTestClassifier(client)

			result := classifier.Classify(context.Background(), &NormalizedEmail{
				ID:      "msg-1",
				Subject: tt.subject,
				Body:    tt.body,
			})

			assert.False(t, result.IsSupport)
			assert.Equal(t, 0.0, result.Confidence)
			assert.Equal(t, "no content to analyze", result.Reason)
			assert.Equal(t, 0, client.callCount())
		})
	}
}

func TestClassifyParsesWellFormedResponse(t *testing.T) {
	client := &fakeCompletionClient{
		responses: []*CompletionResponse{
			{Text: `{"isSupport": true, "confidence": 0.92, "reason": "asks about billing"}`},
		},
	}
	classifier := newTestClassifier(client)

	result := classifier.Classify(context.Background(), &NormalizedEmail{
		ID:      "msg-2",
		Subject: "Billing question",
		Body:    "Why was I charged twice?",
	})

	assert.True(t, result.IsSupport)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, "asks about billing", result.Reason)
	assert.Equal(t, 1, client.callCount())
}

func TestClassifyExtractsJSONWrappedInProse(t *testing.T) {
	client := &fakeCompletionClient{
		responses: []*CompletionResponse{
			{Text: "Here is my assessment:\n{\"isSupport\": true, \"confidence\": 0.7, \"reason\": \"support request\"}\nHope that helps."},
		},
	}
	classifier := newTestClassifier(client)

	result := classifier.Classify(context.Background(), &NormalizedEmail{
		ID:      "msg-3",
		Subject: "Login help",
		Body:    "I cannot log in.",
	})

	assert.True(t, result.IsSupport)
	assert.Equal(t, 0.7, result.Confidence)
}

func TestClassifyDegradesOnMalformedResponse(t *testing.T) {
	client := &fakeCompletionClient{
		responses: []*CompletionResponse{
			{Text: "I think this is probably a support email."},
		},
	}
	classifier := newTestClassifier(client)

	result := classifier.Classify(context.Background(), &NormalizedEmail{
		ID:      "msg-4",
		Subject: "Help",
		Body:    "Something is broken.",
	})

	assert.False(t, result.IsSupport)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Contains(t, result.Reason, "classification failed")
}

func TestClassifyDegradesWhenCompletionFails(t *testing.T) {
	client := &fakeCompletionClient{
		errs: []error{errors.New("service unavailable"), errors.New("service unavailable")},
	}
	classifier := newTestClassifier(client)

	result := classifier.Classify(context.Background(), &NormalizedEmail{
		ID:      "msg-5",
		Subject: "Help",
		Body:    "Something is broken.",
	})

	assert.False(t, result.IsSupport)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Contains(t, result.Reason, "classification failed")
	// Initial attempt plus one retry
	assert.Equal(t, 2, client.callCount())
}

func TestClassifyClampsConfidence(t *testing.T) {
	client := &fakeCompletionClient{
		responses: []*CompletionResponse{
			{Text: `{"isSupport": true, "confidence": 1.7, "reason": "very sure"}`},
		},
	}
	classifier := newTestClassifier(client)

	result := classifier.Classify(context.Background(), &NormalizedEmail{
		ID:      "msg-6",
		Subject: "Refund",
		Body:    "Please refund my order.",
	})

	assert.Equal(t, 1.0, result.Confidence)
}
