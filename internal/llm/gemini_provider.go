package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deposia/avatar-api/internal/logger"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const providerNameGemini = "gemini"

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Complete implements one-shot chat completion using Gemini
func (p *GeminiProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResult, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "gemini.complete")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	ctx, cancel := context.WithTimeout(ctx, completionTimeoutSeconds*time.Second)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		},
		MaxOutputTokens: int32(request.MaxTokens),
		Temperature:     genai.Ptr(float32(request.Temperature)),
	}

	span := transaction.StartChild("gemini.api_call")
	result, err := p.client.Models.GenerateContent(ctx, request.Model, genai.Text(request.UserPrompt), config)
	span.Finish()

	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, &RemoteError{Provider: providerNameGemini, Message: err.Error()}
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		transaction.SetTag("success", "false")
		return nil, &RemoteError{Provider: providerNameGemini, Message: "response did not include any completion text"}
	}

	completion := &CompletionResult{
		Text:  text,
		Model: request.Model,
	}
	if result.UsageMetadata != nil {
		completion.InputTokens = int(result.UsageMetadata.PromptTokenCount)
		completion.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
		completion.TotalTokens = int(result.UsageMetadata.TotalTokenCount)
	}

	logger.Info("Gemini completion finished", logger.Fields{
		"model":        request.Model,
		"duration_ms":  time.Since(startTime).Milliseconds(),
		"total_tokens": completion.TotalTokens,
	})

	transaction.SetTag("success", "true")
	return completion, nil
}
