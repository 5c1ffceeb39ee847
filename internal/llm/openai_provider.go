package llm

import (
	"context"
	"errors"
	"time"

	"github.com/deposia/avatar-api/internal/logger"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const providerNameOpenAI = "openai"

// OpenAIProvider implements the Provider interface using OpenAI's Chat
// Completions API.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Complete implements one-shot chat completion using OpenAI
func (p *OpenAIProvider) Complete(ctx context.Context, request *CompletionRequest) (*CompletionResult, error) {
	startTime := time.Now()

	transaction := sentry.StartTransaction(ctx, "openai.complete")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	ctx, cancel := context.WithTimeout(ctx, completionTimeoutSeconds*time.Second)
	defer cancel()

	span := transaction.StartChild("openai.api_call")
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(request.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.SystemPrompt),
			openai.UserMessage(request.UserPrompt),
		},
		MaxTokens:   openai.Int(int64(request.MaxTokens)),
		Temperature: openai.Float(request.Temperature),
	})
	span.Finish()

	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, p.wrapError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		transaction.SetTag("success", "false")
		return nil, &RemoteError{Provider: providerNameOpenAI, Message: "response did not include any completion text"}
	}

	logger.Info("OpenAI completion finished", logger.Fields{
		"model":        request.Model,
		"duration_ms":  time.Since(startTime).Milliseconds(),
		"total_tokens": resp.Usage.TotalTokens,
	})

	transaction.SetTag("success", "true")
	return &CompletionResult{
		Text:         resp.Choices[0].Message.Content,
		Model:        resp.Model,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}, nil
}

// wrapError converts SDK and transport errors into RemoteError, keeping the
// provider's raw status and message.
func (p *OpenAIProvider) wrapError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &RemoteError{
			Provider:   providerNameOpenAI,
			StatusCode: apierr.StatusCode,
			Message:    apierr.Error(),
		}
	}
	return &RemoteError{Provider: providerNameOpenAI, Message: err.Error()}
}
