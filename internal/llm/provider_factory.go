package llm

import (
	"context"
	"fmt"
	"strings"
)

// ProviderFactory creates chat providers based on the configured model name.
type ProviderFactory struct {
	openaiAPIKey string
	geminiAPIKey string
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey: openaiAPIKey,
		geminiAPIKey: geminiAPIKey,
	}
}

// GetProvider returns the provider for the given model name. Gemini models
// route to the Gemini provider; everything else defaults to OpenAI. A missing
// key for the selected provider returns ErrMissingCredential before any
// network call is made.
func (f *ProviderFactory) GetProvider(ctx context.Context, model string) (Provider, error) {
	if strings.HasPrefix(strings.ToLower(model), "gemini-") {
		if f.geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini (GEMINI_API_KEY): %w", ErrMissingCredential)
		}
		return NewGeminiProvider(ctx, f.geminiAPIKey)
	}

	if f.openaiAPIKey == "" {
		return nil, fmt.Errorf("openai (OPENAI_API_KEY): %w", ErrMissingCredential)
	}
	return NewOpenAIProvider(f.openaiAPIKey), nil
}
