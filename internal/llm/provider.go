package llm

import (
	"context"
	"errors"
	"fmt"
)

// chat providers must answer within this bound; a slow provider surfaces as
// a RemoteError, never a hang.
const completionTimeoutSeconds = 30

// ErrMissingCredential indicates no API key is configured for the selected
// provider. Callers distinguish this from a remote failure: nothing was sent
// over the network.
var ErrMissingCredential = errors.New("no API key configured")

// RemoteError reports a failed provider call: non-success status, timeout,
// or a response missing the expected content. The raw status and message are
// preserved for diagnosis.
type RemoteError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// Provider defines the interface for chat-completion providers.
type Provider interface {
	// Complete issues one blocking chat-completion call and returns the
	// first completion's text. No retries are attempted.
	Complete(ctx context.Context, request *CompletionRequest) (*CompletionResult, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// CompletionRequest contains all parameters for a single chat completion.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// CompletionResult contains the first completion's text plus token usage
// for metrics and observability.
type CompletionResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
