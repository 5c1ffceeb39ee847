// Package image calls a Together-compatible image-generation endpoint.
package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deposia/avatar-api/internal/llm"
	"github.com/deposia/avatar-api/internal/logger"
	"github.com/getsentry/sentry-go"
)

const (
	providerName = "image"

	// image generation is slower than chat; allow up to a minute
	generateTimeout = 60 * time.Second

	// ResponseFormatURL asks the provider for a hosted image URL.
	ResponseFormatURL = "url"
	// ResponseFormatB64 asks for inline base64 image data.
	ResponseFormatB64 = "b64_json"
)

// Generator is the boundary the pipeline depends on; satisfied by Client
// and by test fakes.
type Generator interface {
	Generate(ctx context.Context, request *GenerateRequest) (*GenerateResult, error)
}

// GenerateRequest carries one image-generation call's parameters.
type GenerateRequest struct {
	Model          string
	Prompt         string
	Width          int
	Height         int
	Steps          int
	Count          int
	ResponseFormat string
}

// GenerateResult holds the first returned image reference: a hosted URL or
// a base64 data URI, depending on the requested response format.
type GenerateResult struct {
	Reference string
}

// Client wraps the image provider's HTTP API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new image-generation client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: generateTimeout,
		},
	}
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate issues one image-generation request and extracts the first
// returned image reference. An empty data array is a failure, not a
// degenerate success. No retries are attempted.
func (c *Client) Generate(ctx context.Context, request *GenerateRequest) (*GenerateResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("image provider (TOGETHER_API_KEY): %w", llm.ErrMissingCredential)
	}

	startTime := time.Now()
	transaction := sentry.StartTransaction(ctx, "image.generate")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerName)

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	payload := generationRequest{
		Model:          request.Model,
		Prompt:         request.Prompt,
		Width:          request.Width,
		Height:         request.Height,
		Steps:          request.Steps,
		N:              request.Count,
		ResponseFormat: request.ResponseFormat,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	span := transaction.StartChild("image.api_call")
	resp, err := c.httpClient.Do(httpReq)
	span.Finish()
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, &llm.RemoteError{Provider: providerName, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		transaction.SetTag("success", "false")
		return nil, &llm.RemoteError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var result generationResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		transaction.SetTag("success", "false")
		return nil, &llm.RemoteError{Provider: providerName, Message: "malformed response: " + err.Error()}
	}

	if len(result.Data) == 0 {
		transaction.SetTag("success", "false")
		return nil, &llm.RemoteError{Provider: providerName, Message: "provider returned zero images"}
	}

	reference := result.Data[0].URL
	if reference == "" && result.Data[0].B64JSON != "" {
		reference = "data:image/png;base64," + result.Data[0].B64JSON
	}
	if reference == "" {
		transaction.SetTag("success", "false")
		return nil, &llm.RemoteError{Provider: providerName, Message: "response missing image reference"}
	}

	logger.Info("Image generation finished", logger.Fields{
		"model":       request.Model,
		"duration_ms": time.Since(startTime).Milliseconds(),
	})

	transaction.SetTag("success", "true")
	return &GenerateResult{Reference: reference}, nil
}
