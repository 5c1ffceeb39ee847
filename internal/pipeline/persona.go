package pipeline

import (
	"context"
	"strings"

	"github.com/deposia/avatar-api/internal/image"
	"github.com/deposia/avatar-api/internal/llm"
	"github.com/deposia/avatar-api/internal/observability"
	"github.com/deposia/avatar-api/internal/prompt"
)

// summarizer sampling: short output, near-deterministic
const (
	summaryMaxTokens   = 150
	summaryTemperature = 0.2
)

// generatePersona runs the persona stage: one chat completion built from
// the canonical content. The first completion's text is the narrative
// verbatim.
func (s *Service) generatePersona(
	ctx context.Context,
	trace *observability.Trace,
	content *CanonicalContent,
	expertType string,
) (*PersonaResult, error) {
	provider, err := s.chat.GetProvider(ctx, s.gen.Chat.Model)
	if err != nil {
		return nil, err
	}

	request := &llm.CompletionRequest{
		Model:        s.gen.Chat.Model,
		SystemPrompt: prompt.PersonaSystemPrompt,
		UserPrompt:   prompt.BuildPersonaUserPrompt(content.Text, expertType),
		MaxTokens:    s.gen.Chat.MaxTokens,
		Temperature:  s.gen.Chat.Temperature,
	}

	gen := trace.Generation("persona", map[string]interface{}{
		"provenance": content.Provenance,
	})
	result, err := provider.Complete(ctx, request)
	if err != nil {
		gen.SetLevel("ERROR")
		gen.Finish()
		return nil, err
	}
	gen.LogCompletion(request, result)
	gen.Finish()

	s.recordTokens(result)

	return &PersonaResult{
		Narrative: result.Text,
		ModelUsed: result.Model,
	}, nil
}

// summarizeForImage compresses the persona narrative into a 1-2 sentence
// visual description. Feeding the full narrative into an image prompt
// produces incoherent portraits; this stage is the quality gate between
// text and image generation.
func (s *Service) summarizeForImage(
	ctx context.Context,
	trace *observability.Trace,
	persona *PersonaResult,
) (*VisualSummary, error) {
	provider, err := s.chat.GetProvider(ctx, s.gen.Chat.Model)
	if err != nil {
		return nil, err
	}

	request := &llm.CompletionRequest{
		Model:        s.gen.Chat.Model,
		SystemPrompt: prompt.SummarySystemPrompt,
		UserPrompt:   prompt.BuildSummaryUserPrompt(persona.Narrative),
		MaxTokens:    summaryMaxTokens,
		Temperature:  summaryTemperature,
	}

	gen := trace.Generation("visual_summary", nil)
	result, err := provider.Complete(ctx, request)
	if err != nil {
		gen.SetLevel("ERROR")
		gen.Finish()
		return nil, err
	}
	gen.LogCompletion(request, result)
	gen.Finish()

	s.recordTokens(result)

	return &VisualSummary{Description: strings.TrimSpace(result.Text)}, nil
}

// generateImage runs the image stage: one image-generation call with a
// portrait prompt built from the visual summary.
func (s *Service) generateImage(ctx context.Context, summary *VisualSummary) (*ImageResult, error) {
	portraitPrompt := prompt.BuildPortraitPrompt(summary.Description)

	result, err := s.image.Generate(ctx, &image.GenerateRequest{
		Model:          s.gen.Image.Model,
		Prompt:         portraitPrompt,
		Width:          s.gen.Image.Width,
		Height:         s.gen.Image.Height,
		Steps:          s.gen.Image.Steps,
		Count:          1,
		ResponseFormat: image.ResponseFormatURL,
	})
	if err != nil {
		return nil, err
	}

	return &ImageResult{
		Reference:  result.Reference,
		PromptUsed: portraitPrompt,
		ModelUsed:  s.gen.Image.Model,
	}, nil
}

func (s *Service) recordTokens(result *llm.CompletionResult) {
	if s.metrics != nil {
		s.metrics.RecordTokenUsage(result.Model, result.TotalTokens, result.InputTokens, result.OutputTokens)
	}
}
