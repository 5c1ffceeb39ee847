// Package pipeline composes the multi-stage expert witness avatar
// generation: content normalization, persona generation, visual
// summarization, and portrait image generation.
package pipeline

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/deposia/avatar-api/internal/config"
	"github.com/deposia/avatar-api/internal/extract"
	"github.com/deposia/avatar-api/internal/image"
	"github.com/deposia/avatar-api/internal/llm"
	"github.com/deposia/avatar-api/internal/logger"
	"github.com/deposia/avatar-api/internal/metrics"
	"github.com/deposia/avatar-api/internal/observability"
)

// ChatProviderFactory yields a chat provider for a model name. Satisfied by
// llm.ProviderFactory and by test fakes.
type ChatProviderFactory interface {
	GetProvider(ctx context.Context, model string) (llm.Provider, error)
}

// Service runs the avatar pipeline. It holds no per-request state; the
// generation parameters are immutable for the process lifetime, so one
// Service serves concurrent requests without coordination.
type Service struct {
	chat     ChatProviderFactory
	image    image.Generator
	gen      *config.Generation
	metrics  *metrics.Client
	stages   *metrics.SentryMetrics
	langfuse *observability.LangfuseClient
}

// NewService creates a pipeline service. metrics and langfuse may be nil or
// disabled clients; the pipeline degrades to plain logging.
func NewService(
	chat ChatProviderFactory,
	imageGen image.Generator,
	gen *config.Generation,
	cw *metrics.Client,
	lf *observability.LangfuseClient,
) *Service {
	if lf == nil {
		lf = observability.GetClient()
	}
	return &Service{
		chat:     chat,
		image:    imageGen,
		gen:      gen,
		metrics:  cw,
		stages:   metrics.NewSentryMetrics(),
		langfuse: lf,
	}
}

// RunPersonaOnly executes Normalize -> Persona. The visual summary and
// image fields are never populated on this path, regardless of outcome.
func (s *Service) RunPersonaOnly(ctx context.Context, request Request) Outcome {
	startTime := time.Now()
	trace := s.langfuse.StartTrace(ctx, "persona_only", nil)
	defer trace.Finish()

	content, outcome := s.normalizeStage(request)
	if outcome != nil {
		s.recordRun("persona_only", startTime, false)
		return *outcome
	}

	personaStart := time.Now()
	persona, err := s.generatePersona(ctx, trace, content, request.ExpertType)
	s.stages.RecordStageDuration(ctx, "persona", time.Since(personaStart), err == nil)
	if err != nil {
		s.recordRun("persona_only", startTime, false)
		return s.errorOutcome("persona generation", err, content)
	}

	s.recordRun("persona_only", startTime, true)
	return Outcome{
		Status:         StatusOK,
		Message:        "Expert witness persona generated " + content.Provenance,
		AvatarID:       displayID(content.Text),
		Persona:        persona,
		FilesProcessed: content.SourceFilenames,
	}
}

// RunFullAvatar executes Normalize -> Persona -> Visual Summary -> Image.
// A failure at any stage short-circuits: later stages never run and their
// fields stay empty.
func (s *Service) RunFullAvatar(ctx context.Context, request Request) Outcome {
	startTime := time.Now()
	trace := s.langfuse.StartTrace(ctx, "full_avatar", nil)
	defer trace.Finish()

	content, outcome := s.normalizeStage(request)
	if outcome != nil {
		s.recordRun("full_avatar", startTime, false)
		return *outcome
	}

	personaStart := time.Now()
	persona, err := s.generatePersona(ctx, trace, content, request.ExpertType)
	s.stages.RecordStageDuration(ctx, "persona", time.Since(personaStart), err == nil)
	if err != nil {
		s.recordRun("full_avatar", startTime, false)
		return s.errorOutcome("persona generation", err, content)
	}

	summaryStart := time.Now()
	summary, err := s.summarizeForImage(ctx, trace, persona)
	s.stages.RecordStageDuration(ctx, "visual_summary", time.Since(summaryStart), err == nil)
	if err != nil {
		s.recordRun("full_avatar", startTime, false)
		return s.errorOutcome("persona summarization", err, content)
	}

	imageStart := time.Now()
	img, err := s.generateImage(ctx, summary)
	s.stages.RecordStageDuration(ctx, "image", time.Since(imageStart), err == nil)
	if err != nil {
		s.recordRun("full_avatar", startTime, false)
		return s.errorOutcome("image generation", err, content)
	}

	s.recordRun("full_avatar", startTime, true)
	return Outcome{
		Status:         StatusOK,
		Message:        "Expert witness avatar generated " + content.Provenance,
		AvatarID:       displayID(content.Text),
		Persona:        persona,
		VisualSummary:  summary,
		Image:          img,
		FilesProcessed: content.SourceFilenames,
	}
}

// normalizeStage wraps Normalize, converting input and extraction failures
// into error outcomes. Returns either content or a terminal outcome, never
// both.
func (s *Service) normalizeStage(request Request) (*CanonicalContent, *Outcome) {
	content, err := Normalize(request.RawQuery, request.Documents)
	if err == nil {
		return content, nil
	}

	stage := "input"
	var unsupported *extract.UnsupportedTypeError
	var extraction *extract.ExtractionError
	if errors.As(err, &unsupported) || errors.As(err, &extraction) {
		stage = "document extraction"
	}

	outcome := s.errorOutcome(stage, err, nil)
	return nil, &outcome
}

// errorOutcome converts any stage failure into the uniform error envelope.
// The message names the failed stage and distinguishes missing credentials
// from remote provider failures.
func (s *Service) errorOutcome(stage string, err error, content *CanonicalContent) Outcome {
	message := stage + " failed: " + err.Error()
	if errors.Is(err, llm.ErrMissingCredential) {
		message = stage + " unavailable: " + err.Error()
	}

	logger.Error("Pipeline stage failed", err, logger.Fields{"stage": stage})

	files := []string{}
	if content != nil {
		files = content.SourceFilenames
	}

	return Outcome{
		Status:         StatusError,
		Message:        message,
		FilesProcessed: files,
	}
}

func (s *Service) recordRun(entryPoint string, startTime time.Time, success bool) {
	if s.metrics != nil {
		s.metrics.RecordPipelineDuration(entryPoint, time.Since(startTime), success)
	}
}

// displayID derives a short identifier from the canonical text for display
// purposes only. It carries no uniqueness or persistence guarantee and must
// not be used as a stable key.
func displayID(text string) string {
	sum := sha1.Sum([]byte(text))
	return "avatar_" + hex.EncodeToString(sum[:6])
}
