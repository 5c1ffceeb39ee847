package pipeline

import "github.com/deposia/avatar-api/internal/extract"

// Outcome status values. The facade never raises; it always returns one of
// these inside a well-formed Outcome.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is the caller-owned input to a pipeline run. At least one of
// RawQuery or Documents should be present; the pipeline defends against
// both being absent even though callers validate earlier.
type Request struct {
	RawQuery   string
	ExpertType string
	Documents  []extract.Document
}

// CanonicalContent is the single content string all generation stages work
// from, with a human-readable provenance label. Immutable once built.
type CanonicalContent struct {
	Text            string
	Provenance      string
	SourceFilenames []string
}

// PersonaResult is the persona stage's output: the narrative verbatim from
// the first completion, with no post-processing.
type PersonaResult struct {
	Narrative string `json:"narrative"`
	ModelUsed string `json:"model_used"`
}

// VisualSummary is the summarizer stage's output, a 1-2 sentence portrait
// description. Present only on the full-avatar path.
type VisualSummary struct {
	Description string `json:"description"`
}

// ImageResult is the image stage's output. Reference is a hosted URL or a
// base64 data URI. Present only on the full-avatar path.
type ImageResult struct {
	Reference  string `json:"reference"`
	PromptUsed string `json:"prompt_used"`
	ModelUsed  string `json:"model_used"`
}

// Outcome is the single envelope both entry points return. Its shape is
// identical for both paths; they differ only in which optional fields are
// populated.
type Outcome struct {
	Status         string         `json:"status"`
	Message        string         `json:"message"`
	AvatarID       string         `json:"avatar_id,omitempty"`
	Persona        *PersonaResult `json:"persona,omitempty"`
	VisualSummary  *VisualSummary `json:"visual_summary,omitempty"`
	Image          *ImageResult   `json:"image,omitempty"`
	FilesProcessed []string       `json:"files_processed"`
}
