package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/deposia/avatar-api/internal/extract"
)

// ErrEmptyInput indicates a request with neither a text query nor documents.
// Callers reject this earlier; the normalizer defends independently.
var ErrEmptyInput = errors.New("no usable input: provide a text query or at least one PDF document")

// combined document text longer than this is truncated before prompting;
// past this size extra context stops improving personas and starts costing
// tokens.
const maxDocumentRunes = 8000

// combineDocuments is swapped out by tests that have no real PDF bytes.
var combineDocuments = extract.Combine

// Normalize merges an optional free-text query with optional uploaded
// documents into one canonical content string. Precedence:
//
//  1. documents only: combined document text
//  2. query and documents: query prepended as additional context
//  3. query only: the query verbatim
//  4. neither: ErrEmptyInput
func Normalize(rawQuery string, documents []extract.Document) (*CanonicalContent, error) {
	rawQuery = strings.TrimSpace(rawQuery)

	if len(documents) == 0 {
		if rawQuery == "" {
			return nil, ErrEmptyInput
		}
		return &CanonicalContent{
			Text:            rawQuery,
			Provenance:      "from text query",
			SourceFilenames: []string{},
		}, nil
	}

	combined, err := combineDocuments(documents)
	if err != nil {
		return nil, err
	}
	combined = truncateAtSentence(combined, maxDocumentRunes)

	filenames := make([]string, 0, len(documents))
	for _, doc := range documents {
		filenames = append(filenames, doc.Filename)
	}

	if rawQuery == "" {
		return &CanonicalContent{
			Text:            combined,
			Provenance:      fmt.Sprintf("from %d PDF file(s)", len(documents)),
			SourceFilenames: filenames,
		}, nil
	}

	return &CanonicalContent{
		Text:            fmt.Sprintf("Additional context: %s\n\n%s", rawQuery, combined),
		Provenance:      fmt.Sprintf("from text query and %d PDF file(s)", len(documents)),
		SourceFilenames: filenames,
	}, nil
}

// truncateAtSentence cuts text to at most max runes, preferring to end at a
// sentence boundary when one falls in the final 20% of the budget.
func truncateAtSentence(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	truncated := string(runes[:max])
	if idx := strings.LastIndex(truncated, "."); idx > max*8/10 {
		return truncated[:idx+1]
	}
	return truncated + "..."
}
