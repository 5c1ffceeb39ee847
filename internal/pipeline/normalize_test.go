package pipeline

import (
	"strings"
	"testing"

	"github.com/deposia/avatar-api/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQueryOnly(t *testing.T) {
	content, err := Normalize("  patent dispute over wireless chargers  ", nil)
	require.NoError(t, err)

	assert.Equal(t, "patent dispute over wireless chargers", content.Text)
	assert.Equal(t, "from text query", content.Provenance)
	assert.Empty(t, content.SourceFilenames)
}

func TestNormalizeEmptyInput(t *testing.T) {
	_, err := Normalize("   ", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Normalize("", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestNormalizeDocumentsOnly(t *testing.T) {
	stubCombine(t, "--- Content from report.pdf ---\nextracted text")

	content, err := Normalize("", []extract.Document{{Filename: "report.pdf"}})
	require.NoError(t, err)

	assert.Equal(t, "--- Content from report.pdf ---\nextracted text", content.Text)
	assert.Equal(t, "from 1 PDF file(s)", content.Provenance)
	assert.Equal(t, []string{"report.pdf"}, content.SourceFilenames)
}

func TestNormalizeQueryAndDocuments(t *testing.T) {
	stubCombine(t, "doc body")

	content, err := Normalize("focus on signal interference", []extract.Document{
		{Filename: "a.pdf"}, {Filename: "b.pdf"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Additional context: focus on signal interference\n\ndoc body", content.Text)
	assert.Equal(t, "from text query and 2 PDF file(s)", content.Provenance)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, content.SourceFilenames)
}

func TestNormalizeRejectsNonPDF(t *testing.T) {
	_, err := Normalize("query", []extract.Document{{Filename: "notes.txt"}})

	var unsupported *extract.UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "notes.txt", unsupported.Filename)
}

// stubCombine replaces document extraction for tests without PDF bytes.
// The real Combine still runs the extension check first, so non-PDF
// rejection stays covered by TestNormalizeRejectsNonPDF.
func stubCombine(t *testing.T, combined string) {
	t.Helper()
	previous := combineDocuments
	combineDocuments = func(docs []extract.Document) (string, error) {
		for _, doc := range docs {
			if !extract.IsPDF(doc.Filename) {
				return "", &extract.UnsupportedTypeError{Filename: doc.Filename}
			}
		}
		return combined, nil
	}
	t.Cleanup(func() { combineDocuments = previous })
}

func TestTruncateAtSentenceShortTextUnchanged(t *testing.T) {
	text := "A short deposition summary."
	assert.Equal(t, text, truncateAtSentence(text, maxDocumentRunes))
}

func TestTruncateAtSentencePrefersBoundary(t *testing.T) {
	// A period lands inside the final 20% of the budget; the cut should
	// end there rather than mid-sentence.
	text := strings.Repeat("a", 90) + "." + strings.Repeat("b", 30)
	out := truncateAtSentence(text, 100)

	assert.Equal(t, strings.Repeat("a", 90)+".", out)
	assert.True(t, strings.HasSuffix(out, "."))
}

func TestTruncateAtSentenceHardCut(t *testing.T) {
	// No period anywhere near the limit: hard cut with an ellipsis.
	text := strings.Repeat("x", 200)
	out := truncateAtSentence(text, 100)

	assert.Equal(t, strings.Repeat("x", 100)+"...", out)
}

func TestTruncateAtSentenceIgnoresEarlyPeriod(t *testing.T) {
	// The only period falls in the first 80% of the budget; using it would
	// discard too much content, so the hard cut wins.
	text := "Short. " + strings.Repeat("y", 200)
	out := truncateAtSentence(text, 100)

	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Len(t, []rune(out), 103)
}
