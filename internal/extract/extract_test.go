package extract

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMinimalPDF assembles a one-page PDF 1.4 document with a single text
// object. The xref table is computed from the actual object offsets, so the
// fixture is always structurally valid.
func buildMinimalPDF(t *testing.T, text string) []byte {
	t.Helper()

	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("report.pdf"))
	assert.True(t, IsPDF("REPORT.PDF"))
	assert.True(t, IsPDF("deposition.Pdf"))
	assert.False(t, IsPDF("report.docx"))
	assert.False(t, IsPDF("report.pdf.txt"))
	assert.False(t, IsPDF("pdf"))
}

func TestCombinePreservesUploadOrder(t *testing.T) {
	docs := []Document{
		{Filename: "first.pdf"},
		{Filename: "second.pdf"},
	}

	combined, err := combineWith(docs, func(doc Document) (string, error) {
		return "text of " + doc.Filename, nil
	})
	require.NoError(t, err)

	expected := "--- Content from first.pdf ---\ntext of first.pdf\n\n" +
		"--- Content from second.pdf ---\ntext of second.pdf"
	assert.Equal(t, expected, combined)
}

func TestCombineRejectsNonPDFBeforeExtraction(t *testing.T) {
	extractions := 0
	docs := []Document{
		{Filename: "ok.pdf"},
		{Filename: "notes.txt"},
	}

	_, err := combineWith(docs, func(doc Document) (string, error) {
		extractions++
		return "text", nil
	})

	var unsupported *UnsupportedTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "notes.txt", unsupported.Filename)

	// the bad filename fails the whole batch before any extraction work
	assert.Equal(t, 0, extractions)
}

func TestCombinePropagatesExtractionError(t *testing.T) {
	docs := []Document{{Filename: "broken.pdf"}}

	cause := fmt.Errorf("not a PDF header")
	_, err := combineWith(docs, func(Document) (string, error) {
		return "", &ExtractionError{Filename: "broken.pdf", Err: cause}
	})

	var extraction *ExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "broken.pdf", extraction.Filename)
	assert.True(t, errors.Is(err, cause))
}

func TestTextExtractsValidPDF(t *testing.T) {
	data := buildMinimalPDF(t, "Expert witness engagement report")

	got, err := Text(Document{Filename: "case.pdf", Data: data})
	require.NoError(t, err)
	assert.Contains(t, got, "Expert witness engagement report")
}

func TestCombineExtractsValidPDF(t *testing.T) {
	data := buildMinimalPDF(t, "Deposition summary for the plaintiff")

	combined, err := Combine([]Document{{Filename: "case.pdf", Data: data}})
	require.NoError(t, err)
	assert.Contains(t, combined, "--- Content from case.pdf ---")
	assert.Contains(t, combined, "Deposition summary for the plaintiff")
}

func TestTextRejectsGarbageBytes(t *testing.T) {
	_, err := Text(Document{Filename: "junk.pdf", Data: []byte("not a pdf at all")})

	var extraction *ExtractionError
	require.ErrorAs(t, err, &extraction)
	assert.Equal(t, "junk.pdf", extraction.Filename)
}

func TestExtractionErrorMessages(t *testing.T) {
	withCause := &ExtractionError{Filename: "a.pdf", Err: fmt.Errorf("bad xref")}
	assert.Contains(t, withCause.Error(), "a.pdf")
	assert.Contains(t, withCause.Error(), "bad xref")

	noText := &ExtractionError{Filename: "scan.pdf"}
	assert.Contains(t, noText.Error(), "no extractable text")
}
