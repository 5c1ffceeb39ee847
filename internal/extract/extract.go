// Package extract converts uploaded PDF byte streams into plain text.
package extract

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Document is one uploaded file: the client-supplied name and raw bytes.
// The pipeline does not keep a reference to Data past extraction.
type Document struct {
	Filename string
	Data     []byte
}

// UnsupportedTypeError reports an upload whose filename does not carry a
// .pdf extension. The check is a case-insensitive suffix check only; no
// MIME sniffing is performed.
type UnsupportedTypeError struct {
	Filename string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type %q: only PDF uploads are supported", e.Filename)
}

// ExtractionError reports a PDF that could not be parsed or that contains
// no extractable text layer.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to extract text from %q: %v", e.Filename, e.Err)
	}
	return fmt.Sprintf("no extractable text in %q", e.Filename)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsPDF reports whether filename carries a PDF extension.
func IsPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

// Text extracts the full text of a single PDF held in memory. The whole
// document is read before returning; page order is preserved.
func Text(doc Document) (string, error) {
	pdf, err := fitz.NewFromMemory(doc.Data)
	if err != nil {
		return "", &ExtractionError{Filename: doc.Filename, Err: err}
	}
	defer pdf.Close()

	var pages []string
	for i := 0; i < pdf.NumPage(); i++ {
		text, err := pdf.Text(i)
		if err != nil {
			continue // image-only or damaged page
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, strings.TrimSpace(text))
		}
	}

	if len(pages) == 0 {
		return "", &ExtractionError{Filename: doc.Filename}
	}

	return strings.Join(pages, "\n\n"), nil
}

// Combine validates and extracts every document in upload order, joining the
// per-file sections with a separator naming the originating file. All
// filenames are checked before any extraction work starts, so a bad upload
// fails fast. Identical inputs always produce identical output.
func Combine(docs []Document) (string, error) {
	return combineWith(docs, Text)
}

// combineWith lets tests exercise ordering and separator behavior without a
// MuPDF dependency on real PDF bytes.
func combineWith(docs []Document, extractText func(Document) (string, error)) (string, error) {
	for _, doc := range docs {
		if !IsPDF(doc.Filename) {
			return "", &UnsupportedTypeError{Filename: doc.Filename}
		}
	}

	sections := make([]string, 0, len(docs))
	for _, doc := range docs {
		text, err := extractText(doc)
		if err != nil {
			return "", err
		}
		sections = append(sections, fmt.Sprintf("--- Content from %s ---\n%s", doc.Filename, text))
	}

	return strings.Join(sections, "\n\n"), nil
}
