package syllabusprocessor

import (
	"bytes"
	"errors"
	"io"

	"github.com/ledongthuc/pdf"
)

var errEmptyPDFPath = errors.New("pdf path is empty")

// PDFExtractor is the document collaborator: it turns a PDF on disk into
// plain text. Swappable so tests can feed synthetic syllabi.
type PDFExtractor interface {
	ExtractFromFile(path string) (string, error)
}

// pdfExtractor is the production implementation.
type pdfExtractor struct{}

func NewPDFExtractor() PDFExtractor {
	return pdfExtractor{}
}

func (pdfExtractor) ExtractFromFile(path string) (string, error) {
	if path == "" {
		return "", errEmptyPDFPath
	}

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", err
	}

	return buf.String(), nil
}
