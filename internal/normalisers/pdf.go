package normalisers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFNormaliser extracts the text layer of a PDF upload.
// Scanned PDFs without a text layer yield ErrNoText; OCR is out of scope.
type PDFNormaliser struct{}

func (n *PDFNormaliser) Normalise(content []byte, mimeType string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func (n *PDFNormaliser) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (n *PDFNormaliser) Priority() int {
	return 60 // Format-specific, binary
}
