// Package pdftext extracts raw text from PDF invoice documents.
package pdftext

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/phantompay/invoice-cli/internal/config"
)

// Extractor extracts text content from PDF files. Implementations may
// fail or return empty text; the caller's fallback handles both.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.PDFTextConfig) (Extractor, error) {
	switch cfg.Provider {
	case "pdflib", "":
		return &PDFLib{}, nil
	case "pdftotext":
		return NewPdfToText(cfg.PdfToTextPath), nil
	default:
		return nil, eris.Errorf("pdftext: unknown provider %q", cfg.Provider)
	}
}
