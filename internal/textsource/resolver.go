// Package textsource resolves the raw text behind a document, trying
// primary PDF extraction and then an ordered list of fallback
// plain-text locations.
package textsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/phantompay/invoice-cli/internal/pdftext"
)

// NoTextSourceError indicates that neither primary extraction nor any
// fallback location yielded text. It carries the probed locations for
// diagnostics.
type NoTextSourceError struct {
	Document string
	Probed   []string
}

func (e *NoTextSourceError) Error() string {
	return fmt.Sprintf("textsource: no text source for %s (probed: %s)",
		e.Document, strings.Join(e.Probed, ", "))
}

// Resolver produces raw text for a document. A nil extractor means the
// extraction capability is unavailable and only fallback locations are
// consulted.
type Resolver struct {
	extractor pdftext.Extractor
}

// NewResolver creates a Resolver using the given extraction capability.
func NewResolver(extractor pdftext.Extractor) *Resolver {
	return &Resolver{extractor: extractor}
}

// Resolve returns the document's raw text. Primary extraction failures
// and empty or whitespace-only results both route to the fallback
// probe; empty text is never returned as success.
func (r *Resolver) Resolve(ctx context.Context, pdfPath string) (string, error) {
	if r.extractor != nil {
		text, err := r.extractor.ExtractText(ctx, pdfPath)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err != nil {
			zap.L().Debug("primary extraction failed, probing fallback locations",
				zap.String("document", pdfPath),
				zap.Error(err),
			)
		}
	}

	probed := FallbackLocations(pdfPath)
	for _, loc := range probed {
		if _, err := os.Stat(loc); err != nil {
			continue
		}
		data, err := os.ReadFile(loc)
		if err != nil {
			return "", eris.Wrapf(err, "textsource: read fallback %s", loc)
		}
		return string(data), nil
	}

	return "", &NoTextSourceError{Document: pdfPath, Probed: probed}
}

// FallbackLocations returns the candidate plain-text paths for a
// document in probe order. The list is preserved verbatim from the
// layouts seen so far; not every entry is reachable in every layout.
func FallbackLocations(pdfPath string) []string {
	dir := filepath.Dir(pdfPath)
	stem := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath)) + ".txt"

	return []string{
		filepath.Join(dir, "text_data", stem),
		filepath.Join(dir, "..", "text_data", stem),
		filepath.Join(dir, "..", "..", "text_data", stem),
		filepath.Join(dir, stem),
		filepath.Join("data", "text_data", stem),
	}
}
