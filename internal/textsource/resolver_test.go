package textsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubExtractor returns canned text or an error.
type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

func TestResolve_PrimaryExtraction(t *testing.T) {
	r := NewResolver(&stubExtractor{text: "INVOICE: INV-2025-001"})

	text, err := r.Resolve(context.Background(), "data_2/invoice_0001.pdf")
	require.NoError(t, err)
	assert.Equal(t, "INVOICE: INV-2025-001", text)
}

func TestResolve_FallbackOnExtractionError(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "invoice_0001.pdf")
	textDir := filepath.Join(dir, "text_data")
	require.NoError(t, os.MkdirAll(textDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(textDir, "invoice_0001.txt"), []byte("from fallback"), 0o644))

	r := NewResolver(&stubExtractor{err: errors.New("corrupt xref")})

	text, err := r.Resolve(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "from fallback", text)
}

func TestResolve_WhitespaceOnlyPrimaryRoutesToFallback(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "invoice_0002.pdf")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoice_0002.txt"), []byte("sidecar text"), 0o644))

	r := NewResolver(&stubExtractor{text: "  \n\t "})

	text, err := r.Resolve(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "sidecar text", text)
}

func TestResolve_ParentTextData(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "data_2")
	textDir := filepath.Join(dir, "text_data")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.MkdirAll(textDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(textDir, "invoice_0003.txt"), []byte("one level up"), 0o644))

	r := NewResolver(nil) // extraction capability unavailable

	text, err := r.Resolve(context.Background(), filepath.Join(nested, "invoice_0003.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "one level up", text)
}

func TestResolve_NoTextSource(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "invoice_0004.pdf")
	r := NewResolver(&stubExtractor{err: errors.New("nope")})

	_, err := r.Resolve(context.Background(), pdfPath)
	require.Error(t, err)

	var noSrc *NoTextSourceError
	require.ErrorAs(t, err, &noSrc)
	assert.Equal(t, pdfPath, noSrc.Document)
	assert.Len(t, noSrc.Probed, 5)
	assert.Contains(t, err.Error(), "no text source")
}

func TestFallbackLocations_Order(t *testing.T) {
	locs := FallbackLocations(filepath.Join("a", "b", "c", "invoice_9.pdf"))

	require.Len(t, locs, 5)
	assert.Equal(t, filepath.Join("a", "b", "c", "text_data", "invoice_9.txt"), locs[0])
	assert.Equal(t, filepath.Join("a", "b", "text_data", "invoice_9.txt"), locs[1])
	assert.Equal(t, filepath.Join("a", "text_data", "invoice_9.txt"), locs[2])
	assert.Equal(t, filepath.Join("a", "b", "c", "invoice_9.txt"), locs[3])
	assert.Equal(t, filepath.Join("data", "text_data", "invoice_9.txt"), locs[4])
}
