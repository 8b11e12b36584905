package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantompay/invoice-cli/internal/config"
)

func TestNewExtractor_PDFLib(t *testing.T) {
	ext, err := NewExtractor(config.PDFTextConfig{Provider: "pdflib"})
	require.NoError(t, err)
	assert.IsType(t, &PDFLib{}, ext)
}

func TestNewExtractor_Default(t *testing.T) {
	ext, err := NewExtractor(config.PDFTextConfig{})
	require.NoError(t, err)
	assert.IsType(t, &PDFLib{}, ext)
}

func TestNewExtractor_PdfToText(t *testing.T) {
	ext, err := NewExtractor(config.PDFTextConfig{Provider: "pdftotext", PdfToTextPath: "/usr/bin/pdftotext"})
	require.NoError(t, err)
	assert.IsType(t, &PdfToText{}, ext)
}

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := NewExtractor(config.PDFTextConfig{Provider: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider "carrier-pigeon"`)
}

func TestPdfToText_BinPath(t *testing.T) {
	p := NewPdfToText("")
	assert.Equal(t, "pdftotext", p.binPath)

	p = NewPdfToText("/custom/pdftotext")
	assert.Equal(t, "/custom/pdftotext", p.binPath)
}

func TestPDFLib_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0o644))

	_, err := (&PDFLib{}).ExtractText(context.Background(), path)
	assert.Error(t, err)
}

func TestPDFLib_MissingFile(t *testing.T) {
	_, err := (&PDFLib{}).ExtractText(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}
