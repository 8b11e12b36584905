package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantompay/invoice-cli/internal/config"
)

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "mysql"},
	}

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitBuilder_DefaultRules(t *testing.T) {
	cfg = &config.Config{}

	b, err := initBuilder()
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestInitBuilder_CustomRules(t *testing.T) {
	rulesPath := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte(`fields:
  - key: invoice_number
    patterns:
      - 'Invoice\s*(?:Number|#)?\s*:?\s*([A-Z0-9\-]+)'
`), 0o644))

	cfg = &config.Config{
		Pipeline: config.PipelineConfig{RulesFile: rulesPath},
	}

	b, err := initBuilder()
	require.NoError(t, err)
	assert.NotNil(t, b)
}

func TestInitBuilder_MissingRulesFile(t *testing.T) {
	cfg = &config.Config{
		Pipeline: config.PipelineConfig{RulesFile: filepath.Join(t.TempDir(), "nope.yaml")},
	}

	_, err := initBuilder()
	require.Error(t, err)
}

func TestInitResolver(t *testing.T) {
	cfg = &config.Config{
		PDFText: config.PDFTextConfig{Provider: "pdflib"},
	}

	r, err := initResolver()
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestInitResolver_UnknownProvider(t *testing.T) {
	cfg = &config.Config{
		PDFText: config.PDFTextConfig{Provider: "tesseract"},
	}

	_, err := initResolver()
	require.Error(t, err)
}
