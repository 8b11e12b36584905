package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules_Compile(t *testing.T) {
	rs := DefaultRules()

	require.NotEmpty(t, rs.Rules)

	byKey := map[string]Rule{}
	for _, r := range rs.Rules {
		byKey[r.Key] = r
	}

	// The grand total is the only last-match field.
	require.Contains(t, byKey, "total")
	assert.Equal(t, PolicyLast, byKey["total"].Policy)
	for key, r := range byKey {
		if key == "total" {
			continue
		}
		assert.Equal(t, PolicyFirst, r.Policy, key)
	}

	assert.Equal(t, TransformNumber, byKey["subtotal"].Transform)
	assert.Equal(t, TransformNumber, byKey["tax"].Transform)
	assert.Equal(t, TransformBool, byKey["payment_completed"].Transform)
}

func TestCompileRules_DefaultsAndErrors(t *testing.T) {
	rs, err := CompileRules([]byte(`
fields:
  - key: invoice_number
    patterns:
      - '(INV-\d+-\d+)'
`))
	require.NoError(t, err)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, PolicyFirst, rs.Rules[0].Policy)
	assert.Equal(t, TransformString, rs.Rules[0].Transform)

	_, err = CompileRules([]byte(`fields: []`))
	assert.Error(t, err)

	_, err = CompileRules([]byte(`
fields:
  - key: total
    policy: middle
    patterns: ['(x)']
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown policy")

	_, err = CompileRules([]byte(`
fields:
  - key: total
    transform: roman
    patterns: ['(x)']
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transform")

	_, err = CompileRules([]byte(`
fields:
  - key: total
    patterns: ['no capture group']
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capture group")
}

func TestLoadRules_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fields:
  - key: invoice_number
    patterns:
      - 'Ref:\s*(INV-\d+-\d+)'
`), 0o644))

	rs, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rs.Rules, 1)

	rec := NewFieldExtractor(rs).Extract("Ref: INV-2025-900")
	require.NotNil(t, rec.InvoiceNumber)
	assert.Equal(t, "INV-2025-900", *rec.InvoiceNumber)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
