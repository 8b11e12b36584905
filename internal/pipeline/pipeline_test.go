package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantompay/invoice-cli/internal/extract"
	"github.com/phantompay/invoice-cli/internal/model"
	"github.com/phantompay/invoice-cli/internal/segregate"
	"github.com/phantompay/invoice-cli/internal/textsource"
	"github.com/phantompay/invoice-cli/pkg/convex"
)

type stubUploader struct {
	calls   int
	fail    bool
	reject  bool
	lastArg any
}

func (s *stubUploader) ProcessInvoice(_ context.Context, record any) (*convex.ProcessResult, error) {
	s.calls++
	s.lastArg = record
	if s.fail {
		return nil, eris.New("connection refused")
	}
	if s.reject {
		return &convex.ProcessResult{Success: false, ErrorMessage: "duplicate invoice"}, nil
	}
	return &convex.ProcessResult{Success: true, InvoiceID: "inv_abc"}, nil
}

type stubRecorder struct {
	created   []model.RunMode
	completed []model.RunStatus
	results   []model.BatchResult
}

func (s *stubRecorder) CreateRun(_ context.Context, mode model.RunMode, sourceDir string) (*model.Run, error) {
	s.created = append(s.created, mode)
	return &model.Run{ID: "run-1", Mode: mode, SourceDir: sourceDir}, nil
}

func (s *stubRecorder) CompleteRun(_ context.Context, _ string, status model.RunStatus, results []model.BatchResult) error {
	s.completed = append(s.completed, status)
	s.results = results
	return nil
}

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	return New(textsource.NewResolver(nil), extract.NewBuilder(nil), opts...)
}

// writeInvoice places a PDF stub plus its fallback text next to it, the
// way the text_data sibling layout works on disk.
func writeInvoice(t *testing.T, dir, stem, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "text_data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stem+".pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "text_data", stem+".txt"), []byte(text), 0o644))
}

func TestConvert(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "json_output")

	writeInvoice(t, src, "invoice_1", "INVOICE: INV-2025-001\nCustomer: Smith & Co\nTotal: 120.00\n")
	// A PDF with no text source anywhere.
	require.NoError(t, os.WriteFile(filepath.Join(src, "invoice_2.pdf"), []byte("%PDF-1.4"), 0o644))

	p := newTestPipeline(t)
	results, err := p.Convert(context.Background(), src, out)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "invoice_1.pdf", results[0].File)
	assert.Equal(t, model.StatusConverted, results[0].Status)
	assert.Equal(t, "INV-2025-001", results[0].InvoiceNumber)
	assert.Equal(t, "invoice_1.json", results[0].JSONFile)

	assert.Equal(t, "invoice_2.pdf", results[1].File)
	assert.Equal(t, model.StatusError, results[1].Status)
	assert.Contains(t, results[1].Error, "no text source")

	data, err := os.ReadFile(filepath.Join(out, "invoice_1.json"))
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `"invoice_number": "INV-2025-001"`)
	// HTML escaping must stay off so "&" survives verbatim.
	assert.Contains(t, body, "Smith & Co")
	assert.NotContains(t, body, `\u0026`)

	resultsFile := filepath.Join(out, filepath.Base(src)+"_conversion_results.json")
	agg, err := os.ReadFile(resultsFile)
	require.NoError(t, err)
	assert.Contains(t, string(agg), `"status": "converted"`)
	assert.Contains(t, string(agg), `"status": "error"`)
}

func TestConvertMissingDir(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Convert(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
	assert.True(t, eris.Is(err, segregate.ErrDirectoryNotFound))
}

func TestConvertEmptyDir(t *testing.T) {
	p := newTestPipeline(t)
	results, err := p.Convert(context.Background(), t.TempDir(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestConvertRecordsRun(t *testing.T) {
	src := t.TempDir()
	writeInvoice(t, src, "invoice_1", "INVOICE: INV-2025-001\n")

	rec := &stubRecorder{}
	p := newTestPipeline(t, WithRecorder(rec))
	_, err := p.Convert(context.Background(), src, t.TempDir())
	require.NoError(t, err)

	require.Equal(t, []model.RunMode{model.RunModeConvert}, rec.created)
	require.Equal(t, []model.RunStatus{model.RunStatusComplete}, rec.completed)
	require.Len(t, rec.results, 1)
	assert.Equal(t, model.StatusConverted, rec.results[0].Status)
}

func TestRun(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "invoice_1.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "invoice_1.txt"), []byte("INVOICE: INV-2025-009\nTotal: 50.00\n"), 0o644))

	up := &stubUploader{}
	p := newTestPipeline(t, WithUploader(up))
	results, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, model.StatusUploaded, results[0].Status)
	assert.Equal(t, "INV-2025-009", results[0].InvoiceNumber)
	assert.Equal(t, "inv_abc", results[0].ConvexID)
	assert.Equal(t, 1, up.calls)

	record, ok := up.lastArg.(*model.InvoiceRecord)
	require.True(t, ok)
	require.NotNil(t, record.InvoiceNumber)
	assert.Equal(t, "INV-2025-009", *record.InvoiceNumber)
}

func TestRunUploadFailure(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "invoice_1.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "invoice_1.txt"), []byte("INVOICE: INV-2025-009\n"), 0o644))

	up := &stubUploader{fail: true}
	p := newTestPipeline(t, WithUploader(up))
	results, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusError, results[0].Status)
	assert.Contains(t, results[0].Error, "connection refused")
}

func TestRunUploadRejected(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "invoice_1.pdf"), []byte("%PDF-1.4"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "invoice_1.txt"), []byte("INVOICE: INV-2025-009\n"), 0o644))

	up := &stubUploader{reject: true}
	p := newTestPipeline(t, WithUploader(up))
	results, err := p.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusError, results[0].Status)
	assert.Contains(t, results[0].Error, "duplicate invoice")
}

func TestRunWithoutUploader(t *testing.T) {
	p := newTestPipeline(t)
	_, err := p.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no uploader")
}

func TestRunMissingDir(t *testing.T) {
	up := &stubUploader{}
	p := newTestPipeline(t, WithUploader(up))
	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, eris.Is(err, segregate.ErrDirectoryNotFound))
}

func TestFormatReport(t *testing.T) {
	out := FormatReport([]model.BatchResult{
		{File: "a.pdf", Status: model.StatusConverted, InvoiceNumber: "INV-1", JSONFile: "a.json"},
		{File: "b.pdf", Status: model.StatusError, Error: "no text source"},
	})
	assert.True(t, strings.HasPrefix(out, "Processed 2 document(s): 1 succeeded, 1 failed"))
	assert.Contains(t, out, "ok    a.pdf")
	assert.Contains(t, out, "fail  b.pdf")
	assert.Contains(t, out, "no text source")
}
