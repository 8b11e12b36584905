// Package pipeline orchestrates the invoice batch workflows: local
// conversion to JSON files and the full segregate-extract-upload run.
// Every discovered document yields exactly one result entry; a failure
// on one document never stops the batch.
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/phantompay/invoice-cli/internal/extract"
	"github.com/phantompay/invoice-cli/internal/model"
	"github.com/phantompay/invoice-cli/internal/segregate"
	"github.com/phantompay/invoice-cli/internal/textsource"
	"github.com/phantompay/invoice-cli/pkg/convex"
)

// Uploader persists one invoice record in the remote backend.
// Satisfied by convex.Client.
type Uploader interface {
	ProcessInvoice(ctx context.Context, record any) (*convex.ProcessResult, error)
}

// Recorder keeps run history. Satisfied by store.Store; nil disables
// recording.
type Recorder interface {
	CreateRun(ctx context.Context, mode model.RunMode, sourceDir string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, results []model.BatchResult) error
}

// Pipeline runs the batch workflows. Construct with New; the zero
// value is not usable.
type Pipeline struct {
	resolver *textsource.Resolver
	builder  *extract.Builder
	uploader Uploader
	recorder Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithUploader enables the upload stage of Run.
func WithUploader(u Uploader) Option {
	return func(p *Pipeline) {
		p.uploader = u
	}
}

// WithRecorder enables run-history recording.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// New builds a Pipeline around a text resolver and record builder.
func New(resolver *textsource.Resolver, builder *extract.Builder, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		builder:  builder,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Convert processes every PDF in srcDir into a JSON file under outDir
// and writes an aggregate results file next to them. Documents that
// fail produce an error result; only a missing source directory is
// fatal.
func (p *Pipeline) Convert(ctx context.Context, srcDir, outDir string) ([]model.BatchResult, error) {
	pdfs, err := listPDFs(srcDir)
	if err != nil {
		return nil, err
	}

	run := p.startRun(ctx, model.RunModeConvert, srcDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		p.finishRun(ctx, run, model.RunStatusFailed, nil)
		return nil, eris.Wrapf(err, "pipeline: create output dir %s", outDir)
	}

	results := make([]model.BatchResult, 0, len(pdfs))
	for _, pdfPath := range pdfs {
		if err := ctx.Err(); err != nil {
			p.finishRun(ctx, run, model.RunStatusFailed, results)
			return results, eris.Wrap(err, "pipeline: convert interrupted")
		}
		results = append(results, p.convertOne(ctx, pdfPath, outDir))
	}

	if err := p.writeResults(srcDir, outDir, results); err != nil {
		zap.L().Warn("failed to write results file", zap.Error(err))
	}

	succeeded, failed := model.Summarize(results)
	zap.L().Info("conversion complete",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.String("output_dir", outDir))

	p.finishRun(ctx, run, model.RunStatusComplete, results)
	return results, nil
}

// Run executes the full pipeline: segregate srcDir, then convert and
// upload every PDF that landed in <src>/data_2.
func (p *Pipeline) Run(ctx context.Context, srcDir string) ([]model.BatchResult, error) {
	if p.uploader == nil {
		return nil, eris.New("pipeline: no uploader configured")
	}

	txtCount, pdfCount, err := segregate.Segregate(srcDir)
	if err != nil {
		return nil, err
	}
	zap.L().Info("segregation complete",
		zap.Int("txt", txtCount),
		zap.Int("pdf", pdfCount))

	dataDir := filepath.Join(srcDir, segregate.DataDir)
	pdfs, err := listPDFs(dataDir)
	if err != nil {
		return nil, err
	}

	run := p.startRun(ctx, model.RunModePipeline, srcDir)

	results := make([]model.BatchResult, 0, len(pdfs))
	for _, pdfPath := range pdfs {
		if err := ctx.Err(); err != nil {
			p.finishRun(ctx, run, model.RunStatusFailed, results)
			return results, eris.Wrap(err, "pipeline: run interrupted")
		}
		results = append(results, p.uploadOne(ctx, pdfPath))
	}

	succeeded, failed := model.Summarize(results)
	zap.L().Info("pipeline complete",
		zap.Int("uploaded", succeeded),
		zap.Int("failed", failed))

	p.finishRun(ctx, run, model.RunStatusComplete, results)
	return results, nil
}

func (p *Pipeline) convertOne(ctx context.Context, pdfPath, outDir string) model.BatchResult {
	file := filepath.Base(pdfPath)

	record, err := p.buildRecord(ctx, pdfPath)
	if err != nil {
		zap.L().Warn("conversion failed",
			zap.String("file", file),
			zap.Error(err))
		return errorResult(file, err)
	}

	jsonFile := stem(file) + ".json"
	outPath := filepath.Join(outDir, jsonFile)
	if err := writeJSON(outPath, record); err != nil {
		zap.L().Warn("conversion failed",
			zap.String("file", file),
			zap.Error(err))
		return errorResult(file, err)
	}

	return model.BatchResult{
		File:          file,
		Status:        model.StatusConverted,
		InvoiceNumber: record.InvoiceNumberOr("unknown"),
		JSONFile:      jsonFile,
		OutputPath:    outPath,
	}
}

func (p *Pipeline) uploadOne(ctx context.Context, pdfPath string) model.BatchResult {
	file := filepath.Base(pdfPath)

	record, err := p.buildRecord(ctx, pdfPath)
	if err != nil {
		zap.L().Warn("upload skipped",
			zap.String("file", file),
			zap.Error(err))
		return errorResult(file, err)
	}

	resp, err := p.uploader.ProcessInvoice(ctx, record)
	if err != nil {
		zap.L().Warn("upload failed",
			zap.String("file", file),
			zap.Error(err))
		return errorResult(file, err)
	}
	if !resp.Success {
		err := eris.Errorf("pipeline: backend rejected invoice: %s", resp.ErrorMessage)
		zap.L().Warn("upload rejected",
			zap.String("file", file),
			zap.Error(err))
		return errorResult(file, err)
	}

	return model.BatchResult{
		File:          file,
		Status:        model.StatusUploaded,
		InvoiceNumber: record.InvoiceNumberOr("unknown"),
		ConvexID:      resp.InvoiceID,
	}
}

func (p *Pipeline) buildRecord(ctx context.Context, pdfPath string) (*model.InvoiceRecord, error) {
	text, err := p.resolver.Resolve(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	return p.builder.Build(text, pdfPath), nil
}

func (p *Pipeline) writeResults(srcDir, outDir string, results []model.BatchResult) error {
	name := filepath.Base(filepath.Clean(srcDir)) + "_conversion_results.json"
	return writeJSON(filepath.Join(outDir, name), results)
}

func (p *Pipeline) startRun(ctx context.Context, mode model.RunMode, srcDir string) *model.Run {
	if p.recorder == nil {
		return nil
	}
	run, err := p.recorder.CreateRun(ctx, mode, srcDir)
	if err != nil {
		zap.L().Warn("failed to record run start", zap.Error(err))
		return nil
	}
	return run
}

func (p *Pipeline) finishRun(ctx context.Context, run *model.Run, status model.RunStatus, results []model.BatchResult) {
	if p.recorder == nil || run == nil {
		return
	}
	if err := p.recorder.CompleteRun(ctx, run.ID, status, results); err != nil {
		zap.L().Warn("failed to record run completion", zap.Error(err))
	}
}

func listPDFs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, eris.Wrapf(segregate.ErrDirectoryNotFound, "pipeline: %s", dir)
	}

	pdfs, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: glob %s", dir)
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

// writeJSON writes v as indented JSON with HTML escaping disabled so
// non-ASCII content survives verbatim.
func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: create %s", path)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return eris.Wrapf(err, "pipeline: encode %s", path)
	}
	return eris.Wrapf(f.Close(), "pipeline: close %s", path)
}

func errorResult(file string, err error) model.BatchResult {
	return model.BatchResult{
		File:   file,
		Status: model.StatusError,
		Error:  err.Error(),
	}
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
