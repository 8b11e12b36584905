package model

import "time"

// BatchStatus is the per-document outcome tag.
type BatchStatus string

const (
	StatusConverted BatchStatus = "converted"
	StatusUploaded  BatchStatus = "uploaded"
	StatusError     BatchStatus = "error"
)

// BatchResult records the outcome for one processed document. Exactly
// one entry is produced per discovered document, success or not.
type BatchResult struct {
	File          string      `json:"file"`
	Status        BatchStatus `json:"status"`
	InvoiceNumber string      `json:"invoice_number,omitempty"`
	JSONFile      string      `json:"json_file,omitempty"`
	OutputPath    string      `json:"output_path,omitempty"`
	ConvexID      string      `json:"convex_id,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// Succeeded reports whether the document was processed without error.
func (r BatchResult) Succeeded() bool {
	return r.Status != StatusError
}

// Summarize counts successes and errors by scanning a completed result
// list. Counts are always derived from the list so they cannot drift
// from it.
func Summarize(results []BatchResult) (succeeded, failed int) {
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// RunStatus represents the state of a recorded batch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunMode identifies which workflow produced a run.
type RunMode string

const (
	RunModeConvert  RunMode = "convert"
	RunModePipeline RunMode = "pipeline"
)

// Run is one recorded invocation of a batch workflow.
type Run struct {
	ID        string        `json:"id"`
	Mode      RunMode       `json:"mode"`
	SourceDir string        `json:"source_dir"`
	Status    RunStatus     `json:"status"`
	Results   []BatchResult `json:"results,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
