// Package store persists batch run history. Two drivers are provided:
// sqlite for the default single-machine setup and postgres for shared
// deployments.
package store

import (
	"context"

	"github.com/phantompay/invoice-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Mode   model.RunMode   `json:"mode,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for batch run history.
type Store interface {
	CreateRun(ctx context.Context, mode model.RunMode, sourceDir string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, results []model.BatchResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
