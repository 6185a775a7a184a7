// Package store persists recommendation runs for audit and history. The
// core pipeline never touches it; hosts (CLI, server) record runs after the
// computation completes.
package store

import (
	"context"

	"github.com/rxtally/dispense-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	DrugName string          `json:"drug_name,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for recommendation runs.
type Store interface {
	CreateRun(ctx context.Context, req model.Request) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, result *model.Recommendation) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
