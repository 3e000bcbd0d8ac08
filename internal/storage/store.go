package storage

import (
	"context"

	"gridsweep/internal/model"
)

// Store defines persistence operations for run history.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns all saved runs ordered by creation time, newest first.
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
}

// DefaultStoreKind names the backend used when none is requested.
func DefaultStoreKind() string {
	return "memory"
}
