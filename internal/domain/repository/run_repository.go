package repository

import (
	"context"
	"time"

	"testweave/internal/domain/workflow"
)

// RunRecord is one completed workflow run as stored in history.
type RunRecord struct {
	ID         string
	Mode       workflow.Mode
	Status     workflow.Status
	Iterations int
	Passed     int
	Failed     int
	Backend    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunRepository persists run outcomes for later inspection.
type RunRepository interface {
	// Save stores one finished run.
	Save(ctx context.Context, record *RunRecord) error

	// Recent returns up to limit runs, most recent first.
	Recent(ctx context.Context, limit int) ([]*RunRecord, error)

	// Find returns the run with the given ID, or nil if absent.
	Find(ctx context.Context, id string) (*RunRecord, error)
}
