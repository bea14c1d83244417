package output

import (
	"context"

	"testweave/internal/domain/workflow"
)

// CheckpointStore persists workflow state between runs.
type CheckpointStore interface {
	// Save writes the state, replacing any previous checkpoint.
	Save(state *workflow.State) error

	// Load reads the stored checkpoint. Returns (nil, nil) when no
	// checkpoint exists.
	Load() (*workflow.State, error)

	// Clear removes the stored checkpoint. Clearing a missing checkpoint
	// is not an error.
	Clear() error
}

// CheckpointArchiver copies checkpoint documents to remote storage.
// Archival is best-effort: failures are logged, never fatal.
type CheckpointArchiver interface {
	// Archive uploads one encoded checkpoint under the given run ID.
	Archive(ctx context.Context, runID string, data []byte) error
}

// ArtifactStore persists generated test artifacts for inspection.
type ArtifactStore interface {
	// SaveArtifact writes one named artifact for a run and returns the
	// path it was written to.
	SaveArtifact(runID, filename string, content []byte) (string, error)
}
