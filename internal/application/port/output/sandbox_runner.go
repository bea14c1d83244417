package output

import (
	"context"

	"testweave/internal/domain/workflow"
)

// SandboxRunner executes a test artifact in isolation.
// Execute never returns an error: every internal fault (missing runtime,
// timeout, container crash) surfaces as a degraded Verdict so the workflow
// always has counts to act on.
type SandboxRunner interface {
	// Execute writes the artifact into a scratch workspace under the
	// given filename, runs the test suite, and returns the parsed verdict.
	Execute(ctx context.Context, tests, testFilename string) workflow.Verdict

	// Name identifies the backend for logging and run history.
	Name() string

	// Available reports whether this backend can run on the current host.
	Available(ctx context.Context) bool
}
