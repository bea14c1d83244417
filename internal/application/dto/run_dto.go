// Package dto holds the data transfer objects crossing the application
// boundary. Inbound requests and outbound results are plain structs so
// that CLI and HTTP front ends share one shape.
package dto

import "testweave/internal/domain/workflow"

// RunInput is the request for one workflow run.
type RunInput struct {
	// Mode selects generation from requirements or testing existing code.
	Mode workflow.Mode

	// Input is the requirements text or the source under test.
	Input string

	// MaxIterations caps execution attempts. Zero means the configured
	// default.
	MaxIterations int

	// Resume, when set, continues from a stored checkpoint instead of
	// starting fresh.
	Resume *workflow.State
}

// RunOutput is the result of one workflow run. Status is always one of
// the terminal values; Checkpoint is nil only on pure success.
type RunOutput struct {
	Status     workflow.Status          `json:"status"`
	Message    string                   `json:"message"`
	Mode       workflow.Mode            `json:"mode"`
	Tests      string                   `json:"tests,omitempty"`
	Scenarios  *workflow.Scenarios      `json:"scenarios,omitempty"`
	Iterations int                      `json:"iterations"`
	Verdict    *workflow.Verdict        `json:"verdict,omitempty"`
	Analysis   *workflow.Classification `json:"analysis,omitempty"`
	Checkpoint *workflow.State          `json:"checkpoint,omitempty"`
}
