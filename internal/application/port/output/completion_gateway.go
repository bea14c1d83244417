// Package output defines the outbound ports of the application layer.
// Adapters under internal/adapter implement these interfaces.
package output

import (
	"context"

	"testweave/internal/domain/workflow"
)

// CompletionGateway is the model boundary. Each method is one distinct
// capability of the workflow; any error from a capability is a hard error
// for the run, there is no retry at this level.
type CompletionGateway interface {
	// AnalyzeRequirements derives test scenarios from requirements or from
	// an existing implementation. Called at most once per run.
	AnalyzeRequirements(ctx context.Context, mode workflow.Mode, input string) (*workflow.Scenarios, error)

	// GenerateTests produces the initial test artifact from the scenarios.
	GenerateTests(ctx context.Context, mode workflow.Mode, input string, scenarios *workflow.Scenarios) (string, error)

	// AnalyzeFailure classifies a failing execution.
	AnalyzeFailure(ctx context.Context, state *workflow.State, verdict workflow.Verdict) (*workflow.Classification, error)

	// RegenerateTests produces a corrected test artifact after a failure
	// classified as fixable.
	RegenerateTests(ctx context.Context, state *workflow.State, verdict workflow.Verdict, classification *workflow.Classification) (string, error)
}
