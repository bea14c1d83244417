// Package run implements the iterative generate-execute-repair workflow.
package run

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"testweave/internal/app"
	"testweave/internal/application/dto"
	"testweave/internal/application/port/output"
	"testweave/internal/domain/workflow"
)

// RunnerProvider yields the sandbox backend for a run.
type RunnerProvider interface {
	Runner(ctx context.Context) output.SandboxRunner
}

// UseCase drives one workflow run from input to terminal status.
//
// The loop per iteration: execute, record failures, check for a stuck
// loop, classify, then either halt or regenerate. The stuck check runs
// before any classification so a non-converging run never spends another
// model call. A run with iteration ceiling N performs exactly N
// executions before reporting MAX_ITERATIONS.
type UseCase struct {
	gateway       output.CompletionGateway
	runners       RunnerProvider
	notifier      output.ProgressNotifier
	maxIterations int
}

// NewUseCase wires the workflow. maxIterations is the default ceiling
// applied when a request does not set its own.
func NewUseCase(gateway output.CompletionGateway, runners RunnerProvider, notifier output.ProgressNotifier, maxIterations int) *UseCase {
	if notifier == nil {
		notifier = output.NopNotifier{}
	}
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &UseCase{
		gateway:       gateway,
		runners:       runners,
		notifier:      notifier,
		maxIterations: maxIterations,
	}
}

// Execute runs the workflow to completion. It always returns a RunOutput;
// faults of any collaborator surface as the ERROR status with a partial
// checkpoint rather than as an error value.
func (uc *UseCase) Execute(ctx context.Context, in dto.RunInput) (out *dto.RunOutput) {
	var state *workflow.State

	defer func() {
		if r := recover(); r != nil {
			app.GetLogger().Error("workflow panic: %v", r)
			out = uc.errorOutput(state, fmt.Sprintf("internal error: %v", r))
		}
	}()

	state, out = uc.prepare(ctx, in)
	if out != nil {
		return out
	}
	return uc.iterate(ctx, in, state)
}

// prepare builds the working state: either resuming a checkpoint or
// running the one-time analysis and generation phases. A non-nil output
// means preparation already terminated the run.
func (uc *UseCase) prepare(ctx context.Context, in dto.RunInput) (*workflow.State, *dto.RunOutput) {
	if in.Resume != nil {
		state := in.Resume.Clone()
		if state.Scenarios == nil || strings.TrimSpace(state.Tests) == "" {
			return nil, uc.errorOutput(state, "checkpoint is missing scenarios or tests")
		}
		uc.notifier.Notify("resume", fmt.Sprintf("resuming at iteration %d, skipping analysis and generation", state.Iteration))
		return state, nil
	}

	state, err := workflow.NewState(in.Mode, in.Input)
	if err != nil {
		return nil, uc.errorOutput(nil, err.Error())
	}

	uc.notifier.Notify("analyze", "analyzing requirements")
	scenarios, err := uc.gateway.AnalyzeRequirements(ctx, state.Mode, state.OriginalInput)
	if err != nil {
		return nil, uc.errorOutput(state, fmt.Sprintf("requirements analysis failed: %v", err))
	}
	state.Scenarios = scenarios

	uc.notifier.Notify("generate", "generating tests")
	tests, err := uc.gateway.GenerateTests(ctx, state.Mode, state.OriginalInput, scenarios)
	if err != nil {
		return nil, uc.errorOutput(state, fmt.Sprintf("test generation failed: %v", err))
	}
	state.Tests = tests
	return state, nil
}

func (uc *UseCase) iterate(ctx context.Context, in dto.RunInput, state *workflow.State) *dto.RunOutput {
	maxIterations := in.MaxIterations
	if maxIterations <= 0 {
		maxIterations = uc.maxIterations
	}

	runner := uc.runners.Runner(ctx)
	var history workflow.FailureHistory

	for {
		if err := ctx.Err(); err != nil {
			return uc.errorOutput(state, fmt.Sprintf("run canceled: %v", err))
		}
		if state.Iteration >= maxIterations {
			return uc.terminal(workflow.StatusMaxIterations, state, nil, nil,
				fmt.Sprintf("no passing suite after %d iterations", state.Iteration))
		}

		state.Iteration++
		uc.notifier.Notify("execute", fmt.Sprintf("iteration %d/%d: running tests (%s backend)", state.Iteration, maxIterations, runner.Name()))
		verdict := runner.Execute(ctx, state.Tests, state.Mode.ArtifactFilename())

		if verdict.IsSuccess() {
			uc.notifier.Notify("success", fmt.Sprintf("all tests passed (%d passed)", verdict.Passed))
			return &dto.RunOutput{
				Status:     workflow.StatusSuccess,
				Message:    fmt.Sprintf("%d tests passed after %d iteration(s)", verdict.Passed, state.Iteration),
				Mode:       state.Mode,
				Tests:      state.Tests,
				Scenarios:  state.Scenarios,
				Iterations: state.Iteration,
				Verdict:    &verdict,
			}
		}

		history.Record(verdict.FailingTests)
		if history.Stuck() {
			return uc.terminal(workflow.StatusStuckLoop, state, &verdict, nil,
				fmt.Sprintf("same tests failing %d iterations in a row: %s", workflow.StuckWindow, joinSorted(verdict.FailingTests)))
		}
		uc.notifier.Notify("classify", fmt.Sprintf("iteration %d: %d failed, classifying", state.Iteration, verdict.Failed))
		classification, err := uc.gateway.AnalyzeFailure(ctx, state, verdict)
		if err != nil {
			return uc.errorOutput(state, fmt.Sprintf("failure analysis failed: %v", err))
		}

		if classification.FailureType.AlwaysHalts() || classification.ShouldStop {
			return uc.terminal(classification.FailureType.ToStatus(), state, &verdict, classification,
				haltMessage(classification))
		}

		// A repairable failure on the last allowed iteration gets its
		// diagnosis reported, but no further regeneration.
		if state.Iteration >= maxIterations {
			return uc.terminal(workflow.StatusMaxIterations, state, &verdict, classification,
				fmt.Sprintf("no passing suite after %d iterations; last failing: %s", state.Iteration, joinSorted(history.LastFailing())))
		}

		uc.notifier.Notify("regenerate", fmt.Sprintf("iteration %d: test bug, regenerating", state.Iteration))
		tests, err := uc.gateway.RegenerateTests(ctx, state, verdict, classification)
		if err != nil {
			return uc.errorOutput(state, fmt.Sprintf("test regeneration failed: %v", err))
		}
		state.Tests = tests
	}
}

func (uc *UseCase) terminal(status workflow.Status, state *workflow.State, verdict *workflow.Verdict, classification *workflow.Classification, message string) *dto.RunOutput {
	uc.notifier.Notify("halt", fmt.Sprintf("%s: %s", status, message))
	checkpoint := state.Clone()
	checkpoint.CheckpointReason = status.String()
	return &dto.RunOutput{
		Status:     status,
		Message:    message,
		Mode:       state.Mode,
		Tests:      state.Tests,
		Scenarios:  state.Scenarios,
		Iterations: state.Iteration,
		Verdict:    verdict,
		Analysis:   classification,
		Checkpoint: checkpoint,
	}
}

// errorOutput is the terminal for internal faults. The checkpoint is
// best-effort: whatever state existed when the fault hit.
func (uc *UseCase) errorOutput(state *workflow.State, message string) *dto.RunOutput {
	out := &dto.RunOutput{
		Status:  workflow.StatusError,
		Message: message,
	}
	if state != nil {
		checkpoint := state.Clone()
		checkpoint.CheckpointReason = workflow.StatusError.String()
		out.Mode = state.Mode
		out.Tests = state.Tests
		out.Scenarios = state.Scenarios
		out.Iterations = state.Iteration
		out.Checkpoint = checkpoint
	}
	return out
}

func haltMessage(c *workflow.Classification) string {
	switch {
	case c.FailureType == workflow.FailureCodeBug:
		return fmt.Sprintf("implementation bug (confidence %d%%): %s", c.Confidence, firstLine(c.Analysis))
	case c.FailureType == workflow.FailureAmbiguity:
		return fmt.Sprintf("requirements ambiguity (confidence %d%%): %s", c.Confidence, firstLine(c.Analysis))
	default:
		return fmt.Sprintf("test bug, analyzer recommends stopping (confidence %d%%): %s", c.Confidence, firstLine(c.Analysis))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func joinSorted(names []string) string {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
