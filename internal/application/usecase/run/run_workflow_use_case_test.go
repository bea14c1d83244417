package run

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testweave/internal/application/dto"
	"testweave/internal/application/port/output"
	"testweave/internal/domain/workflow"
)

type fakeGateway struct {
	scenarios       *workflow.Scenarios
	analyzeErr      error
	tests           string
	generateErr     error
	classifications []*workflow.Classification
	classifyErr     error
	regenerated     []string
	regenerateErr   error

	analyzeCalls    int
	generateCalls   int
	classifyCalls   int
	regenerateCalls int
}

func (g *fakeGateway) AnalyzeRequirements(context.Context, workflow.Mode, string) (*workflow.Scenarios, error) {
	g.analyzeCalls++
	if g.analyzeErr != nil {
		return nil, g.analyzeErr
	}
	return g.scenarios, nil
}

func (g *fakeGateway) GenerateTests(context.Context, workflow.Mode, string, *workflow.Scenarios) (string, error) {
	g.generateCalls++
	if g.generateErr != nil {
		return "", g.generateErr
	}
	return g.tests, nil
}

func (g *fakeGateway) AnalyzeFailure(context.Context, *workflow.State, workflow.Verdict) (*workflow.Classification, error) {
	g.classifyCalls++
	if g.classifyErr != nil {
		return nil, g.classifyErr
	}
	idx := g.classifyCalls - 1
	if idx >= len(g.classifications) {
		idx = len(g.classifications) - 1
	}
	return g.classifications[idx], nil
}

func (g *fakeGateway) RegenerateTests(context.Context, *workflow.State, workflow.Verdict, *workflow.Classification) (string, error) {
	g.regenerateCalls++
	if g.regenerateErr != nil {
		return "", g.regenerateErr
	}
	idx := g.regenerateCalls - 1
	if idx >= len(g.regenerated) {
		idx = len(g.regenerated) - 1
	}
	return g.regenerated[idx], nil
}

type fakeRunner struct {
	verdicts  []workflow.Verdict
	calls     int
	tests     []string
	filenames []string
	panics    bool
}

func (r *fakeRunner) Execute(_ context.Context, tests, filename string) workflow.Verdict {
	if r.panics {
		panic("runner exploded")
	}
	r.tests = append(r.tests, tests)
	r.filenames = append(r.filenames, filename)
	idx := r.calls
	r.calls++
	if idx >= len(r.verdicts) {
		idx = len(r.verdicts) - 1
	}
	return r.verdicts[idx]
}

func (r *fakeRunner) Name() string                   { return "fake" }
func (r *fakeRunner) Available(context.Context) bool { return true }

type fakeProvider struct{ runner output.SandboxRunner }

func (p fakeProvider) Runner(context.Context) output.SandboxRunner { return p.runner }

func failing(names ...string) workflow.Verdict {
	return workflow.Verdict{
		Failed:       len(names),
		Passed:       1,
		ExitCode:     1,
		Output:       "FAILED " + fmt.Sprint(names),
		FailingTests: names,
	}
}

func passing(n int) workflow.Verdict {
	return workflow.Verdict{Passed: n, ExitCode: 0, FailingTests: []string{}}
}

func retryable() *workflow.Classification {
	return &workflow.Classification{
		FailureType: workflow.FailureTestBug,
		ShouldStop:  false,
		Confidence:  80,
		Analysis:    "wrong assertion",
	}
}

func newGateway() *fakeGateway {
	return &fakeGateway{
		scenarios:       &workflow.Scenarios{RawAnalysis: "1. works", Model: "m"},
		tests:           "def test_v1(): pass",
		classifications: []*workflow.Classification{retryable()},
		regenerated:     []string{"def test_v2(): pass", "def test_v3(): pass", "def test_v4(): pass"},
	}
}

func generateInput() dto.RunInput {
	return dto.RunInput{Mode: workflow.ModeGenerate, Input: "build a stack"}
}

func TestSuccessOnFirstIteration(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{passing(4)}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusSuccess, out.Status)
	assert.Equal(t, 1, out.Iterations)
	assert.Equal(t, 1, runner.calls)
	assert.Nil(t, out.Checkpoint, "success carries no checkpoint")
	assert.Equal(t, "def test_v1(): pass", out.Tests)
	require.NotNil(t, out.Verdict)
	assert.Equal(t, 4, out.Verdict.Passed)
}

func TestRepairThenSuccess(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_a"), passing(3)}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusSuccess, out.Status)
	assert.Equal(t, 2, out.Iterations)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, 1, gw.classifyCalls)
	assert.Equal(t, 1, gw.regenerateCalls)
	// second execution ran the regenerated artifact
	assert.Equal(t, "def test_v2(): pass", runner.tests[1])
	assert.Equal(t, "def test_v2(): pass", out.Tests)
}

func TestCeilingIsExact(t *testing.T) {
	gw := newGateway()
	// distinct failing sets so the stuck detector never fires
	runner := &fakeRunner{verdicts: []workflow.Verdict{
		failing("test_a"), failing("test_b"), failing("test_c"),
	}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 3)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusMaxIterations, out.Status)
	assert.Equal(t, 3, runner.calls, "ceiling of 3 means exactly 3 executions")
	assert.Equal(t, 3, out.Iterations)
	// every failing iteration is classified, only regeneration is skipped at the end
	assert.Equal(t, 3, gw.classifyCalls)
	assert.Equal(t, 2, gw.regenerateCalls)
	require.NotNil(t, out.Analysis)
	assert.Contains(t, out.Message, "test_c")
	require.NotNil(t, out.Checkpoint)
	assert.Equal(t, "MAX_ITERATIONS", out.Checkpoint.CheckpointReason)
	assert.Equal(t, 3, out.Checkpoint.Iteration)
}

func TestCodeBugOnFinalIterationIsDiagnosed(t *testing.T) {
	gw := newGateway()
	gw.classifications = []*workflow.Classification{{
		FailureType: workflow.FailureCodeBug,
		Confidence:  90,
		Analysis:    "pop returns the wrong element",
	}}
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_pop")}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 1)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusCodeBug, out.Status)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1, gw.classifyCalls)
	assert.Equal(t, 0, gw.regenerateCalls)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, "pop returns the wrong element", out.Analysis.Analysis)
}

func TestStuckLoopDetectedBeforeClassification(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{
		failing("test_a", "test_b"), failing("test_b", "test_a"), failing("test_a", "test_b"),
	}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 10)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusStuckLoop, out.Status)
	assert.Equal(t, 3, runner.calls)
	// the third identical failure halts without another model call
	assert.Equal(t, 2, gw.classifyCalls)
	require.NotNil(t, out.Checkpoint)
	assert.Equal(t, "STUCK_LOOP", out.Checkpoint.CheckpointReason)
	assert.Contains(t, out.Message, "test_a, test_b")
}

func TestCodeBugHaltsImmediately(t *testing.T) {
	gw := newGateway()
	gw.classifications = []*workflow.Classification{{
		FailureType: workflow.FailureCodeBug,
		ShouldStop:  false, // ignored, CODE_BUG always halts
		Confidence:  95,
		Analysis:    "off by one in pop",
	}}
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_pop")}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusCodeBug, out.Status)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 0, gw.regenerateCalls)
	require.NotNil(t, out.Analysis)
	assert.Equal(t, 95, out.Analysis.Confidence)
	require.NotNil(t, out.Checkpoint)
	assert.Equal(t, "CODE_BUG", out.Checkpoint.CheckpointReason)
}

func TestAmbiguityHaltsImmediately(t *testing.T) {
	gw := newGateway()
	gw.classifications = []*workflow.Classification{{
		FailureType: workflow.FailureAmbiguity,
		ShouldStop:  false,
		Analysis:    "requirements do not define pop on empty",
	}}
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_pop_empty")}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusAmbiguity, out.Status)
	assert.Equal(t, 0, gw.regenerateCalls)
}

func TestTestBugWithShouldStopHalts(t *testing.T) {
	gw := newGateway()
	gw.classifications = []*workflow.Classification{{
		FailureType: workflow.FailureTestBug,
		ShouldStop:  true,
		Analysis:    "fixture requires a network",
	}}
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_net")}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusTestBug, out.Status)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 0, gw.regenerateCalls)
}

func TestDegradedExecutionIsNotSuccess(t *testing.T) {
	gw := newGateway()
	gw.classifications = []*workflow.Classification{{
		FailureType: workflow.FailureCodeBug,
		Analysis:    "suite crashed on import",
	}}
	// zero counts but a non-zero exit: a crash, not a clean pass
	runner := &fakeRunner{verdicts: []workflow.Verdict{
		{Passed: 0, Failed: 0, ExitCode: 2, Output: "SyntaxError", FailingTests: []string{}},
	}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.NotEqual(t, workflow.StatusSuccess, out.Status)
	assert.Equal(t, 1, gw.classifyCalls)
}

func TestResumeSkipsAnalysisAndGeneration(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{passing(2)}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	checkpoint := &workflow.State{
		Mode:          workflow.ModeGenerate,
		Scenarios:     &workflow.Scenarios{RawAnalysis: "1. works", Model: "m"},
		Tests:         "def test_saved(): pass",
		Iteration:     2,
		OriginalInput: "build a stack",
	}
	out := uc.Execute(context.Background(), dto.RunInput{Mode: workflow.ModeGenerate, Resume: checkpoint})

	assert.Equal(t, workflow.StatusSuccess, out.Status)
	assert.Equal(t, 0, gw.analyzeCalls)
	assert.Equal(t, 0, gw.generateCalls)
	assert.Equal(t, "def test_saved(): pass", runner.tests[0])
	assert.Equal(t, 3, out.Iterations)
	// the caller's copy stays untouched
	assert.Equal(t, 2, checkpoint.Iteration)
}

func TestResumeAtCeilingRunsNothing(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{passing(1)}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	checkpoint := &workflow.State{
		Mode:          workflow.ModeGenerate,
		Scenarios:     &workflow.Scenarios{RawAnalysis: "a", Model: "m"},
		Tests:         "def test_saved(): pass",
		Iteration:     5,
		OriginalInput: "build a stack",
	}
	out := uc.Execute(context.Background(), dto.RunInput{Mode: workflow.ModeGenerate, Resume: checkpoint, MaxIterations: 5})

	assert.Equal(t, workflow.StatusMaxIterations, out.Status)
	assert.Equal(t, 0, runner.calls)
}

func TestResumeWithBrokenCheckpoint(t *testing.T) {
	gw := newGateway()
	uc := NewUseCase(gw, fakeProvider{&fakeRunner{verdicts: []workflow.Verdict{passing(1)}}}, nil, 5)

	out := uc.Execute(context.Background(), dto.RunInput{
		Mode:   workflow.ModeGenerate,
		Resume: &workflow.State{Mode: workflow.ModeGenerate, Tests: "t", OriginalInput: "x"},
	})

	assert.Equal(t, workflow.StatusError, out.Status)
	assert.Contains(t, out.Message, "missing scenarios")
}

func TestCanceledContextProducesErrorWithCheckpoint(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_a")}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := uc.Execute(ctx, generateInput())

	assert.Equal(t, workflow.StatusError, out.Status)
	assert.Equal(t, 0, runner.calls)
	require.NotNil(t, out.Checkpoint)
	assert.Equal(t, "ERROR", out.Checkpoint.CheckpointReason)
	// the one-time phases completed, so the checkpoint is resumable
	assert.NotNil(t, out.Checkpoint.Scenarios)
	assert.NotEmpty(t, out.Checkpoint.Tests)
}

func TestAnalysisErrorProducesErrorStatus(t *testing.T) {
	gw := newGateway()
	gw.classifyErr = errors.New("model unavailable")
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_a")}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusError, out.Status)
	assert.Contains(t, out.Message, "model unavailable")
	require.NotNil(t, out.Checkpoint)
	assert.Equal(t, 1, out.Checkpoint.Iteration)
}

func TestGenerationErrorProducesErrorStatus(t *testing.T) {
	gw := newGateway()
	gw.generateErr = errors.New("quota exceeded")
	uc := NewUseCase(gw, fakeProvider{&fakeRunner{verdicts: []workflow.Verdict{passing(1)}}}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusError, out.Status)
	require.NotNil(t, out.Checkpoint)
	// scenarios survived even though generation failed
	assert.NotNil(t, out.Checkpoint.Scenarios)
}

func TestPanicBecomesErrorStatus(t *testing.T) {
	gw := newGateway()
	uc := NewUseCase(gw, fakeProvider{&fakeRunner{panics: true}}, nil, 5)

	out := uc.Execute(context.Background(), generateInput())

	assert.Equal(t, workflow.StatusError, out.Status)
	assert.Contains(t, out.Message, "runner exploded")
}

func TestEmptyInputIsError(t *testing.T) {
	uc := NewUseCase(newGateway(), fakeProvider{&fakeRunner{verdicts: []workflow.Verdict{passing(1)}}}, nil, 5)
	out := uc.Execute(context.Background(), dto.RunInput{Mode: workflow.ModeGenerate, Input: "   "})
	assert.Equal(t, workflow.StatusError, out.Status)
	assert.Nil(t, out.Checkpoint)
}

func TestArtifactFilenamePerMode(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{passing(1)}}
	uc := NewUseCase(gw, fakeProvider{runner}, nil, 5)

	uc.Execute(context.Background(), generateInput())
	assert.Equal(t, "test_generated.py", runner.filenames[0])

	runner2 := &fakeRunner{verdicts: []workflow.Verdict{passing(1)}}
	uc2 := NewUseCase(newGateway(), fakeProvider{runner2}, nil, 5)
	uc2.Execute(context.Background(), dto.RunInput{Mode: workflow.ModeTest, Input: "def add(a, b): return a + b"})
	assert.Equal(t, "test_user_code.py", runner2.filenames[0])
}

func TestNotifierReceivesProgress(t *testing.T) {
	gw := newGateway()
	runner := &fakeRunner{verdicts: []workflow.Verdict{failing("test_a"), passing(2)}}

	var steps []string
	notifier := output.FuncNotifier(func(step, _ string) { steps = append(steps, step) })
	uc := NewUseCase(gw, fakeProvider{runner}, notifier, 5)

	uc.Execute(context.Background(), generateInput())

	assert.Equal(t, []string{"analyze", "generate", "execute", "classify", "regenerate", "execute", "success"}, steps)
}
