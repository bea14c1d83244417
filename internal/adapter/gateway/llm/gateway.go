package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"testweave/internal/adapter/parser"
	"testweave/internal/app"
	"testweave/internal/domain/workflow"
)

// Gateway implements the application's completion port on top of a
// CompletionClient. Each capability is one request; errors propagate as
// hard failures of the run.
type Gateway struct {
	client CompletionClient
}

// NewGateway builds a gateway over the given client.
func NewGateway(client CompletionClient) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) AnalyzeRequirements(ctx context.Context, mode workflow.Mode, input string) (*workflow.Scenarios, error) {
	app.GetLogger().Debug("analyzing requirements (mode=%s, input=%d bytes)", mode, len(input))
	response, err := g.client.Complete(ctx, systemPrompt, requirementsPrompt(mode, input))
	if err != nil {
		return nil, fmt.Errorf("analyze requirements: %w", err)
	}
	return &workflow.Scenarios{
		RawAnalysis: response,
		Model:       g.client.Model(),
	}, nil
}

func (g *Gateway) GenerateTests(ctx context.Context, mode workflow.Mode, input string, scenarios *workflow.Scenarios) (string, error) {
	if scenarios == nil {
		return "", errors.New("generate tests: nil scenarios")
	}
	app.GetLogger().Debug("generating tests (mode=%s)", mode)
	response, err := g.client.Complete(ctx, systemPrompt, generatePrompt(mode, input, scenarios))
	if err != nil {
		return "", fmt.Errorf("generate tests: %w", err)
	}
	tests := StripCodeFences(response)
	if tests == "" {
		return "", errors.New("generate tests: empty artifact")
	}
	if err := checkSourcePreserved(mode, input, tests); err != nil {
		return "", fmt.Errorf("generate tests: %w", err)
	}
	return tests, nil
}

func (g *Gateway) AnalyzeFailure(ctx context.Context, state *workflow.State, verdict workflow.Verdict) (*workflow.Classification, error) {
	app.GetLogger().Debug("analyzing failure (iteration=%d, failed=%d)", state.Iteration, verdict.Failed)
	response, err := g.client.Complete(ctx, systemPrompt, analysisPrompt(state, verdict))
	if err != nil {
		return nil, fmt.Errorf("analyze failure: %w", err)
	}
	return parser.ParseAnalysis(response, verdict), nil
}

func (g *Gateway) RegenerateTests(ctx context.Context, state *workflow.State, verdict workflow.Verdict, classification *workflow.Classification) (string, error) {
	app.GetLogger().Debug("regenerating tests (iteration=%d)", state.Iteration)
	response, err := g.client.Complete(ctx, systemPrompt, regeneratePrompt(state, verdict, classification))
	if err != nil {
		return "", fmt.Errorf("regenerate tests: %w", err)
	}
	tests := StripCodeFences(response)
	if tests == "" {
		return "", errors.New("regenerate tests: empty artifact")
	}
	if err := checkSourcePreserved(state.Mode, state.OriginalInput, tests); err != nil {
		return "", fmt.Errorf("regenerate tests: %w", err)
	}
	return tests, nil
}

// checkSourcePreserved enforces the TEST mode contract: the artifact must
// carry the code under test as a literal substring, unmodified, because
// the user edits the implementation inside the artifact between runs.
func checkSourcePreserved(mode workflow.Mode, source, artifact string) error {
	if mode != workflow.ModeTest {
		return nil
	}
	if !strings.Contains(artifact, strings.TrimSpace(source)) {
		return errors.New("artifact does not preserve the code under test verbatim")
	}
	return nil
}
