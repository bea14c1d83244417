package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"testweave/internal/adapter/parser"
	"testweave/internal/app"
	"testweave/internal/domain/workflow"
)

// LocalRunner executes test artifacts as a plain subprocess on the host.
// It provides no resource isolation beyond the timeout and exists as the
// fallback for hosts without a container runtime.
type LocalRunner struct {
	python  string
	timeout time.Duration
}

// NewLocalRunner builds a runner invoking the given python interpreter.
// An empty interpreter defaults to "python".
func NewLocalRunner(python string, timeout time.Duration) *LocalRunner {
	if python == "" {
		python = "python"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LocalRunner{python: python, timeout: timeout}
}

func (r *LocalRunner) Name() string { return "local" }

// Available reports whether the interpreter resolves on PATH.
func (r *LocalRunner) Available(_ context.Context) bool {
	_, err := exec.LookPath(r.python)
	return err == nil
}

func (r *LocalRunner) Execute(ctx context.Context, tests, testFilename string) workflow.Verdict {
	dir, err := prepareWorkspace(tests, testFilename)
	if err != nil {
		return workflow.ErrorVerdict(err.Error())
	}
	defer os.RemoveAll(dir)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	app.GetLogger().Debug("local run: %s -m pytest -v %s", r.python, testFilename)
	cmd := exec.CommandContext(runCtx, r.python, "-m", "pytest", "-v", testFilename)
	cmd.Dir = dir
	output, runErr := cmd.CombinedOutput()

	if runCtx.Err() == context.DeadlineExceeded {
		return workflow.ErrorVerdict(fmt.Sprintf("execution timed out after %s", r.timeout))
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return workflow.ErrorVerdict(fmt.Sprintf("local execution failed: %v", runErr))
		}
	}
	return parser.ParsePytestOutput(string(output), exitCode)
}
