package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"testweave/internal/adapter/parser"
	"testweave/internal/app"
	"testweave/internal/domain/workflow"
)

// DockerRunner executes test artifacts in a throwaway container.
// The workspace is mounted read-only and the container gets no network,
// bounded memory and CPU, and no privilege escalation.
type DockerRunner struct {
	policy Policy
}

// NewDockerRunner builds a runner with the given policy.
func NewDockerRunner(policy Policy) *DockerRunner {
	return &DockerRunner{policy: policy}
}

func (r *DockerRunner) Name() string { return "docker" }

// Available reports whether the docker daemon answers on this host.
func (r *DockerRunner) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return exec.CommandContext(probeCtx, "docker", "version").Run() == nil
}

func (r *DockerRunner) Execute(ctx context.Context, tests, testFilename string) workflow.Verdict {
	dir, err := prepareWorkspace(tests, testFilename)
	if err != nil {
		return workflow.ErrorVerdict(err.Error())
	}
	defer os.RemoveAll(dir)

	containerName := "testweave-" + strings.ToLower(ulid.Make().String())

	runCtx, cancel := context.WithTimeout(ctx, r.policy.Timeout())
	defer cancel()

	args := []string{
		"run", "--rm",
		"--name", containerName,
		"--memory", r.policy.Memory,
		"--cpus", fmt.Sprintf("%g", r.policy.CPUs),
		"--network", r.policy.Network,
		"--security-opt", "no-new-privileges",
		"-v", dir + ":/work:ro",
		"-w", "/work",
		r.policy.Image,
		"python", "-m", "pytest", "-v", testFilename,
	}

	app.GetLogger().Debug("docker run: container=%s image=%s", containerName, r.policy.Image)
	cmd := exec.CommandContext(runCtx, "docker", args...)
	output, runErr := cmd.CombinedOutput()

	if runCtx.Err() == context.DeadlineExceeded {
		r.forceRemove(containerName)
		return workflow.ErrorVerdict(fmt.Sprintf("execution timed out after %s", r.policy.Timeout()))
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			r.forceRemove(containerName)
			return workflow.ErrorVerdict(fmt.Sprintf("docker execution failed: %v", runErr))
		}
	}
	return parser.ParsePytestOutput(string(output), exitCode)
}

// forceRemove kills a container that outlived its deadline. --rm normally
// handles cleanup; this is the path for the cases it cannot.
func (r *DockerRunner) forceRemove(containerName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := exec.CommandContext(ctx, "docker", "rm", "-f", containerName).Run(); err != nil {
		app.GetLogger().Warn("failed to remove container %s: %v", containerName, err)
	}
}
