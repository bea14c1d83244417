// Package presenter renders run results for the command line.
package presenter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"testweave/internal/application/dto"
	"testweave/internal/domain/workflow"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	dimColor  = color.New(color.Faint)
)

// RunPresenter writes a human-readable run summary.
type RunPresenter struct {
	w io.Writer
}

// NewRunPresenter builds a presenter writing to w.
func NewRunPresenter(w io.Writer) *RunPresenter {
	return &RunPresenter{w: w}
}

// Banner announces the run before the first progress line.
func (p *RunPresenter) Banner(mode workflow.Mode, maxIterations int) {
	fmt.Fprintf(p.w, "%s\n", strings.Repeat("=", 48))
	fmt.Fprintf(p.w, "testweave %s run (max %d iterations)\n", mode, maxIterations)
	fmt.Fprintf(p.w, "%s\n", strings.Repeat("=", 48))
}

// Present renders the terminal status, the counts, and what to do next.
func (p *RunPresenter) Present(out *dto.RunOutput, artifactPath, checkpointPath string) {
	fmt.Fprintf(p.w, "%s %s\n", statusBadge(out.Status), out.Message)

	if out.Verdict != nil {
		fmt.Fprintf(p.w, "  tests: %d passed, %d failed (exit %d)\n",
			out.Verdict.Passed, out.Verdict.Failed, out.Verdict.ExitCode)
		if len(out.Verdict.FailingTests) > 0 {
			fmt.Fprintf(p.w, "  failing: %s\n", failColor.Sprint(strings.Join(out.Verdict.FailingTests, ", ")))
		}
	}
	if out.Iterations > 0 {
		fmt.Fprintf(p.w, "  iterations: %d\n", out.Iterations)
	}
	if out.Analysis != nil {
		fmt.Fprintf(p.w, "  diagnosis: %s (%s, confidence %d%%)\n",
			firstLine(out.Analysis.Analysis), out.Analysis.FailureType, out.Analysis.Confidence)
		if out.Analysis.SuggestedFix != "" {
			fmt.Fprintf(p.w, "  suggested fix: %s\n", firstLine(out.Analysis.SuggestedFix))
		}
	}
	if artifactPath != "" {
		fmt.Fprintf(p.w, "  tests written to: %s\n", artifactPath)
	}
	if out.Checkpoint != nil && checkpointPath != "" && out.Status.Resumable() {
		fmt.Fprintf(p.w, "  checkpoint saved: %s (resume with `testweave resume`)\n", checkpointPath)
	}
}

// Progress renders one progress step while a run is active.
func (p *RunPresenter) Progress(step, message string) {
	fmt.Fprintf(p.w, "%s %s\n", dimColor.Sprintf("[%s]", step), message)
}

func statusBadge(status workflow.Status) string {
	switch status {
	case workflow.StatusSuccess:
		return okColor.Sprint("✓")
	case workflow.StatusError:
		return failColor.Sprint("✗")
	default:
		return warnColor.Sprint("⚠")
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
