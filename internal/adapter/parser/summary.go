// Package parser turns free-form tool and model output into structured
// domain values. Every function is total: malformed input produces a
// conservative zero result, never an error.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"testweave/internal/domain/workflow"
)

var (
	passedRe = regexp.MustCompile(`(\d+)\s+passed`)
	failedRe = regexp.MustCompile(`(\d+)\s+failed`)
	errorsRe = regexp.MustCompile(`(\d+)\s+error`)

	// "FAILED test_user_code.py::test_foo" or "FAILED pkg/test_x.py::TestC::test_foo[case]"
	failedLineRe = regexp.MustCompile(`FAILED\s+[\w./\\-]+::(?:[\w.]+::)?(\w+)`)
	// verbose-mode lines: "test_x.py::test_foo FAILED"
	verboseFailRe = regexp.MustCompile(`::(?:[\w.]+::)?(\w+)(?:\[[^\]]*\])?\s+FAILED`)
	// verbose-mode lines: "test_x.py::test_foo PASSED"
	verbosePassRe = regexp.MustCompile(`::(?:[\w.]+::)?\w+(?:\[[^\]]*\])?\s+PASSED`)
)

// ParsePytestOutput extracts pass/fail counts and failing test names from
// a pytest transcript. Counts come from the summary line; when multiple
// summary lines appear the last one wins. Unparseable output yields zero
// counts and no names.
func ParsePytestOutput(output string, exitCode int) workflow.Verdict {
	verdict := workflow.Verdict{
		Output:       output,
		ExitCode:     exitCode,
		FailingTests: []string{},
	}

	if m := lastMatch(passedRe, output); m != "" {
		verdict.Passed, _ = strconv.Atoi(m)
	}
	if m := lastMatch(failedRe, output); m != "" {
		verdict.Failed, _ = strconv.Atoi(m)
	}
	if verdict.Failed == 0 {
		if m := lastMatch(errorsRe, output); m != "" {
			verdict.Failed, _ = strconv.Atoi(m)
		}
	}

	verdict.FailingTests = parseFailingTests(output)

	// A transcript with FAILED markers but no summary line still counts
	// as failing, otherwise the run would be misread as clean.
	if verdict.Failed == 0 && len(verdict.FailingTests) > 0 {
		verdict.Failed = len(verdict.FailingTests)
	}
	// Same recovery for PASSED markers when the summary is absent.
	if verdict.Passed == 0 {
		verdict.Passed = len(verbosePassRe.FindAllString(output, -1))
	}
	return verdict
}

func lastMatch(re *regexp.Regexp, s string) string {
	matches := re.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

func parseFailingTests(output string) []string {
	seen := make(map[string]struct{})
	names := []string{}
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, line := range strings.Split(output, "\n") {
		if m := failedLineRe.FindStringSubmatch(line); m != nil {
			add(m[1])
			continue
		}
		if strings.Contains(line, "FAILED") {
			if m := verboseFailRe.FindStringSubmatch(line); m != nil {
				add(m[1])
			}
		}
	}
	return names
}
