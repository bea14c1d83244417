package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePytestOutput(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		exitCode    int
		wantPassed  int
		wantFailed  int
		wantFailing []string
	}{
		{
			name:        "mixed results with failed line",
			output:      "collected 4 items\n\ntest_x.py::test_foo FAILED\n\n=== 3 passed, 1 failed in 0.12s ===\nFAILED test_x.py::test_foo",
			exitCode:    1,
			wantPassed:  3,
			wantFailed:  1,
			wantFailing: []string{"test_foo"},
		},
		{
			name:        "all passed",
			output:      "collected 5 items\n\n===== 5 passed in 0.03s =====",
			exitCode:    0,
			wantPassed:  5,
			wantFailed:  0,
			wantFailing: []string{},
		},
		{
			name:        "garbage",
			output:      "garbage",
			exitCode:    2,
			wantPassed:  0,
			wantFailed:  0,
			wantFailing: []string{},
		},
		{
			name:        "class scoped failure",
			output:      "FAILED tests/test_stack.py::TestStack::test_pop_empty\n=== 1 failed, 2 passed in 0.05s ===",
			exitCode:    1,
			wantPassed:  2,
			wantFailed:  1,
			wantFailing: []string{"test_pop_empty"},
		},
		{
			name:        "duplicate markers deduped",
			output:      "FAILED test_a.py::test_one\nFAILED test_a.py::test_one\nFAILED test_a.py::test_two\n=== 2 failed in 0.08s ===",
			exitCode:    1,
			wantPassed:  0,
			wantFailed:  2,
			wantFailing: []string{"test_one", "test_two"},
		},
		{
			name:        "markers but no summary line",
			output:      "test_a.py::test_broken FAILED\nsome traceback",
			exitCode:    1,
			wantPassed:  0,
			wantFailed:  1,
			wantFailing: []string{"test_broken"},
		},
		{
			name:        "passing verbose transcript without summary line",
			output:      "test_a.py::test_one PASSED\ntest_a.py::TestStack::test_two[case] PASSED\ntest_a.py::test_three PASSED",
			exitCode:    0,
			wantPassed:  3,
			wantFailed:  0,
			wantFailing: []string{},
		},
		{
			name:        "collection error",
			output:      "ERROR test_a.py - SyntaxError: invalid syntax\n=== 1 error in 0.02s ===",
			exitCode:    2,
			wantPassed:  0,
			wantFailed:  1,
			wantFailing: []string{},
		},
		{
			name:        "empty output",
			output:      "",
			exitCode:    0,
			wantPassed:  0,
			wantFailed:  0,
			wantFailing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ParsePytestOutput(tt.output, tt.exitCode)
			assert.Equal(t, tt.wantPassed, v.Passed, "passed")
			assert.Equal(t, tt.wantFailed, v.Failed, "failed")
			assert.Equal(t, tt.wantFailing, v.FailingTests, "failing tests")
			assert.Equal(t, tt.exitCode, v.ExitCode)
			assert.Equal(t, tt.output, v.Output)
		})
	}
}

func TestParsePytestOutputLastSummaryWins(t *testing.T) {
	output := "=== 1 passed in 0.01s ===\nrerun\n=== 4 passed, 2 failed in 0.09s ==="
	v := ParsePytestOutput(output, 1)
	assert.Equal(t, 4, v.Passed)
	assert.Equal(t, 2, v.Failed)
}
