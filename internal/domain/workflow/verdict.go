package workflow

// Verdict is the structured result of one sandboxed test execution.
// Produced fresh each iteration; never persisted in checkpoints.
type Verdict struct {
	Passed       int      `json:"passed"`
	Failed       int      `json:"failed"`
	Output       string   `json:"output"`
	ExitCode     int      `json:"return_code"`
	FailingTests []string `json:"failing_tests"`
}

// IsSuccess reports whether this verdict terminates the run successfully.
// A 0 passed / 0 failed verdict with a non-zero exit code is a degraded
// execution (timeout, crash, missing runner), not a success; checking the
// exit code here guards against misreading it as one.
func (v Verdict) IsSuccess() bool {
	return v.Failed == 0 && v.ExitCode == 0
}

// ErrorVerdict builds the degraded verdict returned when execution itself
// failed. The sandbox contract requires a well-formed verdict on every
// internal fault rather than a propagated error.
func ErrorVerdict(message string) Verdict {
	return Verdict{
		Passed:       0,
		Failed:       0,
		Output:       message,
		ExitCode:     -1,
		FailingTests: []string{},
	}
}
