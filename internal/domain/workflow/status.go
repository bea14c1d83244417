package workflow

// Status is the terminal outcome of a workflow run.
// Exactly one of these is produced by any run; callers distinguish
// outcomes purely by this tag, never by errors.
type Status string

const (
	StatusSuccess       Status = "SUCCESS"
	StatusCodeBug       Status = "CODE_BUG"
	StatusTestBug       Status = "TEST_BUG"
	StatusAmbiguity     Status = "REQUIREMENTS_AMBIGUITY"
	StatusStuckLoop     Status = "STUCK_LOOP"
	StatusMaxIterations Status = "MAX_ITERATIONS"
	StatusError         Status = "ERROR"
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known terminal value
func (s Status) IsValid() bool {
	switch s {
	case StatusSuccess, StatusCodeBug, StatusTestBug, StatusAmbiguity,
		StatusStuckLoop, StatusMaxIterations, StatusError:
		return true
	default:
		return false
	}
}

// IsSuccess returns true for the pure success outcome
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// Resumable returns true if a checkpoint accompanies this outcome.
// Pure success carries no checkpoint; everything else does (ERROR carries
// a best-effort partial one).
func (s Status) Resumable() bool {
	return s != StatusSuccess
}
