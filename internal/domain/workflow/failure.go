package workflow

import "strings"

// FailureType is the root-cause category assigned to a failing iteration.
type FailureType string

const (
	FailureCodeBug   FailureType = "CODE_BUG"
	FailureTestBug   FailureType = "TEST_BUG"
	FailureAmbiguity FailureType = "REQUIREMENTS_AMBIGUITY"
)

// String returns the string representation of the failure type
func (f FailureType) String() string {
	return string(f)
}

// IsValid returns true if the failure type is a known value
func (f FailureType) IsValid() bool {
	return f == FailureCodeBug || f == FailureTestBug || f == FailureAmbiguity
}

// AlwaysHalts returns true for failure types that stop the run regardless
// of the analyzer's should-stop flag. A code bug needs a human fix and an
// ambiguity needs human clarification; only a test bug can be retried.
func (f FailureType) AlwaysHalts() bool {
	return f == FailureCodeBug || f == FailureAmbiguity
}

// ToStatus maps a failure type to its terminal status.
func (f FailureType) ToStatus() Status {
	switch f {
	case FailureCodeBug:
		return StatusCodeBug
	case FailureAmbiguity:
		return StatusAmbiguity
	default:
		return StatusTestBug
	}
}

// ParseFailureType parses analyzer output into a FailureType.
// Unknown values fall back to CODE_BUG, the conservative choice that
// favors halting over looping on an unparsed response.
func ParseFailureType(s string) FailureType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CODE_BUG":
		return FailureCodeBug
	case "TEST_BUG":
		return FailureTestBug
	case "REQUIREMENTS_AMBIGUITY":
		return FailureAmbiguity
	default:
		return FailureCodeBug
	}
}

// Classification is the structured result of one failure analysis.
// Ephemeral like Verdict; the failing test list is cross-checked against
// the transcript by the parser, not trusted blindly from the model.
type Classification struct {
	FailureType  FailureType `json:"failure_type"`
	ShouldStop   bool        `json:"should_stop"`
	Confidence   int         `json:"confidence"`
	Analysis     string      `json:"analysis"`
	SuggestedFix string      `json:"suggested_fix"`
	Reasoning    string      `json:"reasoning"`
	FailingTests []string    `json:"failing_tests"`
}
