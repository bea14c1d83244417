package workflow

import (
	"fmt"
	"strings"
)

// Mode determines what the workflow produces.
// GENERATE synthesizes an implementation plus tests from requirements;
// TEST writes tests for an existing implementation.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeTest     Mode = "test"
)

// String returns the string representation of the mode
func (m Mode) String() string {
	return string(m)
}

// IsValid returns true if the mode is a known value
func (m Mode) IsValid() bool {
	return m == ModeGenerate || m == ModeTest
}

// ArtifactFilename returns the test file name used for this mode.
// Kept distinct per mode because the on-disk layout reflects the mode
// a run started in.
func (m Mode) ArtifactFilename() string {
	if m == ModeGenerate {
		return "test_generated.py"
	}
	return "test_user_code.py"
}

// ParseMode parses a string into a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generate":
		return ModeGenerate, nil
	case "test":
		return ModeTest, nil
	default:
		return "", fmt.Errorf("%w: %q (expected \"generate\" or \"test\")", ErrInvalidMode, s)
	}
}
