package workflow

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMode indicates an unrecognized workflow mode.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrEmptyInput indicates missing requirements or source input.
	ErrEmptyInput = errors.New("input cannot be empty")
	// ErrInvalidCheckpoint indicates a checkpoint that cannot be resumed.
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
)

// Scenarios is the result of the one-time requirements analysis.
// The analysis text is opaque to the core; only the model identifier is
// structured. Produced once per run and never regenerated.
type Scenarios struct {
	RawAnalysis string `json:"raw_analysis"`
	Model       string `json:"model"`
}

// State is the workflow state: the unit of persistence and resumption.
// Serializing and deserializing a State must round-trip losslessly so that
// resuming from a stored checkpoint behaves identically to resuming from
// the in-memory state that produced it.
type State struct {
	Mode             Mode       `json:"mode"`
	Scenarios        *Scenarios `json:"scenarios"`
	Tests            string     `json:"tests"`
	Iteration        int        `json:"iteration"`
	OriginalInput    string     `json:"original_code"`
	CheckpointReason string     `json:"checkpoint_reason,omitempty"`
}

// NewState creates the initial state for a fresh run.
func NewState(mode Mode, input string) (*State, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}
	return &State{
		Mode:          mode,
		OriginalInput: input,
		Iteration:     0,
	}, nil
}

// Clone returns a deep copy suitable for use as a checkpoint snapshot.
func (s *State) Clone() *State {
	clone := *s
	if s.Scenarios != nil {
		sc := *s.Scenarios
		clone.Scenarios = &sc
	}
	return &clone
}

// Encode serializes the state as a checkpoint document.
func (s *State) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint: %w", err)
	}
	return data, nil
}

// DecodeCheckpoint parses and validates a checkpoint document.
// The three fields a resume depends on (scenarios, tests, iteration) must
// all be present; a checkpoint missing any of them is rejected before any
// work begins.
func DecodeCheckpoint(data []byte) (*State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckpoint, err)
	}
	for _, key := range []string{"scenarios", "tests", "iteration"} {
		if _, ok := raw[key]; !ok {
			return nil, fmt.Errorf("%w: missing required field %q", ErrInvalidCheckpoint, key)
		}
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCheckpoint, err)
	}
	if state.Scenarios == nil {
		return nil, fmt.Errorf("%w: missing required field %q", ErrInvalidCheckpoint, "scenarios")
	}
	return &state, nil
}

// Resume merges a checkpoint with the caller's request. The checkpoint's
// mode wins over the requested mode because the artifact layout on disk
// already reflects the mode the run started in; a mismatch is reported via
// warn. Updated input (a human's edit of the implementation) replaces the
// stored input so subsequent analysis calls see the fix.
func Resume(checkpoint *State, input string, requested Mode, warn func(format string, args ...interface{})) (*State, error) {
	if checkpoint == nil {
		return nil, fmt.Errorf("%w: nil checkpoint", ErrInvalidCheckpoint)
	}
	if checkpoint.Scenarios == nil || strings.TrimSpace(checkpoint.Tests) == "" {
		return nil, fmt.Errorf("%w: checkpoint has no scenarios or tests", ErrInvalidCheckpoint)
	}
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}

	state := checkpoint.Clone()
	if requested.IsValid() && requested != state.Mode {
		warn("mode differs: saved=%s requested=%s - using saved mode", state.Mode, requested)
	}
	if input != "" && input != state.OriginalInput {
		warn("input differs from saved state - using updated input")
		state.OriginalInput = input
	}
	if state.OriginalInput == "" {
		return nil, ErrEmptyInput
	}
	return state, nil
}
