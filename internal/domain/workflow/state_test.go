package workflow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState(t *testing.T) {
	state, err := NewState(ModeGenerate, "build a stack with push and pop")
	require.NoError(t, err)
	assert.Equal(t, ModeGenerate, state.Mode)
	assert.Equal(t, 0, state.Iteration)
	assert.Nil(t, state.Scenarios)

	_, err = NewState(Mode("repair"), "x")
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = NewState(ModeTest, "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestStateEncodeDecodeRoundTrip(t *testing.T) {
	original := &State{
		Mode:             ModeTest,
		Scenarios:        &Scenarios{RawAnalysis: "1. pushes\n2. pops empty", Model: "gpt-4o-mini"},
		Tests:            "def test_push():\n    assert True\n",
		Iteration:        3,
		OriginalInput:    "class Stack:\n    pass\n",
		CheckpointReason: "TEST_BUG",
	}

	data, err := original.Encode()
	require.NoError(t, err)

	restored, err := DecodeCheckpoint(data)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestDecodeCheckpointMissingFields(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing scenarios", `{"mode":"generate","tests":"t","iteration":1,"original_code":"x"}`},
		{"missing tests", `{"mode":"generate","scenarios":{"raw_analysis":"a","model":"m"},"iteration":1,"original_code":"x"}`},
		{"missing iteration", `{"mode":"generate","scenarios":{"raw_analysis":"a","model":"m"},"tests":"t","original_code":"x"}`},
		{"null scenarios", `{"mode":"generate","scenarios":null,"tests":"t","iteration":1,"original_code":"x"}`},
		{"not json", `{"mode":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCheckpoint([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidCheckpoint)
		})
	}
}

func TestResumeModeMismatchWarnsAndKeepsSaved(t *testing.T) {
	checkpoint := &State{
		Mode:          ModeGenerate,
		Scenarios:     &Scenarios{RawAnalysis: "a", Model: "m"},
		Tests:         "def test_x(): pass",
		Iteration:     2,
		OriginalInput: "requirements text",
	}

	var warnings []string
	warn := func(format string, args ...interface{}) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	state, err := Resume(checkpoint, "", ModeTest, warn)
	require.NoError(t, err)
	assert.Equal(t, ModeGenerate, state.Mode)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "mode differs")
}

func TestResumeUpdatedInputReplacesSaved(t *testing.T) {
	checkpoint := &State{
		Mode:          ModeTest,
		Scenarios:     &Scenarios{RawAnalysis: "a", Model: "m"},
		Tests:         "def test_x(): pass",
		Iteration:     1,
		OriginalInput: "def add(a, b): return a - b",
	}

	var warned bool
	state, err := Resume(checkpoint, "def add(a, b): return a + b", ModeTest, func(string, ...interface{}) { warned = true })
	require.NoError(t, err)
	assert.Equal(t, "def add(a, b): return a + b", state.OriginalInput)
	assert.True(t, warned)
	// checkpoint itself must not be mutated
	assert.Equal(t, "def add(a, b): return a - b", checkpoint.OriginalInput)
}

func TestResumeRejectsUnusableCheckpoints(t *testing.T) {
	_, err := Resume(nil, "x", ModeTest, nil)
	assert.ErrorIs(t, err, ErrInvalidCheckpoint)

	_, err = Resume(&State{Mode: ModeTest, Tests: "t"}, "x", ModeTest, nil)
	assert.True(t, errors.Is(err, ErrInvalidCheckpoint))

	_, err = Resume(&State{Mode: ModeTest, Scenarios: &Scenarios{RawAnalysis: "a"}}, "x", ModeTest, nil)
	assert.ErrorIs(t, err, ErrInvalidCheckpoint)
}
