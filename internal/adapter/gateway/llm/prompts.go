package llm

import (
	"fmt"
	"strings"

	"testweave/internal/domain/workflow"
)

const systemPrompt = "You are an expert Python test engineer. " +
	"You write precise pytest suites and diagnose test failures rigorously."

func requirementsPrompt(mode workflow.Mode, input string) string {
	var b strings.Builder
	if mode == workflow.ModeGenerate {
		b.WriteString("Analyze the following requirements and enumerate the test scenarios ")
		b.WriteString("a complete pytest suite must cover.\n\n")
		b.WriteString("Requirements:\n")
	} else {
		b.WriteString("Analyze the following Python code and enumerate the test scenarios ")
		b.WriteString("a complete pytest suite must cover, including edge cases and error paths.\n\n")
		b.WriteString("Code:\n")
	}
	b.WriteString(input)
	b.WriteString("\n\nList each scenario on its own numbered line. ")
	b.WriteString("Cover normal operation, boundary values, and invalid input.")
	return b.String()
}

func generatePrompt(mode workflow.Mode, input string, scenarios *workflow.Scenarios) string {
	var b strings.Builder
	if mode == workflow.ModeGenerate {
		b.WriteString("Write a single Python file containing an implementation of the ")
		b.WriteString("requirements below followed by a pytest suite covering the scenarios.\n\n")
		b.WriteString("Requirements:\n")
		b.WriteString(input)
	} else {
		b.WriteString("Write a pytest suite for the code below covering the scenarios. ")
		b.WriteString("Include the code under test at the top of the file, byte for byte ")
		b.WriteString("unmodified, so the file runs standalone and the user can edit the ")
		b.WriteString("implementation in place.\n\n")
		b.WriteString("Code under test:\n")
		b.WriteString(input)
	}
	b.WriteString("\n\nScenarios to cover:\n")
	b.WriteString(scenarios.RawAnalysis)
	b.WriteString("\n\nRespond with only the Python file content. No explanations.")
	return b.String()
}

func analysisPrompt(state *workflow.State, verdict workflow.Verdict) string {
	var b strings.Builder
	b.WriteString("A pytest run failed. Determine the root cause.\n\n")
	if state.Mode == workflow.ModeTest {
		b.WriteString("Code under test:\n")
		b.WriteString(state.OriginalInput)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Original requirements:\n")
		b.WriteString(state.OriginalInput)
		b.WriteString("\n\n")
	}
	b.WriteString("Test file:\n")
	b.WriteString(state.Tests)
	b.WriteString("\n\nPytest output (exit code ")
	b.WriteString(fmt.Sprintf("%d", verdict.ExitCode))
	b.WriteString("):\n")
	b.WriteString(verdict.Output)
	b.WriteString("\n\nClassify the failure and respond with exactly these sections:\n")
	b.WriteString("FAILURE_TYPE: CODE_BUG, TEST_BUG or REQUIREMENTS_AMBIGUITY\n")
	b.WriteString("SHOULD_STOP: true or false\n")
	b.WriteString("CONFIDENCE: 0-100\n")
	b.WriteString("FAILING_TESTS: comma-separated test function names\n")
	b.WriteString("ANALYSIS: what went wrong\n")
	b.WriteString("SUGGESTED_FIX: how to fix it\n")
	b.WriteString("REASONING: evidence from the output supporting the classification")
	return b.String()
}

func regeneratePrompt(state *workflow.State, verdict workflow.Verdict, c *workflow.Classification) string {
	var b strings.Builder
	b.WriteString("The previous test file has a bug. Produce a corrected version.\n\n")
	if state.Mode == workflow.ModeTest {
		b.WriteString("Code under test (keep it at the top of the file, byte for byte unmodified):\n")
		b.WriteString(state.OriginalInput)
		b.WriteString("\n\n")
	} else {
		b.WriteString("Original requirements:\n")
		b.WriteString(state.OriginalInput)
		b.WriteString("\n\n")
	}
	b.WriteString("Previous test file:\n")
	b.WriteString(state.Tests)
	b.WriteString("\n\nFailure analysis:\n")
	b.WriteString(c.Analysis)
	if c.SuggestedFix != "" {
		b.WriteString("\n\nSuggested fix:\n")
		b.WriteString(c.SuggestedFix)
	}
	if len(c.FailingTests) > 0 {
		b.WriteString("\n\nFailing tests: ")
		b.WriteString(strings.Join(c.FailingTests, ", "))
	}
	b.WriteString("\n\nPytest output:\n")
	b.WriteString(verdict.Output)
	b.WriteString("\n\nRespond with only the corrected Python file content. No explanations.")
	return b.String()
}
