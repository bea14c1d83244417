package parser

import (
	"regexp"
	"strconv"
	"strings"

	"testweave/internal/domain/workflow"
)

const defaultConfidence = 50

var headerRe = regexp.MustCompile(`^([A-Z_]+):\s*(.*)$`)

var knownHeaders = map[string]struct{}{
	"FAILURE_TYPE":  {},
	"SHOULD_STOP":   {},
	"CONFIDENCE":    {},
	"FAILING_TESTS": {},
	"ANALYSIS":      {},
	"SUGGESTED_FIX": {},
	"REASONING":     {},
}

// ParseAnalysis extracts a structured classification from a failure
// analysis response. The response is expected to carry labeled sections;
// a response with no recognizable sections becomes a CODE_BUG with
// should-stop set, so an unparsed answer halts the run instead of
// looping on it. The failing test list is kept only where the transcript
// confirms the name actually failed.
func ParseAnalysis(response string, verdict workflow.Verdict) *workflow.Classification {
	sections := splitSections(response)

	c := &workflow.Classification{
		FailureType:  workflow.FailureCodeBug,
		ShouldStop:   true,
		Confidence:   defaultConfidence,
		FailingTests: []string{},
	}

	if len(sections) == 0 {
		c.Analysis = strings.TrimSpace(response)
		return c
	}

	if v, ok := sections["FAILURE_TYPE"]; ok {
		c.FailureType = workflow.ParseFailureType(v)
	}
	if v, ok := sections["SHOULD_STOP"]; ok {
		c.ShouldStop = parseBool(v, true)
	}
	if v, ok := sections["CONFIDENCE"]; ok {
		c.Confidence = parseConfidence(v)
	}
	if v, ok := sections["ANALYSIS"]; ok {
		c.Analysis = v
	}
	if v, ok := sections["SUGGESTED_FIX"]; ok {
		c.SuggestedFix = v
	}
	if v, ok := sections["REASONING"]; ok {
		c.Reasoning = v
	}
	if v, ok := sections["FAILING_TESTS"]; ok {
		c.FailingTests = crossCheck(parseList(v), verdict)
	}
	if len(c.FailingTests) == 0 {
		c.FailingTests = append([]string{}, verdict.FailingTests...)
	}
	return c
}

func splitSections(response string) map[string]string {
	sections := make(map[string]string)
	var current string
	var buf []string

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(response, "\n") {
		if m := headerRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if _, known := knownHeaders[m[1]]; known {
				flush()
				current = m[1]
				if m[2] != "" {
					buf = append(buf, m[2])
				}
				continue
			}
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()
	return sections
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	default:
		return fallback
	}
}

func parseConfidence(s string) int {
	m := regexp.MustCompile(`\d+`).FindString(s)
	if m == "" {
		return defaultConfidence
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return defaultConfidence
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func parseList(s string) []string {
	var names []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n'
	}) {
		name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(part), "-* "))
		if name != "" && strings.ToLower(name) != "none" {
			names = append(names, name)
		}
	}
	return names
}

// crossCheck keeps only names the transcript confirms as failing. With
// no transcript names to check against, the model's list stands.
func crossCheck(claimed []string, verdict workflow.Verdict) []string {
	if len(verdict.FailingTests) == 0 {
		return claimed
	}
	confirmed := make(map[string]struct{}, len(verdict.FailingTests))
	for _, name := range verdict.FailingTests {
		confirmed[name] = struct{}{}
	}
	kept := []string{}
	for _, name := range claimed {
		if _, ok := confirmed[name]; ok {
			kept = append(kept, name)
		}
	}
	return kept
}
