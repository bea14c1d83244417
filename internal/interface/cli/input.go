package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// readInput returns the input text from a file argument or stdin ("-").
// Text is NFC-normalized so that visually identical sources hash and
// compare identically across platforms and editors.
func readInput(args []string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
	}
	return norm.NFC.String(string(data)), nil
}

// extractFunction pulls one top-level function (with its decorators) out
// of a Python source file. The scan is indentation-based: the function
// body ends at the first non-blank line back at or below the definition's
// indent.
func extractFunction(source, name string) (string, error) {
	lines := strings.Split(source, "\n")
	prefix := "def " + name

	defLine := -1
	defIndent := 0
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, prefix) && strings.HasPrefix(trimmed[len(prefix):], "(") {
			defLine = i
			defIndent = len(line) - len(trimmed)
			break
		}
	}
	if defLine < 0 {
		return "", fmt.Errorf("function %q not found", name)
	}

	// include decorators directly above the definition
	start := defLine
	for start > 0 && strings.HasPrefix(strings.TrimSpace(lines[start-1]), "@") {
		start--
	}

	end := len(lines)
	for i := defLine + 1; i < len(lines); i++ {
		trimmed := strings.TrimLeft(lines[i], " \t")
		if trimmed == "" {
			continue
		}
		if len(lines[i])-len(trimmed) <= defIndent {
			end = i
			break
		}
	}
	return strings.TrimRight(strings.Join(lines[start:end], "\n"), "\n") + "\n", nil
}
