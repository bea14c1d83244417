package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
)

// prepareWorkspace materializes one execution's test file in a scratch
// directory. The caller removes the directory when done.
func prepareWorkspace(tests, testFilename string) (string, error) {
	dir, err := os.MkdirTemp("", "testweave-run-*")
	if err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, testFilename), []byte(tests), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write test file: %w", err)
	}
	return dir, nil
}
