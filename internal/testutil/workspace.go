// Package testutil provides helpers shared across package tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// TempHome creates a disposable home directory. When settings is non-nil
// it is written as setting.json inside it.
func TempHome(t *testing.T, settings map[string]interface{}) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), ".testweave")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("create home: %v", err)
	}
	if settings != nil {
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			t.Fatalf("marshal settings: %v", err)
		}
		if err := os.WriteFile(filepath.Join(home, "setting.json"), data, 0o644); err != nil {
			t.Fatalf("write setting.json: %v", err)
		}
	}
	return home
}
