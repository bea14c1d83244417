package app

import "path/filepath"

// Well-known paths under the testweave home directory.
// Home defaults to ".testweave" in the working directory.

func SettingPath(home string) string {
	return filepath.Join(home, "setting.json")
}

func StatePath(home string) string {
	return filepath.Join(home, "state.json")
}

func ArtifactsDir(home string) string {
	return filepath.Join(home, "var", "artifacts")
}

func DBPath(home string) string {
	return filepath.Join(home, "var", "testweave.db")
}

func SandboxPolicyPath(home string) string {
	return filepath.Join(home, "sandbox.yaml")
}
