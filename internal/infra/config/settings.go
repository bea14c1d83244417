package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"testweave/internal/app/config"
)

// RawSettings represents the structure of the setting.json file.
// Pointer fields distinguish "absent" from zero values.
type RawSettings struct {
	Home       *string `json:"home"`
	APIKey     *string `json:"api_key"`
	Model      *string `json:"model"`
	TimeoutSec *int    `json:"timeout_sec"`

	MaxIterations *int `json:"max_iterations"`

	SandboxImage *string `json:"sandbox_image"`
	ForceLocal   *bool   `json:"force_local"`

	ArchiveBucket *string `json:"archive_bucket"`
	ArchivePrefix *string `json:"archive_prefix"`
	ArchiveRegion *string `json:"archive_region"`

	ListenAddr *string `json:"listen_addr"`

	StderrLevel *string `json:"stderr_level"`
}

// LoadSettings loads configuration for the given base directory.
// Priority: environment > setting.json > defaults.
func LoadSettings(baseDir string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	jsonPath := filepath.Join(baseDir, "setting.json")
	if data, err := os.ReadFile(jsonPath); err == nil {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", jsonPath, err)
		}
		configSource = "json"
		settingPath = jsonPath
	}

	if applyEnv(settings) {
		configSource = "env"
	}

	applyDefaults(settings, baseDir)

	return buildAppConfig(settings, configSource, settingPath), nil
}

// applyEnv overrides settings from TW_* environment variables.
// Returns true if any override was applied.
func applyEnv(settings *RawSettings) bool {
	applied := false

	setStr := func(key string, dst **string) {
		if v := os.Getenv(key); v != "" {
			*dst = &v
			applied = true
		}
	}
	setInt := func(key string, dst **int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = &n
				applied = true
			}
		}
	}
	setBool := func(key string, dst **bool) {
		if v := os.Getenv(key); v != "" {
			b := v == "1" || v == "true" || v == "yes"
			*dst = &b
			applied = true
		}
	}

	setStr("TW_API_KEY", &settings.APIKey)
	if settings.APIKey == nil {
		setStr("OPENAI_API_KEY", &settings.APIKey)
	}
	setStr("TW_MODEL", &settings.Model)
	setStr("TW_SANDBOX_IMAGE", &settings.SandboxImage)
	setInt("TW_TIMEOUT_SEC", &settings.TimeoutSec)
	setBool("TW_FORCE_LOCAL", &settings.ForceLocal)
	setStr("TW_LISTEN_ADDR", &settings.ListenAddr)
	setStr("TW_STDERR_LEVEL", &settings.StderrLevel)

	return applied
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(settings *RawSettings, baseDir string) {
	if settings.Home == nil {
		v := baseDir
		settings.Home = &v
	}
	if settings.APIKey == nil {
		v := ""
		settings.APIKey = &v
	}
	if settings.Model == nil {
		v := "gpt-4o-mini"
		settings.Model = &v
	}
	if settings.TimeoutSec == nil {
		v := 60
		settings.TimeoutSec = &v
	}
	if settings.MaxIterations == nil {
		v := 5
		settings.MaxIterations = &v
	}
	if settings.SandboxImage == nil {
		v := "testweave-runner:latest"
		settings.SandboxImage = &v
	}
	if settings.ForceLocal == nil {
		v := false
		settings.ForceLocal = &v
	}
	if settings.ArchiveBucket == nil {
		v := ""
		settings.ArchiveBucket = &v
	}
	if settings.ArchivePrefix == nil {
		v := "testweave"
		settings.ArchivePrefix = &v
	}
	if settings.ArchiveRegion == nil {
		v := ""
		settings.ArchiveRegion = &v
	}
	if settings.ListenAddr == nil {
		v := "127.0.0.1:8787"
		settings.ListenAddr = &v
	}
	if settings.StderrLevel == nil {
		v := "info"
		settings.StderrLevel = &v
	}
}

func buildAppConfig(s *RawSettings, configSource, settingPath string) *config.AppConfig {
	return config.NewAppConfig(
		*s.Home, *s.APIKey, *s.Model,
		*s.TimeoutSec, *s.MaxIterations,
		*s.SandboxImage, *s.ForceLocal,
		*s.ArchiveBucket, *s.ArchivePrefix, *s.ArchiveRegion,
		*s.ListenAddr, *s.StderrLevel,
		configSource, settingPath,
	)
}
