package config

import "time"

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (JSON, ENV, defaults)
// and keeps the app layer free of infrastructure details.
type Config interface {
	// Core settings
	Home() string           // Base directory (TW_HOME, default ".testweave")
	APIKey() string         // Completion service API key (TW_API_KEY / OPENAI_API_KEY)
	Model() string          // Completion model identifier (TW_MODEL)
	TimeoutSec() int        // Sandbox execution timeout in seconds (TW_TIMEOUT_SEC)
	Timeout() time.Duration // Sandbox execution timeout as Duration

	// Workflow settings
	MaxIterations() int // Default iteration ceiling for a run

	// Sandbox settings
	SandboxImage() string // Container image for the isolated backend (TW_SANDBOX_IMAGE)
	ForceLocal() bool     // Skip the isolated backend entirely (TW_FORCE_LOCAL)

	// Checkpoint archive (optional)
	ArchiveBucket() string // S3 bucket for terminal checkpoints; empty disables archiving
	ArchivePrefix() string // Key prefix inside the archive bucket
	ArchiveRegion() string // AWS region override

	// Server settings
	ListenAddr() string // serve command bind address

	// Logging
	StderrLevel() string // Minimum stderr log level

	// Metadata
	ConfigSource() string // Source of configuration: "json", "env", or "default"
	SettingPath() string  // Path to setting.json if loaded from file
}

// AppConfig is the concrete implementation of the Config interface.
type AppConfig struct {
	home       string
	apiKey     string
	model      string
	timeoutSec int

	maxIterations int

	sandboxImage string
	forceLocal   bool

	archiveBucket string
	archivePrefix string
	archiveRegion string

	listenAddr string

	stderrLevel string

	configSource string
	settingPath  string
}

// NewAppConfig creates an AppConfig with all values provided explicitly.
func NewAppConfig(
	home, apiKey, model string,
	timeoutSec, maxIterations int,
	sandboxImage string, forceLocal bool,
	archiveBucket, archivePrefix, archiveRegion string,
	listenAddr, stderrLevel string,
	configSource, settingPath string,
) *AppConfig {
	return &AppConfig{
		home:          home,
		apiKey:        apiKey,
		model:         model,
		timeoutSec:    timeoutSec,
		maxIterations: maxIterations,
		sandboxImage:  sandboxImage,
		forceLocal:    forceLocal,
		archiveBucket: archiveBucket,
		archivePrefix: archivePrefix,
		archiveRegion: archiveRegion,
		listenAddr:    listenAddr,
		stderrLevel:   stderrLevel,
		configSource:  configSource,
		settingPath:   settingPath,
	}
}

func (c *AppConfig) Home() string   { return c.home }
func (c *AppConfig) APIKey() string { return c.apiKey }
func (c *AppConfig) Model() string  { return c.model }

func (c *AppConfig) TimeoutSec() int { return c.timeoutSec }

func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.timeoutSec) * time.Second
}

func (c *AppConfig) MaxIterations() int { return c.maxIterations }

func (c *AppConfig) SandboxImage() string { return c.sandboxImage }
func (c *AppConfig) ForceLocal() bool     { return c.forceLocal }

func (c *AppConfig) ArchiveBucket() string { return c.archiveBucket }
func (c *AppConfig) ArchivePrefix() string { return c.archivePrefix }
func (c *AppConfig) ArchiveRegion() string { return c.archiveRegion }

func (c *AppConfig) ListenAddr() string { return c.listenAddr }

func (c *AppConfig) StderrLevel() string { return c.stderrLevel }

func (c *AppConfig) ConfigSource() string { return c.configSource }
func (c *AppConfig) SettingPath() string  { return c.settingPath }
