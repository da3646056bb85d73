// Package config owns the .briefing directory and its config.yaml.
// Every project interviewed with briefing gets a .briefing/ folder in
// its root holding logs, session state, agent packs, and exports.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// BriefingDir is the name of the directory created in each project.
	BriefingDir = ".briefing"

	// Provider modes.
	ProviderStatic = "static"
	ProviderHTTP   = "http"

	// Store backends.
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	defaultBridgeAddr = "127.0.0.1:8744"
)

const defaultConfigYAML = `# briefing project configuration
version: 1

# Where interview content comes from. static works offline; http asks a
# model endpoint (requires ANTHROPIC_API_KEY in the environment or .env).
provider:
  mode: static

# Where the in-progress session is persisted. file and sqlite live under
# .briefing/state; postgres reads BRIEFING_POSTGRES_DSN from the
# environment.
store:
  backend: file

# Optional Slack notifications for interview milestones. Leave the
# channel empty to disable; the token comes from SLACK_BOT_TOKEN.
slack:
  channel: ""

# Address for the headless HTTP bridge (cmd/briefing-bridge).
bridge:
  addr: "127.0.0.1:8744"
`

// ProviderConfig selects and tunes the content provider.
type ProviderConfig struct {
	Mode     string `yaml:"mode"`
	Model    string `yaml:"model,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
}

// SlackConfig points milestone notifications at a channel.
type SlackConfig struct {
	Channel string `yaml:"channel,omitempty"`
}

// BridgeConfig holds the HTTP bridge listen address.
type BridgeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// ProjectConfig models .briefing/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Slack    SlackConfig    `yaml:"slack"`
	Bridge   BridgeConfig   `yaml:"bridge"`
}

// Config holds the runtime configuration for briefing.
type Config struct {
	// ProjectDir is the directory the user ran `briefing` from.
	ProjectDir string

	// BriefingProjectDir is ProjectDir/.briefing.
	BriefingProjectDir string

	Project ProjectConfig
}

// InitBriefingDir creates the .briefing directory structure in the
// given project directory. Called once at startup.
//
// Structure created:
// .briefing/
// ├── logs/     <- journey.log and briefing.log
// ├── state/    <- persisted session (file or sqlite)
// ├── agents/   <- custom agent packs (*.yaml, *.go)
// └── export/   <- generated briefings + sidecars
func InitBriefingDir(projectDir string) error {
	briefingDir := filepath.Join(projectDir, BriefingDir)
	dirs := []string{
		filepath.Join(briefingDir, "logs"),
		filepath.Join(briefingDir, "state"),
		filepath.Join(briefingDir, "agents"),
		filepath.Join(briefingDir, "export"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(briefingDir, "config.yaml"))
}

// New creates a Config for the project directory, loading config.yaml
// when present and applying environment overrides on top.
func New(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		BriefingProjectDir: filepath.Join(projectDir, BriefingDir),
		Project:            defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.BriefingProjectDir, "logs")
}

// JourneyLogPath returns the interview journey log file.
func (c *Config) JourneyLogPath() string {
	return filepath.Join(c.LogsDir(), "journey.log")
}

// ServerLogPath returns the bridge/store log file.
func (c *Config) ServerLogPath() string {
	return filepath.Join(c.LogsDir(), "briefing.log")
}

// StateDir returns the directory holding the persisted session.
func (c *Config) StateDir() string {
	return filepath.Join(c.BriefingProjectDir, "state")
}

// SessionFilePath returns the JSON session file used by the file store.
func (c *Config) SessionFilePath() string {
	return filepath.Join(c.StateDir(), "session.json")
}

// SQLitePath returns the database file used by the sqlite store.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.StateDir(), "session.db")
}

// AgentsDir returns the directory scanned for custom agent packs.
func (c *Config) AgentsDir() string {
	return filepath.Join(c.BriefingProjectDir, "agents")
}

// ExportDir returns the directory briefings are exported into.
func (c *Config) ExportDir() string {
	return filepath.Join(c.BriefingProjectDir, "export")
}

// ProjectConfigPath returns the on-disk location of config.yaml.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.BriefingProjectDir, "config.yaml")
}

// ProjectMetaPath returns the optional project identity file.
func (c *Config) ProjectMetaPath() string {
	return filepath.Join(c.BriefingProjectDir, "project.toml")
}

// ProviderMode returns the configured provider mode.
func (c *Config) ProviderMode() string {
	return c.Project.Provider.Mode
}

// StoreBackend returns the configured session store backend.
func (c *Config) StoreBackend() string {
	return c.Project.Store.Backend
}

// BridgeAddr returns the HTTP bridge listen address.
func (c *Config) BridgeAddr() string {
	return c.Project.Bridge.Addr
}

// SlackChannel returns the notification channel, empty when disabled.
func (c *Config) SlackChannel() string {
	return c.Project.Slack.Channel
}

// APIKey returns the model API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// PostgresDSN returns the postgres connection string from the
// environment.
func (c *Config) PostgresDSN() string {
	return os.Getenv("BRIEFING_POSTGRES_DSN")
}

// SlackToken returns the Slack bot token from the environment.
func (c *Config) SlackToken() string {
	return os.Getenv("SLACK_BOT_TOKEN")
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

// applyEnvOverrides lets the environment win over config.yaml for the
// values that vary per machine rather than per project.
func (c *Config) applyEnvOverrides() {
	if mode := normalizeChoice(os.Getenv("BRIEFING_PROVIDER")); mode == ProviderStatic || mode == ProviderHTTP {
		c.Project.Provider.Mode = mode
	}
	if backend := normalizeChoice(os.Getenv("BRIEFING_STORE")); backend == StoreFile || backend == StoreSQLite || backend == StorePostgres {
		c.Project.Store.Backend = backend
	}
	if addr := strings.TrimSpace(os.Getenv("BRIEFING_BRIDGE_ADDR")); addr != "" {
		c.Project.Bridge.Addr = addr
	}
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version:  1,
		Provider: ProviderConfig{Mode: ProviderStatic},
		Store:    StoreConfig{Backend: StoreFile},
		Bridge:   BridgeConfig{Addr: defaultBridgeAddr},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Provider.Mode == "" {
		pc.Provider.Mode = ProviderStatic
	}
	if pc.Store.Backend == "" {
		pc.Store.Backend = StoreFile
	}
	if pc.Bridge.Addr == "" {
		pc.Bridge.Addr = defaultBridgeAddr
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Provider.Mode = normalizeChoice(pc.Provider.Mode)
	pc.Provider.Model = strings.TrimSpace(pc.Provider.Model)
	pc.Provider.Endpoint = strings.TrimSpace(pc.Provider.Endpoint)
	pc.Store.Backend = normalizeChoice(pc.Store.Backend)
	pc.Slack.Channel = strings.TrimSpace(pc.Slack.Channel)
	pc.Bridge.Addr = strings.TrimSpace(pc.Bridge.Addr)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Provider.Mode {
	case ProviderStatic, ProviderHTTP:
	default:
		return fmt.Errorf("provider.mode must be %q or %q", ProviderStatic, ProviderHTTP)
	}
	switch pc.Store.Backend {
	case StoreFile, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("store.backend must be %q, %q, or %q", StoreFile, StoreSQLite, StorePostgres)
	}
	return nil
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
