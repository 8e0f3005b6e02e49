// internal/config/config.go
//
// This package handles configuration and the .crewline directory structure.
// Every project that uses crewline gets a .crewline/ folder created in its
// root. Settings come from .crewline/config.yaml, with a handful of
// environment variables taking precedence so the binary works without any
// file at all.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CrewlineDir is the name of the directory we create in each project.
const CrewlineDir = ".crewline"

const defaultProjectConfigYAML = `# crewline project configuration
version: 1

# OpenAI-compatible chat-completions server (Ollama, LM Studio, ...).
# Multiple base URLs may be listed separated by commas; they are tried in
# order until one answers.
llm:
  base_url: http://localhost:11434/v1
  model: mistral:7b
  timeout_seconds: 120
  # Consecutive failures before the client stops dialing for cooldown_seconds.
  max_failures: 3
  cooldown_seconds: 300

qa:
  # When the backend is unreachable the QA gate passes by default so an
  # outage degrades output quality instead of blocking the run. Set true to
  # fail the run instead.
  fail_closed: false
`

// LLMConfig configures the text-generation client.
type LLMConfig struct {
	BaseURL         string `yaml:"base_url"`
	Model           string `yaml:"model"`
	APIKey          string `yaml:"api_key,omitempty"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxFailures     int    `yaml:"max_failures"`
	CooldownSeconds int    `yaml:"cooldown_seconds"`
}

// Timeout returns the request timeout as a duration.
func (l LLMConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// Cooldown returns the guard cooldown as a duration.
func (l LLMConfig) Cooldown() time.Duration {
	if l.CooldownSeconds <= 0 {
		return 0
	}
	return time.Duration(l.CooldownSeconds) * time.Second
}

// QAConfig controls the verification gate's behavior on backend outages.
type QAConfig struct {
	FailClosed bool `yaml:"fail_closed"`
}

// ProjectConfig models .crewline/config.yaml.
type ProjectConfig struct {
	Version int       `yaml:"version"`
	LLM     LLMConfig `yaml:"llm"`
	QA      QAConfig  `yaml:"qa"`
}

// Config holds the runtime configuration for crewline.
type Config struct {
	// ProjectDir is the directory where the user ran `crewline` from.
	ProjectDir string

	// CrewlineProjectDir is ProjectDir/.crewline.
	CrewlineProjectDir string

	// ActionLogDir overrides the default action-log location when the
	// LOG_DIR environment variable is set.
	ActionLogDir string

	Project ProjectConfig
}

// InitDir creates the .crewline directory structure in the given project
// directory and seeds a default config.yaml when none exists.
//
// Structure created:
// .crewline/
// ├── logs/      <- run log (crewline.log)
// ├── actions/   <- append-only per-role daily action logs
// └── roles/     <- role plugin definitions (yaml or yaegi go files)
func InitDir(projectDir string) error {
	base := filepath.Join(projectDir, CrewlineDir)
	dirs := []string{
		filepath.Join(base, "logs"),
		filepath.Join(base, "actions"),
		filepath.Join(base, "roles"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(base, "config.yaml"))
}

// New creates a Config populated with defaults, the project config file when
// present, and environment overrides (highest precedence).
func New(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:         projectDir,
		CrewlineProjectDir: filepath.Join(projectDir, CrewlineDir),
		Project:            defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// LogsDir returns the path to the run log directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.CrewlineProjectDir, "logs")
}

// ActionsDir returns the directory holding the append-only action logs.
func (c *Config) ActionsDir() string {
	if c.ActionLogDir != "" {
		return c.ActionLogDir
	}
	return filepath.Join(c.CrewlineProjectDir, "actions")
}

// RolesDir returns the directory scanned for role plugin definitions.
func (c *Config) RolesDir() string {
	return filepath.Join(c.CrewlineProjectDir, "roles")
}

// ConfigPath returns the path to the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.CrewlineProjectDir, "config.yaml")
}

func (c *Config) loadProjectConfig() error {
	data, err := os.ReadFile(c.ConfigPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", c.ConfigPath(), err)
	}
	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.ConfigPath(), err)
	}
	c.Project = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("LLM_BASE_URL")); v != "" {
		c.Project.LLM.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_MODEL")); v != "" {
		c.Project.LLM.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("LLM_API_KEY")); v != "" {
		c.Project.LLM.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_DIR")); v != "" {
		c.ActionLogDir = v
	}
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		LLM: LLMConfig{
			BaseURL:         "http://localhost:11434/v1",
			Model:           "mistral:7b",
			TimeoutSeconds:  120,
			MaxFailures:     3,
			CooldownSeconds: 300,
		},
	}
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}
