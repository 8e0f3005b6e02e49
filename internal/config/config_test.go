package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitDirCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	for _, sub := range []string{"logs", "actions", "roles"} {
		if _, err := os.Stat(filepath.Join(dir, CrewlineDir, sub)); err != nil {
			t.Fatalf("expected %s to exist: %v", sub, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, CrewlineDir, "config.yaml")); err != nil {
		t.Fatalf("expected seeded config.yaml: %v", err)
	}
}

func TestNewAppliesDefaultsWithoutFile(t *testing.T) {
	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Project.LLM.BaseURL != "http://localhost:11434/v1" {
		t.Fatalf("unexpected default base url: %s", cfg.Project.LLM.BaseURL)
	}
	if cfg.Project.LLM.Model != "mistral:7b" {
		t.Fatalf("unexpected default model: %s", cfg.Project.LLM.Model)
	}
	if cfg.Project.QA.FailClosed {
		t.Fatalf("qa gate must default to fail-open")
	}
}

func TestNewReadsProjectConfig(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	body := `version: 1
llm:
  base_url: http://10.0.0.9:1234/v1
  model: qwen2.5-coder
  timeout_seconds: 30
qa:
  fail_closed: true
`
	if err := os.WriteFile(filepath.Join(dir, CrewlineDir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Project.LLM.BaseURL != "http://10.0.0.9:1234/v1" {
		t.Fatalf("base url not loaded: %s", cfg.Project.LLM.BaseURL)
	}
	if !cfg.Project.QA.FailClosed {
		t.Fatalf("fail_closed not loaded")
	}
	if got := cfg.Project.LLM.Timeout().Seconds(); got != 30 {
		t.Fatalf("timeout = %v, want 30s", got)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LLM_BASE_URL", "http://override:1234/v1")
	t.Setenv("LLM_MODEL", "llama3:8b")
	t.Setenv("LOG_DIR", filepath.Join(dir, "elsewhere"))

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Project.LLM.BaseURL != "http://override:1234/v1" {
		t.Fatalf("env base url not applied: %s", cfg.Project.LLM.BaseURL)
	}
	if cfg.Project.LLM.Model != "llama3:8b" {
		t.Fatalf("env model not applied: %s", cfg.Project.LLM.Model)
	}
	if cfg.ActionsDir() != filepath.Join(dir, "elsewhere") {
		t.Fatalf("LOG_DIR not applied: %s", cfg.ActionsDir())
	}
}

func TestInvalidYAMLSurfacesError(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, CrewlineDir, "config.yaml"), []byte("llm: ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}
