package plugins

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/crewline/crewline/internal/config"
	"github.com/crewline/crewline/internal/roles"
)

func projectConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := config.InitDir(dir); err != nil {
		t.Fatalf("init dir: %v", err)
	}
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestLoadRoleOverridesAppliesTemplates(t *testing.T) {
	cfg := projectConfig(t)
	writeFile(t, filepath.Join(cfg.RolesDir(), "dev.yaml"),
		"role: dev\nprompt: \"Write Go for: {task}\"\n")

	set := roles.TemplateSet{Dev: roles.DefaultDevTemplate, QA: roles.DefaultQATemplate}
	set, err := LoadRoleOverrides(cfg, set)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.Dev.Text != "Write Go for: {task}" {
		t.Fatalf("dev template not overridden: %q", set.Dev.Text)
	}
	if set.Dev.Temperature != roles.DefaultDevTemplate.Temperature {
		t.Fatalf("omitted sampling must keep the built-in value")
	}
	if set.QA.Text != roles.DefaultQATemplate.Text {
		t.Fatalf("qa template must be untouched")
	}
}

func TestLoadRoleOverridesRejectsDuplicateRole(t *testing.T) {
	cfg := projectConfig(t)
	writeFile(t, filepath.Join(cfg.RolesDir(), "a.yaml"), "role: dev\nprompt: one\n")
	writeFile(t, filepath.Join(cfg.RolesDir(), "b.yaml"), "role: dev\nprompt: two\n")

	_, err := LoadRoleOverrides(cfg, roles.TemplateSet{})
	if err == nil || !strings.Contains(err.Error(), "duplicate role") {
		t.Fatalf("error = %v, want duplicate role", err)
	}
}

func TestLoadRoleOverridesEmptyDir(t *testing.T) {
	cfg := projectConfig(t)
	set := roles.TemplateSet{Dev: roles.DefaultDevTemplate}
	got, err := LoadRoleOverrides(cfg, set)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Dev.Text != roles.DefaultDevTemplate.Text {
		t.Fatalf("set must pass through unchanged")
	}
}

func TestLoadRoleOverridesNilConfig(t *testing.T) {
	set := roles.TemplateSet{Dev: roles.DefaultDevTemplate}
	got, err := LoadRoleOverrides(nil, set)
	if err != nil {
		t.Fatalf("nil config must not error: %v", err)
	}
	if got.Dev.Text != roles.DefaultDevTemplate.Text {
		t.Fatalf("set must pass through unchanged")
	}
}
