package plugins

import (
	"path/filepath"
	"strings"
	"testing"
)

const goRolePlugin = `package main

func RoleDefinitions() ([]map[string]any, error) {
	return []map[string]any{
		{
			"role":        "qa",
			"prompt":      "Review strictly: {artifact}",
			"temperature": 0.1,
		},
	}, nil
}
`

func TestLoadGoDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "qa_override.go"), goRolePlugin)

	defs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d definitions", len(defs))
	}
	def := defs[0].Definition
	if def.Role != "qa" {
		t.Fatalf("role = %q", def.Role)
	}
	if def.Prompt != "Review strictly: {artifact}" {
		t.Fatalf("prompt = %q", def.Prompt)
	}
	if !strings.Contains(defs[0].Path, "#1") {
		t.Fatalf("path = %q, want definition index suffix", defs[0].Path)
	}
}

func TestLoadGoDefinitionDirMissingFunc(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty_plugin.go"), "package main\n\nvar unused = 1\n")
	if _, err := LoadGoDefinitionDir(dir); err == nil {
		t.Fatalf("expected error for plugin without RoleDefinitions")
	}
}

func TestLoadGoDefinitionDirMissingIsEmpty(t *testing.T) {
	defs, err := LoadGoDefinitionDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected no definitions, got %v", defs)
	}
}
