package plugins

import (
	"os"
	"path/filepath"
	"testing"
)

const validRoleYAML = `role: dev
name: strict dev
prompt: "Write Go code for: {task}"
temperature: 0.2
max_tokens: 1024
`

func TestParseDefinitionYAML(t *testing.T) {
	def, err := ParseDefinitionYAML([]byte(validRoleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.Role != "dev" {
		t.Fatalf("role = %q", def.Role)
	}
	if def.Prompt != "Write Go code for: {task}" {
		t.Fatalf("prompt = %q", def.Prompt)
	}
	if def.MaxTokens != 1024 {
		t.Fatalf("max_tokens = %d", def.MaxTokens)
	}
}

func TestParseDefinitionYAMLEmptyPayload(t *testing.T) {
	if _, err := ParseDefinitionYAML([]byte("  \n ")); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestParseDefinitionYAMLRejectsInvalid(t *testing.T) {
	if _, err := ParseDefinitionYAML([]byte("role: dev\n")); err == nil {
		t.Fatalf("expected validation error without prompt")
	}
}

func TestLoadDefinitionDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b_doc.yaml"), "role: doc\nprompt: summarize\n")
	writeFile(t, filepath.Join(dir, "a_dev.yml"), "role: dev\nprompt: build\n")
	writeFile(t, filepath.Join(dir, "ignored.txt"), "not yaml")

	defs, err := LoadDefinitionDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("got %d definitions", len(defs))
	}
	if defs[0].Definition.Role != "dev" || defs[1].Definition.Role != "doc" {
		t.Fatalf("order = %s, %s", defs[0].Definition.Role, defs[1].Definition.Role)
	}
}

func TestLoadDefinitionDirMissingIsEmpty(t *testing.T) {
	defs, err := LoadDefinitionDir(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing dir must not error: %v", err)
	}
	if defs != nil {
		t.Fatalf("expected no definitions, got %v", defs)
	}
}

func TestLoadDefinitionDirPropagatesBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), "role: [broken\n")
	if _, err := LoadDefinitionDir(dir); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
