package plugins

import (
	"strings"
	"testing"
)

func TestRoleDefinitionValidate(t *testing.T) {
	tests := []struct {
		name    string
		def     RoleDefinition
		wantErr string
	}{
		{
			name:    "missing role",
			def:     RoleDefinition{Prompt: "do the thing"},
			wantErr: "role is required",
		},
		{
			name:    "unknown role",
			def:     RoleDefinition{Role: "ops", Prompt: "do the thing"},
			wantErr: "unknown role",
		},
		{
			name:    "missing prompt",
			def:     RoleDefinition{Role: "dev"},
			wantErr: "prompt is required",
		},
		{
			name:    "negative max tokens",
			def:     RoleDefinition{Role: "dev", Prompt: "p", MaxTokens: -1},
			wantErr: "max_tokens",
		},
		{
			name:    "temperature out of range",
			def:     RoleDefinition{Role: "dev", Prompt: "p", Temperature: 3},
			wantErr: "temperature",
		},
		{
			name: "valid",
			def:  RoleDefinition{Role: "QA", Prompt: "review {artifact}", Temperature: 0.5},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.def.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("error = %v, want %q", err, test.wantErr)
			}
		})
	}
}

func TestRoleDefinitionNormalizedLowercasesRole(t *testing.T) {
	def := RoleDefinition{Role: "  DEV  ", Prompt: "  code it  "}
	got := def.Normalized()
	if got.Role != "dev" {
		t.Fatalf("role = %q", got.Role)
	}
	if got.Prompt != "code it" {
		t.Fatalf("prompt = %q", got.Prompt)
	}
}

func TestRoleDefinitionTemplate(t *testing.T) {
	def := RoleDefinition{Role: "doc", Prompt: "summarize {changes}", Temperature: 0.4, MaxTokens: 512}
	tmpl := def.Template()
	if tmpl.Text != "summarize {changes}" {
		t.Fatalf("text = %q", tmpl.Text)
	}
	if tmpl.Temperature != 0.4 || tmpl.MaxTokens != 512 {
		t.Fatalf("sampling = %v/%d", tmpl.Temperature, tmpl.MaxTokens)
	}
}
