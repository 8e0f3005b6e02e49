package plugins

import (
	"fmt"
	"strings"

	"github.com/crewline/crewline/internal/prompt"
	"github.com/crewline/crewline/internal/roles"
)

// RoleDefinition describes a role override loaded from the project's roles
// directory.
//
// The struct mirrors the on-disk schema under .crewline/roles/*.yaml and is
// intentionally narrow: a definition replaces one role's instruction
// template and, optionally, its sampling parameters. Omitted sampling
// fields keep the built-in values.
type RoleDefinition struct {
	Role        string  `json:"role" yaml:"role"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Prompt      string  `json:"prompt" yaml:"prompt"`
	Temperature float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

// Normalized returns a trimmed copy of the definition.
func (def RoleDefinition) Normalized() RoleDefinition {
	return RoleDefinition{
		Role:        strings.ToLower(strings.TrimSpace(def.Role)),
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Prompt:      strings.TrimSpace(def.Prompt),
		Temperature: def.Temperature,
		MaxTokens:   def.MaxTokens,
	}
}

// Validate ensures the definition names a known role and carries a prompt.
func (def RoleDefinition) Validate() error {
	normalized := def.Normalized()
	if normalized.Role == "" {
		return fmt.Errorf("plugin: role is required")
	}
	if !knownRole(normalized.Role) {
		return fmt.Errorf("plugin: unknown role %s", normalized.Role)
	}
	if normalized.Prompt == "" {
		return fmt.Errorf("plugin %s: prompt is required", normalized.Role)
	}
	if normalized.Temperature < 0 || normalized.Temperature > 2 {
		return fmt.Errorf("plugin %s: temperature %v out of range", normalized.Role, normalized.Temperature)
	}
	if normalized.MaxTokens < 0 {
		return fmt.Errorf("plugin %s: max_tokens must not be negative", normalized.Role)
	}
	return nil
}

// Template converts the definition into an instruction template overlay.
func (def RoleDefinition) Template() prompt.Template {
	normalized := def.Normalized()
	return prompt.Template{
		Text:        normalized.Prompt,
		Temperature: normalized.Temperature,
		MaxTokens:   normalized.MaxTokens,
	}
}

func knownRole(role string) bool {
	switch role {
	case roles.RolePlanner, roles.RoleDev, roles.RoleQa, roles.RoleDoc:
		return true
	}
	return false
}
