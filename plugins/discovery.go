package plugins

import (
	"fmt"

	"github.com/crewline/crewline/internal/config"
	"github.com/crewline/crewline/internal/roles"
)

// LoadRoleOverrides discovers YAML and Go role definitions under
// .crewline/roles and overlays them onto the built-in template set. Each
// role may be overridden at most once across all definition files.
func LoadRoleOverrides(cfg *config.Config, set roles.TemplateSet) (roles.TemplateSet, error) {
	if cfg == nil {
		return set, nil
	}
	defs, err := loadAllDefinitionFiles(cfg.RolesDir())
	if err != nil {
		return set, err
	}
	seen := make(map[string]string)
	for _, file := range defs {
		def := file.Definition
		if existing, ok := seen[def.Role]; ok {
			return set, fmt.Errorf("plugin: duplicate role %s (%s and %s)", def.Role, existing, file.Path)
		}
		seen[def.Role] = file.Path
		set = set.Overlay(def.Role, def.Template())
	}
	return set, nil
}

func loadAllDefinitionFiles(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlDefs, goDefs...), nil
}
