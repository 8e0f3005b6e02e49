// Package roles implements the role executors: Dev writes an artifact for a
// task, QA gates it, Doc synthesizes the final documentation. Each executor
// wraps one text-generation call with a fixed instruction template and
// deterministic post-processing, and each degrades to a documented fallback
// instead of returning an error. A flaky backend lowers output quality but
// never crashes a run.
package roles

import "github.com/crewline/crewline/internal/prompt"

// Role names, used for action-log partitioning and plugin ids.
const (
	RoleDev     = "dev"
	RoleQa      = "qa"
	RoleDoc     = "doc"
	RolePlanner = "planner"
)

// TemplateSet carries the instruction template for every built-in role.
// Plugin definitions overlay entries by role id.
type TemplateSet struct {
	Planner prompt.Template
	Dev     prompt.Template
	QA      prompt.Template
	Doc     prompt.Template
}

// Overlay merges a plugin-supplied template into the set by role id.
// Unknown ids are ignored so a stray definition cannot break startup.
func (s TemplateSet) Overlay(role string, tmpl prompt.Template) TemplateSet {
	switch role {
	case RolePlanner:
		s.Planner = s.Planner.Merge(tmpl)
	case RoleDev:
		s.Dev = s.Dev.Merge(tmpl)
	case RoleQa:
		s.QA = s.QA.Merge(tmpl)
	case RoleDoc:
		s.Doc = s.Doc.Merge(tmpl)
	}
	return s
}
