// Package plan turns a free-text objective into an ordered task list.
//
// The planner asks the text-generation backend for a numbered breakdown and
// parses it with a deliberately permissive line grammar; when the backend is
// unreachable or the reply yields nothing usable, it falls back to a single
// dev task carrying the raw objective. Planning therefore never fails.
package plan

// Kind routes a task to its role executor.
type Kind string

const (
	KindDev Kind = "dev"
	KindQa  Kind = "qa"
	KindDoc Kind = "doc"
)

// Task is one unit of work in a plan. Immutable once parsed.
type Task struct {
	Description string
	Kind        Kind
}

// Plan is the ordered task list derived from an objective. It is created
// once per run and never mutated afterwards; an empty Tasks slice is valid
// and produces a documentation-only run.
type Plan struct {
	Objective string
	Tasks     []Task
}
