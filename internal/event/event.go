// Package event carries run progress from the pipeline to observers. The
// pipeline publishes as it moves through planning, execution, and
// documentation; the terminal view subscribes by run ID and renders what
// arrives. Publishing never blocks the pipeline: slow subscribers lose
// events instead.
package event

import (
	"strings"
	"time"
)

// Event types published over a run's lifetime.
const (
	TypeRunStarted   = "run_started"
	TypePlanReady    = "plan_ready"
	TypeTaskStarted  = "task_started"
	TypeTaskDone     = "task_done"
	TypeQAVerdict    = "qa_verdict"
	TypeRunAborted   = "run_aborted"
	TypeRunCompleted = "run_completed"
)

// Event is one progress notification for a run.
type Event struct {
	Type      string
	RunID     string
	Time      time.Time
	TaskIndex int
	Task      string
	Role      string
	Detail    string
}

// Normalize trims identifying fields and stamps a missing time.
func (e *Event) Normalize() {
	if e == nil {
		return
	}
	e.Type = strings.TrimSpace(e.Type)
	e.RunID = strings.TrimSpace(e.RunID)
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
}

// Terminal reports whether the event ends its run. Terminal events are the
// last ones a subscriber should expect for that run ID.
func (e Event) Terminal() bool {
	return e.Type == TypeRunAborted || e.Type == TypeRunCompleted
}

// Logger records router diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}
