// Package pipeline drives one objective from plan to terminal result. The
// run is strictly sequential: each task goes through its role executor in
// plan order, QA gates every artifact, and the first failed verdict aborts
// the run with no further executor calls. Documentation synthesis happens
// once, after the last task, from the accumulated changelog.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/crewline/crewline/internal/actionlog"
	"github.com/crewline/crewline/internal/event"
	"github.com/crewline/crewline/internal/logging"
	"github.com/crewline/crewline/internal/plan"
	"github.com/crewline/crewline/internal/roles"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Result is the single terminal value of one run. Exactly one of the two
// shapes is populated: a completed run carries the changelog and the
// synthesized documentation, an aborted run carries the failing task, the
// verdict feedback, and whatever artifact existed at the gate.
type Result struct {
	RunID     string
	Objective string
	Status    Status

	// Completed fields.
	Changelog []string
	Docs      roles.DocSet

	// Aborted fields.
	FailedTask      string
	Feedback        string
	PartialArtifact string
}

// Report renders the result as the text printed at the end of a run.
func (r Result) Report() string {
	if r.Status == StatusAborted {
		if r.PartialArtifact == "" {
			return fmt.Sprintf("QA task %q failed: %s", r.FailedTask, r.Feedback)
		}
		return fmt.Sprintf("Task %q failed during QA.\nFeedback: %s\nGenerated code:\n%s",
			r.FailedTask, r.Feedback, r.PartialArtifact)
	}
	var b strings.Builder
	b.WriteString("All tasks completed successfully.\n\n")
	b.WriteString("Changelog:\n")
	b.WriteString(strings.Join(r.Changelog, "\n"))
	b.WriteString("\n\nDocumentation Update:\n")
	b.WriteString(r.Docs.ReadmeUpdate)
	b.WriteString("\n\nCommit Message:\n")
	b.WriteString(r.Docs.CommitMessage)
	return b.String()
}

// Option customizes Pipeline construction.
type Option func(*Pipeline)

// WithActionLog records executor completions to the append-only audit log.
func WithActionLog(log *actionlog.Log) Option {
	return func(p *Pipeline) {
		p.actions = log
	}
}

// WithLogger injects the diagnostic logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithRouter publishes run progress events for observers.
func WithRouter(router *event.Router) Option {
	return func(p *Pipeline) {
		p.router = router
	}
}

// WithContext supplies extra background text for documentation synthesis.
func WithContext(text string) Option {
	return func(p *Pipeline) {
		p.runContext = text
	}
}

// WithRunID overrides run id generation, for tests.
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.newRunID = fn
		}
	}
}

// Pipeline orchestrates one run at a time. It holds no state across runs
// beyond what the executors and the action log persist themselves.
type Pipeline struct {
	planner *plan.Planner
	dev     *roles.Dev
	qa      *roles.QA
	doc     *roles.Doc

	actions    *actionlog.Log
	logger     *logging.Logger
	router     *event.Router
	runContext string
	newRunID   func() string
}

// New wires the pipeline to its planner and role executors.
func New(planner *plan.Planner, dev *roles.Dev, qa *roles.QA, doc *roles.Doc, opts ...Option) *Pipeline {
	p := &Pipeline{
		planner:  planner,
		dev:      dev,
		qa:       qa,
		doc:      doc,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Run takes the objective end-to-end and returns the terminal result.
// Executor failures degrade inside the executors; the only abort path is a
// failed QA verdict.
func (p *Pipeline) Run(ctx context.Context, objective string) Result {
	runID := p.newRunID()
	p.publish(event.Event{Type: event.TypeRunStarted, RunID: runID, Detail: objective})

	pln := p.planner.Plan(ctx, objective)
	return p.execute(ctx, runID, pln)
}

// Execute runs a plan that was built elsewhere. A plan with zero tasks
// goes straight to documentation synthesis with an empty changelog.
func (p *Pipeline) Execute(ctx context.Context, pln plan.Plan) Result {
	runID := p.newRunID()
	p.publish(event.Event{Type: event.TypeRunStarted, RunID: runID, Detail: pln.Objective})
	return p.execute(ctx, runID, pln)
}

func (p *Pipeline) execute(ctx context.Context, runID string, pln plan.Plan) Result {
	objective := pln.Objective
	p.printf("pipeline: run %s planned %d tasks", runID, len(pln.Tasks))
	p.record(roles.RolePlanner, actionlog.Payload{
		"run_id":    runID,
		"objective": objective,
		"tasks":     taskDescriptions(pln.Tasks),
	})
	p.publish(event.Event{Type: event.TypePlanReady, RunID: runID, Detail: fmt.Sprintf("%d tasks", len(pln.Tasks))})

	var changelog []string
	for i, task := range pln.Tasks {
		p.publish(event.Event{Type: event.TypeTaskStarted, RunID: runID, TaskIndex: i, Task: task.Description, Role: string(task.Kind)})
		switch task.Kind {
		case plan.KindDev:
			artifact := p.dev.Build(ctx, task.Description)
			p.record(roles.RoleDev, actionlog.Payload{
				"run_id": runID,
				"task":   task.Description,
				"code":   artifact,
			})
			verdict := p.checkAndRecord(ctx, runID, artifact, task.Description)
			p.publish(event.Event{Type: event.TypeQAVerdict, RunID: runID, TaskIndex: i, Task: task.Description, Detail: verdict.Feedback})
			if !verdict.Passed {
				return p.abort(runID, objective, task, verdict, artifact)
			}
			changelog = append(changelog, "Implemented: "+task.Description)
		case plan.KindQa:
			verdict := p.checkAndRecord(ctx, runID, "", task.Description)
			p.publish(event.Event{Type: event.TypeQAVerdict, RunID: runID, TaskIndex: i, Task: task.Description, Detail: verdict.Feedback})
			if !verdict.Passed {
				return p.abort(runID, objective, task, verdict, "")
			}
		case plan.KindDoc:
			// Synthesis runs once after the last task; only the request is
			// recorded here.
			changelog = append(changelog, "Documentation requested: "+task.Description)
		default:
			p.printf("pipeline: run %s skipping unknown task kind %q", runID, task.Kind)
		}
		p.publish(event.Event{Type: event.TypeTaskDone, RunID: runID, TaskIndex: i, Task: task.Description})
	}

	docs := p.doc.Summarize(ctx, changelog, p.runContext)
	p.record(roles.RoleDoc, actionlog.Payload{
		"run_id":         runID,
		"changelog":      changelog,
		"readme_update":  docs.ReadmeUpdate,
		"changelog_md":   docs.ChangelogMD,
		"commit_message": docs.CommitMessage,
	})
	p.publish(event.Event{Type: event.TypeRunCompleted, RunID: runID})
	return Result{
		RunID:     runID,
		Objective: objective,
		Status:    StatusCompleted,
		Changelog: changelog,
		Docs:      docs,
	}
}

func (p *Pipeline) checkAndRecord(ctx context.Context, runID, artifact, task string) roles.Verdict {
	verdict := p.qa.Check(ctx, artifact, task)
	p.record(roles.RoleQa, actionlog.Payload{
		"run_id":    runID,
		"task":      task,
		"passed":    verdict.Passed,
		"feedback":  verdict.Feedback,
		"fail_mode": p.qa.FailMode(),
	})
	return verdict
}

func (p *Pipeline) abort(runID, objective string, task plan.Task, verdict roles.Verdict, artifact string) Result {
	p.printf("pipeline: run %s aborted on %q: %s", runID, task.Description, verdict.Feedback)
	p.publish(event.Event{Type: event.TypeRunAborted, RunID: runID, Task: task.Description, Detail: verdict.Feedback})
	return Result{
		RunID:           runID,
		Objective:       objective,
		Status:          StatusAborted,
		FailedTask:      task.Description,
		Feedback:        verdict.Feedback,
		PartialArtifact: artifact,
	}
}

// record appends to the action log. Audit failures are logged and the run
// continues: losing one record is better than losing the run.
func (p *Pipeline) record(role string, payload actionlog.Payload) {
	if p.actions == nil {
		return
	}
	if err := p.actions.Append(role, payload); err != nil {
		p.printf("pipeline: action log append failed for %s: %v", role, err)
	}
}

func (p *Pipeline) publish(ev event.Event) {
	if p.router != nil {
		p.router.Publish(ev)
	}
}

func (p *Pipeline) printf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}

func taskDescriptions(tasks []plan.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, string(t.Kind)+": "+t.Description)
	}
	return out
}
